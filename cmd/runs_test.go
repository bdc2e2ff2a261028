//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/partsdesk/compare-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			SourceA:   "proveedor_marzo.xlsx",
			SourceB:   "inventario.csv",
			Status:    model.RunStatusComplete,
			Summary:   &model.RunSummary{Matches: 42},
			CreatedAt: now,
			UpdatedAt: now.Add(30 * time.Second),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			SourceA:   "a.csv",
			SourceB:   "b.csv",
			Status:    model.RunStatusRunning,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-1 * time.Hour),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "FILE A")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "proveedor_marzo.xlsx")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "2026-03-10 09:15")
	assert.Contains(t, output, "abc12345")
}

func TestFormatRunsList_NoSummary(t *testing.T) {
	runs := []model.Run{
		{
			ID:      "abc12345-6789-0000-0000-000000000000",
			SourceA: "a.csv",
			SourceB: "b.csv",
			Status:  model.RunStatusFailed,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "-")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}

func TestTruncateSource(t *testing.T) {
	long := "https://example.com/exports/2026/03/inventario_proveedor_marzo.xlsx"
	got := truncateSource(long)
	assert.Len(t, got, 30)
	assert.Contains(t, got, "...")
	assert.Contains(t, got, "marzo.xlsx")

	assert.Equal(t, "a.csv", truncateSource("a.csv"))
}
