package normalize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsdesk/compare-cli/internal/fetcher"
)

func TestLoadMapping_AppendsAfterDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	content := "key:\n  - Part Number\nprice:\n  - List Price\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m, err := LoadMapping(path)
	require.NoError(t, err)

	assert.Equal(t, "Clave", m.Key[0], "defaults keep priority")
	assert.Contains(t, m.Key, "Part Number")
	assert.Contains(t, m.Price, "List Price")
	assert.Equal(t, DefaultMapping().Description, m.Description)
}

func TestLoadMapping_CustomHeaderResolves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key:\n  - Part Number\n"), 0o644))

	m, err := LoadMapping(path)
	require.NoError(t, err)

	table := fetcher.Table{
		Headers: []string{"Part Number", "Precio"},
		Rows:    [][]any{{"PN-7", "15"}},
	}
	out, err := Normalize(table, m)
	require.NoError(t, err)
	assert.Equal(t, "PN-7", out[0].Key)
}

func TestLoadMapping_MissingFile(t *testing.T) {
	_, err := LoadMapping(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadMapping_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mapping.yaml")
	require.NoError(t, os.WriteFile(path, []byte("key: [unclosed"), 0o644))

	_, err := LoadMapping(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse mapping file")
}
