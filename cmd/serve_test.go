//go:build !integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partsdesk/compare-cli/internal/config"
	"github.com/partsdesk/compare-cli/internal/model"
	"github.com/partsdesk/compare-cli/internal/store"
)

// setTestConfig installs a minimal config for handler tests that read
// the package-level cfg.
func setTestConfig(t *testing.T) {
	t.Helper()
	prev := cfg
	cfg = &config.Config{}
	cfg.Input.Delimiter = ","
	cfg.Input.Charset = "utf-8"
	cfg.Fetch.TimeoutSecs = 5
	cfg.Fetch.MaxRetries = 0
	cfg.Compare.Concurrency = 2
	t.Cleanup(func() { cfg = prev })
}

func newTestRouter(t *testing.T) (http.Handler, store.Store) {
	t.Helper()
	setTestConfig(t)

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "serve.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Migrate(context.Background()))

	return newRouter(st), st
}

// multipartBody builds a two-file multipart form for POST /compare.
func multipartBody(t *testing.T, csvA, csvB string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fa, err := w.CreateFormFile("file_a", "a.csv")
	require.NoError(t, err)
	_, err = fa.Write([]byte(csvA))
	require.NoError(t, err)

	fb, err := w.CreateFormFile("file_b", "b.csv")
	require.NoError(t, err)
	_, err = fb.Write([]byte(csvB))
	require.NoError(t, err)

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestRouter_Health(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouter_Compare(t *testing.T) {
	router, st := newTestRouter(t)

	csvA := "Clave,Descripcion,Precio\nX1,Filtro de aceite,100\nX2,Bujia,50\n"
	csvB := "Clave,Descripcion,Precio\nX1,Filtro aceite,110\nX3,Amortiguador,800\n"
	body, contentType := multipartBody(t, csvA, csvB)

	req := httptest.NewRequest(http.MethodPost, "/compare", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp struct {
		RunID string `json:"run_id"`
		model.ComparisonResult
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, 2, resp.TotalA)
	assert.Equal(t, 2, resp.TotalB)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "X1", resp.Matches[0].Key)
	require.Len(t, resp.OnlyA, 1)
	assert.Equal(t, "X2", resp.OnlyA[0].Key)
	require.Len(t, resp.OnlyB, 1)
	assert.Equal(t, "X3", resp.OnlyB[0].Key)

	// The run was recorded and completed.
	run, err := st.GetRun(context.Background(), resp.RunID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Summary)
	assert.Equal(t, 1, run.Summary.Matches)
}

func TestRouter_Compare_MissingFile(t *testing.T) {
	router, _ := newTestRouter(t)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fa, err := w.CreateFormFile("file_a", "a.csv")
	require.NoError(t, err)
	_, err = fa.Write([]byte("Clave,Precio\nX1,1\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/compare", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "file_b is required")
}

func TestRouter_Compare_NoKeyColumn(t *testing.T) {
	router, st := newTestRouter(t)

	csvA := "Part,Price\nX1,100\n"
	csvB := "Clave,Precio\nX1,110\n"
	body, contentType := multipartBody(t, csvA, csvB)

	req := httptest.NewRequest(http.MethodPost, "/compare", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "file A")
	assert.Contains(t, rr.Body.String(), "no key column")

	// The failed run is recorded.
	runs, err := st.ListRuns(context.Background(), store.RunFilter{Status: model.RunStatusFailed})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Error, "no key column")
}

func TestRouter_ListRuns(t *testing.T) {
	router, st := newTestRouter(t)

	_, err := st.CreateRun(context.Background(), "a.csv", "b.csv")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var runs []model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "a.csv", runs[0].SourceA)
}

func TestRouter_ListRuns_Empty(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, "[]", rr.Body.String())
}

func TestRouter_ListRuns_BadLimit(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/runs?limit=abc", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRouter_GetRun(t *testing.T) {
	router, st := newTestRouter(t)

	run, err := st.CreateRun(context.Background(), "a.csv", "b.csv")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+run.ID, nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var got model.Run
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
}

func TestRouter_GetRun_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/runs/nonexistent", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
