package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/partsdesk/compare-cli/internal/model"
	"github.com/partsdesk/compare-cli/internal/normalize"
	"github.com/partsdesk/compare-cli/internal/reconcile"
	"github.com/partsdesk/compare-cli/internal/store"
)

const maxUploadBytes = 64 << 20

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the comparison HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(st),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// newRouter builds the API routes on a chi router.
func newRouter(st store.Store) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/compare", handleCompare(st))
	r.Get("/runs", handleListRuns(st))
	r.Get("/runs/{id}", handleGetRun(st))

	return r
}

// handleCompare accepts two uploaded inventory files as multipart form
// fields file_a and file_b and responds with the full comparison.
func handleCompare(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		pathA, nameA, err := saveUpload(r, "file_a")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer os.Remove(pathA)

		pathB, nameB, err := saveUpload(r, "file_b")
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		defer os.Remove(pathB)

		ctx := r.Context()
		run, err := st.CreateRun(ctx, nameA, nameB)
		if err != nil {
			zap.L().Error("create run", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to record run")
			return
		}

		mapping, err := normalize.LoadMapping(cfg.Input.MappingPath)
		if err != nil {
			failAndRespond(ctx, st, run.ID, w, err)
			return
		}

		tableA, err := loadAndNormalize(ctx, pathA, 0, mapping)
		if err != nil {
			failAndRespond(ctx, st, run.ID, w, eris.Wrap(err, "file A"))
			return
		}
		tableB, err := loadAndNormalize(ctx, pathB, 0, mapping)
		if err != nil {
			failAndRespond(ctx, st, run.ID, w, eris.Wrap(err, "file B"))
			return
		}

		result := reconcile.Reconcile(tableA, tableB, reconcile.Options{Concurrency: cfg.Compare.Concurrency})

		summary := result.Summarize()
		if err := st.CompleteRun(ctx, run.ID, &summary); err != nil {
			zap.L().Warn("record run completion", zap.String("run_id", run.ID), zap.Error(err))
		}

		writeJSON(w, http.StatusOK, struct {
			RunID string `json:"run_id"`
			model.ComparisonResult
		}{RunID: run.ID, ComparisonResult: result})
	}
}

func handleListRuns(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status: model.RunStatus(r.URL.Query().Get("status")),
		}
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
				return
			}
			filter.Limit = n
		}

		runs, err := st.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to list runs")
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}

		writeJSON(w, http.StatusOK, runs)
	}
}

func handleGetRun(st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := st.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}

		writeJSON(w, http.StatusOK, run)
	}
}

// failAndRespond records the run failure and sends the error to the
// client as a 422.
func failAndRespond(ctx context.Context, st store.Store, runID string, w http.ResponseWriter, cause error) {
	if err := st.FailRun(ctx, runID, cause.Error()); err != nil {
		zap.L().Warn("record run failure", zap.String("run_id", runID), zap.Error(err))
	}
	writeError(w, http.StatusUnprocessableEntity, cause.Error())
}

// saveUpload copies the named multipart file to a temp file, keeping
// the original extension so the loader can dispatch on it.
func saveUpload(r *http.Request, field string) (path, name string, err error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return "", "", eris.Errorf("%s is required", field)
	}
	defer file.Close()

	path, err = copyToTemp(file, header.Filename)
	if err != nil {
		return "", "", err
	}
	return path, header.Filename, nil
}

func copyToTemp(file multipart.File, filename string) (string, error) {
	tmp, err := os.CreateTemp("", "upload-*"+filepath.Ext(filename))
	if err != nil {
		return "", eris.Wrap(err, "create temp file")
	}
	defer tmp.Close()

	if _, err := tmp.ReadFrom(file); err != nil {
		os.Remove(tmp.Name())
		return "", eris.Wrap(err, "write upload")
	}
	return tmp.Name(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
