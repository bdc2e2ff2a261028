package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/partsdesk/compare-cli/internal/model"
	"github.com/partsdesk/compare-cli/internal/store"
)

// initStore opens the configured run history backend and applies
// migrations.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, err
	}
	return st, nil
}

// runRecorder records the terminal state of a comparison run. History
// bookkeeping must never mask the comparison's own result, so both
// methods swallow store errors after logging them.
type runRecorder interface {
	complete(ctx context.Context, summary *model.RunSummary)
	fail(ctx context.Context, cause error)
}

type noopRecorder struct{}

func (noopRecorder) complete(context.Context, *model.RunSummary) {}
func (noopRecorder) fail(context.Context, error)                 {}

type storeRecorder struct {
	st    store.Store
	runID string
}

func (r storeRecorder) complete(ctx context.Context, summary *model.RunSummary) {
	if err := r.st.CompleteRun(ctx, r.runID, summary); err != nil {
		zap.L().Warn("record run completion", zap.String("run_id", r.runID), zap.Error(err))
	}
}

func (r storeRecorder) fail(ctx context.Context, cause error) {
	if err := r.st.FailRun(ctx, r.runID, cause.Error()); err != nil {
		zap.L().Warn("record run failure", zap.String("run_id", r.runID), zap.Error(err))
	}
}
