package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/partsdesk/compare-cli/internal/export"
	"github.com/partsdesk/compare-cli/internal/fetcher"
	"github.com/partsdesk/compare-cli/internal/model"
	"github.com/partsdesk/compare-cli/internal/normalize"
	"github.com/partsdesk/compare-cli/internal/reconcile"
)

var (
	compareFileA       string
	compareFileB       string
	compareOutput      string
	compareFormat      string
	compareMapping     string
	compareSheetA      int
	compareSheetB      int
	compareDelimiter   string
	compareConcurrency int
	compareNoHistory   bool
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Reconcile two inventory files",
	Long:  "Loads file A and file B, normalizes their columns, and produces matched keys with price deltas plus the keys exclusive to each side.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("compare"); err != nil {
			return err
		}

		var recordRun runRecorder = noopRecorder{}
		if !compareNoHistory {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			run, err := st.CreateRun(ctx, compareFileA, compareFileB)
			if err != nil {
				return err
			}
			recordRun = storeRecorder{st: st, runID: run.ID}
		}

		start := time.Now()
		result, err := executeCompare(ctx, compareFileA, compareFileB)
		if err != nil {
			recordRun.fail(ctx, err)
			return err
		}

		summary := result.Summarize()

		if compareOutput != "" {
			if err := export.WriteXLSX(result, compareOutput); err != nil {
				recordRun.fail(ctx, err)
				return err
			}
			summary.ExportPath = compareOutput
		}

		recordRun.complete(ctx, &summary)

		zap.L().Info("comparison complete",
			zap.Int("total_a", result.TotalA),
			zap.Int("total_b", result.TotalB),
			zap.Int("matches", len(result.Matches)),
			zap.Int("only_a", len(result.OnlyA)),
			zap.Int("only_b", len(result.OnlyB)),
			zap.Duration("elapsed", time.Since(start)),
		)

		switch compareFormat {
		case "json":
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		case "text", "":
			fmt.Print(export.FormatReport(compareFileA, compareFileB, result))
			return nil
		default:
			return eris.Errorf("unknown output format %q (want text or json)", compareFormat)
		}
	},
}

func init() {
	compareCmd.Flags().StringVar(&compareFileA, "file-a", "", "first inventory file (path or http/ftp URL)")
	compareCmd.Flags().StringVar(&compareFileB, "file-b", "", "second inventory file (path or http/ftp URL)")
	compareCmd.Flags().StringVarP(&compareOutput, "output", "o", "", "write an XLSX workbook with summary and detail sheets")
	compareCmd.Flags().StringVar(&compareFormat, "format", "text", "stdout format: text or json")
	compareCmd.Flags().StringVar(&compareMapping, "mapping", "", "YAML file with extra column header spellings")
	compareCmd.Flags().IntVar(&compareSheetA, "sheet-a", 0, "worksheet index for file A (XLSX only)")
	compareCmd.Flags().IntVar(&compareSheetB, "sheet-b", 0, "worksheet index for file B (XLSX only)")
	compareCmd.Flags().StringVar(&compareDelimiter, "delimiter", "", "CSV field delimiter (default from config)")
	compareCmd.Flags().IntVar(&compareConcurrency, "concurrency", 0, "similarity scoring workers (default from config)")
	compareCmd.Flags().BoolVar(&compareNoHistory, "no-history", false, "skip recording the run in the history store")

	_ = compareCmd.MarkFlagRequired("file-a")
	_ = compareCmd.MarkFlagRequired("file-b")

	rootCmd.AddCommand(compareCmd)
}

// executeCompare loads both sources, normalizes them, and reconciles
// the canonical tables.
func executeCompare(ctx context.Context, sourceA, sourceB string) (model.ComparisonResult, error) {
	mapping, err := normalize.LoadMapping(mappingPath())
	if err != nil {
		return model.ComparisonResult{}, err
	}

	var tableA, tableB model.CanonicalTable

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := loadAndNormalize(gctx, sourceA, compareSheetA, mapping)
		if err != nil {
			return eris.Wrap(err, "file A")
		}
		tableA = t
		return nil
	})
	g.Go(func() error {
		t, err := loadAndNormalize(gctx, sourceB, compareSheetB, mapping)
		if err != nil {
			return eris.Wrap(err, "file B")
		}
		tableB = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return model.ComparisonResult{}, err
	}

	concurrency := compareConcurrency
	if concurrency == 0 {
		concurrency = cfg.Compare.Concurrency
	}
	return reconcile.Reconcile(tableA, tableB, reconcile.Options{Concurrency: concurrency}), nil
}

func loadAndNormalize(ctx context.Context, source string, sheet int, mapping normalize.Mapping) (model.CanonicalTable, error) {
	raw, err := fetcher.Load(ctx, source, loadOptions(sheet))
	if err != nil {
		return nil, err
	}
	return normalize.Normalize(raw, mapping)
}

// loadOptions assembles fetcher options from config plus per-invocation
// flag overrides.
func loadOptions(sheet int) fetcher.LoadOptions {
	delimiter := compareDelimiter
	if delimiter == "" {
		delimiter = cfg.Input.Delimiter
	}

	opts := fetcher.LoadOptions{
		CSV: fetcher.CSVOptions{
			Charset:   charsetOrEmpty(cfg.Input.Charset),
			TrimSpace: true,
		},
		XLSX: fetcher.XLSXOptions{SheetIndex: sheet},
		HTTP: fetcher.HTTPOptions{
			UserAgent:  cfg.Fetch.UserAgent,
			Timeout:    time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
			MaxRetries: cfg.Fetch.MaxRetries,
		},
		FTP: fetcher.FTPOptions{
			User:     cfg.Fetch.FTPUser,
			Password: cfg.Fetch.FTPPassword,
			Timeout:  time.Duration(cfg.Fetch.TimeoutSecs) * time.Second,
		},
	}
	if delimiter != "" {
		opts.CSV.Delimiter = []rune(delimiter)[0]
	}
	if cfg.Fetch.RatePerSec > 0 {
		opts.HTTP.Limiter = rate.NewLimiter(rate.Limit(cfg.Fetch.RatePerSec), 1)
	}
	return opts
}

// charsetOrEmpty maps the UTF-8 default to "" so the CSV reader skips
// the decoding pass entirely.
func charsetOrEmpty(charset string) string {
	switch charset {
	case "utf-8", "utf8", "UTF-8":
		return ""
	}
	return charset
}

func mappingPath() string {
	if compareMapping != "" {
		return compareMapping
	}
	return cfg.Input.MappingPath
}
