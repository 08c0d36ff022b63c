// Command refresh runs one refresh cycle: fetch the tracked FRED series and
// the skills taxonomy, merge them into the flat-file store, and rebuild the
// derived metrics table.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"laborpulse/internal/config"
	"laborpulse/internal/infrastructure"
	"laborpulse/internal/pipeline"
	"laborpulse/internal/sources/fred"
	"laborpulse/internal/sources/openskills"
	"laborpulse/internal/storage"
)

func main() {
	baseline := flag.String("baseline", "", "baseline month override (YYYY-MM)")
	dataDir := flag.String("data", "", "data directory override")
	timeout := flag.Duration("timeout", 10*time.Minute, "overall cycle timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *baseline != "" {
		cfg.Metrics.BaselineMonth = *baseline
	}
	if *dataDir != "" {
		cfg.Storage.DataDir = *dataDir
		cfg.Storage.CSVDir = filepath.Join(*dataDir, "csv")
		cfg.Storage.SQLitePath = filepath.Join(*dataDir, "labor.db")
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := infrastructure.MustLogger(cfg.Logging)
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.Storage.CSVDir, 0o755); err != nil {
		logger.Error("Failed to create data directory", "error", err)
		os.Exit(1)
	}

	store := storage.NewCSVStore(cfg.Storage.CSVDir, logger)

	var mirror pipeline.TableMirror
	if cfg.Storage.UseSecondaryStorage {
		m, err := storage.OpenMirror(cfg.Storage.SQLitePath, logger)
		if err != nil {
			logger.Error("Failed to open secondary storage", "error", err)
			os.Exit(1)
		}
		defer m.Close()
		mirror = m
	}

	refresher := pipeline.New(cfg,
		fred.NewClient(cfg.FRED, logger),
		openskills.NewClient(cfg.Skills, logger),
		store,
		mirror,
		pipeline.NewTelemetry(prometheus.DefaultRegisterer),
		logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	summary, err := refresher.Run(ctx)
	if err != nil {
		logger.Error("Refresh failed", "error", err)
		os.Exit(1)
	}
	if len(summary.FailedSources) > 0 {
		logger.Warn("Refresh completed with degraded sources",
			"failed_sources", summary.FailedSources)
	}
}
