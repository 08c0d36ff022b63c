// Command server exposes the persisted labor-market tables over a read-only
// HTTP API: the derived metrics table, the skills taxonomy, health, and
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"laborpulse/internal/config"
	"laborpulse/internal/infrastructure"
	"laborpulse/internal/services"
	"laborpulse/internal/storage"
	transport "laborpulse/internal/transport/http"
)

func main() {
	port := flag.Int("port", 0, "listen port override")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	logger := infrastructure.MustLogger(cfg.Logging)
	slog.SetDefault(logger)

	store := storage.NewCSVStore(cfg.Storage.CSVDir, logger)
	router := transport.NewRouter(transport.RouterOptions{
		Data:              services.NewDataService(cfg, store, logger),
		Health:            services.NewHealthService(store, logger),
		Gatherer:          prometheus.DefaultGatherer,
		RequestsPerSecond: cfg.Server.RateLimitRPS,
		Burst:             cfg.Server.RateLimitBurst,
		Logger:            logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}
}
