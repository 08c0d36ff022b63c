package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"laborpulse/internal/storage"
)

// HealthStatus reports service readiness and per-table state.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Tables    map[string]TableStatus `json:"tables"`
}

// TableStatus reports one persisted table.
type TableStatus struct {
	Present bool `json:"present"`
	Rows    int  `json:"rows"`
}

// HealthService reports whether the store has data to serve.
type HealthService struct {
	store  *storage.CSVStore
	logger *slog.Logger
}

// NewHealthService creates a HealthService over the given store.
func NewHealthService(store *storage.CSVStore, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		store:  store,
		logger: logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck reports per-table presence and row counts. Status is "ok" when
// the metrics table exists, "degraded" otherwise; the process itself serving
// the check is the liveness signal.
func (s *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Tables:    make(map[string]TableStatus),
	}
	for _, file := range []string{
		storage.SeriesValuesFile,
		storage.MarketMetricsFile,
		storage.SkillsTaxonomyFile,
	} {
		records, err := s.store.ReadTable(file)
		if err != nil {
			if !errors.Is(err, storage.ErrNotExist) {
				s.logger.ErrorContext(ctx, "health check read failed",
					slog.String("file", file),
					slog.String("error", err.Error()))
			}
			status.Tables[file] = TableStatus{}
			continue
		}
		status.Tables[file] = TableStatus{Present: true, Rows: len(records)}
	}
	if !status.Tables[storage.MarketMetricsFile].Present {
		status.Status = "degraded"
	}
	return status
}
