// Package services holds the read-side application services behind the HTTP
// transport: metrics queries, taxonomy access, and health reporting.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"laborpulse/internal/config"
	"laborpulse/internal/metrics"
	"laborpulse/internal/series"
	"laborpulse/internal/signals"
	"laborpulse/internal/skills"
	"laborpulse/internal/storage"
	"laborpulse/pkg/contracts/domain"
)

// ErrNoData indicates that no refresh has populated the store yet.
var ErrNoData = errors.New("no data available")

// ErrInvalidQuery indicates a metrics query that failed validation.
var ErrInvalidQuery = errors.New("invalid metrics query")

// MetricsQuery selects how the metrics table is derived. Zero values mean
// "serve the persisted table as-is".
type MetricsQuery struct {
	// Baseline overrides the configured baseline month, formatted 2006-01.
	Baseline string `validate:"omitempty,datetime=2006-01"`
	// Smoothing applies a trailing moving average of this window; 0 and 1
	// both mean no smoothing.
	Smoothing int `validate:"gte=0,lte=24"`
}

func (q MetricsQuery) isDefault() bool {
	return q.Baseline == "" && q.Smoothing <= 1
}

// DataService serves the persisted tables to the transport layer.
type DataService struct {
	cfg      *config.Config
	store    *storage.CSVStore
	validate *validator.Validate
	logger   *slog.Logger
}

// NewDataService creates a DataService over the given store.
func NewDataService(cfg *config.Config, store *storage.CSVStore, logger *slog.Logger) *DataService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DataService{
		cfg:      cfg,
		store:    store,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "data_service")),
	}
}

// GetMetrics returns the wide metrics table. The default query serves the
// persisted table; a baseline or smoothing override recomputes from the
// series store instead.
func (s *DataService) GetMetrics(ctx context.Context, query MetricsQuery) ([]domain.MetricsRow, error) {
	if err := s.validate.Struct(query); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}
	if query.isDefault() {
		return s.persistedMetrics(ctx)
	}
	return s.derivedMetrics(ctx, query)
}

func (s *DataService) persistedMetrics(ctx context.Context) ([]domain.MetricsRow, error) {
	records, err := s.store.ReadTable(storage.MarketMetricsFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("read metrics table: %w", err)
	}
	rows, dropped := metrics.DecodeCSV(records)
	if dropped > 0 {
		s.logger.WarnContext(ctx, "dropped malformed metrics rows",
			slog.Int("dropped", dropped))
	}
	return rows, nil
}

func (s *DataService) derivedMetrics(ctx context.Context, query MetricsQuery) ([]domain.MetricsRow, error) {
	records, err := s.store.ReadTable(storage.SeriesValuesFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, ErrNoData
		}
		return nil, fmt.Errorf("read series store: %w", err)
	}
	observations, dropped := series.DecodeCSV(records)
	if dropped > 0 {
		s.logger.WarnContext(ctx, "dropped malformed persisted observations",
			slog.Int("dropped", dropped))
	}

	baseline, err := s.cfg.Baseline()
	if err != nil {
		return nil, err
	}
	if query.Baseline != "" {
		baseline, err = time.Parse("2006-01", query.Baseline)
		if err != nil {
			return nil, fmt.Errorf("%w: baseline %q", ErrInvalidQuery, query.Baseline)
		}
	}
	return metrics.Build(observations, metrics.BuildOptions{
		Baseline:        baseline,
		SmoothingWindow: query.Smoothing,
	}), nil
}

// SignalsReport bundles the derived market-condition signals: the per-month
// rows, the trend scan, and the executive summary (nil when no month has a
// computable signal).
type SignalsReport struct {
	Rows    []signals.Row    `json:"rows"`
	Trends  signals.Trends   `json:"trends"`
	Summary *signals.Summary `json:"summary"`
}

// GetSignals derives market-condition signals from the persisted metrics
// table.
func (s *DataService) GetSignals(ctx context.Context) (SignalsReport, error) {
	rows, err := s.persistedMetrics(ctx)
	if err != nil {
		return SignalsReport{}, err
	}

	report := SignalsReport{
		Rows:   signals.Build(rows),
		Trends: signals.TrendSignals(rows, signals.DefaultTrendLookback),
	}
	if summary, ok := signals.Summarize(rows, report.Rows); ok {
		report.Summary = &summary
	}
	return report, nil
}

// GetSeriesIDs returns the distinct series identifiers in the store, sorted.
// A store that has never been refreshed yields an empty slice.
func (s *DataService) GetSeriesIDs(ctx context.Context) ([]string, error) {
	records, err := s.store.ReadTable(storage.SeriesValuesFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("read series store: %w", err)
	}
	observations, dropped := series.DecodeCSV(records)
	if dropped > 0 {
		s.logger.WarnContext(ctx, "dropped malformed persisted observations",
			slog.Int("dropped", dropped))
	}
	ids := series.SeriesIDs(observations)
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// GetSkills returns the skills taxonomy. A store that has never seen a
// taxonomy refresh yields an empty slice, not an error.
func (s *DataService) GetSkills(ctx context.Context) ([]domain.SkillRecord, error) {
	records, err := s.store.ReadTable(storage.SkillsTaxonomyFile)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return []domain.SkillRecord{}, nil
		}
		return nil, fmt.Errorf("read skills taxonomy: %w", err)
	}
	taxonomy, dropped := skills.DecodeCSV(records)
	if dropped > 0 {
		s.logger.WarnContext(ctx, "dropped malformed taxonomy rows",
			slog.Int("dropped", dropped))
	}
	if taxonomy == nil {
		taxonomy = []domain.SkillRecord{}
	}
	return taxonomy, nil
}
