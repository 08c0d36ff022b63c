// Package pipeline orchestrates one refresh cycle: fetch the tracked series,
// merge them into the long store, rebuild the wide metrics table, and update
// the skills taxonomy. The cycle is sequential and run-to-completion; each
// persisted table is replaced atomically, so an interrupted cycle leaves the
// prior state authoritative.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"laborpulse/internal/config"
	"laborpulse/internal/infrastructure"
	"laborpulse/internal/metrics"
	"laborpulse/internal/series"
	"laborpulse/internal/skills"
	"laborpulse/internal/sources"
	"laborpulse/internal/sources/fred"
	"laborpulse/internal/sources/openskills"
	"laborpulse/internal/storage"
	"laborpulse/pkg/contracts/domain"
)

// SeriesFetcher is the capability the pipeline needs from the FRED client.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, seriesID string) (fred.FetchResult, error)
}

// TaxonomyFetcher is the capability the pipeline needs from the skills source.
type TaxonomyFetcher interface {
	Fetch(ctx context.Context) (openskills.FetchResult, error)
}

// TableMirror is the optional secondary store; nil disables mirroring.
type TableMirror interface {
	ReplaceTable(ctx context.Context, table string, columns []string, records [][]string) error
}

// Refresher runs refresh cycles.
type Refresher struct {
	cfg       *config.Config
	fred      SeriesFetcher
	taxonomy  TaxonomyFetcher
	store     *storage.CSVStore
	mirror    TableMirror
	telemetry *Telemetry
	logger    *slog.Logger
}

// New creates a Refresher. mirror may be nil; telemetry may be nil, in which
// case instruments go to the default Prometheus registerer.
func New(cfg *config.Config, fredClient SeriesFetcher, taxonomy TaxonomyFetcher,
	store *storage.CSVStore, mirror TableMirror, telemetry *Telemetry, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.Default()
	}
	if telemetry == nil {
		telemetry = NewTelemetry(nil)
	}
	return &Refresher{
		cfg:       cfg,
		fred:      fredClient,
		taxonomy:  taxonomy,
		store:     store,
		mirror:    mirror,
		telemetry: telemetry,
		logger:    logger.With(slog.String("component", "refresher")),
	}
}

// Summary reports what a refresh cycle did.
type Summary struct {
	RunID         string
	SeriesRows    int
	MetricsRows   int
	SkillRows     int
	DroppedRows   int
	FailedSources []string
	Duration      time.Duration
}

// Run executes one refresh cycle. Source failures are tolerated per policy
// (mandatory sources fall back to persisted history; optional sources are
// skipped); only a persistence failure aborts the cycle.
func (r *Refresher) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()
	summary := &Summary{RunID: uuid.NewString()}
	ctx = infrastructure.WithRunID(ctx, summary.RunID)

	r.logger.InfoContext(ctx, "refresh started",
		slog.String("baseline", r.cfg.Metrics.BaselineMonth),
		slog.Bool("secondary_storage", r.mirror != nil))

	if err := r.refreshSeries(ctx, summary); err != nil {
		r.telemetry.RefreshTotal.WithLabelValues("failed").Inc()
		return nil, err
	}
	if err := r.refreshSkills(ctx, summary); err != nil {
		r.telemetry.RefreshTotal.WithLabelValues("failed").Inc()
		return nil, err
	}

	summary.Duration = time.Since(started)
	r.telemetry.RefreshDuration.Observe(summary.Duration.Seconds())
	r.telemetry.RefreshTotal.WithLabelValues("ok").Inc()

	r.logger.InfoContext(ctx, "refresh completed",
		slog.Int("series_rows", summary.SeriesRows),
		slog.Int("metrics_rows", summary.MetricsRows),
		slog.Int("skill_rows", summary.SkillRows),
		slog.Int("dropped_rows", summary.DroppedRows),
		slog.Any("failed_sources", summary.FailedSources),
		slog.Duration("duration", summary.Duration))
	return summary, nil
}

// refreshSeries runs the fetch→merge→persist→build path for the time series.
func (r *Refresher) refreshSeries(ctx context.Context, summary *Summary) error {
	existing := r.loadExistingSeries(ctx)

	var fetched []fetchedBatch
	for _, seriesID := range r.cfg.AllSeries() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("refresh cancelled: %w", err)
		}
		result, err := r.fred.FetchSeries(ctx, seriesID)
		if err != nil {
			r.recordSourceFailure(ctx, seriesID, err)
			summary.FailedSources = append(summary.FailedSources, seriesID)
			continue
		}
		if result.Dropped > 0 {
			r.telemetry.RowsDropped.WithLabelValues(seriesID).Add(float64(result.Dropped))
			summary.DroppedRows += result.Dropped
		}
		fetched = append(fetched, fetchedBatch{seriesID: seriesID, result: result})
	}

	merged := existing
	for _, batch := range fetched {
		merged = series.Merge(merged, batch.result.Observations)
	}
	summary.SeriesRows = len(merged)

	if err := r.store.WriteTable(storage.SeriesValuesFile, series.CSVHeaders, series.EncodeCSV(merged)); err != nil {
		return fmt.Errorf("persist series store: %w", err)
	}
	r.telemetry.RowsMerged.WithLabelValues(storage.SeriesValuesTable).Set(float64(len(merged)))
	r.mirrorTable(ctx, storage.SeriesValuesTable, series.CSVHeaders, series.EncodeCSV(merged))

	baseline, err := r.cfg.Baseline()
	if err != nil {
		return err
	}
	// The persisted wide table is always unsmoothed; smoothing is applied
	// by consumers on demand.
	rows := metrics.Build(merged, metrics.BuildOptions{Baseline: baseline})
	summary.MetricsRows = len(rows)

	if err := r.store.WriteTable(storage.MarketMetricsFile, metrics.CSVHeaders, metrics.EncodeCSV(rows)); err != nil {
		return fmt.Errorf("persist metrics table: %w", err)
	}
	r.telemetry.RowsMerged.WithLabelValues(storage.MarketMetricsTable).Set(float64(len(rows)))
	r.mirrorTable(ctx, storage.MarketMetricsTable, metrics.CSVHeaders, metrics.EncodeCSV(rows))
	return nil
}

type fetchedBatch struct {
	seriesID string
	result   fred.FetchResult
}

// refreshSkills runs the optional taxonomy path. A fetch failure leaves the
// persisted taxonomy untouched and never fails the cycle.
func (r *Refresher) refreshSkills(ctx context.Context, summary *Summary) error {
	existing := r.loadExistingSkills(ctx)

	result, err := r.taxonomy.Fetch(ctx)
	if err != nil {
		r.recordSourceFailure(ctx, openskills.SourceName, err)
		summary.FailedSources = append(summary.FailedSources, openskills.SourceName)
		summary.SkillRows = len(existing)
		return nil
	}
	if result.Dropped > 0 {
		r.telemetry.RowsDropped.WithLabelValues(openskills.SourceName).Add(float64(result.Dropped))
		summary.DroppedRows += result.Dropped
	}

	merged := skills.Merge(existing, result.Skills)
	summary.SkillRows = len(merged)

	if err := r.store.WriteTable(storage.SkillsTaxonomyFile, skills.CSVHeaders, skills.EncodeCSV(merged)); err != nil {
		return fmt.Errorf("persist skills taxonomy: %w", err)
	}
	r.telemetry.RowsMerged.WithLabelValues(storage.SkillsTaxonomyTable).Set(float64(len(merged)))
	r.mirrorTable(ctx, storage.SkillsTaxonomyTable, skills.CSVHeaders, skills.EncodeCSV(merged))
	return nil
}

func (r *Refresher) loadExistingSeries(ctx context.Context) []domain.SeriesObservation {
	records, err := r.store.ReadTable(storage.SeriesValuesFile)
	if err != nil {
		if !errors.Is(err, storage.ErrNotExist) {
			r.logger.ErrorContext(ctx, "failed to read series store, starting empty",
				slog.String("error", err.Error()))
		}
		return nil
	}
	observations, dropped := series.DecodeCSV(records)
	if dropped > 0 {
		r.logger.WarnContext(ctx, "dropped malformed persisted observations",
			slog.Int("dropped", dropped))
	}
	return observations
}

func (r *Refresher) loadExistingSkills(ctx context.Context) []domain.SkillRecord {
	records, err := r.store.ReadTable(storage.SkillsTaxonomyFile)
	if err != nil {
		if !errors.Is(err, storage.ErrNotExist) {
			r.logger.ErrorContext(ctx, "failed to read skills taxonomy, starting empty",
				slog.String("error", err.Error()))
		}
		return nil
	}
	taxonomy, dropped := skills.DecodeCSV(records)
	if dropped > 0 {
		r.logger.WarnContext(ctx, "dropped malformed persisted taxonomy rows",
			slog.Int("dropped", dropped))
	}
	return taxonomy
}

// recordSourceFailure logs a source failure with the severity the policy
// assigns it: errors for mandatory series, warnings for everything optional.
func (r *Refresher) recordSourceFailure(ctx context.Context, source string, err error) {
	kind := "unknown"
	switch {
	case sources.IsNotFound(err):
		kind = string(sources.FailureNotFound)
	case sources.IsTransient(err):
		kind = string(sources.FailureTransient)
	}
	r.telemetry.SourceFailures.WithLabelValues(source, kind).Inc()

	if r.cfg.IsMandatory(source) {
		r.logger.ErrorContext(ctx, "mandatory source unavailable, using persisted history",
			slog.String("source", source),
			slog.String("kind", kind),
			slog.String("error", err.Error()))
		return
	}
	r.logger.WarnContext(ctx, "optional source unavailable, skipping this cycle",
		slog.String("source", source),
		slog.String("kind", kind),
		slog.String("error", err.Error()))
}

// mirrorTable updates the secondary store when enabled. The mirror is
// best-effort: the CSVs are the source of truth, so a mirror failure is
// logged and the cycle continues.
func (r *Refresher) mirrorTable(ctx context.Context, table string, columns []string, records [][]string) {
	if r.mirror == nil {
		return
	}
	if err := r.mirror.ReplaceTable(ctx, table, columns, records); err != nil {
		r.logger.ErrorContext(ctx, "failed to mirror table",
			slog.String("table", table),
			slog.String("error", err.Error()))
	}
}
