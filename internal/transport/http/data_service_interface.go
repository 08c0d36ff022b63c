package http

import (
	"context"

	"laborpulse/internal/services"
	"laborpulse/pkg/contracts/domain"
)

// DataServiceInterface is the read-side capability the handlers need.
type DataServiceInterface interface {
	GetMetrics(ctx context.Context, query services.MetricsQuery) ([]domain.MetricsRow, error)
	GetSignals(ctx context.Context) (services.SignalsReport, error)
	GetSeriesIDs(ctx context.Context) ([]string, error)
	GetSkills(ctx context.Context) ([]domain.SkillRecord, error)
}

// HealthServiceInterface reports store readiness.
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
}
