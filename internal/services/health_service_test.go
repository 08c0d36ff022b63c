package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laborpulse/internal/metrics"
	"laborpulse/internal/storage"
)

func TestHealthCheck_EmptyStoreIsDegraded(t *testing.T) {
	store := storage.NewCSVStore(t.TempDir(), nil)
	svc := NewHealthService(store, nil)

	status := svc.HealthCheck(context.Background())

	assert.Equal(t, "degraded", status.Status)
	assert.False(t, status.Tables[storage.MarketMetricsFile].Present)
}

func TestHealthCheck_PopulatedStoreIsOK(t *testing.T) {
	store := storage.NewCSVStore(t.TempDir(), nil)
	require.NoError(t, store.WriteTable(storage.MarketMetricsFile, metrics.CSVHeaders,
		[][]string{{"2020-01-01", "3.5", "", "", "", "", "", "", ""}}))
	svc := NewHealthService(store, nil)

	status := svc.HealthCheck(context.Background())

	assert.Equal(t, "ok", status.Status)
	table := status.Tables[storage.MarketMetricsFile]
	assert.True(t, table.Present)
	assert.Equal(t, 1, table.Rows)
	assert.False(t, status.Timestamp.IsZero())
}
