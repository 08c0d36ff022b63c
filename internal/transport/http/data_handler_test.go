package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laborpulse/internal/services"
	"laborpulse/internal/signals"
	"laborpulse/pkg/contracts/domain"
)

type fakeDataService struct {
	metrics   []domain.MetricsRow
	signals   services.SignalsReport
	seriesIDs []string
	skills    []domain.SkillRecord
	err       error
	lastQuery services.MetricsQuery
}

func (f *fakeDataService) GetMetrics(_ context.Context, query services.MetricsQuery) ([]domain.MetricsRow, error) {
	f.lastQuery = query
	return f.metrics, f.err
}

func (f *fakeDataService) GetSignals(context.Context) (services.SignalsReport, error) {
	return f.signals, f.err
}

func (f *fakeDataService) GetSeriesIDs(context.Context) ([]string, error) {
	return f.seriesIDs, f.err
}

func (f *fakeDataService) GetSkills(context.Context) ([]domain.SkillRecord, error) {
	return f.skills, f.err
}

func serveData(t *testing.T, svc *fakeDataService, target string) *httptest.ResponseRecorder {
	t.Helper()
	handler := NewDataHandler(svc, nil)
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.Routes().ServeHTTP(rec, req)
	return rec
}

func TestGetMetrics_ServesRowsWithNulls(t *testing.T) {
	svc := &fakeDataService{metrics: []domain.MetricsRow{{
		Date:          time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		UnempRate:     domain.Float(3.5),
		OpeningsIndex: nil,
	}}}

	rec := serveData(t, svc, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Metrics []map[string]json.RawMessage `json:"metrics"`
		Count   int                          `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "3.5", string(body.Metrics[0]["unemp_rate"]))
	assert.Equal(t, "null", string(body.Metrics[0]["openings_index"]),
		"missing data must render as an explicit null")
}

func TestGetMetrics_ForwardsQueryOverrides(t *testing.T) {
	svc := &fakeDataService{}

	rec := serveData(t, svc, "/metrics?baseline=2015-06&smoothing=3")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.MetricsQuery{Baseline: "2015-06", Smoothing: 3}, svc.lastQuery)
}

func TestGetMetrics_NonIntegerSmoothing(t *testing.T) {
	rec := serveData(t, &fakeDataService{}, "/metrics?smoothing=lots")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestGetMetrics_InvalidQuery(t *testing.T) {
	svc := &fakeDataService{err: fmt.Errorf("%w: baseline", services.ErrInvalidQuery)}

	rec := serveData(t, svc, "/metrics?baseline=June")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetMetrics_NoData(t *testing.T) {
	svc := &fakeDataService{err: services.ErrNoData}

	rec := serveData(t, svc, "/metrics")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestGetMetrics_ServiceFailure(t *testing.T) {
	svc := &fakeDataService{err: errors.New("disk on fire")}

	rec := serveData(t, svc, "/metrics")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetSignals_ServesReport(t *testing.T) {
	svc := &fakeDataService{signals: services.SignalsReport{
		Rows: []signals.Row{{
			Date:               time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
			EmployerPowerIndex: domain.Float(1.2),
			MarketState:        signals.StateTransitioning,
		}},
		Trends: signals.Trends{Summary: "Market conditions stable"},
	}}

	rec := serveData(t, svc, "/signals")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"employer_power_index":1.2`)
	assert.Contains(t, rec.Body.String(), "Market conditions stable")
	assert.Contains(t, rec.Body.String(), `"summary":null`,
		"an absent executive summary is an explicit null")
}

func TestGetSignals_NoData(t *testing.T) {
	svc := &fakeDataService{err: services.ErrNoData}

	rec := serveData(t, svc, "/signals")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSignals_ServiceFailure(t *testing.T) {
	svc := &fakeDataService{err: errors.New("disk on fire")}

	rec := serveData(t, svc, "/signals")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetSeries_ServesIDs(t *testing.T) {
	svc := &fakeDataService{seriesIDs: []string{"CPIAUCSL", "UNRATE"}}

	rec := serveData(t, svc, "/series")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Series []string `json:"series"`
		Count  int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"CPIAUCSL", "UNRATE"}, body.Series)
	assert.Equal(t, 2, body.Count)
}

func TestGetSkills_EmptyTaxonomyIsNotAnError(t *testing.T) {
	svc := &fakeDataService{skills: []domain.SkillRecord{}}

	rec := serveData(t, svc, "/skills")

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Skills []domain.SkillRecord `json:"skills"`
		Count  int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Zero(t, body.Count)
	assert.NotNil(t, body.Skills)
}

func TestGetSkills_ServesRecords(t *testing.T) {
	svc := &fakeDataService{skills: []domain.SkillRecord{
		{SkillID: "KS1", Name: "Go", Category: "Programming", Source: "test"},
	}}

	rec := serveData(t, svc, "/skills")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"KS1"`)
}
