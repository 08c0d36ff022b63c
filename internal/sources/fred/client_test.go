package fred

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"laborpulse/internal/config"
	"laborpulse/internal/sources"
	"laborpulse/pkg/contracts/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.FREDConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
	}, nil)
	return client, server
}

func TestFetchSeries_ParsesObservations(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UNRATE", r.URL.Query().Get("series_id"))
		assert.Equal(t, "json", r.URL.Query().Get("file_type"))
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))

		w.Write([]byte(`{"observations":[
			{"date":"2019-12-01","value":"3.6"},
			{"date":"2020-01-01","value":"3.5"}
		]}`))
	})

	result, err := client.FetchSeries(context.Background(), "UNRATE")

	require.NoError(t, err)
	assert.Zero(t, result.Dropped)
	require.Len(t, result.Observations, 2)
	assert.Equal(t, domain.SeriesObservation{
		SeriesID: "UNRATE",
		Date:     time.Date(2019, time.December, 1, 0, 0, 0, 0, time.UTC),
		Value:    3.6,
	}, result.Observations[0])
}

func TestFetchSeries_DropsMissingValueMarker(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"observations":[
			{"date":"2020-01-01","value":"3.5"},
			{"date":"2020-02-01","value":"."},
			{"date":"bogus","value":"3.6"}
		]}`))
	})

	result, err := client.FetchSeries(context.Background(), "UNRATE")

	require.NoError(t, err)
	assert.Equal(t, 2, result.Dropped)
	require.Len(t, result.Observations, 1)
	assert.Equal(t, 3.5, result.Observations[0].Value)
}

func TestFetchSeries_NotFound(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusNotFound} {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		})

		_, err := client.FetchSeries(context.Background(), "NOPE")

		require.Error(t, err)
		assert.True(t, sources.IsNotFound(err), "status %d must classify as not found", status)
		assert.False(t, sources.IsTransient(err))
	}
}

func TestFetchSeries_TransientOnServerError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.FetchSeries(context.Background(), "UNRATE")

	require.Error(t, err)
	assert.True(t, sources.IsTransient(err))
}

func TestFetchSeries_TransientOnNetworkError(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.FetchSeries(context.Background(), "UNRATE")

	require.Error(t, err)
	assert.True(t, sources.IsTransient(err))
}

func TestFetchSeries_TransientOnMalformedPayload(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	})

	_, err := client.FetchSeries(context.Background(), "UNRATE")

	require.Error(t, err)
	assert.True(t, sources.IsTransient(err))
}

func TestFetchSeries_ContextCancelled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchSeries(ctx, "UNRATE")
	require.Error(t, err)
}
