package openskills

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
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.SkillsConfig{URL: server.URL, Timeout: 5 * time.Second}, nil)
}

func TestFetch_ParsesTaxonomy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("id,name,type,alt_names\n" +
			"KS1,Go,Programming,golang; go lang\n" +
			"KS2,SQL,Data,\n"))
	})

	result, err := client.Fetch(context.Background())

	require.NoError(t, err)
	assert.Zero(t, result.Dropped)
	require.Len(t, result.Skills, 2)
	assert.Equal(t, "KS1", result.Skills[0].SkillID)
	assert.Equal(t, "Programming", result.Skills[0].Category)
	assert.Equal(t, []string{"golang", "go lang"}, result.Skills[0].AltLabels)
	assert.Equal(t, SourceName, result.Skills[0].Source)
}

func TestFetch_ColumnOrderIndependent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("name,id,type\nGo,KS1,Programming\n"))
	})

	result, err := client.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, result.Skills, 1)
	assert.Equal(t, "KS1", result.Skills[0].SkillID)
	assert.Equal(t, "Go", result.Skills[0].Name)
}

func TestFetch_DropsRowsWithoutID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("id,name,type\nKS1,Go,Programming\n,Nameless,X\n"))
	})

	result, err := client.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, result.Dropped)
	assert.Len(t, result.Skills, 1)
}

func TestFetch_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Fetch(context.Background())

	require.Error(t, err)
	assert.True(t, sources.IsNotFound(err))
}

func TestFetch_TransientOnServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Fetch(context.Background())

	require.Error(t, err)
	assert.True(t, sources.IsTransient(err))
}

func TestFetch_MissingIDColumn(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("foo,bar\n1,2\n"))
	})

	_, err := client.Fetch(context.Background())

	require.Error(t, err)
	assert.True(t, sources.IsTransient(err))
}
