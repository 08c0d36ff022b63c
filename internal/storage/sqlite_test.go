package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMirror(t *testing.T) *Mirror {
	t.Helper()
	mirror, err := OpenMirror(filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { mirror.Close() })
	return mirror
}

func TestReplaceTable_RoundTrip(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	err := mirror.ReplaceTable(ctx, SeriesValuesTable,
		[]string{"series_id", "date", "value"},
		[][]string{
			{"UNRATE", "2020-01-01", "3.5"},
			{"UNRATE", "2020-02-01", "3.6"},
		})
	require.NoError(t, err)

	rows, err := mirror.db.QueryContext(ctx,
		"SELECT series_id, date, value FROM series_values ORDER BY date")
	require.NoError(t, err)
	defer rows.Close()

	var got [][]string
	for rows.Next() {
		var a, b, c string
		require.NoError(t, rows.Scan(&a, &b, &c))
		got = append(got, []string{a, b, c})
	}
	require.NoError(t, rows.Err())
	require.Len(t, got, 2)
	assert.Equal(t, []string{"UNRATE", "2020-01-01", "3.5"}, got[0])
}

func TestReplaceTable_ReplacesPriorContents(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()
	cols := []string{"skill_id", "name", "category", "alt_labels", "source"}

	require.NoError(t, mirror.ReplaceTable(ctx, SkillsTaxonomyTable, cols,
		[][]string{{"KS1", "Go", "Programming", "", "src"}, {"KS2", "SQL", "Data", "", "src"}}))
	require.NoError(t, mirror.ReplaceTable(ctx, SkillsTaxonomyTable, cols,
		[][]string{{"KS3", "Rust", "Programming", "", "src"}}))

	var count int
	require.NoError(t, mirror.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM skills_taxonomy").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestReplaceTable_RejectsBadIdentifiers(t *testing.T) {
	mirror := newTestMirror(t)
	ctx := context.Background()

	err := mirror.ReplaceTable(ctx, "bad table", []string{"a"}, nil)
	assert.Error(t, err)

	err = mirror.ReplaceTable(ctx, "ok_table", []string{"a;drop"}, nil)
	assert.Error(t, err)
}

func TestReplaceTable_EmptyRecords(t *testing.T) {
	mirror := newTestMirror(t)

	err := mirror.ReplaceTable(context.Background(), MarketMetricsTable, []string{"date"}, nil)

	require.NoError(t, err)
	var count int
	require.NoError(t, mirror.db.QueryRow("SELECT COUNT(*) FROM market_metrics").Scan(&count))
	assert.Zero(t, count)
}
