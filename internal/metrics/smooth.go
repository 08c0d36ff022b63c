package metrics

import (
	"laborpulse/pkg/contracts/domain"
)

// Smooth applies a trailing simple moving average of the given window to the
// index columns of the table. A smoothed value is produced only where the
// full window of source values is present; earlier rows and rows spanning a
// gap stay nil. The raw unemployment rate and the YoY columns are never
// smoothed. The input slice is not modified.
func Smooth(rows []domain.MetricsRow, window int) []domain.MetricsRow {
	if window <= 1 || len(rows) == 0 {
		return rows
	}

	out := make([]domain.MetricsRow, len(rows))
	copy(out, rows)

	for _, col := range smoothedColumns {
		for i := range rows {
			col.Set(&out[i], trailingMean(rows, col.Get, i, window))
		}
	}
	return out
}

// trailingMean averages the column over rows [i-window+1, i], nil unless
// every value in the window is present.
func trailingMean(rows []domain.MetricsRow, get func(*domain.MetricsRow) *float64, i, window int) *float64 {
	if i < window-1 {
		return nil
	}
	var sum float64
	for j := i - window + 1; j <= i; j++ {
		v := get(&rows[j])
		if v == nil {
			return nil
		}
		sum += *v
	}
	return domain.Float(sum / float64(window))
}
