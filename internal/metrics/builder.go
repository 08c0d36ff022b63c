// Package metrics derives the wide market-metrics table from the long series
// store: pivot to one row per month, normalize flow series to a baseline
// period, deflate openings by relative CPI, and compute year-over-year
// deltas. The table is rebuilt in full on every call; it carries no state of
// its own.
package metrics

import (
	"sort"
	"time"

	"laborpulse/pkg/contracts/domain"
)

// BaselineAnchorNearestPrior names the baseline fallback policy implemented
// by the builder: the anchor is the latest observation at or before the
// baseline month; if none exists, the earliest observation after it. A
// series with no observations, or whose anchor value is zero, gets nil for
// every index value rather than an error.
const BaselineAnchorNearestPrior = "nearest-prior-then-first-after"

// BuildOptions parameterizes a build. The same store contents and options
// always produce bit-identical output.
type BuildOptions struct {
	// Baseline is the month normalized to 100.
	Baseline time.Time
	// SmoothingWindow, when greater than 1, applies a trailing simple
	// moving average of that many months to the index columns only. Zero
	// or one leaves the table unsmoothed; persisted tables are always
	// written unsmoothed.
	SmoothingWindow int
}

// Build derives the wide metrics table from the observations. One row is
// produced per distinct month present in any series; a metric is nil wherever
// its required inputs are missing. Missing inputs are never fabricated.
func Build(observations []domain.SeriesObservation, opts BuildOptions) []domain.MetricsRow {
	p := pivot(observations)
	if len(p.months) == 0 {
		return nil
	}
	baseline := domain.MonthOf(opts.Baseline)

	// Baseline-normalized indices per series, computed once over the whole
	// history so every row sees the same anchor.
	indexed := make(map[string]map[time.Time]*float64, len(indexColumns))
	for _, col := range indexColumns {
		indexed[col.SeriesID] = indexSeries(p.values[col.SeriesID], baseline)
	}

	rows := make([]domain.MetricsRow, 0, len(p.months))
	for _, month := range p.months {
		row := domain.MetricsRow{Date: month}

		if v, ok := p.values[domain.SeriesUnemployment][month]; ok {
			row.UnempRate = domain.Float(v)
		}
		for _, col := range indexColumns {
			col.Set(&row, indexed[col.SeriesID][month])
		}
		row.RealOpeningsIndex = deflate(row.OpeningsIndex, row.CPIIndex)
		row.YoYOpenings = yearOverYearPtr(indexed[domain.SeriesOpenings], month)
		row.YoYUnempRate = yearOverYear(p.values[domain.SeriesUnemployment], month)

		rows = append(rows, row)
	}

	if opts.SmoothingWindow > 1 {
		rows = Smooth(rows, opts.SmoothingWindow)
	}
	return rows
}

// pivoted holds the long store reshaped to series → month → value plus the
// sorted union of all months.
type pivoted struct {
	values map[string]map[time.Time]float64
	months []time.Time
}

func pivot(observations []domain.SeriesObservation) pivoted {
	values := make(map[string]map[time.Time]float64)
	monthSet := make(map[time.Time]struct{})

	for _, obs := range observations {
		month := domain.MonthOf(obs.Date)
		bySeries, ok := values[obs.SeriesID]
		if !ok {
			bySeries = make(map[time.Time]float64)
			values[obs.SeriesID] = bySeries
		}
		// Last value wins within a batch, matching merge semantics.
		bySeries[month] = obs.Value
		monthSet[month] = struct{}{}
	}

	months := make([]time.Time, 0, len(monthSet))
	for month := range monthSet {
		months = append(months, month)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	return pivoted{values: values, months: months}
}

// indexSeries rescales a series so the baseline anchor equals 100. Months
// without a source value map to nil; an unresolvable anchor makes the whole
// column nil.
func indexSeries(values map[time.Time]float64, baseline time.Time) map[time.Time]*float64 {
	out := make(map[time.Time]*float64, len(values))
	anchor, ok := anchorValue(values, baseline)
	if !ok {
		return out
	}
	for month, v := range values {
		out[month] = domain.Float(100 * v / anchor)
	}
	return out
}

// anchorValue resolves the baseline anchor per BaselineAnchorNearestPrior.
// A zero anchor is unusable: indices are ratios and would divide by zero.
func anchorValue(values map[time.Time]float64, baseline time.Time) (float64, bool) {
	var (
		prior, after         time.Time
		havePrior, haveAfter bool
	)
	for month := range values {
		if !month.After(baseline) {
			if !havePrior || month.After(prior) {
				prior, havePrior = month, true
			}
		} else {
			if !haveAfter || month.Before(after) {
				after, haveAfter = month, true
			}
		}
	}

	var anchor float64
	switch {
	case havePrior:
		anchor = values[prior]
	case haveAfter:
		anchor = values[after]
	default:
		return 0, false
	}
	if anchor == 0 {
		return 0, false
	}
	return anchor, true
}

// deflate rescales the nominal openings index by relative CPI, keeping the
// 100-based scale. This approximates inflation-adjusted demand; it is not a
// precise deflator.
func deflate(openingsIndex, cpiIndex *float64) *float64 {
	if openingsIndex == nil || cpiIndex == nil || *cpiIndex == 0 {
		return nil
	}
	return domain.Float(*openingsIndex * 100 / *cpiIndex)
}

// yearOverYear computes the percentage change against the same month one
// year earlier, nil when the prior-year point is absent or zero.
func yearOverYear(values map[time.Time]float64, month time.Time) *float64 {
	if values == nil {
		return nil
	}
	current, ok := values[month]
	if !ok {
		return nil
	}
	prev, ok := values[month.AddDate(-1, 0, 0)]
	if !ok || prev == 0 {
		return nil
	}
	return domain.Float(100 * (current - prev) / prev)
}

// yearOverYearPtr is yearOverYear over an already-indexed (nullable) series.
func yearOverYearPtr(values map[time.Time]*float64, month time.Time) *float64 {
	if values == nil {
		return nil
	}
	current := values[month]
	prev := values[month.AddDate(-1, 0, 0)]
	if current == nil || prev == nil || *prev == 0 {
		return nil
	}
	return domain.Float(100 * (*current - *prev) / *prev)
}
