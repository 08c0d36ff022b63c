package metrics

import (
	"laborpulse/pkg/contracts/domain"
)

// indexColumn binds a source series to the wide-table index column derived
// from it. The builder iterates this table instead of mapping columns
// dynamically, so the output schema is fixed at compile time.
type indexColumn struct {
	SeriesID string
	Name     string
	Set      func(*domain.MetricsRow, *float64)
	Get      func(*domain.MetricsRow) *float64
}

// indexColumns enumerates every baseline-normalized index of the wide table.
var indexColumns = []indexColumn{
	{
		SeriesID: domain.SeriesOpenings,
		Name:     "openings_index",
		Set:      func(r *domain.MetricsRow, v *float64) { r.OpeningsIndex = v },
		Get:      func(r *domain.MetricsRow) *float64 { return r.OpeningsIndex },
	},
	{
		SeriesID: domain.SeriesHires,
		Name:     "hires_index",
		Set:      func(r *domain.MetricsRow, v *float64) { r.HiresIndex = v },
		Get:      func(r *domain.MetricsRow) *float64 { return r.HiresIndex },
	},
	{
		SeriesID: domain.SeriesQuits,
		Name:     "quits_index",
		Set:      func(r *domain.MetricsRow, v *float64) { r.QuitsIndex = v },
		Get:      func(r *domain.MetricsRow) *float64 { return r.QuitsIndex },
	},
	{
		SeriesID: domain.SeriesCPI,
		Name:     "cpi_index",
		Set:      func(r *domain.MetricsRow, v *float64) { r.CPIIndex = v },
		Get:      func(r *domain.MetricsRow) *float64 { return r.CPIIndex },
	},
}

// smoothedColumn identifies a column eligible for trailing-SMA smoothing.
// Only index-scale columns are listed; the raw unemployment rate is always
// served unsmoothed.
type smoothedColumn struct {
	Name string
	Set  func(*domain.MetricsRow, *float64)
	Get  func(*domain.MetricsRow) *float64
}

var smoothedColumns = []smoothedColumn{
	{
		Name: "openings_index",
		Set:  func(r *domain.MetricsRow, v *float64) { r.OpeningsIndex = v },
		Get:  func(r *domain.MetricsRow) *float64 { return r.OpeningsIndex },
	},
	{
		Name: "hires_index",
		Set:  func(r *domain.MetricsRow, v *float64) { r.HiresIndex = v },
		Get:  func(r *domain.MetricsRow) *float64 { return r.HiresIndex },
	},
	{
		Name: "quits_index",
		Set:  func(r *domain.MetricsRow, v *float64) { r.QuitsIndex = v },
		Get:  func(r *domain.MetricsRow) *float64 { return r.QuitsIndex },
	},
	{
		Name: "cpi_index",
		Set:  func(r *domain.MetricsRow, v *float64) { r.CPIIndex = v },
		Get:  func(r *domain.MetricsRow) *float64 { return r.CPIIndex },
	},
	{
		Name: "real_openings_index",
		Set:  func(r *domain.MetricsRow, v *float64) { r.RealOpeningsIndex = v },
		Get:  func(r *domain.MetricsRow) *float64 { return r.RealOpeningsIndex },
	},
}
