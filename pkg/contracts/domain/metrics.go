package domain

import (
	"time"
)

// MetricsRow is one month of the derived wide metrics table. Every metric is
// a pointer: nil means "no data" and is rendered as null downstream, never as
// zero. The whole table is regenerated from the series store on every build,
// so rows carry no state of their own.
type MetricsRow struct {
	Date              time.Time `json:"date" db:"date"`
	UnempRate         *float64  `json:"unemp_rate" db:"unemp_rate"`
	OpeningsIndex     *float64  `json:"openings_index" db:"openings_index"`
	HiresIndex        *float64  `json:"hires_index" db:"hires_index"`
	QuitsIndex        *float64  `json:"quits_index" db:"quits_index"`
	CPIIndex          *float64  `json:"cpi_index" db:"cpi_index"`
	RealOpeningsIndex *float64  `json:"real_openings_index" db:"real_openings_index"`
	YoYOpenings       *float64  `json:"yoy_openings" db:"yoy_openings"`
	YoYUnempRate      *float64  `json:"yoy_unrate" db:"yoy_unrate"`
}

// Float returns a pointer to v. Convenience for building nullable metrics.
func Float(v float64) *float64 {
	return &v
}
