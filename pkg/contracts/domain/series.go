package domain

import (
	"fmt"
	"time"
)

// SeriesObservation is a single monthly data point of a named economic series.
// At most one observation exists per (SeriesID, Date) pair; a later fetch of
// the same key supersedes the earlier value.
type SeriesObservation struct {
	SeriesID string    `json:"series_id" db:"series_id" validate:"required"`
	Date     time.Time `json:"date" db:"date" validate:"required"`
	Value    float64   `json:"value" db:"value"`
}

// Key returns the dedup key of the observation.
func (o SeriesObservation) Key() ObservationKey {
	return ObservationKey{SeriesID: o.SeriesID, Date: MonthOf(o.Date)}
}

// ObservationKey identifies an observation for merge purposes.
type ObservationKey struct {
	SeriesID string
	Date     time.Time
}

func (k ObservationKey) String() string {
	return fmt.Sprintf("%s@%s", k.SeriesID, k.Date.Format("2006-01"))
}

// MonthOf truncates a date to the first day of its month in UTC. All series
// in the store are monthly, so dates are aligned before comparison.
func MonthOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Tracked FRED series identifiers. UNRATE and CPIAUCSL are mandatory inputs
// for the metrics table; the JOLTS flow series are optional.
const (
	SeriesUnemployment = "UNRATE"   // Unemployment Rate
	SeriesOpenings     = "JTSJOL"   // Job Openings: Total Nonfarm
	SeriesHires        = "JTSHIL"   // Hires: Total Nonfarm
	SeriesQuits        = "JTSQUL"   // Quits: Total Nonfarm
	SeriesCPI          = "CPIAUCSL" // CPI, All Urban Consumers
)
