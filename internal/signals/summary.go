package signals

import (
	"sort"
	"time"

	"laborpulse/pkg/contracts/domain"
)

// MetricChange reports a metric's latest value with month-over-month and
// year-over-year percentage changes; a change is nil when the comparison
// point is missing.
type MetricChange struct {
	Value          float64  `json:"value"`
	MoMChange      *float64 `json:"mom_change"`
	YoYChange      *float64 `json:"yoy_change"`
	Interpretation string   `json:"interpretation,omitempty"`
}

// Summary is the executive view of current market conditions, derived from
// the latest month with computable signals.
type Summary struct {
	Date               time.Time     `json:"date"`
	MarketState        string        `json:"market_state"`
	HiringOutlook      string        `json:"hiring_outlook"`
	RetentionRisk      string        `json:"retention_risk"`
	EmployerPowerIndex *MetricChange `json:"employer_power_index"`
	TalentVelocity     *MetricChange `json:"talent_velocity"`
	UnemploymentRate   *MetricChange `json:"unemployment_rate"`
}

// Summarize condenses the signal rows into the executive summary. It returns
// false when no row carries a computed signal. The comparison points are the
// previous row and the row twelve months back (clamped to the first row when
// the history is shorter, matching how dashboards show "since inception").
func Summarize(metrics []domain.MetricsRow, rows []Row) (Summary, bool) {
	if len(rows) == 0 {
		return Summary{}, false
	}
	metrics = sortedByDate(metrics)
	latest := len(rows) - 1
	prevMonth := max(latest-1, 0)
	prevYear := max(latest-12, 0)

	s := Summary{
		Date:          rows[latest].Date,
		MarketState:   rows[latest].MarketState,
		HiringOutlook: rows[latest].HiringOutlook,
		RetentionRisk: rows[latest].RetentionRisk,
	}

	if v := rows[latest].EmployerPowerIndex; v != nil {
		interpretation := "Employee advantage"
		if *v > 1 {
			interpretation = "Employer advantage"
		}
		s.EmployerPowerIndex = &MetricChange{
			Value:          round2(*v),
			MoMChange:      pctChange(rows[prevMonth].EmployerPowerIndex, v),
			YoYChange:      pctChange(rows[prevYear].EmployerPowerIndex, v),
			Interpretation: interpretation,
		}
	}
	if v := rows[latest].TalentVelocity; v != nil {
		interpretation := "Stable market"
		if *v > 1.2 {
			interpretation = "High movement"
		}
		s.TalentVelocity = &MetricChange{
			Value:          round2(*v),
			MoMChange:      pctChange(rows[prevMonth].TalentVelocity, v),
			YoYChange:      pctChange(rows[prevYear].TalentVelocity, v),
			Interpretation: interpretation,
		}
	}

	// Unemployment changes are in percentage points, not percent.
	if latest < len(metrics) {
		if v := metrics[latest].UnempRate; v != nil {
			s.UnemploymentRate = &MetricChange{
				Value:     *v,
				MoMChange: ppChange(metrics[prevMonth].UnempRate, v),
				YoYChange: ppChange(metrics[prevYear].UnempRate, v),
			}
		}
	}

	hasSignal := s.EmployerPowerIndex != nil || s.TalentVelocity != nil
	return s, hasSignal || s.UnemploymentRate != nil
}

func sortedByDate(metrics []domain.MetricsRow) []domain.MetricsRow {
	out := make([]domain.MetricsRow, len(metrics))
	copy(out, metrics)
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

func pctChange(prev, cur *float64) *float64 {
	if prev == nil || cur == nil || *prev == 0 {
		return nil
	}
	return domain.Float(round1((*cur / *prev - 1) * 100))
}

func ppChange(prev, cur *float64) *float64 {
	if prev == nil || cur == nil {
		return nil
	}
	return domain.Float(round1(*cur - *prev))
}
