package signals

import (
	"fmt"

	"laborpulse/pkg/contracts/domain"
)

// DefaultTrendLookback is the window, in months, the trend scan covers.
const DefaultTrendLookback = 6

// Trends lists notable movements over the lookback window.
type Trends struct {
	Signals []string `json:"signals"`
	Summary string   `json:"summary"`
}

// TrendSignals scans the last lookback months of the metrics table for
// movements large enough to signal a changing market: unemployment moving
// more than 0.5pp, quits momentum beyond 10%, and the openings-to-
// unemployment ratio shifting beyond 15%.
func TrendSignals(metrics []domain.MetricsRow, lookback int) Trends {
	if lookback <= 0 {
		lookback = DefaultTrendLookback
	}
	if len(metrics) < lookback {
		return Trends{Summary: "Insufficient data for trends"}
	}
	metrics = sortedByDate(metrics)
	recent := metrics[len(metrics)-lookback:]
	first, last := &recent[0], &recent[len(recent)-1]

	var found []string

	if first.UnempRate != nil && last.UnempRate != nil {
		change := *last.UnempRate - *first.UnempRate
		if change > 0.5 || change < -0.5 {
			direction := "rising"
			if change < 0 {
				direction = "falling"
			}
			found = append(found, fmt.Sprintf("Unemployment %s (%+.1fpp)", direction, change))
		}
	}

	if n := len(recent); n >= 4 {
		cur, prev := last.QuitsIndex, recent[n-4].QuitsIndex
		if cur != nil && prev != nil && *prev != 0 {
			change := *cur / *prev - 1
			if change > 0.1 || change < -0.1 {
				direction := "accelerating"
				if change < 0 {
					direction = "decelerating"
				}
				found = append(found, fmt.Sprintf("Quit rate %s (%+.0f%%)", direction, change*100))
			}
		}
	}

	if first.OpeningsIndex != nil && last.OpeningsIndex != nil &&
		first.UnempRate != nil && last.UnempRate != nil &&
		*first.UnempRate != 0 && *last.UnempRate != 0 && *first.OpeningsIndex != 0 {
		ratioStart := *first.OpeningsIndex / *first.UnempRate
		ratioEnd := *last.OpeningsIndex / *last.UnempRate
		change := ratioEnd/ratioStart - 1
		if change > 0.15 || change < -0.15 {
			direction := "tightening"
			if change < 0 {
				direction = "loosening"
			}
			found = append(found, fmt.Sprintf("Labor market %s (%+.0f%%)", direction, change*100))
		}
	}

	summary := "Market conditions stable"
	if len(found) > 0 {
		summary = joinSignals(found)
	}
	return Trends{Signals: found, Summary: summary}
}

func joinSignals(signals []string) string {
	out := signals[0]
	for _, s := range signals[1:] {
		out += " | " + s
	}
	return out
}
