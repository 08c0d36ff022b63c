// Package signals derives market-condition signals from the wide metrics
// table: the employer power index, talent velocity, and a per-month market
// state classification. Like the metrics table itself, the signals are pure
// derived computation — rebuilt in full from their inputs, nil wherever a
// required input is missing.
package signals

import (
	"math"
	"sort"
	"time"

	"laborpulse/pkg/contracts/domain"
)

// Row is one month of derived market signals.
type Row struct {
	Date time.Time `json:"date"`
	// EmployerPowerIndex scales around 1: above 1 is an employer's market
	// (hiring easier), below 1 an employee's market.
	EmployerPowerIndex *float64 `json:"employer_power_index"`
	// TalentVelocity measures how fast talent is moving; higher is a more
	// volatile, competitive market.
	TalentVelocity *float64 `json:"talent_velocity"`
	MarketState    string   `json:"market_state,omitempty"`
	HiringOutlook  string   `json:"hiring_outlook,omitempty"`
	RetentionRisk  string   `json:"retention_risk,omitempty"`
}

// Market state and outlook labels.
const (
	StateEmployerMarket = "EMPLOYER'S MARKET"
	StateEmployeeMarket = "EMPLOYEE'S MARKET"
	StateTransitioning  = "TRANSITIONING"

	OutlookFavorable   = "FAVORABLE"
	OutlookBalanced    = "BALANCED"
	OutlookChallenging = "CHALLENGING"

	RiskElevated = "ELEVATED"
	RiskNormal   = "NORMAL"
	RiskLow      = "LOW"
)

// Build derives one signal row per metrics row. Input order does not matter;
// output is sorted by date ascending.
func Build(metrics []domain.MetricsRow) []Row {
	rows := make([]domain.MetricsRow, len(metrics))
	copy(rows, metrics)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	epi := employerPowerIndex(rows)
	velocity := talentVelocity(rows)

	out := make([]Row, len(rows))
	for i := range rows {
		out[i] = Row{
			Date:               rows[i].Date,
			EmployerPowerIndex: epi[i],
			TalentVelocity:     velocity[i],
		}
		if epi[i] != nil && velocity[i] != nil {
			state := Classify(*epi[i], *velocity[i])
			out[i].MarketState = state.State
			out[i].HiringOutlook = state.HiringOutlook
			out[i].RetentionRisk = state.RetentionRisk
		}
	}
	return out
}

// employerPowerIndex computes (unemp_rate × seekers-per-opening) divided by
// (quits factor × a CPI-based wage growth proxy), normalized so the median
// month equals 1. A month missing any direct input stays nil; a missing CPI
// change falls back to an assumed 2% so sparse CPI history does not blank
// the whole series.
func employerPowerIndex(rows []domain.MetricsRow) []*float64 {
	byMonth := make(map[time.Time]int, len(rows))
	for i := range rows {
		byMonth[rows[i].Date] = i
	}

	raw := make([]*float64, len(rows))
	for i := range rows {
		row := &rows[i]
		if row.UnempRate == nil || row.OpeningsIndex == nil || *row.OpeningsIndex == 0 || row.QuitsIndex == nil {
			continue
		}
		seekersPerOpening := *row.UnempRate / (*row.OpeningsIndex / 100)
		quitsFactor := *row.QuitsIndex / 100

		wageGrowthProxy := 1.02
		if j, ok := byMonth[row.Date.AddDate(-1, 0, 0)]; ok {
			if row.CPIIndex != nil && rows[j].CPIIndex != nil && *rows[j].CPIIndex != 0 {
				wageGrowthProxy = *row.CPIIndex / *rows[j].CPIIndex
			}
		}

		denominator := quitsFactor * wageGrowthProxy
		if denominator == 0 {
			denominator = 1
		}
		raw[i] = domain.Float(*row.UnempRate * seekersPerOpening / denominator)
	}

	med, ok := median(raw)
	if !ok || med == 0 {
		return raw
	}
	for i, v := range raw {
		if v != nil {
			raw[i] = domain.Float(*v / med)
		}
	}
	return raw
}

// talentVelocity averages quits and hires movement over a trailing 3-month
// window (any available months count) and scales it by a momentum factor,
// the 3-month rate of change clipped to ±50%.
func talentVelocity(rows []domain.MetricsRow) []*float64 {
	movement := make([]*float64, len(rows))
	for i := range rows {
		if rows[i].QuitsIndex == nil || rows[i].HiresIndex == nil {
			continue
		}
		movement[i] = domain.Float((*rows[i].QuitsIndex/100 + *rows[i].HiresIndex/100) / 2)
	}

	out := make([]*float64, len(rows))
	for i := range rows {
		var sum float64
		var n int
		for j := max(0, i-2); j <= i; j++ {
			if movement[j] != nil {
				sum += *movement[j]
				n++
			}
		}
		if n == 0 {
			continue
		}
		rolled := sum / float64(n)

		momentum := 0.0
		if i >= 3 && movement[i] != nil && movement[i-3] != nil && *movement[i-3] != 0 {
			momentum = clip(*movement[i]/(*movement[i-3])-1, -0.5, 0.5)
		}
		out[i] = domain.Float(rolled * (1 + momentum))
	}
	return out
}

// State is the classification of one month's market conditions.
type State struct {
	State         string   `json:"state"`
	HiringOutlook string   `json:"hiring_outlook"`
	HiringScore   float64  `json:"hiring_score"`
	RetentionRisk string   `json:"retention_risk"`
	Volatility    string   `json:"volatility"`
	EPI           float64  `json:"epi"`
	Velocity      float64  `json:"velocity"`
	Advice        []string `json:"recommendations"`
}

// Classify maps an EPI/velocity pair onto a market state with strategic
// recommendations.
func Classify(epi, velocity float64) State {
	s := State{EPI: round2(epi), Velocity: round2(velocity)}

	switch {
	case epi > 1.5:
		s.HiringOutlook = OutlookFavorable
		s.HiringScore = round1(min((epi-1)*2, 3))
	case epi > 0.8:
		s.HiringOutlook = OutlookBalanced
	default:
		s.HiringOutlook = OutlookChallenging
		s.HiringScore = round1(max((epi-1)*2, -3))
	}

	switch {
	case velocity > 1.3:
		s.Volatility = "HIGH"
		s.RetentionRisk = RiskElevated
	case velocity > 0.9:
		s.Volatility = "MODERATE"
		s.RetentionRisk = RiskNormal
	default:
		s.Volatility = "LOW"
		s.RetentionRisk = RiskLow
	}

	switch {
	case s.HiringOutlook == OutlookFavorable && s.Volatility == "LOW":
		s.State = StateEmployerMarket
	case s.HiringOutlook == OutlookChallenging && s.Volatility == "HIGH":
		s.State = StateEmployeeMarket
	default:
		s.State = StateTransitioning
	}

	switch s.HiringOutlook {
	case OutlookFavorable:
		s.Advice = append(s.Advice,
			"Accelerate strategic hiring - conditions favorable",
			"Upgrade talent while availability is high")
	case OutlookChallenging:
		s.Advice = append(s.Advice,
			"Focus on retention - hiring will be difficult",
			"Review compensation competitiveness")
	}
	switch s.RetentionRisk {
	case RiskElevated:
		s.Advice = append(s.Advice,
			"Implement retention programs for key talent",
			"Monitor quit rates weekly, not monthly")
	case RiskLow:
		s.Advice = append(s.Advice,
			"Opportunity to optimize workforce costs",
			"Good time for organizational changes")
	}
	return s
}

func median(values []*float64) (float64, bool) {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if v != nil {
			present = append(present, *v)
		}
	}
	if len(present) == 0 {
		return 0, false
	}
	sort.Float64s(present)
	mid := len(present) / 2
	if len(present)%2 == 1 {
		return present[mid], true
	}
	return (present[mid-1] + present[mid]) / 2, true
}

func clip(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
