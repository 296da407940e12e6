package engine

import (
	"github.com/leapscope/leapscope/internal/contracts"
)

// technicalScore normalizes the technical report into a 0-100 sub-score.
// UNKNOWN exactly when the trend regime is UNKNOWN: without a trend read
// the rest of the report cannot anchor a directional conviction.
func technicalScore(r *contracts.TechnicalReport) contracts.Metric {
	if r == nil || r.Trend == contracts.TrendUnknown {
		return contracts.UnknownMetric
	}

	score := 50.0
	switch r.Trend {
	case contracts.TrendBullish:
		score += 30
	case contracts.TrendBearish:
		score -= 30
	}

	if !r.MomentumScore.Unknown() {
		score += (r.MomentumScore.Value - 50) * 0.4
	}
	if r.GoldenCross {
		score += 5
	}
	if r.DeathCross {
		score -= 5
	}

	return contracts.MetricOf(clamp(score, 0, 100))
}

// volatilityScore grades option pricing attractiveness from the IV/HV
// ratio: the cheaper the implied side, the better the long-premium entry.
func volatilityScore(p *contracts.VolatilityProfile) contracts.Metric {
	if p == nil || p.IVHVRatio.Unknown() {
		return contracts.UnknownMetric
	}
	switch ratio := p.IVHVRatio.Value; {
	case ratio <= 0.9:
		return contracts.MetricOf(90)
	case ratio <= 1.1:
		return contracts.MetricOf(80)
	case ratio <= 1.3:
		return contracts.MetricOf(65)
	case ratio <= 1.5:
		return contracts.MetricOf(50)
	default:
		return contracts.MetricOf(30)
	}
}

// liquidityScore grades the best surviving candidate. A missing chain is
// UNKNOWN; a real chain that produced zero candidates scores zero, which
// is an observed fact, not missing data.
func liquidityScore(chain *contracts.OptionChain, candidates []contracts.LeapsCandidate) contracts.Metric {
	if chain.Empty() {
		return contracts.UnknownMetric
	}
	if len(candidates) == 0 {
		return contracts.MetricOf(0)
	}

	best := candidates[0]
	oi := oiScore(best.OpenInt)
	spread := spreadScore(best.Spread)
	return contracts.MetricOf(oi*0.6 + spread*0.4)
}

func oiScore(oi int64) float64 {
	switch {
	case oi >= 1000:
		return 100
	case oi >= 500:
		return 85
	case oi >= 200:
		return 70
	case oi >= 100:
		return 55
	default:
		return 40
	}
}

func spreadScore(spread float64) float64 {
	switch {
	case spread <= 0.02:
		return 100
	case spread <= 0.05:
		return 85
	case spread <= 0.08:
		return 70
	default:
		return 55
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
