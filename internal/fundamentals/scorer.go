package fundamentals

import (
	"fmt"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/pkg/logger"
)

// Dimension names in FundamentalScore.Dimensions.
const (
	DimGrowth        = "growth"
	DimProfitability = "profitability"
	DimBalanceSheet  = "balance_sheet"
	DimStability     = "stability"
)

// Scorer turns a FundamentalSnapshot into a 0-100 health score. ETFs skip
// issuer-level metrics and receive the configured proxy score instead.
type Scorer struct {
	cfg    scanconfig.Fundamental
	logger *logger.Logger
}

// NewScorer creates a fundamental scorer.
func NewScorer(cfg scanconfig.Fundamental, log *logger.Logger) *Scorer {
	return &Scorer{cfg: cfg, logger: log}
}

// Score evaluates one symbol. A nil or empty snapshot on the EQUITY path
// yields an UNKNOWN overall score, not zero. Missing metrics inside a
// dimension never count against the symbol: each dimension averages its
// known metrics, and dimensions that are entirely UNKNOWN have their
// weights redistributed across the rest.
func (s *Scorer) Score(symbol string, class contracts.AssetClass, snap *contracts.FundamentalSnapshot) *contracts.FundamentalScore {
	if class == contracts.AssetETF {
		return &contracts.FundamentalScore{
			Symbol:     symbol,
			AssetClass: class,
			Overall:    contracts.MetricOf(s.cfg.ETFBypassScore),
			Bypass:     true,
			Notes:      []string{"ETF: issuer fundamentals not applicable, proxy score applied"},
		}
	}

	bp := s.cfg.Breakpoints
	dims := map[string]contracts.DimensionScore{
		DimGrowth: s.dimension(s.cfg.Weights.Growth, map[string]contracts.Metric{
			contracts.MetricRevenueGrowth:  s.scoreAtLeast(snap.Metric(contracts.MetricRevenueGrowth), bp.RevenueGrowthGood),
			contracts.MetricEarningsGrowth: s.scoreAtLeast(snap.Metric(contracts.MetricEarningsGrowth), bp.EarningsGrowthGood),
		}),
		DimProfitability: s.dimension(s.cfg.Weights.Profitability, map[string]contracts.Metric{
			contracts.MetricProfitMargin:   s.scoreAtLeast(snap.Metric(contracts.MetricProfitMargin), bp.NetMarginGood),
			contracts.MetricReturnOnEquity: s.scoreAtLeast(snap.Metric(contracts.MetricReturnOnEquity), bp.ROEGood),
		}),
		DimBalanceSheet: s.dimension(s.cfg.Weights.BalanceSheet, map[string]contracts.Metric{
			contracts.MetricDebtToEquity: s.scoreAtMost(snap.Metric(contracts.MetricDebtToEquity), bp.DebtToEquityMax),
			contracts.MetricCurrentRatio: s.scoreRatioFloor(snap.Metric(contracts.MetricCurrentRatio), bp.CurrentRatioMin),
		}),
		DimStability: s.dimension(s.cfg.Weights.Stability, map[string]contracts.Metric{
			contracts.MetricBeta:          s.scoreAtMost(snap.Metric(contracts.MetricBeta), bp.BetaMax),
			contracts.MetricOperatingCash: s.scorePositive(snap.Metric(contracts.MetricOperatingCash)),
		}),
	}

	terms := make([]contracts.Metric, 0, len(dims))
	weights := make([]float64, 0, len(dims))
	var notes []string
	for _, name := range []string{DimGrowth, DimProfitability, DimBalanceSheet, DimStability} {
		d := dims[name]
		terms = append(terms, d.Score)
		weights = append(weights, d.Weight)
		if d.Score.Unknown() {
			notes = append(notes, fmt.Sprintf("%s: no data, weight redistributed", name))
		}
	}

	overall := contracts.WeightedMean(terms, weights)
	if overall.Unknown() {
		notes = append(notes, "fundamentals unavailable")
	}

	s.logger.WithFields(map[string]interface{}{
		"symbol":  symbol,
		"overall": overall.String(),
	}).Debug("fundamental score computed")

	return &contracts.FundamentalScore{
		Symbol:     symbol,
		AssetClass: class,
		Overall:    overall,
		Dimensions: dims,
		Notes:      notes,
	}
}

// dimension averages the known metric sub-scores. All UNKNOWN leaves the
// dimension UNKNOWN so its weight can be redistributed.
func (s *Scorer) dimension(weight float64, metrics map[string]contracts.Metric) contracts.DimensionScore {
	var sum float64
	var n int
	for _, m := range metrics {
		if m.Unknown() {
			continue
		}
		sum += m.Value
		n++
	}

	score := contracts.UnknownMetric
	if n > 0 {
		score = contracts.MetricOf(sum / float64(n))
	}
	return contracts.DimensionScore{Score: score, Weight: weight, Metrics: metrics}
}

// scoreAtLeast grades a higher-is-better metric: full points at or above
// the breakpoint, half points when positive but below it.
func (s *Scorer) scoreAtLeast(m contracts.Metric, good float64) contracts.Metric {
	if m.Unknown() {
		return contracts.UnknownMetric
	}
	switch {
	case m.Value >= good:
		return contracts.MetricOf(100)
	case m.Value > 0:
		return contracts.MetricOf(50)
	default:
		return contracts.MetricOf(0)
	}
}

// scoreAtMost grades a lower-is-better metric: full points at or below the
// ceiling, half points within twice the ceiling.
func (s *Scorer) scoreAtMost(m contracts.Metric, max float64) contracts.Metric {
	if m.Unknown() {
		return contracts.UnknownMetric
	}
	switch {
	case m.Value <= max:
		return contracts.MetricOf(100)
	case m.Value <= 2*max:
		return contracts.MetricOf(50)
	default:
		return contracts.MetricOf(0)
	}
}

// scoreRatioFloor grades a coverage ratio: full points at or above the
// floor, half points above 1.0.
func (s *Scorer) scoreRatioFloor(m contracts.Metric, min float64) contracts.Metric {
	if m.Unknown() {
		return contracts.UnknownMetric
	}
	switch {
	case m.Value >= min:
		return contracts.MetricOf(100)
	case m.Value >= 1.0:
		return contracts.MetricOf(50)
	default:
		return contracts.MetricOf(0)
	}
}

func (s *Scorer) scorePositive(m contracts.Metric) contracts.Metric {
	if m.Unknown() {
		return contracts.UnknownMetric
	}
	if m.Value > 0 {
		return contracts.MetricOf(100)
	}
	return contracts.MetricOf(0)
}
