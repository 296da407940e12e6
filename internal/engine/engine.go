package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/leapscope/leapscope/internal/analysis"
	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/fundamentals"
	"github.com/leapscope/leapscope/internal/portfolio"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/internal/volatility"
	"github.com/leapscope/leapscope/pkg/logger"
)

// Engine combines the three analyzer outputs into a conviction score and a
// gated decision. It holds no per-symbol state: every evaluation is a pure
// function of its input snapshots and the supplied config, so symbols can
// fan out without coordination.
type Engine struct {
	logger *logger.Logger
}

// New creates a decision engine.
func New(log *logger.Logger) *Engine {
	return &Engine{logger: log}
}

// Evaluate scores one symbol at one timestamp. A structurally invalid
// series or chain yields a NO_GO result with an explicit rationale rather
// than an error: malformed input is isolated to the symbol, never the
// batch. earningsDate may be nil when no upcoming report is known.
func (e *Engine) Evaluate(
	symbol string,
	series *contracts.OHLCVSeries,
	snap *contracts.FundamentalSnapshot,
	class contracts.AssetClass,
	chain *contracts.OptionChain,
	earningsDate *time.Time,
	at time.Time,
	cfg *scanconfig.Config,
) *contracts.ConvictionResult {
	result := &contracts.ConvictionResult{
		Symbol:      symbol,
		AssetClass:  class,
		EvaluatedAt: at,
		Decision:    contracts.DecisionNoGo,
	}
	if hash, err := scanconfig.Hash(cfg); err == nil {
		result.ConfigHash = hash
	}

	if series != nil {
		if err := series.Validate(); err != nil {
			result.Rationale = []string{fmt.Sprintf("malformed input: %v", err)}
			e.logger.WithField("symbol", symbol).WithError(err).Warn("series rejected")
			return result
		}
	}

	var (
		techReport *contracts.TechnicalReport
		fundScore  *contracts.FundamentalScore
		volProfile *contracts.VolatilityProfile
		candidates []contracts.LeapsCandidate
	)

	// The fundamental path shares no data with the price-driven path, so
	// the two run concurrently. Volatility consumes the technical HV and
	// stays behind it.
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		techAnalyzer := analysis.NewAnalyzer(cfg.Technical, e.logger)
		volAnalyzer := volatility.NewAnalyzer(cfg.Volatility, cfg.Leaps, e.logger)

		spot := contracts.UnknownMetric
		hv := contracts.UnknownMetric
		if series != nil {
			techReport = techAnalyzer.Analyze(series, at)
			spot = techReport.Close
			hv = techReport.HV
		}

		atmIV := volAnalyzer.ATMIV(chain, spot, at)
		volProfile = volAnalyzer.Profile(symbol, atmIV, hv)
		candidates = volAnalyzer.Candidates(chain, spot, at)
	}()
	go func() {
		defer wg.Done()
		fundScore = fundamentals.NewScorer(cfg.Fundamental, e.logger).Score(symbol, class, snap)
	}()
	wg.Wait()

	result.Components = contracts.ComponentScores{
		Technical:   technicalScore(techReport),
		Fundamental: fundScore.Overall,
		Volatility:  volatilityScore(volProfile),
		Liquidity:   liquidityScore(chain, candidates),
	}
	result.Candidates = candidates

	w := cfg.Conviction.Weights
	result.Composite = contracts.WeightedMean(
		[]contracts.Metric{
			result.Components.Technical,
			result.Components.Fundamental,
			result.Components.Volatility,
			result.Components.Liquidity,
		},
		[]float64{w.Technical, w.Fundamental, w.Volatility, w.Liquidity},
	)
	result.Band = band(result.Composite, cfg.Conviction)

	result.Gates = evalGates(techReport, fundScore, volProfile, chain, candidates, cfg.Decision)
	result.Decision = decide(result.Gates)

	for _, g := range result.Gates {
		result.Rationale = append(result.Rationale, fmt.Sprintf("%s: %s - %s", g.Name, g.Status, g.Detail))
	}

	if result.Composite.Unknown() {
		result.Rationale = append(result.Rationale, "insufficient data: no sub-score could be computed")
	}

	if withinEarningsBuffer(earningsDate, at, cfg.Decision.EarningsBufferDays) {
		result.EarningsRisk = true
		days := int(earningsDate.Sub(at).Hours() / 24)
		if result.Decision == contracts.DecisionGo {
			result.Decision = contracts.DecisionWatch
			result.Rationale = append(result.Rationale,
				fmt.Sprintf("earnings risk: report in %d days, downgraded GO to WATCH", days))
		} else {
			result.Rationale = append(result.Rationale,
				fmt.Sprintf("earnings risk: report in %d days", days))
		}
	}

	e.logger.WithFields(map[string]interface{}{
		"symbol":    symbol,
		"decision":  result.Decision,
		"band":      result.Band,
		"composite": result.Composite.String(),
	}).Info("symbol evaluated")

	return result
}

// EvaluatePosition re-runs the technical analyzer against a position's
// underlying and feeds the report to the risk signal generator.
func (e *Engine) EvaluatePosition(
	pos *contracts.Position,
	series *contracts.OHLCVSeries,
	earningsDate *time.Time,
	at time.Time,
	cfg *scanconfig.Config,
) []contracts.ManagementSignal {
	var techReport *contracts.TechnicalReport
	if series != nil && series.Validate() == nil {
		techReport = analysis.NewAnalyzer(cfg.Technical, e.logger).Analyze(series, at)
	}

	gen := portfolio.NewGenerator(cfg.Portfolio, cfg.Decision.EarningsBufferDays, e.logger)
	return gen.Signals(pos, techReport, earningsDate, at)
}

// band maps a composite score onto its conviction band. UNKNOWN has none.
func band(composite contracts.Metric, cfg scanconfig.Conviction) contracts.Band {
	if composite.Unknown() {
		return contracts.BandNone
	}
	switch {
	case composite.Value >= cfg.StrongThreshold:
		return contracts.BandStrong
	case composite.Value >= cfg.ModerateThreshold:
		return contracts.BandModerate
	default:
		return contracts.BandWeak
	}
}

func withinEarningsBuffer(earningsDate *time.Time, at time.Time, bufferDays int) bool {
	if earningsDate == nil || bufferDays <= 0 {
		return false
	}
	if earningsDate.Before(at) {
		return false
	}
	return earningsDate.Sub(at) <= time.Duration(bufferDays)*24*time.Hour
}
