package volatility

import (
	"math"
	"sort"
	"time"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/pkg/logger"
)

// Analyzer classifies the option pricing regime and screens the chain for
// LEAPS candidates. HV is supplied by the technical pass so both sides of
// the ratio come from the same bar history.
type Analyzer struct {
	volCfg   scanconfig.Volatility
	leapsCfg scanconfig.Leaps
	logger   *logger.Logger
}

// NewAnalyzer creates a volatility and liquidity analyzer.
func NewAnalyzer(volCfg scanconfig.Volatility, leapsCfg scanconfig.Leaps, log *logger.Logger) *Analyzer {
	return &Analyzer{volCfg: volCfg, leapsCfg: leapsCfg, logger: log}
}

// Profile computes the IV/HV regime. Either side UNKNOWN, or HV at zero,
// leaves the ratio and regime UNKNOWN.
func (a *Analyzer) Profile(symbol string, atmIV, hv contracts.Metric) *contracts.VolatilityProfile {
	p := &contracts.VolatilityProfile{
		Symbol: symbol,
		ATMIV:  atmIV,
		HV:     hv,
		Regime: contracts.VolUnknown,
	}
	if atmIV.Unknown() || hv.Unknown() || hv.Value <= 0 {
		return p
	}

	ratio := atmIV.Value / hv.Value
	p.IVHVRatio = contracts.MetricOf(ratio)
	switch {
	case ratio < a.volCfg.CheapBelow:
		p.Regime = contracts.VolCheap
	case ratio > a.volCfg.ExpensiveAbove:
		p.Regime = contracts.VolExpensive
	default:
		p.Regime = contracts.VolFair
	}
	return p
}

// ATMIV extracts the implied volatility of the call nearest the spot price
// among contracts at or beyond the LEAPS expiry floor. UNKNOWN when the
// chain has no usable candidate.
func (a *Analyzer) ATMIV(chain *contracts.OptionChain, spot contracts.Metric, now time.Time) contracts.Metric {
	if chain.Empty() || spot.Unknown() || spot.Value <= 0 {
		return contracts.UnknownMetric
	}

	best := contracts.UnknownMetric
	bestDist := math.MaxFloat64
	for i := range chain.Contracts {
		c := &chain.Contracts[i]
		if c.Type != contracts.OptionCall || c.ImpliedVol.Unknown() {
			continue
		}
		if c.DaysToExpiry(now) < a.leapsCfg.MinDaysToExpiration {
			continue
		}
		dist := math.Abs(c.Strike - spot.Value)
		if dist < bestDist {
			bestDist = dist
			best = c.ImpliedVol
		}
	}
	return best
}

// Candidates filters the chain down to ranked LEAPS candidates. The filter
// is deterministic and idempotent: calls only, the expiry floor, open
// interest and volume floors, the spread ceiling, and the delta band. A
// contract with no provider delta falls back to the Black-Scholes model
// when its IV is known; with neither it is excluded. Rank 1 is the delta
// closest to the band midpoint, open interest breaking ties.
func (a *Analyzer) Candidates(chain *contracts.OptionChain, spot contracts.Metric, now time.Time) []contracts.LeapsCandidate {
	if chain.Empty() {
		return nil
	}

	cfg := a.leapsCfg
	mid := (cfg.DeltaMin + cfg.DeltaMax) / 2

	var out []contracts.LeapsCandidate
	for i := range chain.Contracts {
		c := chain.Contracts[i]
		if c.Type != contracts.OptionCall {
			continue
		}
		if c.Validate() != nil {
			continue
		}

		dte := c.DaysToExpiry(now)
		if dte < cfg.MinDaysToExpiration {
			continue
		}
		if c.OpenInt < cfg.MinOpenInterest || c.Volume < cfg.MinVolume {
			continue
		}

		midPrice := c.Mid()
		spread := c.SpreadPct()
		if midPrice.Unknown() || spread.Unknown() || spread.Value > cfg.MaxSpreadPct {
			continue
		}

		delta := c.Delta
		model := false
		if delta.Unknown() {
			if spot.Unknown() || c.ImpliedVol.Unknown() {
				continue
			}
			delta = CallDelta(spot.Value, c.Strike, cfg.RiskFreeRate, c.ImpliedVol.Value, float64(dte)/365.0)
			model = true
			if delta.Unknown() {
				continue
			}
		}
		if delta.Value < cfg.DeltaMin-cfg.DeltaEpsilon || delta.Value > cfg.DeltaMax+cfg.DeltaEpsilon {
			continue
		}

		out = append(out, contracts.LeapsCandidate{
			OptionContract: c,
			DaysToExp:      dte,
			MidPrice:       midPrice.Value,
			Spread:         spread.Value,
			DeltaUsed:      delta.Value,
			DeltaModel:     model,
		})
	}

	sortCandidates(out, mid)
	for i := range out {
		out[i].Rank = i + 1
	}

	a.logger.WithFields(map[string]interface{}{
		"underlying": chain.Underlying,
		"chain":      len(chain.Contracts),
		"candidates": len(out),
	}).Debug("leaps filter applied")

	return out
}

func sortCandidates(cands []contracts.LeapsCandidate, bandMid float64) {
	sort.SliceStable(cands, func(i, j int) bool {
		di := math.Abs(cands[i].DeltaUsed - bandMid)
		dj := math.Abs(cands[j].DeltaUsed - bandMid)
		if di != dj {
			return di < dj
		}
		return cands[i].OpenInt > cands[j].OpenInt
	})
}
