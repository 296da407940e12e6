package engine

import (
	"fmt"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/scanconfig"
)

// evalGates runs the three decision gates in order. Every gate records its
// measured value so the decision can be re-derived from the stored result
// alone.
func evalGates(
	tech *contracts.TechnicalReport,
	fund *contracts.FundamentalScore,
	vol *contracts.VolatilityProfile,
	chain *contracts.OptionChain,
	candidates []contracts.LeapsCandidate,
	gatesCfg scanconfig.DecisionGates,
) []contracts.GateResult {
	return []contracts.GateResult{
		trendGate(tech),
		fundamentalGate(fund, gatesCfg.MinFundamentalScore),
		volatilityGate(vol, chain, candidates, gatesCfg.MaxIVHVRatio),
	}
}

func trendGate(tech *contracts.TechnicalReport) contracts.GateResult {
	g := contracts.GateResult{Name: contracts.GateTrend}
	if tech == nil || tech.Trend == contracts.TrendUnknown {
		g.Status = contracts.GateUnknown
		g.Detail = "trend could not be determined (insufficient history)"
		return g
	}

	detail := fmt.Sprintf("trend %s (close %s, SMA fast %s, SMA slow %s)",
		tech.Trend, tech.Close, tech.SMAFast, tech.SMASlow)
	if tech.Trend == contracts.TrendBullish {
		g.Status = contracts.GatePass
	} else {
		g.Status = contracts.GateFail
	}
	g.Detail = detail
	return g
}

func fundamentalGate(fund *contracts.FundamentalScore, floor float64) contracts.GateResult {
	g := contracts.GateResult{Name: contracts.GateFundamental}
	if fund == nil || fund.Overall.Unknown() {
		g.Status = contracts.GateUnknown
		g.Detail = "fundamental score unavailable"
		return g
	}

	if fund.Bypass {
		g.Status = contracts.GatePass
		g.Detail = fmt.Sprintf("ETF proxy score %.0f", fund.Overall.Value)
		return g
	}

	if fund.Overall.Value >= floor {
		g.Status = contracts.GatePass
	} else {
		g.Status = contracts.GateFail
	}
	g.Detail = fmt.Sprintf("fundamental score %.1f vs floor %.0f", fund.Overall.Value, floor)
	return g
}

// volatilityGate combines regime and candidate availability. A missing
// ratio or a missing chain leaves the gate UNKNOWN; an expensive regime or
// an empty candidate list from real data fails it.
func volatilityGate(
	vol *contracts.VolatilityProfile,
	chain *contracts.OptionChain,
	candidates []contracts.LeapsCandidate,
	maxRatio float64,
) contracts.GateResult {
	g := contracts.GateResult{Name: contracts.GateVolatility}

	if vol == nil || vol.IVHVRatio.Unknown() {
		g.Status = contracts.GateUnknown
		g.Detail = "IV/HV ratio unavailable"
		return g
	}
	if chain.Empty() {
		g.Status = contracts.GateUnknown
		g.Detail = fmt.Sprintf("IV/HV %.2f, option chain unavailable", vol.IVHVRatio.Value)
		return g
	}

	if vol.IVHVRatio.Value > maxRatio {
		g.Status = contracts.GateFail
		g.Detail = fmt.Sprintf("IV/HV %.2f above ceiling %.2f", vol.IVHVRatio.Value, maxRatio)
		return g
	}
	if len(candidates) == 0 {
		g.Status = contracts.GateFail
		g.Detail = fmt.Sprintf("IV/HV %.2f within ceiling, no LEAPS candidates", vol.IVHVRatio.Value)
		return g
	}

	g.Status = contracts.GatePass
	g.Detail = fmt.Sprintf("IV/HV %.2f within ceiling %.2f, %d LEAPS candidates",
		vol.IVHVRatio.Value, maxRatio, len(candidates))
	return g
}

// decide maps gate results onto a decision. An explicit trend or
// fundamental failure is NO_GO; a missing read on any gate is also NO_GO
// since unknown never passes. Only a real volatility or liquidity failure
// after the first two gates pass earns a WATCH.
func decide(gates []contracts.GateResult) contracts.Decision {
	byName := make(map[string]contracts.GateStatus, len(gates))
	for _, g := range gates {
		byName[g.Name] = g.Status
	}

	trend := byName[contracts.GateTrend]
	fund := byName[contracts.GateFundamental]
	vol := byName[contracts.GateVolatility]

	if trend == contracts.GateFail || fund == contracts.GateFail {
		return contracts.DecisionNoGo
	}
	if trend == contracts.GateUnknown || fund == contracts.GateUnknown {
		return contracts.DecisionNoGo
	}

	switch vol {
	case contracts.GatePass:
		return contracts.DecisionGo
	case contracts.GateFail:
		return contracts.DecisionWatch
	default:
		return contracts.DecisionNoGo
	}
}
