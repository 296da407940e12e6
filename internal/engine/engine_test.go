package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/pkg/logger"
)

var evalTime = time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return New(logger.NewNop())
}

// bullishSeries rises about 0.3% a day with a small oscillation, enough
// bars for the slow moving average and a realized vol well under 15%.
func bullishSeries(symbol string, n int) *contracts.OHLCVSeries {
	bars := make([]contracts.Bar, n)
	start := evalTime.AddDate(0, 0, -n)
	price := 100.0
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			price *= 1.008
		} else {
			price *= 0.998
		}
		bars[i] = contracts.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   price,
			High:   price * 1.005,
			Low:    price * 0.995,
			Close:  price,
			Volume: 2_000_000,
		}
	}
	return &contracts.OHLCVSeries{Symbol: symbol, Bars: bars}
}

func strongFundamentals(symbol string) *contracts.FundamentalSnapshot {
	return &contracts.FundamentalSnapshot{
		Symbol: symbol,
		AsOf:   evalTime,
		Metrics: map[string]contracts.Metric{
			contracts.MetricRevenueGrowth:  contracts.MetricOf(0.18),
			contracts.MetricEarningsGrowth: contracts.MetricOf(0.15),
			contracts.MetricProfitMargin:   contracts.MetricOf(0.22),
			contracts.MetricReturnOnEquity: contracts.MetricOf(0.28),
			contracts.MetricDebtToEquity:   contracts.MetricOf(0.6),
			contracts.MetricCurrentRatio:   contracts.MetricOf(1.8),
			contracts.MetricBeta:           contracts.MetricOf(1.1),
			contracts.MetricOperatingCash:  contracts.MetricOf(3e9),
		},
	}
}

// liquidChain builds a chain around the series' last close: three calls in
// the delta band plus an ATM strike carrying the given implied vol.
func liquidChain(symbol string, spot float64, atmIV float64, deltas ...float64) *contracts.OptionChain {
	ch := &contracts.OptionChain{Underlying: symbol}
	for i, d := range deltas {
		strike := spot * (0.75 + 0.05*float64(i))
		mid := spot * 0.25
		ch.Contracts = append(ch.Contracts, contracts.OptionContract{
			Symbol:     symbol + "-C",
			Underlying: symbol,
			Expiration: evalTime.AddDate(0, 0, 420),
			Strike:     strike,
			Type:       contracts.OptionCall,
			Bid:        mid * 0.99,
			Ask:        mid * 1.01,
			OpenInt:    800,
			Volume:     60,
			Delta:      contracts.MetricOf(d),
			ImpliedVol: contracts.MetricOf(atmIV),
		})
	}
	// ATM strike: nearest the spot, sets the IV read.
	ch.Contracts = append(ch.Contracts, contracts.OptionContract{
		Symbol:     symbol + "-ATM",
		Underlying: symbol,
		Expiration: evalTime.AddDate(0, 0, 420),
		Strike:     spot,
		Type:       contracts.OptionCall,
		Bid:        spot * 0.08,
		Ask:        spot * 0.085,
		OpenInt:    500,
		Volume:     40,
		Delta:      contracts.MetricOf(0.55),
		ImpliedVol: contracts.MetricOf(atmIV),
	})
	return ch
}

// goFixture assembles inputs where all three gates pass.
func goFixture(symbol string) (*contracts.OHLCVSeries, *contracts.FundamentalSnapshot, *contracts.OptionChain) {
	series := bullishSeries(symbol, 250)
	spot := series.LastClose().Value
	// Realized vol of the fixture sits near 8%; IV 10% keeps the ratio FAIR.
	chain := liquidChain(symbol, spot, 0.10, 0.75, 0.72, 0.78)
	return series, strongFundamentals(symbol), chain
}

func TestEvaluateGoScenario(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, snap, chain := goFixture("AAPL")

	result := e.Evaluate("AAPL", series, snap, contracts.AssetEquity, chain, nil, evalTime, cfg)

	assert.Equal(t, contracts.DecisionGo, result.Decision)
	assert.Equal(t, contracts.GatePass, result.GateStatusOf(contracts.GateTrend))
	assert.Equal(t, contracts.GatePass, result.GateStatusOf(contracts.GateFundamental))
	assert.Equal(t, contracts.GatePass, result.GateStatusOf(contracts.GateVolatility))
	assert.False(t, result.EarningsRisk)
	require.False(t, result.Composite.Unknown())
	assert.GreaterOrEqual(t, result.Composite.Value, 0.0)
	assert.LessOrEqual(t, result.Composite.Value, 100.0)
	assert.NotEqual(t, contracts.BandNone, result.Band)
	assert.Len(t, result.Candidates, 3)
	assert.Len(t, result.Rationale, 3)
	assert.NotEmpty(t, result.ConfigHash)
}

func TestEvaluateCompositeIsDirectWeightedSum(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, snap, chain := goFixture("MSFT")

	result := e.Evaluate("MSFT", series, snap, contracts.AssetEquity, chain, nil, evalTime, cfg)

	c := result.Components
	require.False(t, c.Technical.Unknown())
	require.False(t, c.Fundamental.Unknown())
	require.False(t, c.Volatility.Unknown())
	require.False(t, c.Liquidity.Unknown())

	w := cfg.Conviction.Weights
	want := c.Technical.Value*w.Technical + c.Fundamental.Value*w.Fundamental +
		c.Volatility.Value*w.Volatility + c.Liquidity.Value*w.Liquidity
	assert.InDelta(t, want, result.Composite.Value, 1e-9)
}

func TestEvaluateNoCandidatesYieldsWatch(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, snap, _ := goFixture("NVDA")
	spot := series.LastClose().Value
	// Same chain shape but every delta is outside the band.
	chain := liquidChain("NVDA", spot, 0.10, 0.40, 0.45, 0.95)

	result := e.Evaluate("NVDA", series, snap, contracts.AssetEquity, chain, nil, evalTime, cfg)

	assert.Equal(t, contracts.DecisionWatch, result.Decision)
	assert.Equal(t, contracts.GateFail, result.GateStatusOf(contracts.GateVolatility))
	joined := ""
	for _, r := range result.Rationale {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "no LEAPS candidates")
}

func TestEvaluateExpensiveVolYieldsWatch(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, snap, _ := goFixture("TSLA")
	spot := series.LastClose().Value
	// IV 60% against ~8% realized: far past the ceiling.
	chain := liquidChain("TSLA", spot, 0.60, 0.75)

	result := e.Evaluate("TSLA", series, snap, contracts.AssetEquity, chain, nil, evalTime, cfg)

	assert.Equal(t, contracts.DecisionWatch, result.Decision)
	assert.Equal(t, contracts.GateFail, result.GateStatusOf(contracts.GateVolatility))
}

func TestEvaluateBearishTrendYieldsNoGo(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()

	// Invert the fixture path into a steady decline.
	series := bullishSeries("DOWN", 250)
	for i := range series.Bars {
		c := 400 - float64(i)
		series.Bars[i].Open = c
		series.Bars[i].High = c * 1.005
		series.Bars[i].Low = c * 0.995
		series.Bars[i].Close = c
	}
	spot := series.LastClose().Value
	chain := liquidChain("DOWN", spot, 0.10, 0.75)

	result := e.Evaluate("DOWN", series, strongFundamentals("DOWN"), contracts.AssetEquity, chain, nil, evalTime, cfg)

	assert.Equal(t, contracts.DecisionNoGo, result.Decision)
	assert.Equal(t, contracts.GateFail, result.GateStatusOf(contracts.GateTrend))
}

func TestEvaluateUnknownTrendNeverGo(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	// 60 bars: not enough for the slow MA, trend UNKNOWN.
	series := bullishSeries("IPO", 60)
	spot := series.LastClose().Value
	chain := liquidChain("IPO", spot, 0.10, 0.75)

	result := e.Evaluate("IPO", series, strongFundamentals("IPO"), contracts.AssetEquity, chain, nil, evalTime, cfg)

	assert.NotEqual(t, contracts.DecisionGo, result.Decision)
	assert.Equal(t, contracts.DecisionNoGo, result.Decision)
	assert.Equal(t, contracts.GateUnknown, result.GateStatusOf(contracts.GateTrend))
}

func TestEvaluateUnknownFundamentalsNeverGo(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, _, chain := goFixture("DARK")

	result := e.Evaluate("DARK", series, nil, contracts.AssetEquity, chain, nil, evalTime, cfg)

	assert.Equal(t, contracts.DecisionNoGo, result.Decision)
	assert.Equal(t, contracts.GateUnknown, result.GateStatusOf(contracts.GateFundamental))
}

func TestEvaluateLowFundamentalsYieldsNoGo(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, _, chain := goFixture("WEAK")
	snap := &contracts.FundamentalSnapshot{
		Symbol: "WEAK",
		Metrics: map[string]contracts.Metric{
			contracts.MetricRevenueGrowth:  contracts.MetricOf(-0.10),
			contracts.MetricEarningsGrowth: contracts.MetricOf(-0.20),
			contracts.MetricProfitMargin:   contracts.MetricOf(-0.05),
			contracts.MetricReturnOnEquity: contracts.MetricOf(-0.10),
			contracts.MetricDebtToEquity:   contracts.MetricOf(4.0),
			contracts.MetricCurrentRatio:   contracts.MetricOf(0.7),
			contracts.MetricBeta:           contracts.MetricOf(3.5),
			contracts.MetricOperatingCash:  contracts.MetricOf(-1e8),
		},
	}

	result := e.Evaluate("WEAK", series, snap, contracts.AssetEquity, chain, nil, evalTime, cfg)

	assert.Equal(t, contracts.DecisionNoGo, result.Decision)
	assert.Equal(t, contracts.GateFail, result.GateStatusOf(contracts.GateFundamental))
}

func TestEvaluateETFBypassWithoutFundamentals(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, _, chain := goFixture("SPY")

	result := e.Evaluate("SPY", series, nil, contracts.AssetETF, chain, nil, evalTime, cfg)

	assert.Equal(t, contracts.DecisionGo, result.Decision)
	require.False(t, result.Components.Fundamental.Unknown())
	assert.Equal(t, cfg.Fundamental.ETFBypassScore, result.Components.Fundamental.Value)
}

func TestEvaluateEarningsBufferDowngrade(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, snap, chain := goFixture("AMZN")

	near := evalTime.AddDate(0, 0, 3)
	result := e.Evaluate("AMZN", series, snap, contracts.AssetEquity, chain, &near, evalTime, cfg)
	assert.Equal(t, contracts.DecisionWatch, result.Decision)
	assert.True(t, result.EarningsRisk)
	// The gates themselves still read as all PASS.
	assert.Equal(t, contracts.GatePass, result.GateStatusOf(contracts.GateTrend))
	assert.Equal(t, contracts.GatePass, result.GateStatusOf(contracts.GateVolatility))

	far := evalTime.AddDate(0, 0, 40)
	result = e.Evaluate("AMZN", series, snap, contracts.AssetEquity, chain, &far, evalTime, cfg)
	assert.Equal(t, contracts.DecisionGo, result.Decision)
	assert.False(t, result.EarningsRisk)
}

func TestEvaluateEarningsOnlyAnnotatesNonGo(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, _, chain := goFixture("NOPE")

	near := evalTime.AddDate(0, 0, 3)
	result := e.Evaluate("NOPE", series, nil, contracts.AssetEquity, chain, &near, evalTime, cfg)

	// Fundamental gate UNKNOWN keeps this NO_GO; earnings risk never
	// changes a non-GO decision.
	assert.Equal(t, contracts.DecisionNoGo, result.Decision)
	assert.True(t, result.EarningsRisk)
}

func TestEvaluateMalformedSeriesIsolatedNoGo(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, snap, chain := goFixture("BAD")
	series.Bars[10].Close = -5

	result := e.Evaluate("BAD", series, snap, contracts.AssetEquity, chain, nil, evalTime, cfg)

	assert.Equal(t, contracts.DecisionNoGo, result.Decision)
	require.NotEmpty(t, result.Rationale)
	assert.Contains(t, result.Rationale[0], "malformed input")
}

func TestEvaluateNoDataAtAll(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()

	result := e.Evaluate("VOID", nil, nil, contracts.AssetEquity, nil, nil, evalTime, cfg)

	assert.Equal(t, contracts.DecisionNoGo, result.Decision)
	assert.True(t, result.Composite.Unknown())
	assert.Equal(t, contracts.BandNone, result.Band)
	joined := ""
	for _, r := range result.Rationale {
		joined += r + "\n"
	}
	assert.Contains(t, joined, "insufficient data")
}

func TestEvaluateDecisionRederivableFromGates(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()
	series, snap, chain := goFixture("META")

	result := e.Evaluate("META", series, snap, contracts.AssetEquity, chain, nil, evalTime, cfg)

	rederived := decide(result.Gates)
	assert.Equal(t, result.Decision, rederived)
}

func TestBandMapping(t *testing.T) {
	cfg := scanconfig.Default().Conviction

	assert.Equal(t, contracts.BandStrong, band(contracts.MetricOf(80), cfg))
	assert.Equal(t, contracts.BandStrong, band(contracts.MetricOf(75), cfg))
	assert.Equal(t, contracts.BandModerate, band(contracts.MetricOf(74.9), cfg))
	assert.Equal(t, contracts.BandModerate, band(contracts.MetricOf(50), cfg))
	assert.Equal(t, contracts.BandWeak, band(contracts.MetricOf(49.9), cfg))
	assert.Equal(t, contracts.BandNone, band(contracts.UnknownMetric, cfg))
}

func TestDecideTable(t *testing.T) {
	mk := func(trend, fund, vol contracts.GateStatus) []contracts.GateResult {
		return []contracts.GateResult{
			{Name: contracts.GateTrend, Status: trend},
			{Name: contracts.GateFundamental, Status: fund},
			{Name: contracts.GateVolatility, Status: vol},
		}
	}

	cases := []struct {
		name  string
		gates []contracts.GateResult
		want  contracts.Decision
	}{
		{"all_pass", mk(contracts.GatePass, contracts.GatePass, contracts.GatePass), contracts.DecisionGo},
		{"trend_fail", mk(contracts.GateFail, contracts.GatePass, contracts.GatePass), contracts.DecisionNoGo},
		{"fund_fail", mk(contracts.GatePass, contracts.GateFail, contracts.GatePass), contracts.DecisionNoGo},
		{"trend_unknown", mk(contracts.GateUnknown, contracts.GatePass, contracts.GatePass), contracts.DecisionNoGo},
		{"fund_unknown", mk(contracts.GatePass, contracts.GateUnknown, contracts.GatePass), contracts.DecisionNoGo},
		{"vol_fail", mk(contracts.GatePass, contracts.GatePass, contracts.GateFail), contracts.DecisionWatch},
		{"vol_unknown", mk(contracts.GatePass, contracts.GatePass, contracts.GateUnknown), contracts.DecisionNoGo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, decide(tc.gates))
		})
	}
}

func TestEvaluatePositionDelegates(t *testing.T) {
	e := testEngine()
	cfg := scanconfig.Default()

	pos := &contracts.Position{
		ID:     "pos-9",
		Symbol: "AAPL",
		Contract: contracts.OptionContract{
			Symbol:     "AAPL-C",
			Type:       contracts.OptionCall,
			Strike:     150,
			Expiration: evalTime.AddDate(0, 0, 400),
			Delta:      contracts.MetricOf(0.75),
		},
		Quantity:    1,
		CostBasis:   2000,
		CurrentMark: contracts.MetricOf(31), // +55%
	}

	signals := e.EvaluatePosition(pos, bullishSeries("AAPL", 250), nil, evalTime, cfg)

	require.Len(t, signals, 1)
	assert.Equal(t, contracts.SignalTakeProfit, signals[0].Type)
}
