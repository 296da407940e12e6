package scanner

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/engine"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/pkg/logger"
)

// fakeProvider serves canned per-symbol data and records call counts.
type fakeProvider struct {
	series   map[string]*contracts.OHLCVSeries
	snaps    map[string]*contracts.FundamentalSnapshot
	classes  map[string]contracts.AssetClass
	chains   map[string]*contracts.OptionChain
	earnings map[string]*time.Time
	errs     map[string]error
}

func (f *fakeProvider) GetQuote(ctx context.Context, symbol string) (*contracts.Quote, error) {
	return &contracts.Quote{Symbol: symbol}, nil
}

func (f *fakeProvider) GetDailyHistory(ctx context.Context, symbol string, from, to time.Time) (*contracts.OHLCVSeries, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	if s, ok := f.series[symbol]; ok {
		return s, nil
	}
	return &contracts.OHLCVSeries{Symbol: symbol}, nil
}

func (f *fakeProvider) GetFundamentals(ctx context.Context, symbol string) (*contracts.FundamentalSnapshot, contracts.AssetClass, error) {
	class, ok := f.classes[symbol]
	if !ok {
		class = contracts.AssetEquity
	}
	return f.snaps[symbol], class, nil
}

func (f *fakeProvider) GetOptionChain(ctx context.Context, symbol string) (*contracts.OptionChain, error) {
	return f.chains[symbol], nil
}

func (f *fakeProvider) NextEarningsDate(ctx context.Context, symbol string) (*time.Time, error) {
	return f.earnings[symbol], nil
}

// freshSeries rises steadily and ends today so it passes the freshness
// check.
func freshSeries(symbol string, n int) *contracts.OHLCVSeries {
	bars := make([]contracts.Bar, n)
	start := time.Now().AddDate(0, 0, -n)
	price := 100.0
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			price *= 1.008
		} else {
			price *= 0.998
		}
		bars[i] = contracts.Bar{
			Date: start.AddDate(0, 0, i), Open: price, High: price * 1.005,
			Low: price * 0.995, Close: price, Volume: 1_000_000,
		}
	}
	return &contracts.OHLCVSeries{Symbol: symbol, Bars: bars}
}

func fullSnapshot(symbol string) *contracts.FundamentalSnapshot {
	return &contracts.FundamentalSnapshot{
		Symbol: symbol,
		Metrics: map[string]contracts.Metric{
			contracts.MetricRevenueGrowth:  contracts.MetricOf(0.15),
			contracts.MetricEarningsGrowth: contracts.MetricOf(0.12),
			contracts.MetricProfitMargin:   contracts.MetricOf(0.20),
			contracts.MetricReturnOnEquity: contracts.MetricOf(0.25),
			contracts.MetricDebtToEquity:   contracts.MetricOf(0.8),
			contracts.MetricCurrentRatio:   contracts.MetricOf(1.6),
			contracts.MetricBeta:           contracts.MetricOf(1.2),
			contracts.MetricOperatingCash:  contracts.MetricOf(2e9),
		},
	}
}

func liquidChain(symbol string, spot float64) *contracts.OptionChain {
	exp := time.Now().AddDate(0, 0, 420)
	mid := spot * 0.25
	return &contracts.OptionChain{
		Underlying: symbol,
		Contracts: []contracts.OptionContract{
			{
				Symbol: symbol + "-C", Underlying: symbol, Expiration: exp,
				Strike: spot * 0.8, Type: contracts.OptionCall,
				Bid: mid * 0.99, Ask: mid * 1.01, OpenInt: 800, Volume: 60,
				Delta: contracts.MetricOf(0.75), ImpliedVol: contracts.MetricOf(0.09),
			},
			{
				Symbol: symbol + "-ATM", Underlying: symbol, Expiration: exp,
				Strike: spot, Type: contracts.OptionCall,
				Bid: spot * 0.08, Ask: spot * 0.085, OpenInt: 500, Volume: 40,
				Delta: contracts.MetricOf(0.55), ImpliedVol: contracts.MetricOf(0.09),
			},
		},
	}
}

func testScanner(provider contracts.MarketDataProvider) *Scanner {
	log := logger.NewNop()
	return New(provider, engine.New(log), log, Options{Workers: 4})
}

func TestRunBatchIsolation(t *testing.T) {
	good := freshSeries("GOOD", 250)
	spot := good.LastClose().Value

	provider := &fakeProvider{
		series: map[string]*contracts.OHLCVSeries{"GOOD": good},
		snaps: map[string]*contracts.FundamentalSnapshot{
			"GOOD": fullSnapshot("GOOD"),
			"BROKEN": fullSnapshot("BROKEN"),
		},
		chains: map[string]*contracts.OptionChain{"GOOD": liquidChain("GOOD", spot)},
		errs:   map[string]error{"BROKEN": fmt.Errorf("provider outage")},
	}

	run, err := testScanner(provider).Run(context.Background(), []string{"GOOD", "BROKEN"}, scanconfig.Default())

	require.NoError(t, err)
	require.Len(t, run.Results, 2)

	bySymbol := map[string]contracts.ConvictionResult{}
	for _, r := range run.Results {
		bySymbol[r.Symbol] = r
	}
	// The healthy symbol is unaffected by its neighbor's outage.
	assert.Equal(t, contracts.DecisionGo, bySymbol["GOOD"].Decision)
	assert.Equal(t, contracts.DecisionNoGo, bySymbol["BROKEN"].Decision)
	broken := bySymbol["BROKEN"]
	assert.Equal(t, contracts.GateUnknown, broken.GateStatusOf(contracts.GateTrend))
}

func TestRunInvalidConfigIsBatchFatal(t *testing.T) {
	cfg := scanconfig.Default()
	cfg.Conviction.Weights.Technical = 0.99

	_, err := testScanner(&fakeProvider{}).Run(context.Background(), []string{"AAPL"}, cfg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid strategy config")
}

func TestRunStaleHistoryRejected(t *testing.T) {
	stale := freshSeries("OLD", 250)
	// Shift every bar back a month so the last one breaches the age cap.
	for i := range stale.Bars {
		stale.Bars[i].Date = stale.Bars[i].Date.AddDate(0, -1, 0)
	}

	provider := &fakeProvider{
		series: map[string]*contracts.OHLCVSeries{"OLD": stale},
		snaps:  map[string]*contracts.FundamentalSnapshot{"OLD": fullSnapshot("OLD")},
	}

	run, err := testScanner(provider).Run(context.Background(), []string{"OLD"}, scanconfig.Default())

	require.NoError(t, err)
	assert.Equal(t, contracts.GateUnknown, run.Results[0].GateStatusOf(contracts.GateTrend))
	assert.Equal(t, contracts.DecisionNoGo, run.Results[0].Decision)
}

func TestRunPopulatesTrail(t *testing.T) {
	s := testScanner(&fakeProvider{})

	_, err := s.Run(context.Background(), []string{"A", "B", "C"}, scanconfig.Default())

	require.NoError(t, err)
	assert.Equal(t, 3, s.Trail().Len())
}

func TestRunPortfolioSignals(t *testing.T) {
	series := freshSeries("AAPL", 250)
	provider := &fakeProvider{
		series: map[string]*contracts.OHLCVSeries{"AAPL": series},
	}

	log := logger.NewNop()
	s := New(provider, engine.New(log), log, Options{
		Positions: stubPositions{
			{
				ID: "pos-1", Symbol: "AAPL",
				Contract: contracts.OptionContract{
					Symbol: "AAPL-C", Type: contracts.OptionCall, Strike: 100,
					Expiration: time.Now().AddDate(0, 0, 400),
					Delta:      contracts.MetricOf(0.75),
				},
				Quantity: 1, CostBasis: 2000,
				CurrentMark: contracts.MetricOf(31),
			},
		},
	})

	signals, err := s.RunPortfolio(context.Background(), scanconfig.Default())

	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, contracts.SignalTakeProfit, signals[0].Type)
}

type stubPositions []contracts.Position

func (s stubPositions) OpenPositions(ctx context.Context) ([]contracts.Position, error) {
	return s, nil
}
