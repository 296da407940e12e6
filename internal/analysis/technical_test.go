package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/pkg/logger"
)

func seriesFromCloses(symbol string, closes []float64) *contracts.OHLCVSeries {
	bars := make([]contracts.Bar, len(closes))
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, c := range closes {
		bars[i] = contracts.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   c,
			High:   c * 1.01,
			Low:    c * 0.99,
			Close:  c,
			Volume: 1_000_000,
		}
	}
	return &contracts.OHLCVSeries{Symbol: symbol, Bars: bars}
}

// risingCloses produces a strictly increasing price path long enough for the
// slow moving average.
func risingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 100 + float64(i)*0.5
	}
	return out
}

func fallingCloses(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 300 - float64(i)*0.5
	}
	return out
}

func testAnalyzer() *Analyzer {
	return NewAnalyzer(scanconfig.Default().Technical, logger.NewNop())
}

func TestAnalyzeBullishTrend(t *testing.T) {
	a := testAnalyzer()
	series := seriesFromCloses("AAPL", risingCloses(250))

	report := a.Analyze(series, time.Now())

	assert.Equal(t, contracts.TrendBullish, report.Trend)
	require.False(t, report.SMAFast.Unknown())
	require.False(t, report.SMASlow.Unknown())
	assert.Greater(t, report.SMAFast.Value, report.SMASlow.Value)
	assert.Greater(t, report.Close.Value, report.SMAFast.Value)
}

func TestAnalyzeBearishTrend(t *testing.T) {
	a := testAnalyzer()
	series := seriesFromCloses("XYZ", fallingCloses(250))

	report := a.Analyze(series, time.Now())

	assert.Equal(t, contracts.TrendBearish, report.Trend)
}

func TestAnalyzeShortHistoryTrendUnknown(t *testing.T) {
	a := testAnalyzer()
	// 60 bars: enough for SMA50 but not SMA200.
	series := seriesFromCloses("NEW", risingCloses(60))

	report := a.Analyze(series, time.Now())

	assert.Equal(t, contracts.TrendUnknown, report.Trend)
	assert.True(t, report.SMASlow.Unknown())
	// Fail-soft: the short-window indicators still come back.
	assert.False(t, report.SMAFast.Unknown())
	assert.False(t, report.RSI.Unknown())
	assert.False(t, report.BBUpper.Unknown())
}

func TestAnalyzeEmptySeries(t *testing.T) {
	a := testAnalyzer()
	series := &contracts.OHLCVSeries{Symbol: "EMPTY"}

	report := a.Analyze(series, time.Now())

	assert.Equal(t, contracts.TrendUnknown, report.Trend)
	assert.True(t, report.Close.Unknown())
	assert.True(t, report.RSI.Unknown())
	assert.True(t, report.MomentumScore.Unknown())
}

func TestRSIBounds(t *testing.T) {
	prices := risingCloses(40)
	got := rsi(prices, 14)
	require.False(t, got.Unknown())
	// All gains, no losses.
	assert.InDelta(t, 100.0, got.Value, 1e-9)

	got = rsi(fallingCloses(40), 14)
	require.False(t, got.Unknown())
	assert.InDelta(t, 0.0, got.Value, 1e-9)
}

func TestSMAInsufficientHistory(t *testing.T) {
	assert.True(t, sma([]float64{1, 2, 3}, 5).Unknown())

	got := sma([]float64{1, 2, 3, 4, 5}, 5)
	require.False(t, got.Unknown())
	assert.InDelta(t, 3.0, got.Value, 1e-9)
}

func TestHistoricalVolAnnualized(t *testing.T) {
	// Alternating +1%/-1% daily moves give a stable sample std.
	prices := make([]float64, 60)
	prices[0] = 100
	for i := 1; i < len(prices); i++ {
		if i%2 == 0 {
			prices[i] = prices[i-1] * 0.99
		} else {
			prices[i] = prices[i-1] * 1.01
		}
	}

	got := historicalVol(prices, 20)
	require.False(t, got.Unknown())
	// Daily std of ~1% log moves, annualized by sqrt(252).
	assert.InDelta(t, 0.01*math.Sqrt(252), got.Value, 0.02)
}

func TestHistoricalVolRejectsNonPositivePrices(t *testing.T) {
	prices := risingCloses(30)
	prices[10] = 0
	assert.True(t, historicalVol(prices, 25).Unknown())
}

func TestGoldenCrossDetection(t *testing.T) {
	cfg := scanconfig.Default().Technical
	cfg.SMAFast = 3
	cfg.SMASlow = 5
	a := NewAnalyzer(cfg, logger.NewNop())

	// Flat then a jump on the last bar pushes the fast MA over the slow.
	closes := []float64{100, 100, 100, 100, 100, 100, 100, 130}
	report := a.Analyze(seriesFromCloses("GC", closes), time.Now())

	assert.True(t, report.GoldenCross)
	assert.False(t, report.DeathCross)
}

func TestMomentumScoreUnknownWithoutInputs(t *testing.T) {
	a := testAnalyzer()
	report := &contracts.TechnicalReport{}
	assert.True(t, a.momentumScore(report).Unknown())
}

func TestMomentumScoreClamped(t *testing.T) {
	a := testAnalyzer()
	report := &contracts.TechnicalReport{
		RSI:        contracts.MetricOf(50),
		MACD:       contracts.MetricOf(1.2),
		MACDSignal: contracts.MetricOf(0.8),
	}

	got := a.momentumScore(report)
	require.False(t, got.Unknown())
	assert.GreaterOrEqual(t, got.Value, 0.0)
	assert.LessOrEqual(t, got.Value, 100.0)
	// Mid-band RSI with positive MACD above signal is strongly positive.
	assert.InDelta(t, 90.0, got.Value, 1e-9)
}

func TestMACDNeedsSlowPlusSignalBars(t *testing.T) {
	line, signal := macd(risingCloses(30), 12, 26, 9)
	assert.True(t, line.Unknown())
	assert.True(t, signal.Unknown())

	line, signal = macd(risingCloses(60), 12, 26, 9)
	assert.False(t, line.Unknown())
	assert.False(t, signal.Unknown())
	// Rising series: MACD positive.
	assert.Greater(t, line.Value, 0.0)
}
