package analysis

import (
	"math"

	"github.com/leapscope/leapscope/internal/contracts"
)

// Indicator helpers over ascending daily bars. Each returns UNKNOWN when
// the series is too short; insufficient history is recovered locally and
// never surfaces as an error.

// tradingDaysPerYear annualizes daily volatility.
const tradingDaysPerYear = 252

func closes(bars []contracts.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

// sma returns the simple moving average of the last period values.
func sma(values []float64, period int) contracts.Metric {
	if period <= 0 || len(values) < period {
		return contracts.UnknownMetric
	}
	var sum float64
	for _, v := range values[len(values)-period:] {
		sum += v
	}
	return contracts.MetricOf(sum / float64(period))
}

// emaSeries returns the exponential moving average aligned to values.
// Entries before index period-1 are not meaningful; the series is seeded
// with the SMA of the first period values.
func emaSeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}
	out := make([]float64, len(values))
	var seed float64
	for _, v := range values[:period] {
		seed += v
	}
	seed /= float64(period)
	out[period-1] = seed

	k := 2.0 / (float64(period) + 1.0)
	for i := period; i < len(values); i++ {
		out[i] = values[i]*k + out[i-1]*(1-k)
	}
	return out
}

// ema returns the latest exponential moving average value.
func ema(values []float64, period int) contracts.Metric {
	series := emaSeries(values, period)
	if series == nil {
		return contracts.UnknownMetric
	}
	return contracts.MetricOf(series[len(series)-1])
}

// rsi returns the relative strength index over the last period changes.
func rsi(values []float64, period int) contracts.Metric {
	if period <= 0 || len(values) < period+1 {
		return contracts.UnknownMetric
	}

	var gains, losses float64
	start := len(values) - period
	for i := start; i < len(values); i++ {
		change := values[i] - values[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	if losses == 0 {
		return contracts.MetricOf(100)
	}
	rs := (gains / float64(period)) / (losses / float64(period))
	return contracts.MetricOf(100 - (100 / (1 + rs)))
}

// macd returns the MACD line and its signal line.
func macd(values []float64, fast, slow, signal int) (contracts.Metric, contracts.Metric) {
	if fast <= 0 || slow <= fast || len(values) < slow+signal {
		return contracts.UnknownMetric, contracts.UnknownMetric
	}

	fastSeries := emaSeries(values, fast)
	slowSeries := emaSeries(values, slow)

	// MACD line is defined from index slow-1 onward.
	line := make([]float64, 0, len(values)-slow+1)
	for i := slow - 1; i < len(values); i++ {
		line = append(line, fastSeries[i]-slowSeries[i])
	}

	signalSeries := emaSeries(line, signal)
	if signalSeries == nil {
		return contracts.MetricOf(line[len(line)-1]), contracts.UnknownMetric
	}
	return contracts.MetricOf(line[len(line)-1]), contracts.MetricOf(signalSeries[len(signalSeries)-1])
}

// bollinger returns the upper and lower bands.
func bollinger(values []float64, period int, stdMult float64) (contracts.Metric, contracts.Metric) {
	mid := sma(values, period)
	if mid.Unknown() {
		return contracts.UnknownMetric, contracts.UnknownMetric
	}

	var variance float64
	for _, v := range values[len(values)-period:] {
		d := v - mid.Value
		variance += d * d
	}
	std := math.Sqrt(variance / float64(period))

	return contracts.MetricOf(mid.Value + stdMult*std), contracts.MetricOf(mid.Value - stdMult*std)
}

// atr returns the average true range over the last period bars.
func atr(bars []contracts.Bar, period int) contracts.Metric {
	if period <= 0 || len(bars) < period+1 {
		return contracts.UnknownMetric
	}

	var sum float64
	start := len(bars) - period
	for i := start; i < len(bars); i++ {
		highLow := bars[i].High - bars[i].Low
		highClose := math.Abs(bars[i].High - bars[i-1].Close)
		lowClose := math.Abs(bars[i].Low - bars[i-1].Close)
		sum += math.Max(highLow, math.Max(highClose, lowClose))
	}
	return contracts.MetricOf(sum / float64(period))
}

// historicalVol returns annualized log-return volatility over the last
// window returns.
func historicalVol(values []float64, window int) contracts.Metric {
	if window <= 1 || len(values) < window+1 {
		return contracts.UnknownMetric
	}

	returns := make([]float64, 0, window)
	start := len(values) - window
	for i := start; i < len(values); i++ {
		if values[i-1] <= 0 || values[i] <= 0 {
			return contracts.UnknownMetric
		}
		returns = append(returns, math.Log(values[i]/values[i-1]))
	}

	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	var variance float64
	for _, r := range returns {
		d := r - mean
		variance += d * d
	}
	// Sample standard deviation.
	std := math.Sqrt(variance / float64(len(returns)-1))

	return contracts.MetricOf(std * math.Sqrt(tradingDaysPerYear))
}
