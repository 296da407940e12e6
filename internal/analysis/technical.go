package analysis

import (
	"time"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/pkg/logger"
)

// Analyzer derives the trend regime and momentum/volatility indicators from
// an OHLCV series. It is a pure transform: no I/O, no shared state, safe
// for concurrent per-symbol use.
type Analyzer struct {
	cfg    scanconfig.Technical
	logger *logger.Logger
}

// NewAnalyzer creates a technical analyzer.
func NewAnalyzer(cfg scanconfig.Technical, log *logger.Logger) *Analyzer {
	return &Analyzer{cfg: cfg, logger: log}
}

// Analyze builds a TechnicalReport. A series shorter than the slow MA
// yields trend UNKNOWN; each indicator that cannot be computed is UNKNOWN
// on its own field and the rest of the report is still produced.
func (a *Analyzer) Analyze(series *contracts.OHLCVSeries, asOf time.Time) *contracts.TechnicalReport {
	report := &contracts.TechnicalReport{
		Symbol: series.Symbol,
		AsOf:   asOf,
		Trend:  contracts.TrendUnknown,
		Close:  series.LastClose(),
	}

	prices := closes(series.Bars)

	report.SMAFast = sma(prices, a.cfg.SMAFast)
	report.SMASlow = sma(prices, a.cfg.SMASlow)
	report.EMAFast = ema(prices, a.cfg.EMAFast)
	report.EMASlow = ema(prices, a.cfg.EMASlow)
	report.RSI = rsi(prices, a.cfg.RSIPeriod)
	report.MACD, report.MACDSignal = macd(prices, a.cfg.MACDFast, a.cfg.MACDSlow, a.cfg.MACDSignal)
	report.BBUpper, report.BBLower = bollinger(prices, a.cfg.BollingerPeriod, a.cfg.BollingerStd)
	report.ATR = atr(series.Bars, a.cfg.ATRPeriod)
	report.HV = historicalVol(prices, a.cfg.HVWindow)

	report.Support = report.BBLower
	report.Resistance = report.BBUpper

	report.Trend = a.trend(report)
	report.GoldenCross, report.DeathCross = a.crosses(prices)
	report.MomentumScore = a.momentumScore(report)

	a.logger.WithFields(map[string]interface{}{
		"symbol": series.Symbol,
		"bars":   len(series.Bars),
		"trend":  report.Trend,
		"rsi":    report.RSI.String(),
	}).Debug("technical analysis complete")

	return report
}

// trend applies the moving-average stack rule: BULLISH iff
// close > SMAfast > SMAslow, BEARISH iff close < SMAfast < SMAslow,
// NEUTRAL otherwise, UNKNOWN when an input is missing.
func (a *Analyzer) trend(r *contracts.TechnicalReport) contracts.Trend {
	if r.Close.Unknown() || r.SMAFast.Unknown() || r.SMASlow.Unknown() {
		return contracts.TrendUnknown
	}
	switch {
	case r.Close.Value > r.SMAFast.Value && r.SMAFast.Value > r.SMASlow.Value:
		return contracts.TrendBullish
	case r.Close.Value < r.SMAFast.Value && r.SMAFast.Value < r.SMASlow.Value:
		return contracts.TrendBearish
	default:
		return contracts.TrendNeutral
	}
}

// crosses detects a fast/slow MA crossover on the latest bar.
func (a *Analyzer) crosses(prices []float64) (golden, death bool) {
	if len(prices) < a.cfg.SMASlow+1 {
		return false, false
	}

	currFast := sma(prices, a.cfg.SMAFast)
	currSlow := sma(prices, a.cfg.SMASlow)
	prevFast := sma(prices[:len(prices)-1], a.cfg.SMAFast)
	prevSlow := sma(prices[:len(prices)-1], a.cfg.SMASlow)

	if currFast.Unknown() || currSlow.Unknown() || prevFast.Unknown() || prevSlow.Unknown() {
		return false, false
	}

	golden = prevFast.Value <= prevSlow.Value && currFast.Value > currSlow.Value
	death = prevFast.Value >= prevSlow.Value && currFast.Value < currSlow.Value
	return golden, death
}

// momentumScore normalizes RSI and MACD into a 0-100 component using the
// configured bands. UNKNOWN when both inputs are missing.
func (a *Analyzer) momentumScore(r *contracts.TechnicalReport) contracts.Metric {
	if r.RSI.Unknown() && r.MACD.Unknown() {
		return contracts.UnknownMetric
	}

	score := 50.0

	if !r.RSI.Unknown() {
		rsiVal := r.RSI.Value
		switch {
		case rsiVal > a.cfg.RSIOverbought:
			score -= 15
		case rsiVal < a.cfg.RSIOversold:
			score += 5
		case rsiVal >= 40 && rsiVal <= 60:
			score += 15
		default:
			score += 10
		}
	}

	if !r.MACD.Unknown() {
		if r.MACD.Value > 0 {
			score += 10
		} else {
			score -= 5
		}
		if !r.MACDSignal.Unknown() {
			if r.MACD.Value > r.MACDSignal.Value {
				score += 15
			} else {
				score -= 10
			}
		}
	}

	return contracts.MetricOf(clamp(score, 0, 100))
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
