package contracts

import (
	"fmt"
	"time"
)

// AssetClass selects the fundamental scoring path.
type AssetClass string

const (
	AssetEquity AssetClass = "EQUITY"
	AssetETF    AssetClass = "ETF"
)

// Quote is a point-in-time price for an underlying.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Last      float64   `json:"last"`
	Timestamp time.Time `json:"timestamp"`
}

// Bar is one OHLCV observation.
type Bar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// OHLCVSeries is an ascending-by-date bar sequence. Immutable once fetched;
// analyzers never mutate it. Gaps are tolerated.
type OHLCVSeries struct {
	Symbol string `json:"symbol"`
	Bars   []Bar  `json:"bars"`
}

// Len returns the number of bars.
func (s *OHLCVSeries) Len() int {
	return len(s.Bars)
}

// LastClose returns the most recent close, or UNKNOWN for an empty series.
func (s *OHLCVSeries) LastClose() Metric {
	if len(s.Bars) == 0 {
		return UnknownMetric
	}
	return MetricOf(s.Bars[len(s.Bars)-1].Close)
}

// Validate checks structural integrity: ascending dates, non-negative
// prices, high >= low. A violation fails that symbol's evaluation with
// an explicit rationale and never aborts the rest of the batch.
func (s *OHLCVSeries) Validate() error {
	for i, b := range s.Bars {
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 {
			return fmt.Errorf("bar %d (%s): negative price", i, b.Date.Format("2006-01-02"))
		}
		if b.High < b.Low {
			return fmt.Errorf("bar %d (%s): high %.2f below low %.2f", i, b.Date.Format("2006-01-02"), b.High, b.Low)
		}
		if i > 0 && !s.Bars[i-1].Date.Before(b.Date) {
			return fmt.Errorf("bar %d (%s): dates not ascending", i, b.Date.Format("2006-01-02"))
		}
	}
	return nil
}

// Fundamental metric names used in snapshots and breakpoint tables.
const (
	MetricRevenueGrowth   = "revenue_growth"
	MetricEarningsGrowth  = "earnings_growth"
	MetricProfitMargin    = "profit_margin"
	MetricReturnOnEquity  = "return_on_equity"
	MetricDebtToEquity    = "debt_to_equity"
	MetricCurrentRatio    = "current_ratio"
	MetricOperatingCash   = "operating_cashflow"
	MetricBeta            = "beta"
	MetricAnalystRating   = "analyst_rating"
)

// FundamentalSnapshot is one symbol's named fundamental metrics at scan time.
// Absent or unpublishable metrics are UNKNOWN, never zero.
type FundamentalSnapshot struct {
	Symbol  string            `json:"symbol"`
	AsOf    time.Time         `json:"as_of"`
	Metrics map[string]Metric `json:"metrics"`
}

// Metric returns the named metric, UNKNOWN when absent.
func (f *FundamentalSnapshot) Metric(name string) Metric {
	if f == nil || f.Metrics == nil {
		return UnknownMetric
	}
	m, ok := f.Metrics[name]
	if !ok {
		return UnknownMetric
	}
	return m
}
