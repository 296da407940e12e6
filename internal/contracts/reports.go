package contracts

import "time"

// Trend is the technical regime derived from the moving-average stack.
type Trend string

const (
	TrendBullish Trend = "BULLISH"
	TrendBearish Trend = "BEARISH"
	TrendNeutral Trend = "NEUTRAL"
	TrendUnknown Trend = "UNKNOWN"
)

// TechnicalReport is the Technical Analyzer output. Any indicator that could
// not be computed from the available history is UNKNOWN on that field only.
type TechnicalReport struct {
	Symbol string    `json:"symbol"`
	AsOf   time.Time `json:"as_of"`

	Close Metric `json:"close"`
	Trend Trend  `json:"trend"`

	SMAFast    Metric `json:"sma_fast"`
	SMASlow    Metric `json:"sma_slow"`
	EMAFast    Metric `json:"ema_fast"`
	EMASlow    Metric `json:"ema_slow"`
	RSI        Metric `json:"rsi"`
	MACD       Metric `json:"macd"`
	MACDSignal Metric `json:"macd_signal"`
	BBUpper    Metric `json:"bb_upper"`
	BBLower    Metric `json:"bb_lower"`
	ATR        Metric `json:"atr"`
	HV         Metric `json:"hv"` // annualized historical volatility

	GoldenCross bool `json:"golden_cross"`
	DeathCross  bool `json:"death_cross"`

	// Momentum normalized to 0-100 from RSI and MACD per configured bands.
	MomentumScore Metric `json:"momentum_score"`

	// Optional support/resistance levels from the Bollinger envelope.
	Support    Metric `json:"support"`
	Resistance Metric `json:"resistance"`
}

// DimensionScore is one fundamental dimension's contribution.
type DimensionScore struct {
	Score   Metric            `json:"score"` // 0-100, UNKNOWN when all inputs missing
	Weight  float64           `json:"weight"`
	Metrics map[string]Metric `json:"metrics"`
	Notes   []string          `json:"notes,omitempty"`
}

// FundamentalScore is the Fundamental Scorer output.
type FundamentalScore struct {
	Symbol     string                    `json:"symbol"`
	AssetClass AssetClass                `json:"asset_class"`
	Overall    Metric                    `json:"overall"` // 0-100 or UNKNOWN
	Bypass     bool                      `json:"bypass"`  // ETF proxy score applied
	Dimensions map[string]DimensionScore `json:"dimensions,omitempty"`
	Notes      []string                  `json:"notes,omitempty"`
}

// VolRegime classifies option pricing relative to realized movement.
type VolRegime string

const (
	VolCheap     VolRegime = "CHEAP"
	VolFair      VolRegime = "FAIR"
	VolExpensive VolRegime = "EXPENSIVE"
	VolUnknown   VolRegime = "UNKNOWN"
)

// VolatilityProfile is the IV/HV half of the Volatility & Liquidity Analyzer.
type VolatilityProfile struct {
	Symbol    string    `json:"symbol"`
	ATMIV     Metric    `json:"atm_iv"`
	HV        Metric    `json:"hv"`
	IVHVRatio Metric    `json:"iv_hv_ratio"`
	Regime    VolRegime `json:"regime"`
}
