package scanconfig

import "time"

// Config is the strategy document driving every evaluation in a run. It is
// loaded once per run, passed explicitly into each call, and must be
// identical for every symbol in the run so conviction scores stay
// comparable across symbols.
type Config struct {
	Meta       Meta       `yaml:"meta" json:"meta"`
	Technical  Technical  `yaml:"technical" json:"technical"`
	Fundamental Fundamental `yaml:"fundamentals" json:"fundamentals"`
	Volatility Volatility `yaml:"volatility" json:"volatility"`
	Leaps      Leaps      `yaml:"leaps" json:"leaps"`
	Conviction Conviction `yaml:"conviction" json:"conviction"`
	Decision   DecisionGates `yaml:"decision" json:"decision"`
	Portfolio  Portfolio  `yaml:"portfolio" json:"portfolio"`
	Schedule   Schedule   `yaml:"schedule" json:"schedule"`
}

// Meta identifies the strategy document.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

// Technical holds indicator parameters and momentum normalization bands.
type Technical struct {
	SMAFast         int     `yaml:"sma_fast" json:"sma_fast"`
	SMASlow         int     `yaml:"sma_slow" json:"sma_slow"`
	EMAFast         int     `yaml:"ema_fast" json:"ema_fast"`
	EMASlow         int     `yaml:"ema_slow" json:"ema_slow"`
	RSIPeriod       int     `yaml:"rsi_period" json:"rsi_period"`
	RSIOverbought   float64 `yaml:"rsi_overbought" json:"rsi_overbought"`
	RSIOversold     float64 `yaml:"rsi_oversold" json:"rsi_oversold"`
	MACDFast        int     `yaml:"macd_fast" json:"macd_fast"`
	MACDSlow        int     `yaml:"macd_slow" json:"macd_slow"`
	MACDSignal      int     `yaml:"macd_signal" json:"macd_signal"`
	BollingerPeriod int     `yaml:"bollinger_period" json:"bollinger_period"`
	BollingerStd    float64 `yaml:"bollinger_std" json:"bollinger_std"`
	ATRPeriod       int     `yaml:"atr_period" json:"atr_period"`
	HVWindow        int     `yaml:"hv_window" json:"hv_window"`
}

// Fundamental holds dimension weights and metric breakpoints for the
// EQUITY path, plus the ETF proxy score.
type Fundamental struct {
	Weights     FundamentalWeights `yaml:"weights" json:"weights"`
	Breakpoints Breakpoints        `yaml:"breakpoints" json:"breakpoints"`
	ETFBypassScore float64         `yaml:"etf_bypass_score" json:"etf_bypass_score"`
}

// FundamentalWeights are the four dimension weights; they must sum to 1.0.
type FundamentalWeights struct {
	Growth        float64 `yaml:"growth" json:"growth"`
	Profitability float64 `yaml:"profitability" json:"profitability"`
	BalanceSheet  float64 `yaml:"balance_sheet" json:"balance_sheet"`
	Stability     float64 `yaml:"stability" json:"stability"`
}

// Sum returns the weight total.
func (w FundamentalWeights) Sum() float64 {
	return w.Growth + w.Profitability + w.BalanceSheet + w.Stability
}

// Breakpoints map a metric value onto its sub-score. "Good" thresholds earn
// full points, positive-but-below-threshold earns half.
type Breakpoints struct {
	RevenueGrowthGood  float64 `yaml:"revenue_growth_good" json:"revenue_growth_good"`
	EarningsGrowthGood float64 `yaml:"earnings_growth_good" json:"earnings_growth_good"`
	NetMarginGood      float64 `yaml:"net_margin_good" json:"net_margin_good"`
	ROEGood            float64 `yaml:"roe_good" json:"roe_good"`
	DebtToEquityMax    float64 `yaml:"debt_to_equity_max" json:"debt_to_equity_max"`
	CurrentRatioMin    float64 `yaml:"current_ratio_min" json:"current_ratio_min"`
	BetaMax            float64 `yaml:"beta_max" json:"beta_max"`
}

// Volatility holds the IV/HV regime thresholds.
type Volatility struct {
	CheapBelow     float64 `yaml:"cheap_below" json:"cheap_below"`
	ExpensiveAbove float64 `yaml:"expensive_above" json:"expensive_above"`
}

// Leaps holds the candidate filter parameters.
type Leaps struct {
	MinDaysToExpiration int     `yaml:"min_days_to_expiration" json:"min_days_to_expiration"`
	MinOpenInterest     int64   `yaml:"min_open_interest" json:"min_open_interest"`
	MinVolume           int64   `yaml:"min_volume" json:"min_volume"`
	MaxSpreadPct        float64 `yaml:"max_spread_pct" json:"max_spread_pct"`
	DeltaMin            float64 `yaml:"delta_min" json:"delta_min"`
	DeltaMax            float64 `yaml:"delta_max" json:"delta_max"`
	DeltaEpsilon        float64 `yaml:"delta_epsilon" json:"delta_epsilon"`
	RiskFreeRate        float64 `yaml:"risk_free_rate" json:"risk_free_rate"`
}

// Conviction holds the composite weights and band thresholds. Weights must
// sum to 1.0 within tolerance; a malformed set is batch-fatal.
type Conviction struct {
	Weights           ConvictionWeights `yaml:"weights" json:"weights"`
	StrongThreshold   float64           `yaml:"strong_threshold" json:"strong_threshold"`
	ModerateThreshold float64           `yaml:"moderate_threshold" json:"moderate_threshold"`
}

// ConvictionWeights are the four sub-score weights.
type ConvictionWeights struct {
	Technical   float64 `yaml:"technical" json:"technical"`
	Fundamental float64 `yaml:"fundamental" json:"fundamental"`
	Volatility  float64 `yaml:"volatility" json:"volatility"`
	Liquidity   float64 `yaml:"liquidity" json:"liquidity"`
}

// Sum returns the weight total.
func (w ConvictionWeights) Sum() float64 {
	return w.Technical + w.Fundamental + w.Volatility + w.Liquidity
}

// DecisionGates holds the gate thresholds.
type DecisionGates struct {
	MinFundamentalScore float64 `yaml:"min_fundamental_score" json:"min_fundamental_score"`
	MaxIVHVRatio        float64 `yaml:"max_iv_hv_ratio" json:"max_iv_hv_ratio"`
	EarningsBufferDays  int     `yaml:"earnings_buffer_days" json:"earnings_buffer_days"`
}

// Portfolio holds the risk-signal thresholds.
type Portfolio struct {
	TakeProfitPct    float64 `yaml:"take_profit_pct" json:"take_profit_pct"`
	StopLossPct      float64 `yaml:"stop_loss_pct" json:"stop_loss_pct"`
	ExpiryReviewDays int     `yaml:"expiry_review_days" json:"expiry_review_days"`
}

// Schedule holds cron expressions for the scheduler jobs.
type Schedule struct {
	ScanCron      string `yaml:"scan_cron" json:"scan_cron"`
	PortfolioCron string `yaml:"portfolio_cron" json:"portfolio_cron"`
}

// Default returns the documented default strategy, matching the shipped
// config/strategy.yaml.
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "leaps_us_v1",
			Version:    "1.0.0",
			Timezone:   "America/New_York",
		},
		Technical: Technical{
			SMAFast:         50,
			SMASlow:         200,
			EMAFast:         12,
			EMASlow:         26,
			RSIPeriod:       14,
			RSIOverbought:   70,
			RSIOversold:     30,
			MACDFast:        12,
			MACDSlow:        26,
			MACDSignal:      9,
			BollingerPeriod: 20,
			BollingerStd:    2.0,
			ATRPeriod:       14,
			HVWindow:        20,
		},
		Fundamental: Fundamental{
			Weights: FundamentalWeights{
				Growth:        0.30,
				Profitability: 0.30,
				BalanceSheet:  0.25,
				Stability:     0.15,
			},
			Breakpoints: Breakpoints{
				RevenueGrowthGood:  0.10,
				EarningsGrowthGood: 0.10,
				NetMarginGood:      0.15,
				ROEGood:            0.15,
				DebtToEquityMax:    1.5,
				CurrentRatioMin:    1.2,
				BetaMax:            1.5,
			},
			ETFBypassScore: 70,
		},
		Volatility: Volatility{
			CheapBelow:     0.9,
			ExpensiveAbove: 1.5,
		},
		Leaps: Leaps{
			MinDaysToExpiration: 300,
			MinOpenInterest:     50,
			MinVolume:           5,
			MaxSpreadPct:        0.10,
			DeltaMin:            0.70,
			DeltaMax:            0.80,
			DeltaEpsilon:        0.02,
			RiskFreeRate:        0.045,
		},
		Conviction: Conviction{
			Weights: ConvictionWeights{
				Technical:   0.30,
				Fundamental: 0.25,
				Volatility:  0.25,
				Liquidity:   0.20,
			},
			StrongThreshold:   75,
			ModerateThreshold: 50,
		},
		Decision: DecisionGates{
			MinFundamentalScore: 60,
			MaxIVHVRatio:        1.5,
			EarningsBufferDays:  14,
		},
		Portfolio: Portfolio{
			TakeProfitPct:    50,
			StopLossPct:      -30,
			ExpiryReviewDays: 30,
		},
		Schedule: Schedule{
			ScanCron:      "30 9 * * MON-FRI",
			PortfolioCron: "*/30 9-16 * * MON-FRI",
		},
	}
}

// Snapshot is the reproducibility record written alongside each scan run:
// the exact config text and its hash, so any decision can be replayed.
type Snapshot struct {
	ConfigHash string    `json:"config_hash"`
	ConfigYAML string    `json:"config_yaml"`
	StrategyID string    `json:"strategy_id"`
	CreatedAt  time.Time `json:"created_at"`
}
