package scanconfig

import (
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestValidateWeights(t *testing.T) {
	cfg := Default()
	cfg.Conviction.Weights = ConvictionWeights{
		Technical:   0.30,
		Fundamental: 0.25,
		Volatility:  0.25,
		Liquidity:   0.25, // sums to 1.05
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("weights not summing to 1.0 must be rejected, not clamped")
	}

	var vErr ValidationError
	ok := false
	if vErr, ok = err.(ValidationError); !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.Field != "conviction.weights" {
		t.Errorf("Field = %s, want conviction.weights", vErr.Field)
	}
}

func TestValidateFundamentalWeights(t *testing.T) {
	cfg := Default()
	cfg.Fundamental.Weights.Growth = 0.50 // breaks the sum

	if err := Validate(cfg); err == nil {
		t.Error("fundamental weights not summing to 1.0 must be rejected")
	}
}

func TestValidateDeltaBand(t *testing.T) {
	cfg := Default()
	cfg.Leaps.DeltaMin = 0.85
	cfg.Leaps.DeltaMax = 0.70

	if err := Validate(cfg); err == nil {
		t.Error("inverted delta band must be rejected")
	}
}

func TestParseStrictYAML(t *testing.T) {
	yaml := `
meta:
  strategy_id: test
  version: "1"
  timezone: America/New_York
unknown_section:
  stray: true
`
	if _, err := Parse([]byte(yaml)); err == nil {
		t.Error("unknown YAML fields must be rejected")
	}
}

func TestParseValid(t *testing.T) {
	yaml := `
meta:
  strategy_id: leaps_test
  version: "1.0.0"
  timezone: America/New_York
technical:
  sma_fast: 50
  sma_slow: 200
  ema_fast: 12
  ema_slow: 26
  rsi_period: 14
  rsi_overbought: 70
  rsi_oversold: 30
  macd_fast: 12
  macd_slow: 26
  macd_signal: 9
  bollinger_period: 20
  bollinger_std: 2.0
  atr_period: 14
  hv_window: 20
fundamentals:
  weights:
    growth: 0.30
    profitability: 0.30
    balance_sheet: 0.25
    stability: 0.15
  breakpoints:
    revenue_growth_good: 0.10
    earnings_growth_good: 0.10
    net_margin_good: 0.15
    roe_good: 0.15
    debt_to_equity_max: 1.5
    current_ratio_min: 1.2
    beta_max: 1.5
  etf_bypass_score: 70
volatility:
  cheap_below: 0.9
  expensive_above: 1.5
leaps:
  min_days_to_expiration: 300
  min_open_interest: 50
  min_volume: 5
  max_spread_pct: 0.10
  delta_min: 0.70
  delta_max: 0.80
  delta_epsilon: 0.02
  risk_free_rate: 0.045
conviction:
  weights:
    technical: 0.30
    fundamental: 0.25
    volatility: 0.25
    liquidity: 0.20
  strong_threshold: 75
  moderate_threshold: 50
decision:
  min_fundamental_score: 60
  max_iv_hv_ratio: 1.5
  earnings_buffer_days: 14
portfolio:
  take_profit_pct: 50
  stop_loss_pct: -30
  expiry_review_days: 30
schedule:
  scan_cron: "30 9 * * MON-FRI"
  portfolio_cron: "*/30 9-16 * * MON-FRI"
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if cfg.Meta.StrategyID != "leaps_test" {
		t.Errorf("strategy_id = %s, want leaps_test", cfg.Meta.StrategyID)
	}
	if cfg.Leaps.MinDaysToExpiration != 300 {
		t.Errorf("min_days_to_expiration = %d, want 300", cfg.Leaps.MinDaysToExpiration)
	}
}

func TestHashDeterministic(t *testing.T) {
	cfg := Default()

	h1, err := Hash(cfg)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	h2, _ := Hash(cfg)
	if h1 != h2 {
		t.Error("hash not deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("expected 64 char hash, got %d", len(h1))
	}

	cfg.Conviction.StrongThreshold = 80
	h3, _ := Hash(cfg)
	if h3 == h1 {
		t.Error("changed config should change hash")
	}
}

func TestNewSnapshot(t *testing.T) {
	cfg := Default()
	yamlData := []byte("meta:\n  strategy_id: leaps_us_v1\n")

	snap, err := NewSnapshot(cfg, yamlData)
	if err != nil {
		t.Fatalf("NewSnapshot failed: %v", err)
	}
	if snap.StrategyID != "leaps_us_v1" {
		t.Errorf("StrategyID = %s", snap.StrategyID)
	}
	if !strings.Contains(snap.ConfigYAML, "leaps_us_v1") {
		t.Error("snapshot should carry the raw YAML")
	}
	if len(snap.ConfigHash) != 64 {
		t.Error("snapshot should carry the config hash")
	}
}
