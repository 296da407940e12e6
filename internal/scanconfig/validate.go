package scanconfig

import (
	"fmt"
	"math"
)

// weightTolerance is how far a weight sum may drift from 1.0 before the
// config is rejected. Rejection is fail-fast: no evaluation runs.
const weightTolerance = 1e-6

// ValidationError is a fatal configuration defect.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks every constraint the engine relies on. Weights are
// rejected, never silently clamped or renormalized.
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.StrategyID == "" {
		return ValidationError{"meta.strategy_id", "required"}
	}

	// === Technical ===
	if cfg.Technical.SMAFast <= 0 || cfg.Technical.SMASlow <= 0 {
		return ValidationError{"technical", "sma periods must be > 0"}
	}
	if cfg.Technical.SMAFast >= cfg.Technical.SMASlow {
		return ValidationError{"technical", "sma_fast must be < sma_slow"}
	}
	if cfg.Technical.RSIPeriod <= 0 {
		return ValidationError{"technical.rsi_period", "must be > 0"}
	}
	if cfg.Technical.RSIOversold >= cfg.Technical.RSIOverbought {
		return ValidationError{"technical", "rsi_oversold must be < rsi_overbought"}
	}
	if cfg.Technical.MACDFast >= cfg.Technical.MACDSlow {
		return ValidationError{"technical", "macd_fast must be < macd_slow"}
	}
	if cfg.Technical.HVWindow <= 1 {
		return ValidationError{"technical.hv_window", "must be > 1"}
	}

	// === Fundamentals ===
	if sum := cfg.Fundamental.Weights.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return ValidationError{"fundamentals.weights", fmt.Sprintf("must sum to 1.0, got %.6f", sum)}
	}
	if cfg.Fundamental.ETFBypassScore < 0 || cfg.Fundamental.ETFBypassScore > 100 {
		return ValidationError{"fundamentals.etf_bypass_score", "must be in [0, 100]"}
	}
	if cfg.Fundamental.Breakpoints.DebtToEquityMax <= 0 {
		return ValidationError{"fundamentals.breakpoints.debt_to_equity_max", "must be > 0"}
	}
	if cfg.Fundamental.Breakpoints.CurrentRatioMin <= 0 {
		return ValidationError{"fundamentals.breakpoints.current_ratio_min", "must be > 0"}
	}

	// === Volatility ===
	if cfg.Volatility.CheapBelow <= 0 {
		return ValidationError{"volatility.cheap_below", "must be > 0"}
	}
	if cfg.Volatility.CheapBelow >= cfg.Volatility.ExpensiveAbove {
		return ValidationError{"volatility", "cheap_below must be < expensive_above"}
	}

	// === LEAPS filter ===
	l := cfg.Leaps
	if l.MinDaysToExpiration <= 0 {
		return ValidationError{"leaps.min_days_to_expiration", "must be > 0"}
	}
	if l.MinOpenInterest < 0 || l.MinVolume < 0 {
		return ValidationError{"leaps", "liquidity floors must be >= 0"}
	}
	if l.MaxSpreadPct <= 0 || l.MaxSpreadPct > 1 {
		return ValidationError{"leaps.max_spread_pct", "must be in (0, 1]"}
	}
	if l.DeltaMin <= 0 || l.DeltaMax >= 1 || l.DeltaMin >= l.DeltaMax {
		return ValidationError{"leaps", "delta band must satisfy 0 < delta_min < delta_max < 1"}
	}
	if l.DeltaEpsilon < 0 {
		return ValidationError{"leaps.delta_epsilon", "must be >= 0"}
	}

	// === Conviction ===
	if sum := cfg.Conviction.Weights.Sum(); math.Abs(sum-1.0) > weightTolerance {
		return ValidationError{"conviction.weights", fmt.Sprintf("must sum to 1.0, got %.6f", sum)}
	}
	if cfg.Conviction.ModerateThreshold >= cfg.Conviction.StrongThreshold {
		return ValidationError{"conviction", "moderate_threshold must be < strong_threshold"}
	}

	// === Decision gates ===
	if cfg.Decision.MinFundamentalScore < 0 || cfg.Decision.MinFundamentalScore > 100 {
		return ValidationError{"decision.min_fundamental_score", "must be in [0, 100]"}
	}
	if cfg.Decision.MaxIVHVRatio <= 0 {
		return ValidationError{"decision.max_iv_hv_ratio", "must be > 0"}
	}
	if cfg.Decision.EarningsBufferDays < 0 {
		return ValidationError{"decision.earnings_buffer_days", "must be >= 0"}
	}

	// === Portfolio ===
	if cfg.Portfolio.TakeProfitPct <= 0 {
		return ValidationError{"portfolio.take_profit_pct", "must be > 0"}
	}
	if cfg.Portfolio.StopLossPct >= 0 {
		return ValidationError{"portfolio.stop_loss_pct", "must be < 0"}
	}
	if cfg.Portfolio.ExpiryReviewDays <= 0 {
		return ValidationError{"portfolio.expiry_review_days", "must be > 0"}
	}

	return nil
}
