package contracts

import (
	"fmt"
	"time"
)

// OptionType is the contract side.
type OptionType string

const (
	OptionCall OptionType = "CALL"
	OptionPut  OptionType = "PUT"
)

// OptionContract is one listed contract. Greeks and IV come from the
// provider and may be UNKNOWN; the candidate filter excludes contracts it
// cannot place in the delta band rather than guessing.
type OptionContract struct {
	Symbol     string     `json:"symbol"` // OCC-style contract symbol
	Underlying string     `json:"underlying"`
	Expiration time.Time  `json:"expiration"`
	Strike     float64    `json:"strike"`
	Type       OptionType `json:"type"`
	Bid        float64    `json:"bid"`
	Ask        float64    `json:"ask"`
	OpenInt    int64      `json:"open_interest"`
	Volume     int64      `json:"volume"`
	Delta      Metric     `json:"delta"`
	ImpliedVol Metric     `json:"implied_vol"`
}

// Mid returns the bid/ask midpoint, UNKNOWN when the market is one-sided.
func (c *OptionContract) Mid() Metric {
	if c.Bid <= 0 || c.Ask <= 0 {
		return UnknownMetric
	}
	return MetricOf((c.Bid + c.Ask) / 2)
}

// SpreadPct returns (ask-bid)/mid, UNKNOWN when mid is unavailable.
func (c *OptionContract) SpreadPct() Metric {
	mid := c.Mid()
	if mid.Unknown() || mid.Value == 0 {
		return UnknownMetric
	}
	return MetricOf((c.Ask - c.Bid) / mid.Value)
}

// DaysToExpiry returns calendar days from now until expiration.
func (c *OptionContract) DaysToExpiry(now time.Time) int {
	return int(c.Expiration.Sub(now).Hours() / 24)
}

// Validate checks structural integrity of the quote fields.
func (c *OptionContract) Validate() error {
	if c.Strike <= 0 {
		return fmt.Errorf("contract %s: non-positive strike", c.Symbol)
	}
	if c.Bid < 0 || c.Ask < 0 {
		return fmt.Errorf("contract %s: negative quote", c.Symbol)
	}
	if c.Bid > 0 && c.Ask > 0 && c.Bid > c.Ask {
		return fmt.Errorf("contract %s: bid %.2f above ask %.2f", c.Symbol, c.Bid, c.Ask)
	}
	return nil
}

// OptionChain is the contract set for one underlying across expirations.
type OptionChain struct {
	Underlying string           `json:"underlying"`
	Contracts  []OptionContract `json:"contracts"`
}

// Empty reports whether the chain carries no contracts.
func (ch *OptionChain) Empty() bool {
	return ch == nil || len(ch.Contracts) == 0
}

// LeapsCandidate is a contract that survived the LEAPS filter, annotated
// with its suitability rank (1 = best fit).
type LeapsCandidate struct {
	OptionContract
	Rank       int     `json:"rank"`
	DaysToExp  int     `json:"days_to_expiry"`
	MidPrice   float64 `json:"mid_price"`
	Spread     float64 `json:"spread_pct"`
	DeltaUsed  float64 `json:"delta_used"`  // provider delta or model fallback
	DeltaModel bool    `json:"delta_model"` // true when delta came from the model
}
