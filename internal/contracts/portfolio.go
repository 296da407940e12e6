package contracts

import (
	"fmt"
	"time"
)

// Position is a point-in-time snapshot of one open LEAPS position. The core
// only reads it and returns signals; position state is owned by the
// portfolio collaborator.
type Position struct {
	ID         string     `json:"id"`
	Symbol     string     `json:"symbol"` // underlying
	AssetClass AssetClass `json:"asset_class"`

	Contract  OptionContract `json:"contract"`
	Quantity  int            `json:"quantity"`
	EntryDate time.Time      `json:"entry_date"`
	CostBasis float64        `json:"cost_basis"` // total dollars paid

	// CurrentMark is the option's current per-contract price, UNKNOWN when
	// the pricing source had nothing.
	CurrentMark Metric `json:"current_mark"`
}

// MarketValue returns mark * quantity * 100, UNKNOWN without a mark.
func (p *Position) MarketValue() Metric {
	if p.CurrentMark.Unknown() {
		return UnknownMetric
	}
	return MetricOf(p.CurrentMark.Value * float64(p.Quantity) * 100)
}

// UnrealizedReturnPct returns percent return on cost basis, UNKNOWN when
// either the mark is missing or the cost basis is zero.
func (p *Position) UnrealizedReturnPct() Metric {
	mv := p.MarketValue()
	if mv.Unknown() || p.CostBasis == 0 {
		return UnknownMetric
	}
	return MetricOf((mv.Value - p.CostBasis) / p.CostBasis * 100)
}

// LongCallEquivalent reports whether the position gains from the underlying
// rising: a CALL contract, or any contract with known positive delta.
func (p *Position) LongCallEquivalent() bool {
	if !p.Contract.Delta.Unknown() {
		return p.Contract.Delta.Value > 0
	}
	return p.Contract.Type == OptionCall
}

// SignalType enumerates portfolio management signals.
type SignalType string

const (
	SignalTakeProfit      SignalType = "TAKE_PROFIT"
	SignalStopLoss        SignalType = "STOP_LOSS"
	SignalTechInvalidated SignalType = "TECH_INVALIDATED"
	SignalExpiryReview    SignalType = "EXPIRY_REVIEW"
	SignalEarningsRisk    SignalType = "EARNINGS_RISK"
)

// Severity ranks a management signal.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarn     Severity = "WARN"
	SeverityCritical Severity = "CRITICAL"
)

// ManagementSignal is one risk-management finding for a position. Signals
// are independent: a position can carry several at once.
type ManagementSignal struct {
	PositionID  string     `json:"position_id"`
	Symbol      string     `json:"symbol"`
	Type        SignalType `json:"type"`
	Severity    Severity   `json:"severity"`
	Rationale   string     `json:"rationale"`
	TriggeredAt time.Time  `json:"triggered_at"`
}

func (s ManagementSignal) String() string {
	return fmt.Sprintf("[%s] %s %s: %s", s.Severity, s.Symbol, s.Type, s.Rationale)
}
