package contracts

import "time"

// Decision is the discrete outcome of the gate evaluation.
type Decision string

const (
	DecisionGo    Decision = "GO"
	DecisionWatch Decision = "WATCH"
	DecisionNoGo  Decision = "NO_GO"
)

// Band classifies the composite score. Empty when the composite is UNKNOWN.
type Band string

const (
	BandStrong   Band = "STRONG"
	BandModerate Band = "MODERATE"
	BandWeak     Band = "WEAK"
	BandNone     Band = ""
)

// GateStatus is one gate's evaluation state. UNKNOWN means the gate could
// not be evaluated for lack of data; it never counts as a pass.
type GateStatus string

const (
	GatePass    GateStatus = "PASS"
	GateFail    GateStatus = "FAIL"
	GateUnknown GateStatus = "UNKNOWN"
)

// Gate names, in evaluation order.
const (
	GateTrend      = "trend"
	GateFundamental = "fundamental"
	GateVolatility = "volatility"
)

// GateResult records one gate with the measured value behind it.
type GateResult struct {
	Name   string     `json:"name"`
	Status GateStatus `json:"status"`
	Detail string     `json:"detail"`
}

// ComponentScores are the four 0-100 sub-scores feeding the composite, in
// fixed order for deterministic rationale output.
type ComponentScores struct {
	Technical   Metric `json:"technical"`
	Fundamental Metric `json:"fundamental"`
	Volatility  Metric `json:"volatility"`
	Liquidity   Metric `json:"liquidity"`
}

// ConvictionResult is one immutable (symbol, timestamp) evaluation. It is
// self-contained: the decision must be re-derivable from the stored gates
// and sub-scores alone.
type ConvictionResult struct {
	Symbol      string     `json:"symbol"`
	AssetClass  AssetClass `json:"asset_class"`
	EvaluatedAt time.Time  `json:"evaluated_at"`
	ConfigHash  string     `json:"config_hash"`

	Composite  Metric          `json:"composite"` // 0-100 or UNKNOWN
	Band       Band            `json:"band"`
	Decision   Decision        `json:"decision"`
	Components ComponentScores `json:"components"`
	Gates      []GateResult    `json:"gates"`

	EarningsRisk bool     `json:"earnings_risk"`
	Rationale    []string `json:"rationale"`

	Candidates []LeapsCandidate `json:"candidates,omitempty"`
}

// GateStatusOf returns the recorded status for a named gate.
func (r *ConvictionResult) GateStatusOf(name string) GateStatus {
	for _, g := range r.Gates {
		if g.Name == name {
			return g.Status
		}
	}
	return GateUnknown
}
