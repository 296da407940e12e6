package contracts

import (
	"encoding/json"
	"fmt"
)

// Metric is a numeric value that may be UNKNOWN. Missing data is carried
// through scoring arithmetic as an explicit state, never substituted with a
// numeric default and never raised as an error.
type Metric struct {
	Value float64
	Valid bool
}

// MetricOf wraps a known value.
func MetricOf(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// UnknownMetric is the UNKNOWN sentinel.
var UnknownMetric = Metric{}

// Unknown reports whether the value is missing.
func (m Metric) Unknown() bool {
	return !m.Valid
}

// Or returns the value, or fallback when UNKNOWN. Callers outside scoring
// paths only; scoring must propagate UNKNOWN per the engine rules.
func (m Metric) Or(fallback float64) float64 {
	if !m.Valid {
		return fallback
	}
	return m.Value
}

// String renders "UNKNOWN" for missing values so rationale strings stay
// readable without nil checks at every call site.
func (m Metric) String() string {
	if !m.Valid {
		return "UNKNOWN"
	}
	return fmt.Sprintf("%.2f", m.Value)
}

// MarshalJSON encodes UNKNOWN as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON decodes null as UNKNOWN.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = UnknownMetric
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = MetricOf(v)
	return nil
}

// WeightedMean combines known terms of a weighted sum, redistributing the
// weight of UNKNOWN terms proportionally across the rest. Returns UNKNOWN
// when every term is UNKNOWN or the known weight is zero.
func WeightedMean(terms []Metric, weights []float64) Metric {
	var sum, weightSum float64
	for i, t := range terms {
		if t.Unknown() {
			continue
		}
		sum += t.Value * weights[i]
		weightSum += weights[i]
	}
	if weightSum == 0 {
		return UnknownMetric
	}
	return MetricOf(sum / weightSum)
}
