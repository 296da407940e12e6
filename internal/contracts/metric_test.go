package contracts

import (
	"encoding/json"
	"math"
	"testing"
)

func TestMetricJSON(t *testing.T) {
	known := MetricOf(42.5)
	data, err := json.Marshal(known)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "42.5" {
		t.Errorf("known metric encoded as %s, want 42.5", data)
	}

	data, err = json.Marshal(UnknownMetric)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != "null" {
		t.Errorf("unknown metric encoded as %s, want null", data)
	}

	var m Metric
	if err := json.Unmarshal([]byte("null"), &m); err != nil {
		t.Fatalf("unmarshal null failed: %v", err)
	}
	if !m.Unknown() {
		t.Error("null should decode to UNKNOWN")
	}

	if err := json.Unmarshal([]byte("17.25"), &m); err != nil {
		t.Fatalf("unmarshal value failed: %v", err)
	}
	if m.Unknown() || m.Value != 17.25 {
		t.Errorf("got %+v, want known 17.25", m)
	}
}

func TestWeightedMean(t *testing.T) {
	tests := []struct {
		name    string
		terms   []Metric
		weights []float64
		want    Metric
	}{
		{
			name:    "all known equals direct weighted sum",
			terms:   []Metric{MetricOf(80), MetricOf(60), MetricOf(40), MetricOf(20)},
			weights: []float64{0.30, 0.25, 0.25, 0.20},
			want:    MetricOf(80*0.30 + 60*0.25 + 40*0.25 + 20*0.20),
		},
		{
			name:    "one unknown redistributes its weight",
			terms:   []Metric{MetricOf(80), UnknownMetric, MetricOf(40)},
			weights: []float64{0.50, 0.25, 0.25},
			want:    MetricOf((80*0.50 + 40*0.25) / 0.75),
		},
		{
			name:    "all unknown yields unknown",
			terms:   []Metric{UnknownMetric, UnknownMetric},
			weights: []float64{0.5, 0.5},
			want:    UnknownMetric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WeightedMean(tt.terms, tt.weights)
			if got.Unknown() != tt.want.Unknown() {
				t.Fatalf("Unknown() = %v, want %v", got.Unknown(), tt.want.Unknown())
			}
			if !got.Unknown() && math.Abs(got.Value-tt.want.Value) > 1e-9 {
				t.Errorf("WeightedMean = %v, want %v", got.Value, tt.want.Value)
			}
		})
	}
}

func TestMetricString(t *testing.T) {
	if s := UnknownMetric.String(); s != "UNKNOWN" {
		t.Errorf("got %q, want UNKNOWN", s)
	}
	if s := MetricOf(1.234).String(); s != "1.23" {
		t.Errorf("got %q, want 1.23", s)
	}
}
