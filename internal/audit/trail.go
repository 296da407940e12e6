package audit

import (
	"sync"

	"github.com/leapscope/leapscope/internal/contracts"
)

// Trail is an append-only in-memory decision log. Records are immutable
// and self-contained, so a read returns copies of the slice header only;
// nothing already appended can change. Safe for concurrent appenders.
type Trail struct {
	mu      sync.RWMutex
	records []contracts.ConvictionResult
}

// NewTrail creates an empty trail.
func NewTrail() *Trail {
	return &Trail{}
}

// Append records one evaluation.
func (t *Trail) Append(r *contracts.ConvictionResult) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records = append(t.records, *r)
}

// Records returns all recorded decisions in append order.
func (t *Trail) Records() []contracts.ConvictionResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]contracts.ConvictionResult, len(t.records))
	copy(out, t.records)
	return out
}

// BySymbol returns the recorded decisions for one symbol in append order.
func (t *Trail) BySymbol(symbol string) []contracts.ConvictionResult {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []contracts.ConvictionResult
	for _, r := range t.records {
		if r.Symbol == symbol {
			out = append(out, r)
		}
	}
	return out
}

// Len returns the number of recorded decisions.
func (t *Trail) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.records)
}
