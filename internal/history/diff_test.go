package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leapscope/leapscope/internal/contracts"
)

func TestDiff(t *testing.T) {
	cases := []struct {
		name     string
		previous contracts.Decision
		current  contracts.Decision
		want     Change
	}{
		{"first_scan", "", contracts.DecisionGo, ChangeNew},
		{"watch_to_go", contracts.DecisionWatch, contracts.DecisionGo, ChangeUpgrade},
		{"no_go_to_watch", contracts.DecisionNoGo, contracts.DecisionWatch, ChangeUpgrade},
		{"go_to_watch", contracts.DecisionGo, contracts.DecisionWatch, ChangeDowngrade},
		{"go_to_no_go", contracts.DecisionGo, contracts.DecisionNoGo, ChangeDowngrade},
		{"unchanged", contracts.DecisionWatch, contracts.DecisionWatch, ChangeNone},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Diff(tc.previous, tc.current))
		})
	}
}
