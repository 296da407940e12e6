package history

import "github.com/leapscope/leapscope/internal/contracts"

// Change classifies a symbol's decision movement between two runs.
type Change string

const (
	ChangeNew       Change = "NEW"
	ChangeUpgrade   Change = "UPGRADE"
	ChangeDowngrade Change = "DOWNGRADE"
	ChangeNone      Change = "NONE"
)

// decisionRank orders decisions for upgrade/downgrade comparison.
var decisionRank = map[contracts.Decision]int{
	contracts.DecisionNoGo:  0,
	contracts.DecisionWatch: 1,
	contracts.DecisionGo:    2,
}

// Diff compares a decision against the previous run's. An empty previous
// decision means the symbol was not in the prior run.
func Diff(previous, current contracts.Decision) Change {
	if previous == "" {
		return ChangeNew
	}
	prev, curr := decisionRank[previous], decisionRank[current]
	switch {
	case curr > prev:
		return ChangeUpgrade
	case curr < prev:
		return ChangeDowngrade
	default:
		return ChangeNone
	}
}
