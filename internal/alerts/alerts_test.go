package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/history"
)

func scanResult(symbol string, decision contracts.Decision) *contracts.ConvictionResult {
	return &contracts.ConvictionResult{
		Symbol:      symbol,
		Decision:    decision,
		Composite:   contracts.MetricOf(78),
		Band:        contracts.BandStrong,
		EvaluatedAt: time.Now(),
	}
}

func TestFromScanResultNewGo(t *testing.T) {
	a := FromScanResult(scanResult("AAPL", contracts.DecisionGo), history.ChangeNew)

	require.NotNil(t, a)
	assert.Equal(t, TypeNewGoSignal, a.Type)
	assert.Equal(t, contracts.SeverityInfo, a.Severity)
	assert.Contains(t, a.Title, "GO signal")
}

func TestFromScanResultUpgradeToGo(t *testing.T) {
	a := FromScanResult(scanResult("AAPL", contracts.DecisionGo), history.ChangeUpgrade)

	require.NotNil(t, a)
	// An upgrade landing on GO is the GO alert, not a generic upgrade.
	assert.Equal(t, TypeNewGoSignal, a.Type)
}

func TestFromScanResultUpgradeToWatch(t *testing.T) {
	a := FromScanResult(scanResult("MSFT", contracts.DecisionWatch), history.ChangeUpgrade)

	require.NotNil(t, a)
	assert.Equal(t, TypeSignalUpgrade, a.Type)
}

func TestFromScanResultDowngrade(t *testing.T) {
	a := FromScanResult(scanResult("TSLA", contracts.DecisionNoGo), history.ChangeDowngrade)

	require.NotNil(t, a)
	assert.Equal(t, TypeSignalDowngrade, a.Type)
	assert.Equal(t, contracts.SeverityWarn, a.Severity)
}

func TestFromScanResultUnchangedNoAlert(t *testing.T) {
	assert.Nil(t, FromScanResult(scanResult("NVDA", contracts.DecisionWatch), history.ChangeNone))
	assert.Nil(t, FromScanResult(scanResult("NVDA", contracts.DecisionNoGo), history.ChangeNew))
}

func TestFromManagementSignal(t *testing.T) {
	sig := contracts.ManagementSignal{
		PositionID:  "pos-1",
		Symbol:      "AAPL",
		Type:        contracts.SignalStopLoss,
		Severity:    contracts.SeverityCritical,
		Rationale:   "unrealized return -35.0% at or below floor -30%",
		TriggeredAt: time.Now(),
	}

	a := FromManagementSignal(sig)

	assert.Equal(t, TypePortfolioSignal, a.Type)
	assert.Equal(t, contracts.SeverityCritical, a.Severity)
	assert.Contains(t, a.Title, "STOP_LOSS")
	assert.Equal(t, sig.Rationale, a.Message)
}
