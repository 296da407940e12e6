package alerts

import (
	"fmt"
	"time"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/history"
)

// Type enumerates alert categories. Portfolio signal types map through
// unchanged.
type Type string

const (
	TypeNewGoSignal     Type = "NEW_GO_SIGNAL"
	TypeSignalUpgrade   Type = "SIGNAL_UPGRADE"
	TypeSignalDowngrade Type = "SIGNAL_DOWNGRADE"
	TypePortfolioSignal Type = "PORTFOLIO_SIGNAL"
)

// Alert is one notification record. Delivery is out of scope; alerts are
// stored and read back through the API until acknowledged.
type Alert struct {
	ID           string             `json:"id"`
	Type         Type               `json:"type"`
	Severity     contracts.Severity `json:"severity"`
	Symbol       string             `json:"symbol"`
	Title        string             `json:"title"`
	Message      string             `json:"message"`
	CreatedAt    time.Time          `json:"created_at"`
	Acknowledged bool               `json:"acknowledged"`
}

// FromScanResult builds the alert for a scan decision given its movement
// since the previous run. Returns nil when the movement is not alertable.
func FromScanResult(res *contracts.ConvictionResult, change history.Change) *Alert {
	switch {
	case res.Decision == contracts.DecisionGo && (change == history.ChangeNew || change == history.ChangeUpgrade):
		return &Alert{
			Type:      TypeNewGoSignal,
			Severity:  contracts.SeverityInfo,
			Symbol:    res.Symbol,
			Title:     fmt.Sprintf("%s: GO signal", res.Symbol),
			Message:   fmt.Sprintf("%s scored %s (%s) with all gates passing", res.Symbol, res.Composite, res.Band),
			CreatedAt: res.EvaluatedAt,
		}
	case change == history.ChangeUpgrade:
		return &Alert{
			Type:      TypeSignalUpgrade,
			Severity:  contracts.SeverityInfo,
			Symbol:    res.Symbol,
			Title:     fmt.Sprintf("%s: upgraded to %s", res.Symbol, res.Decision),
			Message:   fmt.Sprintf("%s moved up to %s, composite %s", res.Symbol, res.Decision, res.Composite),
			CreatedAt: res.EvaluatedAt,
		}
	case change == history.ChangeDowngrade:
		return &Alert{
			Type:      TypeSignalDowngrade,
			Severity:  contracts.SeverityWarn,
			Symbol:    res.Symbol,
			Title:     fmt.Sprintf("%s: downgraded to %s", res.Symbol, res.Decision),
			Message:   fmt.Sprintf("%s moved down to %s, composite %s", res.Symbol, res.Decision, res.Composite),
			CreatedAt: res.EvaluatedAt,
		}
	default:
		return nil
	}
}

// FromManagementSignal wraps a portfolio signal as an alert.
func FromManagementSignal(sig contracts.ManagementSignal) *Alert {
	return &Alert{
		Type:      TypePortfolioSignal,
		Severity:  sig.Severity,
		Symbol:    sig.Symbol,
		Title:     fmt.Sprintf("%s: %s", sig.Symbol, sig.Type),
		Message:   sig.Rationale,
		CreatedAt: sig.TriggeredAt,
	}
}
