package portfolio

import (
	"fmt"
	"time"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/pkg/logger"
)

// Generator emits risk-management signals for open positions. Checks run
// independently so one position can carry several signals at once, and a
// check whose data is missing simply emits nothing: portfolio checks only
// add caution, they never suppress a holding.
type Generator struct {
	cfg                scanconfig.Portfolio
	earningsBufferDays int
	logger             *logger.Logger
}

// NewGenerator creates a risk signal generator.
func NewGenerator(cfg scanconfig.Portfolio, earningsBufferDays int, log *logger.Logger) *Generator {
	return &Generator{cfg: cfg, earningsBufferDays: earningsBufferDays, logger: log}
}

// Signals evaluates every check against one position snapshot. techReport
// and earningsDate may be nil when their sources had nothing.
func (g *Generator) Signals(
	pos *contracts.Position,
	techReport *contracts.TechnicalReport,
	earningsDate *time.Time,
	at time.Time,
) []contracts.ManagementSignal {
	var signals []contracts.ManagementSignal
	add := func(t contracts.SignalType, sev contracts.Severity, rationale string) {
		signals = append(signals, contracts.ManagementSignal{
			PositionID:  pos.ID,
			Symbol:      pos.Symbol,
			Type:        t,
			Severity:    sev,
			Rationale:   rationale,
			TriggeredAt: at,
		})
	}

	if ret := pos.UnrealizedReturnPct(); !ret.Unknown() {
		if ret.Value >= g.cfg.TakeProfitPct {
			add(contracts.SignalTakeProfit, contracts.SeverityInfo,
				fmt.Sprintf("unrealized return %.1f%% at or above target %.0f%%", ret.Value, g.cfg.TakeProfitPct))
		}
		if ret.Value <= g.cfg.StopLossPct {
			add(contracts.SignalStopLoss, contracts.SeverityCritical,
				fmt.Sprintf("unrealized return %.1f%% at or below floor %.0f%%", ret.Value, g.cfg.StopLossPct))
		}
	}

	if techReport != nil && techReport.Trend == contracts.TrendBearish && pos.LongCallEquivalent() {
		add(contracts.SignalTechInvalidated, contracts.SeverityWarn,
			"trend flipped BEARISH against a long call-equivalent position")
	}

	if dte := pos.Contract.DaysToExpiry(at); !pos.Contract.Expiration.IsZero() && dte <= g.cfg.ExpiryReviewDays {
		add(contracts.SignalExpiryReview, contracts.SeverityWarn,
			fmt.Sprintf("%d days to expiration, review window %d", dte, g.cfg.ExpiryReviewDays))
	}

	if earningsDate != nil && !earningsDate.Before(at) &&
		earningsDate.Sub(at) <= time.Duration(g.earningsBufferDays)*24*time.Hour {
		days := int(earningsDate.Sub(at).Hours() / 24)
		add(contracts.SignalEarningsRisk, contracts.SeverityWarn,
			fmt.Sprintf("earnings report in %d days", days))
	}

	if len(signals) > 0 {
		g.logger.WithFields(map[string]interface{}{
			"position": pos.ID,
			"symbol":   pos.Symbol,
			"signals":  len(signals),
		}).Info("management signals raised")
	}

	return signals
}
