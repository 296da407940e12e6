package jobs

import (
	"context"
	"fmt"

	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/internal/scanner"
	"github.com/leapscope/leapscope/pkg/logger"
)

// PortfolioJob re-evaluates every open position and raises management
// signals. Runs more often than the scan during market hours.
type PortfolioJob struct {
	scanner  *scanner.Scanner
	cfgPath  string
	schedule string
	logger   *logger.Logger
}

// NewPortfolioJob creates a new portfolio review job.
func NewPortfolioJob(sc *scanner.Scanner, cfgPath string, schedule string, log *logger.Logger) *PortfolioJob {
	return &PortfolioJob{
		scanner:  sc,
		cfgPath:  cfgPath,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *PortfolioJob) Name() string {
	return "portfolio_review"
}

// Schedule returns the cron schedule expression
func (j *PortfolioJob) Schedule() string {
	return j.schedule
}

// Run re-evaluates open positions.
func (j *PortfolioJob) Run(ctx context.Context) error {
	cfg, _, err := scanconfig.Load(j.cfgPath)
	if err != nil {
		return fmt.Errorf("load strategy config: %w", err)
	}

	signals, err := j.scanner.RunPortfolio(ctx, cfg)
	if err != nil {
		return fmt.Errorf("portfolio review: %w", err)
	}

	j.logger.WithField("signals", len(signals)).Info("Portfolio review completed")
	return nil
}
