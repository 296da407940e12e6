package jobs

import (
	"context"
	"fmt"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/internal/scanner"
	"github.com/leapscope/leapscope/pkg/logger"
)

// ScanJob runs the full conviction scan over the watchlist. The strategy
// document is reloaded on every run so edits take effect without a restart.
type ScanJob struct {
	scanner  *scanner.Scanner
	cfgPath  string
	symbols  []string
	schedule string
	logger   *logger.Logger
}

// NewScanJob creates a new scan job.
func NewScanJob(sc *scanner.Scanner, cfgPath string, symbols []string, schedule string, log *logger.Logger) *ScanJob {
	return &ScanJob{
		scanner:  sc,
		cfgPath:  cfgPath,
		symbols:  symbols,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "conviction_scan"
}

// Schedule returns the cron schedule expression
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run executes one scan over the watchlist.
func (j *ScanJob) Run(ctx context.Context) error {
	cfg, _, err := scanconfig.Load(j.cfgPath)
	if err != nil {
		return fmt.Errorf("load strategy config: %w", err)
	}

	run, err := j.scanner.Run(ctx, j.symbols, cfg)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	var goCount, watchCount int
	for i := range run.Results {
		switch run.Results[i].Decision {
		case contracts.DecisionGo:
			goCount++
		case contracts.DecisionWatch:
			watchCount++
		}
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id":  run.RunID,
		"symbols": len(run.Results),
		"go":      goCount,
		"watch":   watchCount,
	}).Info("Scheduled scan completed")

	return nil
}
