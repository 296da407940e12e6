package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/internal/scheduler"
	"github.com/leapscope/leapscope/internal/scheduler/jobs"
)

// schedulerCmd runs the cron-driven scan and portfolio jobs.
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the scheduled scan and portfolio jobs",
	Long: `Starts the scheduler daemon. Two jobs are registered from the
strategy document's schedule section:

  conviction_scan   - full watchlist scan (scan_cron)
  portfolio_review  - open-position re-evaluation (portfolio_cron)

Schedules are evaluated in the strategy timezone.

Example:
  go run ./cmd/leapscope scheduler start --symbols AAPL,MSFT,SPY
  go run ./cmd/leapscope scheduler run conviction_scan --symbols AAPL`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runSchedulerDaemon,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run one job immediately",
		Args:  cobra.ExactArgs(1),
		RunE:  runSchedulerJob,
	}
)

var schedulerSymbols string

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerCmd.PersistentFlags().StringVar(&schedulerSymbols, "symbols", "", "comma-separated watchlist for the scan job")
}

func initScheduler() (*scheduler.Scheduler, *stack, error) {
	stack, err := initStack()
	if err != nil {
		return nil, nil, err
	}

	cfg, _, err := scanconfig.Load(stack.cfg.StrategyFile)
	if err != nil {
		stack.Close()
		return nil, nil, fmt.Errorf("load strategy config: %w", err)
	}

	var symbols []string
	for _, s := range strings.Split(schedulerSymbols, ",") {
		if s = strings.TrimSpace(s); s != "" {
			symbols = append(symbols, s)
		}
	}
	if len(symbols) == 0 {
		stack.Close()
		return nil, nil, fmt.Errorf("no symbols given (pass --symbols)")
	}

	loc, err := time.LoadLocation(cfg.Meta.Timezone)
	if err != nil {
		stack.Close()
		return nil, nil, fmt.Errorf("invalid timezone %q: %w", cfg.Meta.Timezone, err)
	}

	sched := scheduler.New(stack.log, loc)

	if err := sched.AddJob(jobs.NewScanJob(stack.scanner, stack.cfg.StrategyFile, symbols, cfg.Schedule.ScanCron, stack.log)); err != nil {
		stack.Close()
		return nil, nil, err
	}
	if stack.positionRepo != nil {
		if err := sched.AddJob(jobs.NewPortfolioJob(stack.scanner, stack.cfg.StrategyFile, cfg.Schedule.PortfolioCron, stack.log)); err != nil {
			stack.Close()
			return nil, nil, err
		}
	}

	return sched, stack, nil
}

func runSchedulerDaemon(cmd *cobra.Command, args []string) error {
	sched, stack, err := initScheduler()
	if err != nil {
		return err
	}
	defer stack.Close()

	sched.Start()

	fmt.Println("Scheduler started. Registered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		fmt.Printf("  - %s\n", jobName)
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	sched.Stop()
	return nil
}

func runSchedulerJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, stack, err := initScheduler()
	if err != nil {
		return err
	}
	defer stack.Close()

	fmt.Printf("Running job %s\n", jobName)
	if err := sched.RunJobSync(jobName); err != nil {
		return err
	}
	fmt.Printf("Job %s completed\n", jobName)

	return nil
}
