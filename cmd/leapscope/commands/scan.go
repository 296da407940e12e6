package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/scanconfig"
)

// scanCmd runs one conviction scan over the given symbols.
var scanCmd = &cobra.Command{
	Use:   "scan [symbols...]",
	Short: "Run a conviction scan over a watchlist",
	Long: `Evaluates each symbol against the strategy document and prints the
decision table. Symbols come from arguments or the --symbols flag.

Example:
  go run ./cmd/leapscope scan AAPL MSFT SPY
  go run ./cmd/leapscope scan --symbols AAPL,MSFT --strategy config/strategy.yaml`,
	RunE: runScan,
}

var scanSymbols string

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVar(&scanSymbols, "symbols", "", "comma-separated watchlist")
}

func runScan(cmd *cobra.Command, args []string) error {
	symbols := args
	if scanSymbols != "" {
		for _, s := range strings.Split(scanSymbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	if len(symbols) == 0 {
		return fmt.Errorf("no symbols given (pass arguments or --symbols)")
	}

	stack, err := initStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	cfg, yamlData, err := scanconfig.Load(stack.cfg.StrategyFile)
	if err != nil {
		return fmt.Errorf("load strategy config: %w", err)
	}
	snapshot, err := scanconfig.NewSnapshot(cfg, yamlData)
	if err != nil {
		return fmt.Errorf("snapshot strategy config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	start := time.Now()
	run, err := stack.scanner.Run(ctx, symbols, cfg)
	if err != nil {
		return err
	}

	fmt.Printf("Run %s, strategy %s (config %.12s)\n", run.RunID, snapshot.StrategyID, snapshot.ConfigHash)
	fmt.Printf("%d symbols in %.1fs\n\n", len(run.Results), time.Since(start).Seconds())

	printTableHeader([]string{"SYMBOL", "DECISION", "SCORE", "BAND", "GATES", "NOTES"}, scanWidths)
	for i := range run.Results {
		printScanRow(&run.Results[i])
	}

	return nil
}

var scanWidths = []int{8, 8, 7, 10, 20, 50}

func printScanRow(r *contracts.ConvictionResult) {
	gates := make([]string, 0, len(r.Gates))
	for _, g := range r.Gates {
		gates = append(gates, fmt.Sprintf("%s=%s", g.Name[:1], g.Status))
	}

	notes := ""
	if len(r.Rationale) > 0 {
		notes = r.Rationale[0]
	}
	if r.EarningsRisk {
		notes = "earnings window; " + notes
	}

	printTableRow([]string{
		r.Symbol,
		string(r.Decision),
		r.Composite.String(),
		string(r.Band),
		strings.Join(gates, " "),
		notes,
	}, scanWidths)
}
