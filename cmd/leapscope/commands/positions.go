package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapscope/leapscope/internal/scanconfig"
)

// positionsCmd manages the open LEAPS book.
var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "List or re-evaluate open positions",
	Long: `Open-position management.

Subcommands:
  list    - print the open book
  review  - re-evaluate each position and print management signals

Example:
  go run ./cmd/leapscope positions list
  go run ./cmd/leapscope positions review`,
}

var (
	positionsListCmd = &cobra.Command{
		Use:   "list",
		Short: "Print the open book",
		RunE:  listPositions,
	}

	positionsReviewCmd = &cobra.Command{
		Use:   "review",
		Short: "Re-evaluate open positions and print signals",
		RunE:  reviewPositions,
	}
)

func init() {
	rootCmd.AddCommand(positionsCmd)
	positionsCmd.AddCommand(positionsListCmd)
	positionsCmd.AddCommand(positionsReviewCmd)
}

var positionWidths = []int{12, 8, 12, 12, 5, 12, 12}

func listPositions(cmd *cobra.Command, args []string) error {
	stack, err := initStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	if stack.positionRepo == nil {
		return fmt.Errorf("positions require a database (set DATABASE_URL)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	positions, err := stack.positionRepo.OpenPositions(ctx)
	if err != nil {
		return fmt.Errorf("load positions: %w", err)
	}

	if len(positions) == 0 {
		fmt.Println("No open positions")
		return nil
	}

	printTableHeader([]string{"ID", "SYMBOL", "STRIKE", "EXPIRY", "QTY", "COST", "MARK"}, positionWidths)
	for _, p := range positions {
		printTableRow([]string{
			p.ID,
			p.Symbol,
			fmt.Sprintf("%.2f", p.Contract.Strike),
			p.Contract.Expiration.Format("2006-01-02"),
			fmt.Sprintf("%d", p.Quantity),
			fmt.Sprintf("%.2f", p.CostBasis),
			p.CurrentMark.String(),
		}, positionWidths)
	}

	return nil
}

func reviewPositions(cmd *cobra.Command, args []string) error {
	stack, err := initStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	if stack.positionRepo == nil {
		return fmt.Errorf("positions require a database (set DATABASE_URL)")
	}

	cfg, _, err := scanconfig.Load(stack.cfg.StrategyFile)
	if err != nil {
		return fmt.Errorf("load strategy config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	signals, err := stack.scanner.RunPortfolio(ctx, cfg)
	if err != nil {
		return err
	}

	if len(signals) == 0 {
		fmt.Println("No signals")
		return nil
	}

	for _, sig := range signals {
		fmt.Println(sig.String())
	}

	return nil
}
