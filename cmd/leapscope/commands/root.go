package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "leapscope",
	Short: "LEAPS conviction scanner",
	Long: `LeapScope CLI

Scores long-dated call opportunities across a watchlist: trend and momentum,
fundamental quality, volatility regime, and contract liquidity roll up into
one conviction score and a GO / WATCH / NO_GO decision per symbol.

Usage:
  go run ./cmd/leapscope [command]

Examples:
  go run ./cmd/leapscope scan AAPL MSFT SPY
  go run ./cmd/leapscope positions review
  go run ./cmd/leapscope config check
  go run ./cmd/leapscope serve
  go run ./cmd/leapscope scheduler start`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&strategyFile, "strategy", "", "strategy YAML (default from STRATEGY_FILE env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
