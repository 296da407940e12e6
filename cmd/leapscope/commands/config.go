package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/pkg/config"
)

// configCmd validates and inspects the strategy document.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Validate or inspect the strategy document",
	Long: `Strategy document tooling.

Subcommands:
  check - load, validate, and print the config hash
  show  - print the effective parameters

Example:
  go run ./cmd/leapscope config check
  go run ./cmd/leapscope config show --strategy config/strategy.yaml`,
}

var (
	configCheckCmd = &cobra.Command{
		Use:   "check",
		Short: "Validate the strategy document",
		RunE:  checkConfig,
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Print the effective strategy parameters",
		RunE:  showConfig,
	}
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configShowCmd)
}

func resolveStrategyPath() (string, error) {
	if strategyFile != "" {
		return strategyFile, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}
	return cfg.StrategyFile, nil
}

func checkConfig(cmd *cobra.Command, args []string) error {
	path, err := resolveStrategyPath()
	if err != nil {
		return err
	}

	cfg, _, err := scanconfig.Load(path)
	if err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}

	if err := scanconfig.Validate(cfg); err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}

	hash, err := scanconfig.Hash(cfg)
	if err != nil {
		return fmt.Errorf("hash config: %w", err)
	}

	fmt.Printf("OK  %s\n", path)
	printKeyValue("strategy", cfg.Meta.StrategyID, 12)
	printKeyValue("version", cfg.Meta.Version, 12)
	printKeyValue("hash", hash, 12)

	return nil
}

func showConfig(cmd *cobra.Command, args []string) error {
	path, err := resolveStrategyPath()
	if err != nil {
		return err
	}

	cfg, _, err := scanconfig.Load(path)
	if err != nil {
		return fmt.Errorf("strategy config invalid: %w", err)
	}

	printKeyValue("strategy", cfg.Meta.StrategyID, 24)
	printKeyValue("version", cfg.Meta.Version, 24)
	printKeyValue("timezone", cfg.Meta.Timezone, 24)
	printKeyValue("sma", fmt.Sprintf("%d / %d", cfg.Technical.SMAFast, cfg.Technical.SMASlow), 24)
	printKeyValue("rsi", fmt.Sprintf("%d (%.0f / %.0f)", cfg.Technical.RSIPeriod, cfg.Technical.RSIOversold, cfg.Technical.RSIOverbought), 24)
	printKeyValue("hv window", fmt.Sprintf("%d", cfg.Technical.HVWindow), 24)
	printKeyValue("etf bypass score", fmt.Sprintf("%.0f", cfg.Fundamental.ETFBypassScore), 24)
	printKeyValue("iv/hv cheap below", fmt.Sprintf("%.2f", cfg.Volatility.CheapBelow), 24)
	printKeyValue("iv/hv expensive above", fmt.Sprintf("%.2f", cfg.Volatility.ExpensiveAbove), 24)
	printKeyValue("leaps min dte", fmt.Sprintf("%d", cfg.Leaps.MinDaysToExpiration), 24)
	printKeyValue("leaps delta band", fmt.Sprintf("%.2f - %.2f", cfg.Leaps.DeltaMin, cfg.Leaps.DeltaMax), 24)
	printKeyValue("min fundamental score", fmt.Sprintf("%.0f", cfg.Decision.MinFundamentalScore), 24)
	printKeyValue("max iv/hv ratio", fmt.Sprintf("%.2f", cfg.Decision.MaxIVHVRatio), 24)
	printKeyValue("earnings buffer days", fmt.Sprintf("%d", cfg.Decision.EarningsBufferDays), 24)
	printKeyValue("take profit", fmt.Sprintf("%.0f%%", cfg.Portfolio.TakeProfitPct), 24)
	printKeyValue("stop loss", fmt.Sprintf("%.0f%%", cfg.Portfolio.StopLossPct), 24)
	printKeyValue("scan cron", cfg.Schedule.ScanCron, 24)
	printKeyValue("portfolio cron", cfg.Schedule.PortfolioCron, 24)

	return nil
}
