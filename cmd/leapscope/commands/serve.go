package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leapscope/leapscope/internal/api"
	"github.com/leapscope/leapscope/internal/api/handlers"
)

// serveCmd starts the read-only JSON API.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Serves scan history, per-symbol decisions, open positions, and alerts
over a read-only JSON API. Requires a database.

Endpoints:
  GET  /health
  GET  /api/scans
  GET  /api/scans/{id}
  GET  /api/symbols/{symbol}
  GET  /api/symbols/{symbol}/history
  GET  /api/positions
  GET  /api/positions/{id}
  GET  /api/alerts
  POST /api/alerts/{id}/ack

Example:
  go run ./cmd/leapscope serve
  go run ./cmd/leapscope serve --port 8090`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from PORT env)")
}

func runServe(cmd *cobra.Command, args []string) error {
	stack, err := initStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	if stack.db == nil {
		return fmt.Errorf("API server requires a database (set DATABASE_URL)")
	}

	if servePort != "" {
		stack.cfg.Port = servePort
	}

	scanHandler := handlers.NewScanHandler(stack.historyRepo, stack.auditRepo, stack.log)
	positionHandler := handlers.NewPositionHandler(stack.positionRepo, stack.log)
	alertHandler := handlers.NewAlertHandler(stack.alertRepo, stack.log)

	router := api.NewRouter(scanHandler, positionHandler, alertHandler, stack.log)
	server := api.New(stack.cfg, stack.log, router)

	go func() {
		if err := server.Start(); err != nil {
			stack.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("Server running on http://localhost:%s (Ctrl+C to stop)\n", stack.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	return nil
}
