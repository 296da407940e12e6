package commands

import (
	"fmt"

	"github.com/leapscope/leapscope/internal/alerts"
	"github.com/leapscope/leapscope/internal/audit"
	"github.com/leapscope/leapscope/internal/engine"
	"github.com/leapscope/leapscope/internal/history"
	"github.com/leapscope/leapscope/internal/portfolio"
	"github.com/leapscope/leapscope/internal/providers"
	"github.com/leapscope/leapscope/internal/scanner"
	"github.com/leapscope/leapscope/pkg/config"
	"github.com/leapscope/leapscope/pkg/database"
	"github.com/leapscope/leapscope/pkg/logger"
	"github.com/leapscope/leapscope/pkg/redis"
)

// stack bundles the wired collaborators the commands share. The database is
// optional: without DATABASE_URL the scanner runs with its in-memory trail
// only and nothing persists.
type stack struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	redis    *redis.Client
	provider *providers.Composite
	scanner  *scanner.Scanner

	auditRepo    *audit.Repository
	historyRepo  *history.Repository
	alertRepo    *alerts.Repository
	positionRepo *portfolio.Repository
}

// initStack loads config and wires the full pipeline.
func initStack() (*stack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if strategyFile != "" {
		cfg.StrategyFile = strategyFile
	}

	log := logger.New(cfg)

	rdb, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	s := &stack{
		cfg:      cfg,
		log:      log,
		redis:    rdb,
		provider: providers.NewComposite(cfg, rdb, log),
	}

	opts := scanner.Options{}

	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		s.db = db
		s.auditRepo = audit.NewRepository(db.Pool)
		s.historyRepo = history.NewRepository(db.Pool)
		s.alertRepo = alerts.NewRepository(db.Pool, log)
		s.positionRepo = portfolio.NewRepository(db.Pool)

		opts.Recorder = s.auditRepo
		opts.History = s.historyRepo
		opts.Alerts = s.alertRepo
		opts.Positions = s.positionRepo
	}

	s.scanner = scanner.New(s.provider, engine.New(log), log, opts)

	return s, nil
}

// Close releases connections.
func (s *stack) Close() {
	if s.db != nil {
		s.db.Close()
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
}
