package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/leapscope/leapscope/internal/alerts"
	"github.com/leapscope/leapscope/internal/audit"
	"github.com/leapscope/leapscope/internal/contracts"
	"github.com/leapscope/leapscope/internal/engine"
	"github.com/leapscope/leapscope/internal/history"
	"github.com/leapscope/leapscope/internal/scanconfig"
	"github.com/leapscope/leapscope/pkg/logger"
)

const (
	// Daily history window: two years covers the slow moving average with
	// margin for market holidays.
	historyLookbackDays = 730

	// Bars older than this fail the freshness check and the series is
	// treated as missing.
	maxDataAge = 7 * 24 * time.Hour

	defaultWorkers = 8
)

// Scanner fans one strategy config out across a symbol universe. Each
// symbol is independent: fetch, evaluate, record. One symbol's bad data
// never aborts the batch; only an invalid config does.
type Scanner struct {
	provider  contracts.MarketDataProvider
	engine    *engine.Engine
	trail     *audit.Trail
	recorder  contracts.DecisionRecorder
	history   *history.Repository
	alertRepo *alerts.Repository
	positions contracts.PositionSource
	logger    *logger.Logger
	workers   int
}

// Options carries the optional persistence collaborators. Nil fields are
// skipped, so the scanner runs standalone with just a provider.
type Options struct {
	Recorder  contracts.DecisionRecorder
	History   *history.Repository
	Alerts    *alerts.Repository
	Positions contracts.PositionSource
	Workers   int
}

// New creates a scanner.
func New(provider contracts.MarketDataProvider, eng *engine.Engine, log *logger.Logger, opts Options) *Scanner {
	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &Scanner{
		provider:  provider,
		engine:    eng,
		trail:     audit.NewTrail(),
		recorder:  opts.Recorder,
		history:   opts.History,
		alertRepo: opts.Alerts,
		positions: opts.Positions,
		logger:    log,
		workers:   workers,
	}
}

// Trail exposes the in-memory audit trail of this scanner's decisions.
func (s *Scanner) Trail() *audit.Trail {
	return s.trail
}

// RunResult summarizes one completed scan.
type RunResult struct {
	RunID     string
	StartedAt time.Time
	Results   []contracts.ConvictionResult
}

// Run evaluates every symbol under one validated config. The config is
// checked before any fetch: a malformed strategy document is batch-fatal.
func (s *Scanner) Run(ctx context.Context, symbols []string, cfg *scanconfig.Config) (*RunResult, error) {
	if err := scanconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}

	startedAt := time.Now()
	run := &RunResult{
		RunID:     "scan-" + startedAt.UTC().Format("20060102T150405"),
		StartedAt: startedAt,
		Results:   make([]contracts.ConvictionResult, len(symbols)),
	}

	s.logger.WithFields(map[string]interface{}{
		"run":     run.RunID,
		"symbols": len(symbols),
		"workers": s.workers,
	}).Info("scan started")

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.workers)
	for i, symbol := range symbols {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, symbol string) {
			defer wg.Done()
			defer func() { <-sem }()
			run.Results[i] = *s.evaluateSymbol(ctx, symbol, startedAt, cfg)
		}(i, symbol)
	}
	wg.Wait()

	for i := range run.Results {
		s.trail.Append(&run.Results[i])
		if s.recorder != nil {
			if err := s.recorder.Record(ctx, &run.Results[i]); err != nil {
				s.logger.WithError(err).Warn("decision record failed")
			}
		}
	}

	s.persistAndAlert(ctx, run)

	s.logger.WithFields(map[string]interface{}{
		"run":      run.RunID,
		"duration": time.Since(startedAt).String(),
	}).Info("scan finished")
	return run, nil
}

// evaluateSymbol fetches all inputs for one symbol and evaluates it. Any
// fetch failure leaves its input nil, which the engine degrades to
// UNKNOWN per the gate rules.
func (s *Scanner) evaluateSymbol(ctx context.Context, symbol string, at time.Time, cfg *scanconfig.Config) *contracts.ConvictionResult {
	series := s.fetchHistory(ctx, symbol, at)
	snap, class := s.fetchFundamentals(ctx, symbol)
	chain := s.fetchChain(ctx, symbol)
	earnings := s.fetchEarnings(ctx, symbol)

	return s.engine.Evaluate(symbol, series, snap, class, chain, earnings, at, cfg)
}

func (s *Scanner) fetchHistory(ctx context.Context, symbol string, at time.Time) *contracts.OHLCVSeries {
	from := at.AddDate(0, 0, -historyLookbackDays)
	series, err := s.provider.GetDailyHistory(ctx, symbol, from, at)
	if err != nil {
		s.logger.WithField("symbol", symbol).WithError(err).Warn("history fetch failed")
		return nil
	}
	if series.Len() == 0 {
		return nil
	}

	last := series.Bars[series.Len()-1].Date
	if at.Sub(last) > maxDataAge {
		s.logger.WithFields(map[string]interface{}{
			"symbol":   symbol,
			"last_bar": last.Format("2006-01-02"),
		}).Warn("stale history rejected")
		return nil
	}
	return series
}

func (s *Scanner) fetchFundamentals(ctx context.Context, symbol string) (*contracts.FundamentalSnapshot, contracts.AssetClass) {
	snap, class, err := s.provider.GetFundamentals(ctx, symbol)
	if err != nil {
		s.logger.WithField("symbol", symbol).WithError(err).Warn("fundamentals fetch failed")
		return nil, contracts.AssetEquity
	}
	return snap, class
}

func (s *Scanner) fetchChain(ctx context.Context, symbol string) *contracts.OptionChain {
	chain, err := s.provider.GetOptionChain(ctx, symbol)
	if err != nil {
		s.logger.WithField("symbol", symbol).WithError(err).Warn("chain fetch failed")
		return nil
	}
	return chain
}

func (s *Scanner) fetchEarnings(ctx context.Context, symbol string) *time.Time {
	date, err := s.provider.NextEarningsDate(ctx, symbol)
	if err != nil {
		s.logger.WithField("symbol", symbol).WithError(err).Warn("earnings lookup failed")
		return nil
	}
	return date
}

// persistAndAlert saves the run and raises decision-movement alerts. Both
// stores are optional and failures only log: persistence problems never
// invalidate an already-computed scan.
func (s *Scanner) persistAndAlert(ctx context.Context, run *RunResult) {
	if s.history == nil {
		return
	}

	hash := ""
	if len(run.Results) > 0 {
		hash = run.Results[0].ConfigHash
	}
	err := s.history.SaveRun(ctx, &history.Run{
		ID:         run.RunID,
		StartedAt:  run.StartedAt,
		ConfigHash: hash,
	}, run.Results)
	if err != nil {
		s.logger.WithError(err).Warn("scan history save failed")
		return
	}

	if s.alertRepo == nil {
		return
	}
	for i := range run.Results {
		res := &run.Results[i]
		previous, err := s.history.PreviousDecision(ctx, res.Symbol, run.RunID)
		if err != nil {
			s.logger.WithField("symbol", res.Symbol).WithError(err).Warn("decision diff failed")
			continue
		}
		if alert := alerts.FromScanResult(res, history.Diff(previous, res.Decision)); alert != nil {
			if err := s.alertRepo.Save(ctx, alert); err != nil {
				s.logger.WithError(err).Warn("alert save failed")
			}
		}
	}
}

// RunPortfolio re-evaluates every open position and raises its signals as
// alerts. Missing data for any check fails open.
func (s *Scanner) RunPortfolio(ctx context.Context, cfg *scanconfig.Config) ([]contracts.ManagementSignal, error) {
	if err := scanconfig.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid strategy config: %w", err)
	}
	if s.positions == nil {
		return nil, fmt.Errorf("no position source configured")
	}

	positions, err := s.positions.OpenPositions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load positions: %w", err)
	}

	at := time.Now()
	var all []contracts.ManagementSignal
	for i := range positions {
		pos := &positions[i]
		series := s.fetchHistory(ctx, pos.Symbol, at)
		earnings := s.fetchEarnings(ctx, pos.Symbol)

		signals := s.engine.EvaluatePosition(pos, series, earnings, at, cfg)
		all = append(all, signals...)

		if s.alertRepo != nil {
			for _, sig := range signals {
				if err := s.alertRepo.Save(ctx, alerts.FromManagementSignal(sig)); err != nil {
					s.logger.WithError(err).Warn("alert save failed")
				}
			}
		}
	}

	return all, nil
}
