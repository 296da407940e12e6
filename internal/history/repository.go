package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leapscope/leapscope/internal/contracts"
)

// Run is one completed scan: every symbol's decision under one config.
type Run struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	ConfigHash string    `json:"config_hash"`
	Symbols    int       `json:"symbols"`
}

// Repository persists scan runs and their per-symbol results.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a scan history repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// SaveRun stores a completed run and all its results in one transaction.
func (r *Repository) SaveRun(ctx context.Context, run *Run, results []contracts.ConvictionResult) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		"INSERT INTO scan_runs (id, started_at, config_hash, symbols) VALUES ($1, $2, $3, $4)",
		run.ID, run.StartedAt, run.ConfigHash, len(results),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	query := `
		INSERT INTO scan_results (run_id, symbol, evaluated_at, decision, band, record)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for i := range results {
		res := &results[i]
		payload, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal result: %w", err)
		}
		_, err = tx.Exec(ctx, query,
			run.ID, res.Symbol, res.EvaluatedAt, res.Decision, res.Band, payload)
		if err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// RecentRuns lists the latest runs, newest first.
func (r *Repository) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, started_at, config_hash, symbols
		FROM scan_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.ConfigHash, &run.Symbols); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// RunResults returns every result of one run.
func (r *Repository) RunResults(ctx context.Context, runID string) ([]contracts.ConvictionResult, error) {
	query := `
		SELECT record
		FROM scan_results
		WHERE run_id = $1
		ORDER BY symbol
	`

	rows, err := r.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	results := make([]contracts.ConvictionResult, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		var res contracts.ConvictionResult
		if err := json.Unmarshal(payload, &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}
		results = append(results, res)
	}

	return results, rows.Err()
}

// PreviousDecision returns a symbol's decision from the run before the
// given one, or empty when there is no prior run.
func (r *Repository) PreviousDecision(ctx context.Context, symbol, beforeRunID string) (contracts.Decision, error) {
	query := `
		SELECT sr.decision
		FROM scan_results sr
		JOIN scan_runs run ON run.id = sr.run_id
		WHERE sr.symbol = $1
		  AND run.started_at < (SELECT started_at FROM scan_runs WHERE id = $2)
		ORDER BY run.started_at DESC
		LIMIT 1
	`

	var decision contracts.Decision
	err := r.pool.QueryRow(ctx, query, symbol, beforeRunID).Scan(&decision)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get previous decision: %w", err)
	}
	return decision, nil
}
