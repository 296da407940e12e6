package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leapscope/leapscope/internal/contracts"
)

// Repository persists decision records. Rows are insert-only; there is no
// update path, matching the append-only trail semantics.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record appends one decision. The full result is stored as JSON next to
// the indexed columns so any decision can be replayed without the engine.
func (r *Repository) Record(ctx context.Context, result *contracts.ConvictionResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal decision: %w", err)
	}

	query := `
		INSERT INTO audit_decisions (
			symbol, asset_class, evaluated_at, config_hash,
			composite, band, decision, earnings_risk, record
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var composite *float64
	if !result.Composite.Unknown() {
		composite = &result.Composite.Value
	}

	_, err = r.pool.Exec(ctx, query,
		result.Symbol, result.AssetClass, result.EvaluatedAt, result.ConfigHash,
		composite, result.Band, result.Decision, result.EarningsRisk, payload,
	)
	if err != nil {
		return fmt.Errorf("failed to record decision: %w", err)
	}
	return nil
}

// Latest returns the most recent decision for a symbol.
func (r *Repository) Latest(ctx context.Context, symbol string) (*contracts.ConvictionResult, error) {
	query := `
		SELECT record
		FROM audit_decisions
		WHERE symbol = $1
		ORDER BY evaluated_at DESC
		LIMIT 1
	`

	var payload []byte
	err := r.pool.QueryRow(ctx, query, symbol).Scan(&payload)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest decision: %w", err)
	}

	var result contracts.ConvictionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decision: %w", err)
	}
	return &result, nil
}

// Range returns a symbol's decisions inside a time window, oldest first.
func (r *Repository) Range(ctx context.Context, symbol string, from, to time.Time) ([]contracts.ConvictionResult, error) {
	query := `
		SELECT record
		FROM audit_decisions
		WHERE symbol = $1 AND evaluated_at >= $2 AND evaluated_at <= $3
		ORDER BY evaluated_at
	`

	rows, err := r.pool.Query(ctx, query, symbol, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query decisions: %w", err)
	}
	defer rows.Close()

	results := make([]contracts.ConvictionResult, 0)
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		var result contracts.ConvictionResult
		if err := json.Unmarshal(payload, &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal decision: %w", err)
		}
		results = append(results, result)
	}

	return results, rows.Err()
}
