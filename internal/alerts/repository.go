package alerts

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leapscope/leapscope/pkg/logger"
)

// Repository persists alerts.
type Repository struct {
	pool   *pgxpool.Pool
	logger *logger.Logger
}

// NewRepository creates an alert repository.
func NewRepository(pool *pgxpool.Pool, log *logger.Logger) *Repository {
	return &Repository{pool: pool, logger: log}
}

// Save stores one alert, filling its generated id.
func (r *Repository) Save(ctx context.Context, a *Alert) error {
	query := `
		INSERT INTO alerts (type, severity, symbol, title, message, created_at, acknowledged)
		VALUES ($1, $2, $3, $4, $5, $6, false)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		a.Type, a.Severity, a.Symbol, a.Title, a.Message, a.CreatedAt,
	).Scan(&a.ID)
	if err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}

	r.logger.WithFields(map[string]interface{}{
		"alert":    a.ID,
		"type":     a.Type,
		"symbol":   a.Symbol,
		"severity": a.Severity,
	}).Info("alert raised")
	return nil
}

// Unacknowledged lists open alerts, newest first.
func (r *Repository) Unacknowledged(ctx context.Context, limit int) ([]Alert, error) {
	query := `
		SELECT id, type, severity, symbol, title, message, created_at, acknowledged
		FROM alerts
		WHERE NOT acknowledged
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	out := make([]Alert, 0)
	for rows.Next() {
		var a Alert
		err := rows.Scan(&a.ID, &a.Type, &a.Severity, &a.Symbol, &a.Title,
			&a.Message, &a.CreatedAt, &a.Acknowledged)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		out = append(out, a)
	}

	return out, rows.Err()
}

// Acknowledge marks one alert as handled.
func (r *Repository) Acknowledge(ctx context.Context, id string) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE alerts SET acknowledged = true WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to acknowledge alert: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("alert not found: %s", id)
	}
	return nil
}
