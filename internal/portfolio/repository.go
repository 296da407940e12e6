package portfolio

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/leapscope/leapscope/internal/contracts"
)

// Repository persists open positions. Position state is owned by callers;
// the engine only ever reads snapshots from here.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a position repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// OpenPositions returns all positions without a close date.
func (r *Repository) OpenPositions(ctx context.Context) ([]contracts.Position, error) {
	query := `
		SELECT
			id, symbol, asset_class, contract_symbol, expiration, strike,
			option_type, quantity, entry_date, cost_basis, current_mark
		FROM positions
		WHERE closed_at IS NULL
		ORDER BY entry_date
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query open positions: %w", err)
	}
	defer rows.Close()

	positions := make([]contracts.Position, 0)
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}

	return positions, rows.Err()
}

// GetPosition returns one position by id, or nil when it does not exist.
func (r *Repository) GetPosition(ctx context.Context, id string) (*contracts.Position, error) {
	query := `
		SELECT
			id, symbol, asset_class, contract_symbol, expiration, strike,
			option_type, quantity, entry_date, cost_basis, current_mark
		FROM positions
		WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanPosition(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePosition inserts or updates a position snapshot.
func (r *Repository) SavePosition(ctx context.Context, p *contracts.Position) error {
	query := `
		INSERT INTO positions (
			id, symbol, asset_class, contract_symbol, expiration, strike,
			option_type, quantity, entry_date, cost_basis, current_mark
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			current_mark = EXCLUDED.current_mark,
			quantity = EXCLUDED.quantity
	`

	var mark *float64
	if !p.CurrentMark.Unknown() {
		mark = &p.CurrentMark.Value
	}

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Symbol, p.AssetClass, p.Contract.Symbol, p.Contract.Expiration,
		p.Contract.Strike, p.Contract.Type, p.Quantity, p.EntryDate, p.CostBasis, mark,
	)
	if err != nil {
		return fmt.Errorf("failed to save position: %w", err)
	}
	return nil
}

// UpdateMark refreshes one position's current mark.
func (r *Repository) UpdateMark(ctx context.Context, id string, mark contracts.Metric) error {
	var v *float64
	if !mark.Unknown() {
		v = &mark.Value
	}

	result, err := r.pool.Exec(ctx,
		"UPDATE positions SET current_mark = $2 WHERE id = $1", id, v)
	if err != nil {
		return fmt.Errorf("failed to update mark: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("position not found: %s", id)
	}
	return nil
}

// ClosePosition stamps a close date; the row stays for history.
func (r *Repository) ClosePosition(ctx context.Context, id string, at time.Time) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE positions SET closed_at = $2 WHERE id = $1 AND closed_at IS NULL", id, at)
	if err != nil {
		return fmt.Errorf("failed to close position: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("open position not found: %s", id)
	}
	return nil
}

func scanPosition(row pgx.Row) (contracts.Position, error) {
	var p contracts.Position
	var mark *float64
	err := row.Scan(
		&p.ID, &p.Symbol, &p.AssetClass, &p.Contract.Symbol, &p.Contract.Expiration,
		&p.Contract.Strike, &p.Contract.Type, &p.Quantity, &p.EntryDate, &p.CostBasis, &mark,
	)
	if err != nil {
		return p, err
	}
	p.Contract.Underlying = p.Symbol
	if mark != nil {
		p.CurrentMark = contracts.MetricOf(*mark)
	}
	return p, nil
}
