package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/dca-analytics/internal/database"
	"github.com/yourusername/dca-analytics/internal/models"
)

// PostgresEquityRepository implements EquityRepository for PostgreSQL
type PostgresEquityRepository struct {
	db *database.DB
}

// NewPostgresEquityRepository creates a new equity repository
func NewPostgresEquityRepository(db *database.DB) EquityRepository {
	return &PostgresEquityRepository{db: db}
}

// History retrieves daily equity snapshots in ascending date order
func (r *PostgresEquityRepository) History(ctx context.Context, filter EquityFilter) ([]*models.EquitySnapshot, error) {
	query := `
		SELECT date, equity, daily_pnl, daily_pnl_pct, trades_count, wins_count, losses_count, created_at
		FROM daily_equity
	`

	args := []interface{}{}
	argPos := 1
	limitMostRecent := false

	switch {
	case filter.From != nil || filter.To != nil:
		where := ""
		if filter.From != nil {
			where += fmt.Sprintf(" date >= $%d", argPos)
			args = append(args, *filter.From)
			argPos++
		}
		if filter.To != nil {
			if where != "" {
				where += " AND"
			}
			where += fmt.Sprintf(" date <= $%d", argPos)
			args = append(args, *filter.To)
			argPos++
		}
		query += " WHERE" + where + " ORDER BY date ASC"
	case filter.Days > 0:
		// Most recent N days, still returned ascending.
		query += fmt.Sprintf(" ORDER BY date DESC LIMIT $%d", argPos)
		args = append(args, filter.Days)
		limitMostRecent = true
	default:
		query += " ORDER BY date ASC"
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query equity history: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.EquitySnapshot
	for rows.Next() {
		s := &models.EquitySnapshot{}
		if err := rows.Scan(
			&s.Date, &s.Equity, &s.DailyPnL, &s.DailyPnLPct,
			&s.TradesCount, &s.WinsCount, &s.LossesCount, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan equity snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate equity history: %w", err)
	}

	if limitMostRecent {
		for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
			snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
		}
	}

	return snapshots, nil
}

// SaveSnapshot inserts or replaces the snapshot for its date
func (r *PostgresEquityRepository) SaveSnapshot(ctx context.Context, snapshot *models.EquitySnapshot) error {
	query := `
		INSERT INTO daily_equity (date, equity, daily_pnl, daily_pnl_pct, trades_count, wins_count, losses_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO UPDATE SET
			equity = EXCLUDED.equity,
			daily_pnl = EXCLUDED.daily_pnl,
			daily_pnl_pct = EXCLUDED.daily_pnl_pct,
			trades_count = EXCLUDED.trades_count,
			wins_count = EXCLUDED.wins_count,
			losses_count = EXCLUDED.losses_count
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		snapshot.Date, snapshot.Equity, snapshot.DailyPnL, snapshot.DailyPnLPct,
		snapshot.TradesCount, snapshot.WinsCount, snapshot.LossesCount,
	)
	if err != nil {
		return fmt.Errorf("failed to save equity snapshot: %w", err)
	}

	return nil
}

// Latest retrieves the most recent equity snapshot
func (r *PostgresEquityRepository) Latest(ctx context.Context) (*models.EquitySnapshot, error) {
	query := `
		SELECT date, equity, daily_pnl, daily_pnl_pct, trades_count, wins_count, losses_count, created_at
		FROM daily_equity
		ORDER BY date DESC
		LIMIT 1
	`

	s := &models.EquitySnapshot{}
	err := r.db.GetPool().QueryRow(ctx, query).Scan(
		&s.Date, &s.Equity, &s.DailyPnL, &s.DailyPnLPct,
		&s.TradesCount, &s.WinsCount, &s.LossesCount, &s.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest equity snapshot: %w", err)
	}

	return s, nil
}
