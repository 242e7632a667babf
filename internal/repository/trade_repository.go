package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/yourusername/dca-analytics/internal/database"
	"github.com/yourusername/dca-analytics/internal/models"
)

const tradeColumns = `trade_id, symbol, side, entry_price, avg_price, close_price,
		total_qty, total_margin, leverage, realized_pnl, pnl_pct_margin, pnl_pct_equity,
		equity_at_entry, equity_at_close, is_win, max_dca_reached, tp1_hit, close_reason,
		signal_leverage, zone_source, zones_used, equity_pct_per_trade,
		opened_at, closed_at, duration_minutes, created_at, updated_at`

// PostgresTradeRepository implements TradeRepository for PostgreSQL
type PostgresTradeRepository struct {
	db *database.DB
}

// NewPostgresTradeRepository creates a new trade repository
func NewPostgresTradeRepository(db *database.DB) TradeRepository {
	return &PostgresTradeRepository{db: db}
}

// ListClosed retrieves closed trades newest first, optionally restricted to a
// date window. Newest-first ordering makes Limit mean "most recent N".
func (r *PostgresTradeRepository) ListClosed(ctx context.Context, filter TradeFilter) ([]*models.Trade, error) {
	query := fmt.Sprintf(`SELECT %s FROM trades WHERE closed_at IS NOT NULL AND close_price IS NOT NULL`, tradeColumns)

	args := []interface{}{}
	argPos := 1

	switch {
	case filter.From != nil || filter.To != nil:
		if filter.From != nil {
			query += fmt.Sprintf(" AND closed_at >= $%d", argPos)
			args = append(args, *filter.From)
			argPos++
		}
		if filter.To != nil {
			query += fmt.Sprintf(" AND closed_at <= $%d", argPos)
			args = append(args, *filter.To)
			argPos++
		}
	case filter.Days > 0:
		query += fmt.Sprintf(" AND closed_at >= NOW() - ($%d * INTERVAL '1 day')", argPos)
		args = append(args, filter.Days)
		argPos++
	}

	query += " ORDER BY closed_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argPos)
		args = append(args, filter.Limit)
	}

	rows, err := r.db.GetPool().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list closed trades: %w", err)
	}
	defer rows.Close()

	return scanTrades(rows)
}

// GetByID retrieves a single trade by its exchange trade ID
func (r *PostgresTradeRepository) GetByID(ctx context.Context, tradeID string) (*models.Trade, error) {
	query := fmt.Sprintf(`SELECT %s FROM trades WHERE trade_id = $1`, tradeColumns)

	trade := &models.Trade{}
	err := scanTrade(r.db.GetPool().QueryRow(ctx, query, tradeID), trade)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trade: %w", err)
	}

	return trade, nil
}

// Upsert inserts a trade or updates it in place when the trade ID already exists
func (r *PostgresTradeRepository) Upsert(ctx context.Context, trade *models.Trade) error {
	if trade.TradeID == "" {
		return fmt.Errorf("trade id is required")
	}

	query := `
		INSERT INTO trades (
			trade_id, symbol, side, entry_price, avg_price, close_price,
			total_qty, total_margin, leverage, realized_pnl, pnl_pct_margin, pnl_pct_equity,
			equity_at_entry, equity_at_close, is_win, max_dca_reached, tp1_hit, close_reason,
			signal_leverage, zone_source, zones_used, equity_pct_per_trade,
			opened_at, closed_at, duration_minutes
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25
		)
		ON CONFLICT (trade_id) DO UPDATE SET
			avg_price = EXCLUDED.avg_price,
			close_price = EXCLUDED.close_price,
			total_qty = EXCLUDED.total_qty,
			total_margin = EXCLUDED.total_margin,
			realized_pnl = EXCLUDED.realized_pnl,
			pnl_pct_margin = EXCLUDED.pnl_pct_margin,
			pnl_pct_equity = EXCLUDED.pnl_pct_equity,
			equity_at_close = EXCLUDED.equity_at_close,
			is_win = EXCLUDED.is_win,
			max_dca_reached = EXCLUDED.max_dca_reached,
			tp1_hit = EXCLUDED.tp1_hit,
			close_reason = EXCLUDED.close_reason,
			closed_at = EXCLUDED.closed_at,
			duration_minutes = EXCLUDED.duration_minutes,
			updated_at = NOW()
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		trade.TradeID, trade.Symbol, trade.Side, trade.EntryPrice, trade.AvgPrice, trade.ClosePrice,
		trade.TotalQty, trade.TotalMargin, trade.Leverage, trade.RealizedPnL, trade.PnLPctMargin, trade.PnLPctEquity,
		trade.EquityAtEntry, trade.EquityAtClose, trade.IsWin, trade.MaxDCAReached, trade.TP1Hit, trade.CloseReason,
		trade.SignalLeverage, trade.ZoneSource, trade.ZonesUsed, trade.EquityPctPerTrade,
		trade.OpenedAt, trade.ClosedAt, trade.DurationMinutes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert trade: %w", err)
	}

	return nil
}

// ExistsNear reports whether any trade for the symbol closed within the given
// window around closedAt. Used to dedupe exchange records that were already
// written under a different trade ID.
func (r *PostgresTradeRepository) ExistsNear(ctx context.Context, symbol string, closedAt time.Time, window time.Duration) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM trades
			WHERE symbol = $1
			  AND closed_at IS NOT NULL
			  AND closed_at BETWEEN $2 AND $3
		)
	`

	var exists bool
	err := r.db.GetPool().QueryRow(ctx, query, symbol, closedAt.Add(-window), closedAt.Add(window)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check for nearby trade: %w", err)
	}

	return exists, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrade(row rowScanner, t *models.Trade) error {
	return row.Scan(
		&t.TradeID, &t.Symbol, &t.Side, &t.EntryPrice, &t.AvgPrice, &t.ClosePrice,
		&t.TotalQty, &t.TotalMargin, &t.Leverage, &t.RealizedPnL, &t.PnLPctMargin, &t.PnLPctEquity,
		&t.EquityAtEntry, &t.EquityAtClose, &t.IsWin, &t.MaxDCAReached, &t.TP1Hit, &t.CloseReason,
		&t.SignalLeverage, &t.ZoneSource, &t.ZonesUsed, &t.EquityPctPerTrade,
		&t.OpenedAt, &t.ClosedAt, &t.DurationMinutes, &t.CreatedAt, &t.UpdatedAt,
	)
}

func scanTrades(rows pgx.Rows) ([]*models.Trade, error) {
	var trades []*models.Trade
	for rows.Next() {
		trade := &models.Trade{}
		if err := scanTrade(rows, trade); err != nil {
			return nil, fmt.Errorf("failed to scan trade: %w", err)
		}
		trades = append(trades, trade)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate trades: %w", err)
	}
	return trades, nil
}
