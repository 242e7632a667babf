package database

import (
	"context"
	"fmt"
)

// schemaStatements create the tables the analytics service reads and writes.
// The web dashboard and the trading bot share the same schema, so every
// statement is idempotent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS trades (
		trade_id VARCHAR(64) PRIMARY KEY,
		symbol VARCHAR(32) NOT NULL,
		side VARCHAR(16) NOT NULL,
		entry_price DOUBLE PRECISION,
		avg_price DOUBLE PRECISION,
		close_price DOUBLE PRECISION,
		total_qty DOUBLE PRECISION DEFAULT 0,
		total_margin DOUBLE PRECISION DEFAULT 0,
		leverage INTEGER DEFAULT 0,
		realized_pnl DOUBLE PRECISION DEFAULT 0,
		pnl_pct_margin DOUBLE PRECISION DEFAULT 0,
		pnl_pct_equity DOUBLE PRECISION DEFAULT 0,
		equity_at_entry DOUBLE PRECISION DEFAULT 0,
		equity_at_close DOUBLE PRECISION DEFAULT 0,
		is_win BOOLEAN DEFAULT FALSE,
		max_dca_reached INTEGER DEFAULT 0,
		tp1_hit BOOLEAN DEFAULT FALSE,
		close_reason TEXT DEFAULT '',
		signal_leverage INTEGER DEFAULT 0,
		zone_source VARCHAR(32) DEFAULT '',
		zones_used INTEGER DEFAULT 0,
		equity_pct_per_trade DOUBLE PRECISION DEFAULT 0,
		opened_at TIMESTAMPTZ,
		closed_at TIMESTAMPTZ,
		duration_minutes INTEGER,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_closed_at ON trades (closed_at)`,
	`CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades (symbol)`,
	`CREATE TABLE IF NOT EXISTS daily_equity (
		date DATE PRIMARY KEY,
		equity DOUBLE PRECISION NOT NULL,
		daily_pnl DOUBLE PRECISION DEFAULT 0,
		daily_pnl_pct DOUBLE PRECISION DEFAULT 0,
		trades_count INTEGER DEFAULT 0,
		wins_count INTEGER DEFAULT 0,
		losses_count INTEGER DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	// Older deployments predate per-trade slot sizing.
	`ALTER TABLE trades ADD COLUMN IF NOT EXISTS equity_pct_per_trade DOUBLE PRECISION DEFAULT 0`,
}

// InitSchema ensures the required tables and indexes exist
func (db *DB) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
