package models

import (
	"time"
)

// EquitySnapshot represents one daily equity record for the dashboard chart
type EquitySnapshot struct {
	Date        time.Time `db:"date" json:"date"`
	Equity      float64   `db:"equity" json:"equity"`
	DailyPnL    float64   `db:"daily_pnl" json:"daily_pnl"`
	DailyPnLPct float64   `db:"daily_pnl_pct" json:"daily_pnl_pct"`
	TradesCount int       `db:"trades_count" json:"trades_count"`
	WinsCount   int       `db:"wins_count" json:"wins_count"`
	LossesCount int       `db:"losses_count" json:"losses_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
