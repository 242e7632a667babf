package models

import (
	"time"
)

// TradeSide represents the direction of a position
type TradeSide string

const (
	TradeSideLong  TradeSide = "long"
	TradeSideShort TradeSide = "short"
	// TradeSideUpdate marks a manual correction record, not a real position.
	// Correction rows carry no meaningful P&L and stay out of every aggregate.
	TradeSideUpdate TradeSide = "update"
)

// DefaultEquityPctPerTrade is the historical slot allocation used for trades
// recorded before equity_pct_per_trade existed.
const DefaultEquityPctPerTrade = 5.0

// Trade represents a closed position recorded by the upstream execution bot
type Trade struct {
	TradeID           string     `db:"trade_id" json:"trade_id" validate:"required"`
	Symbol            string     `db:"symbol" json:"symbol" validate:"required"`
	Side              TradeSide  `db:"side" json:"side" validate:"required,oneof=long short update"`
	EntryPrice        float64    `db:"entry_price" json:"entry_price"`
	AvgPrice          float64    `db:"avg_price" json:"avg_price"` // volume-weighted average entry
	ClosePrice        *float64   `db:"close_price" json:"close_price"`
	TotalQty          float64    `db:"total_qty" json:"total_qty"`
	TotalMargin       float64    `db:"total_margin" json:"total_margin"`
	Leverage          int        `db:"leverage" json:"leverage"`
	RealizedPnL       float64    `db:"realized_pnl" json:"realized_pnl"`
	PnLPctMargin      float64    `db:"pnl_pct_margin" json:"pnl_pct_margin"`
	PnLPctEquity      float64    `db:"pnl_pct_equity" json:"pnl_pct_equity"`
	EquityAtEntry     float64    `db:"equity_at_entry" json:"equity_at_entry"`
	EquityAtClose     float64    `db:"equity_at_close" json:"equity_at_close"`
	IsWin             bool       `db:"is_win" json:"is_win"`
	MaxDCAReached     int        `db:"max_dca_reached" json:"max_dca_reached"` // 0 = no DCA fill
	TP1Hit            bool       `db:"tp1_hit" json:"tp1_hit"`
	CloseReason       string     `db:"close_reason" json:"close_reason"`
	SignalLeverage    int        `db:"signal_leverage" json:"signal_leverage"`
	ZoneSource        string     `db:"zone_source" json:"zone_source"`
	ZonesUsed         int        `db:"zones_used" json:"zones_used"`
	EquityPctPerTrade float64    `db:"equity_pct_per_trade" json:"equity_pct_per_trade"`
	OpenedAt          *time.Time `db:"opened_at" json:"opened_at"`
	ClosedAt          *time.Time `db:"closed_at" json:"closed_at"`
	DurationMinutes   *int       `db:"duration_minutes" json:"duration_minutes"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// IsClosed reports whether the trade has been fully closed.
// Open trades have no close price or close timestamp and never
// participate in analytics.
func (t *Trade) IsClosed() bool {
	return t.ClosePrice != nil && t.ClosedAt != nil
}

// IsCorrection reports whether this row is a manual correction record
// rather than a real position.
func (t *Trade) IsCorrection() bool {
	return t.Side == TradeSideUpdate
}

// SlotPct returns the equity percentage allocated to this trade when it was
// opened, falling back to the historical default for records predating the
// equity_pct_per_trade field.
func (t *Trade) SlotPct() float64 {
	if t.EquityPctPerTrade > 0 {
		return t.EquityPctPerTrade
	}
	return DefaultEquityPctPerTrade
}

// Duration returns the trade duration, or zero if either timestamp is missing.
func (t *Trade) Duration() time.Duration {
	if t.OpenedAt == nil || t.ClosedAt == nil {
		return 0
	}
	return t.ClosedAt.Sub(*t.OpenedAt)
}
