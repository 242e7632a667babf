package models

// Stats represents aggregate performance over a filtered set of closed trades.
// Percentage fields are rounded at the boundary: rate fields to 1 decimal,
// PnL percentage fields to 2 decimals.
type Stats struct {
	TotalTrades int `json:"total_trades"`

	// Wins, Losses and Breakeven are a true partition of TotalTrades.
	// A loss is a clean stop-out (no take-profit credit, negative PnL);
	// breakeven means TP credit was earned but the net result is non-positive.
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Breakeven int     `json:"breakeven"`
	WinRate   float64 `json:"win_rate"` // non-losses / total, percent

	TotalPnL    float64 `json:"total_pnl"`
	TotalPnLPct float64 `json:"total_pnl_pct"` // vs average entry equity
	AvgPnL      float64 `json:"avg_pnl"`
	AvgPnLPct   float64 `json:"avg_pnl_pct"`
	AvgWin      float64 `json:"avg_win"`
	AvgWinPct   float64 `json:"avg_win_pct"`
	AvgLoss     float64 `json:"avg_loss"`
	AvgLossPct  float64 `json:"avg_loss_pct"`

	WinLossRatio float64 `json:"win_loss_ratio"`
	ProfitFactor float64 `json:"profit_factor"`
	BestTrade    float64 `json:"best_trade"`
	WorstTrade   float64 `json:"worst_trade"`

	TPRate float64 `json:"tp_rate"` // trades with at least one TP fill, percent
	SLRate float64 `json:"sl_rate"` // clean stop-loss exits, percent

	AvgDurationMin float64 `json:"avg_duration_min"`
	AvgDCAFilled   float64 `json:"avg_dca_filled"`

	TrailingExits  int `json:"trailing_exits"`
	StopLossExits  int `json:"stop_loss_exits"`
	BreakevenExits int `json:"breakeven_exits"`
}

// ExitDistributionEntry is one bucket of the exit-category histogram
type ExitDistributionEntry struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Pct      float64 `json:"pct"`
}

// DCADistributionEntry is one bucket of the DCA-usage histogram
type DCADistributionEntry struct {
	Label string  `json:"label"` // "DCA" or "NO DCA"
	Count int     `json:"count"`
	Pct   float64 `json:"pct"`
}
