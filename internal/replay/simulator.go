// Package replay re-derives a hypothetical equity curve from historical trade
// outcomes under alternative position-sizing and compounding assumptions.
package replay

import (
	"sort"

	"github.com/go-playground/validator/v10"

	"github.com/yourusername/dca-analytics/internal/models"
)

// Settings are the caller-supplied replay assumptions
type Settings struct {
	Equity      float64 `json:"equity" validate:"required,gt=0"`
	TradePct    float64 `json:"trade_pct" validate:"required,gt=0,lte=100"`
	Compounding bool    `json:"compounding"`
}

var settingsValidator = validator.New()

// Validate checks the settings before simulation. The simulator itself never
// fails for settings that pass this check.
func (s Settings) Validate() error {
	if err := settingsValidator.Struct(s); err != nil {
		return models.ErrInvalidSettings
	}
	return nil
}

// TradeResult is the simulated outcome of a single trade
type TradeResult struct {
	TradeID string  `json:"trade_id"`
	PnL     float64 `json:"pnl"`
	PnLPct  float64 `json:"pnl_pct"` // percent of equity at that step
	Equity  float64 `json:"equity"`  // running equity after the trade
}

// Summary is the full replay outcome. Results is ordered chronologically by
// close time, which is also the iteration order of the trade-id lookup.
type Summary struct {
	TotalPnL       float64       `json:"total_pnl"`
	FinalEquity    float64       `json:"final_equity"`
	TotalReturnPct float64       `json:"total_return_pct"`
	MaxDrawdown    float64       `json:"max_drawdown"`
	MaxDrawdownPct float64       `json:"max_drawdown_pct"`
	Results        []TradeResult `json:"results"`

	index map[string]int
}

// Result returns the simulated outcome for a trade id.
func (s *Summary) Result(tradeID string) (TradeResult, bool) {
	i, ok := s.index[tradeID]
	if !ok {
		return TradeResult{}, false
	}
	return s.Results[i], true
}

// Simulator replays historical trade outcomes against alternative settings.
// It is a pure function of its inputs; concurrent Run calls never interfere.
type Simulator struct {
	// fallbackTradePct is applied when a trade predates the stored
	// equity-percentage field or recorded it as zero.
	fallbackTradePct float64
}

// NewSimulator creates a simulator with an explicit fallback slot percentage.
func NewSimulator(fallbackTradePct float64) *Simulator {
	if fallbackTradePct <= 0 {
		fallbackTradePct = models.DefaultEquityPctPerTrade
	}
	return &Simulator{fallbackTradePct: fallbackTradePct}
}

// Run replays the trades oldest-first and produces the per-trade trace and
// summary. Correction records and still-open trades are skipped. The input
// slice is not mutated.
func (s *Simulator) Run(trades []*models.Trade, settings Settings) *Summary {
	eligible := make([]*models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.IsCorrection() || !t.IsClosed() {
			continue
		}
		eligible = append(eligible, t)
	}

	// Compounding order is causal. Stable sort keeps repository order for
	// identical close timestamps so reruns are reproducible.
	sort.SliceStable(eligible, func(i, j int) bool {
		return eligible[i].ClosedAt.Before(*eligible[j].ClosedAt)
	})

	summary := &Summary{
		FinalEquity: settings.Equity,
		Results:     make([]TradeResult, 0, len(eligible)),
		index:       make(map[string]int, len(eligible)),
	}

	runningEquity := settings.Equity
	peakEquity := settings.Equity

	for _, t := range eligible {
		baseEquity := runningEquity
		if !settings.Compounding {
			// Non-compounding always sizes off the original starting equity.
			baseEquity = settings.Equity
		}

		originalPct := t.EquityPctPerTrade
		if originalPct <= 0 {
			originalPct = s.fallbackTradePct
		}
		scale := settings.TradePct / originalPct

		// Equity-relative PnL already reflects the full slot allocation
		// regardless of how many DCA rungs filled; margin-relative PnL
		// would only rescale the capital actually deployed.
		simPnL := baseEquity * (t.PnLPctEquity / 100) * scale

		runningEquity += simPnL
		summary.TotalPnL += simPnL

		if runningEquity > peakEquity {
			peakEquity = runningEquity
		}
		drawdown := peakEquity - runningEquity
		if drawdown > summary.MaxDrawdown {
			summary.MaxDrawdown = drawdown
			if peakEquity > 0 {
				summary.MaxDrawdownPct = drawdown / peakEquity * 100
			}
		}

		summary.index[t.TradeID] = len(summary.Results)
		summary.Results = append(summary.Results, TradeResult{
			TradeID: t.TradeID,
			PnL:     simPnL,
			PnLPct:  t.PnLPctEquity * scale,
			Equity:  runningEquity,
		})
	}

	summary.FinalEquity = runningEquity
	if settings.Equity > 0 {
		summary.TotalReturnPct = summary.TotalPnL / settings.Equity * 100
	}
	return summary
}
