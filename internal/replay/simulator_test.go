package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/dca-analytics/internal/models"
)

func simTrade(id string, pnlPctEquity, slotPct float64, closedAt time.Time) *models.Trade {
	closePrice := 1.0
	openedAt := closedAt.Add(-time.Hour)
	return &models.Trade{
		TradeID:           id,
		Symbol:            "XRPUSDT",
		Side:              models.TradeSideLong,
		ClosePrice:        &closePrice,
		PnLPctEquity:      pnlPctEquity,
		EquityPctPerTrade: slotPct,
		OpenedAt:          &openedAt,
		ClosedAt:          &closedAt,
	}
}

func threeTrades() []*models.Trade {
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	return []*models.Trade{
		simTrade("t1", 10, 5, base),
		simTrade("t2", -5, 5, base.Add(24*time.Hour)),
		simTrade("t3", 8, 5, base.Add(48*time.Hour)),
	}
}

func TestRunCompounding(t *testing.T) {
	sim := NewSimulator(5)
	summary := sim.Run(threeTrades(), Settings{Equity: 1000, TradePct: 5, Compounding: true})

	require.Len(t, summary.Results, 3)
	assert.InDelta(t, 1100.0, summary.Results[0].Equity, 1e-6)
	assert.InDelta(t, 1045.0, summary.Results[1].Equity, 1e-6)
	assert.InDelta(t, 1128.6, summary.Results[2].Equity, 1e-6)
	assert.InDelta(t, 1128.6, summary.FinalEquity, 1e-6)
	assert.InDelta(t, 55.0, summary.MaxDrawdown, 1e-6)
	assert.InDelta(t, 5.0, summary.MaxDrawdownPct, 1e-6)
}

func TestRunNonCompounding(t *testing.T) {
	sim := NewSimulator(5)
	summary := sim.Run(threeTrades(), Settings{Equity: 1000, TradePct: 5, Compounding: false})

	require.Len(t, summary.Results, 3)
	assert.InDelta(t, 100.0, summary.Results[0].PnL, 1e-9)
	assert.InDelta(t, -50.0, summary.Results[1].PnL, 1e-9)
	assert.InDelta(t, 80.0, summary.Results[2].PnL, 1e-9)
	assert.InDelta(t, 1130.0, summary.FinalEquity, 1e-9)
	assert.InDelta(t, 13.0, summary.TotalReturnPct, 1e-9)
}

func TestRunScaleFactor(t *testing.T) {
	sim := NewSimulator(5)
	base := sim.Run(threeTrades(), Settings{Equity: 1000, TradePct: 5, Compounding: false})
	doubled := sim.Run(threeTrades(), Settings{Equity: 1000, TradePct: 10, Compounding: false})

	for i := range base.Results {
		assert.InDelta(t, base.Results[i].PnL*2, doubled.Results[i].PnL, 1e-9)
		assert.InDelta(t, base.Results[i].PnLPct*2, doubled.Results[i].PnLPct, 1e-9)
	}
}

func TestRunEmpty(t *testing.T) {
	sim := NewSimulator(5)
	summary := sim.Run(nil, Settings{Equity: 1000, TradePct: 5, Compounding: true})

	assert.Zero(t, summary.TotalPnL)
	assert.InDelta(t, 1000.0, summary.FinalEquity, 1e-9)
	assert.Empty(t, summary.Results)
}

func TestRunZeroOriginalPctFallsBack(t *testing.T) {
	closedAt := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	legacy := simTrade("legacy", 10, 0, closedAt) // predates the stored field

	sim := NewSimulator(5)
	summary := sim.Run([]*models.Trade{legacy}, Settings{Equity: 1000, TradePct: 10, Compounding: true})

	require.Len(t, summary.Results, 1)
	// scale = 10 / 5 (fallback), never a division by zero
	assert.InDelta(t, 200.0, summary.Results[0].PnL, 1e-9)
}

func TestRunAdditivityInvariant(t *testing.T) {
	sim := NewSimulator(5)
	settings := Settings{Equity: 2500, TradePct: 7.5, Compounding: true}
	summary := sim.Run(threeTrades(), settings)

	assert.InDelta(t, settings.Equity+summary.TotalPnL, summary.FinalEquity, 1e-9*settings.Equity)

	prev := settings.Equity
	for _, r := range summary.Results {
		assert.InDelta(t, prev+r.PnL, r.Equity, 1e-9*settings.Equity)
		prev = r.Equity
	}
}

func TestRunIdempotent(t *testing.T) {
	sim := NewSimulator(5)
	settings := Settings{Equity: 1000, TradePct: 5, Compounding: true}
	first := sim.Run(threeTrades(), settings)
	second := sim.Run(threeTrades(), settings)
	assert.Equal(t, first.Results, second.Results)
	assert.Equal(t, first.MaxDrawdown, second.MaxDrawdown)
}

func TestRunStableTieBreak(t *testing.T) {
	closedAt := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	trades := []*models.Trade{
		simTrade("a", 5, 5, closedAt),
		simTrade("b", -5, 5, closedAt),
		simTrade("c", 5, 5, closedAt),
	}

	sim := NewSimulator(5)
	summary := sim.Run(trades, Settings{Equity: 1000, TradePct: 5, Compounding: true})

	require.Len(t, summary.Results, 3)
	assert.Equal(t, "a", summary.Results[0].TradeID)
	assert.Equal(t, "b", summary.Results[1].TradeID)
	assert.Equal(t, "c", summary.Results[2].TradeID)
}

func TestRunSkipsCorrectionsAndOpenTrades(t *testing.T) {
	closedAt := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	correction := simTrade("fix", 50, 5, closedAt)
	correction.Side = models.TradeSideUpdate
	open := simTrade("open", 50, 5, closedAt)
	open.ClosePrice = nil
	open.ClosedAt = nil

	sim := NewSimulator(5)
	summary := sim.Run([]*models.Trade{correction, open, simTrade("real", 10, 5, closedAt)},
		Settings{Equity: 1000, TradePct: 5, Compounding: true})

	require.Len(t, summary.Results, 1)
	assert.Equal(t, "real", summary.Results[0].TradeID)
}

func TestResultLookupFollowsReplayOrder(t *testing.T) {
	sim := NewSimulator(5)
	summary := sim.Run(threeTrades(), Settings{Equity: 1000, TradePct: 5, Compounding: true})

	r, ok := summary.Result("t2")
	require.True(t, ok)
	assert.Equal(t, summary.Results[1], r)

	_, ok = summary.Result("missing")
	assert.False(t, ok)
}

func TestSettingsValidate(t *testing.T) {
	assert.NoError(t, Settings{Equity: 1000, TradePct: 5}.Validate())
	assert.Error(t, Settings{Equity: 0, TradePct: 5}.Validate())
	assert.Error(t, Settings{Equity: 1000, TradePct: 0}.Validate())
	assert.Error(t, Settings{Equity: 1000, TradePct: 150}.Validate())
	assert.Error(t, Settings{Equity: -10, TradePct: 5}.Validate())
}
