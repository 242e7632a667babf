package analytics

import (
	"math"
	"strings"

	"github.com/yourusername/dca-analytics/internal/models"
)

// ProfitFactorInfinity is the sentinel returned when gross profit exists with
// zero gross loss. Kept finite so the value survives JSON encoding.
const ProfitFactorInfinity = 999

// Aggregate computes the Stats record for a set of closed trades.
// Correction records (side = update) and still-open trades are skipped.
// Percentages are rounded only here, at the boundary: rate fields to 1
// decimal, PnL percentage fields to 2.
func Aggregate(trades []*models.Trade) models.Stats {
	var stats models.Stats

	var (
		totalPnL      float64
		sumPnLPct     float64
		entryEquity   float64
		entryCount    int
		winSum        float64
		winPctSum     float64
		lossSum       float64
		lossPctSum    float64
		grossProfit   float64
		grossLoss     float64
		best          float64
		worst         float64
		tpFills       int
		durationSum   float64
		durationCount int
		dcaSum        int
	)

	for _, t := range trades {
		if t.IsCorrection() || !t.IsClosed() {
			continue
		}
		stats.TotalTrades++

		fills := FillCount(t.CloseReason, t.TP1Hit)
		pnl := t.RealizedPnL
		reason := strings.ToLower(t.CloseReason)

		switch {
		case pnl > 0:
			stats.Wins++
			winSum += pnl
			winPctSum += t.PnLPctEquity
		case fills == 0 && pnl < 0:
			// Clean stop-out, no take-profit credit. This is the avg_loss
			// population; TP-credited negative trades stay out of it.
			stats.Losses++
			lossSum += pnl
			lossPctSum += t.PnLPctEquity
		default:
			stats.Breakeven++
		}

		totalPnL += pnl
		sumPnLPct += t.PnLPctEquity
		if pnl > 0 {
			grossProfit += pnl
		} else if pnl < 0 {
			grossLoss += math.Abs(pnl)
		}

		if t.EquityAtEntry > 0 {
			entryEquity += t.EquityAtEntry
			entryCount++
		}
		if stats.TotalTrades == 1 || pnl > best {
			best = pnl
		}
		if stats.TotalTrades == 1 || pnl < worst {
			worst = pnl
		}
		if fills >= 1 {
			tpFills++
		}
		if (strings.Contains(reason, "sl") || strings.Contains(reason, "stop")) && pnl < 0 && fills == 0 {
			stats.StopLossExits++
		}
		if strings.Contains(reason, "trail") {
			stats.TrailingExits++
		}
		if strings.Contains(reason, "be") {
			stats.BreakevenExits++
		}
		if t.DurationMinutes != nil {
			durationSum += float64(*t.DurationMinutes)
			durationCount++
		}
		dcaSum += t.MaxDCAReached
	}

	if stats.TotalTrades == 0 {
		return stats
	}

	total := float64(stats.TotalTrades)

	stats.WinRate = round1(float64(stats.Wins+stats.Breakeven) / total * 100)
	stats.TotalPnL = round2(totalPnL)
	if entryCount > 0 {
		avgEquity := entryEquity / float64(entryCount)
		stats.TotalPnLPct = round2(totalPnL / avgEquity * 100)
	}
	stats.AvgPnL = round2(totalPnL / total)
	stats.AvgPnLPct = round2(sumPnLPct / total)

	var avgWin, avgLoss float64
	if stats.Wins > 0 {
		avgWin = winSum / float64(stats.Wins)
		stats.AvgWin = round2(avgWin)
		stats.AvgWinPct = round2(winPctSum / float64(stats.Wins))
	}
	if stats.Losses > 0 {
		avgLoss = lossSum / float64(stats.Losses)
		stats.AvgLoss = round2(avgLoss)
		stats.AvgLossPct = round2(lossPctSum / float64(stats.Losses))
	}
	if avgLoss != 0 {
		stats.WinLossRatio = round2(math.Abs(avgWin / avgLoss))
	}

	stats.ProfitFactor = profitFactor(grossProfit, grossLoss)
	stats.BestTrade = round2(best)
	stats.WorstTrade = round2(worst)
	stats.TPRate = round1(float64(tpFills) / total * 100)
	stats.SLRate = round1(float64(stats.StopLossExits) / total * 100)
	if durationCount > 0 {
		stats.AvgDurationMin = math.Round(durationSum / float64(durationCount))
	}
	stats.AvgDCAFilled = round2(float64(dcaSum) / total)

	return stats
}

func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss == 0 {
		if grossProfit > 0 {
			return ProfitFactorInfinity
		}
		return 0
	}
	return round2(grossProfit / grossLoss)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
