package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/yourusername/dca-analytics/internal/metrics"
	"github.com/yourusername/dca-analytics/internal/models"
	"github.com/yourusername/dca-analytics/internal/repository"
)

// EquitySnapshotJob writes one daily_equity row per UTC day, summarizing the
// trades that closed during that day.
type EquitySnapshotJob struct {
	trades repository.TradeRepository
	equity repository.EquityRepository
	now    func() time.Time
}

// NewEquitySnapshotJob creates a new equity snapshot job
func NewEquitySnapshotJob(trades repository.TradeRepository, equity repository.EquityRepository) *EquitySnapshotJob {
	return &EquitySnapshotJob{trades: trades, equity: equity, now: time.Now}
}

// Run snapshots the previous UTC day. Scheduled shortly after midnight so the
// day is complete when it runs.
func (j *EquitySnapshotJob) Run(ctx context.Context) error {
	day := j.now().UTC().AddDate(0, 0, -1)
	snapshot, err := j.BuildSnapshot(ctx, day)
	if err != nil {
		return err
	}

	if err := j.equity.SaveSnapshot(ctx, snapshot); err != nil {
		return err
	}

	metrics.UpdateLatestEquity(snapshot.Equity)
	return nil
}

// BuildSnapshot computes the snapshot for the given UTC day without saving it
func (j *EquitySnapshotJob) BuildSnapshot(ctx context.Context, day time.Time) (*models.EquitySnapshot, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1).Add(-time.Nanosecond)

	trades, err := j.trades.ListClosed(ctx, repository.TradeFilter{From: &dayStart, To: &dayEnd})
	if err != nil {
		return nil, fmt.Errorf("failed to load trades for snapshot: %w", err)
	}

	snapshot := &models.EquitySnapshot{Date: dayStart}

	var dailyPnL float64
	var lastEquity float64
	for _, trade := range trades {
		dailyPnL += trade.RealizedPnL
		if trade.EquityAtClose > 0 {
			lastEquity = trade.EquityAtClose
		}
		if trade.IsCorrection() {
			continue
		}
		snapshot.TradesCount++
		if trade.RealizedPnL > 0 {
			snapshot.WinsCount++
		} else if trade.RealizedPnL < 0 {
			snapshot.LossesCount++
		}
	}

	if lastEquity > 0 {
		snapshot.Equity = lastEquity
	} else {
		// No trades closed; carry the previous day's equity forward.
		latest, err := j.equity.Latest(ctx)
		if err == models.ErrNotFound {
			return snapshot, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load latest equity: %w", err)
		}
		snapshot.Equity = latest.Equity
	}

	snapshot.DailyPnL = dailyPnL
	if base := snapshot.Equity - dailyPnL; base > 0 {
		snapshot.DailyPnLPct = dailyPnL / base * 100
	}

	return snapshot, nil
}
