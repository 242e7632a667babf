// Package logger provides sync-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SyncLogger provides dedicated logging for exchange reconciliation runs.
type SyncLogger struct {
	*logrus.Entry
}

// NewSyncLogger creates a new sync logger.
func NewSyncLogger(baseLogger *logrus.Logger) *SyncLogger {
	return &SyncLogger{
		Entry: baseLogger.WithField("component", "sync"),
	}
}

// LogSyncStarted logs the start of a reconciliation run.
func (sl *SyncLogger) LogSyncStarted(category string, lookbackDays int) {
	sl.WithFields(logrus.Fields{
		"category":      category,
		"lookback_days": lookbackDays,
	}).Info("Exchange PnL sync started")
}

// LogSyncCompleted logs the result of a reconciliation run.
func (sl *SyncLogger) LogSyncCompleted(fetched, inserted, skipped int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"records_fetched":  fetched,
		"trades_inserted":  inserted,
		"records_skipped":  skipped,
		"sync_duration_ms": durationMs,
	}).Info("Exchange PnL sync completed")
}

// LogTradeImported logs a trade recovered from the exchange.
func (sl *SyncLogger) LogTradeImported(tradeID, symbol string, realizedPnL float64) {
	sl.WithFields(logrus.Fields{
		"trade_id":     tradeID,
		"symbol":       symbol,
		"realized_pnl": realizedPnL,
	}).Info("Missing trade imported from exchange")
}

// LogSyncError logs a reconciliation failure.
func (sl *SyncLogger) LogSyncError(stage string, err error) {
	sl.WithFields(logrus.Fields{
		"stage": stage,
		"error": err.Error(),
	}).Error("Exchange PnL sync failed")
}
