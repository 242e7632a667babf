// Package reconcile imports settled positions from the exchange so the trade
// history stays complete even when the bot missed a close event.
package reconcile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dca-analytics/internal/config"
	"github.com/yourusername/dca-analytics/internal/logger"
	"github.com/yourusername/dca-analytics/internal/metrics"
	"github.com/yourusername/dca-analytics/internal/models"
	"github.com/yourusername/dca-analytics/internal/repository"
)

// SyncCloseReason marks trades recovered from the exchange rather than
// recorded live.
const SyncCloseReason = "Bybit sync"

// dedupeWindow matches the bot's duplicate detection window for trades that
// were stored under a different ID.
const dedupeWindow = 60 * time.Second

// ClosedPnLFetcher fetches settled positions from the exchange
type ClosedPnLFetcher interface {
	GetClosedPnL(ctx context.Context, category string, since time.Time) ([]ClosedPnLRecord, error)
}

// Result summarizes one reconciliation run
type Result struct {
	Fetched  int `json:"fetched"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// Service reconciles the trade table against the exchange's closed PnL feed
type Service struct {
	client ClosedPnLFetcher
	trades repository.TradeRepository
	equity repository.EquityRepository
	cfg    *config.ReconcileConfig
	seen   *cache.Cache
	log    *logger.SyncLogger
	now    func() time.Time
}

// NewService creates a new reconciliation service
func NewService(client ClosedPnLFetcher, trades repository.TradeRepository, equity repository.EquityRepository, cfg *config.ReconcileConfig, baseLogger *logrus.Logger) *Service {
	ttl := time.Duration(cfg.CacheTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	return &Service{
		client: client,
		trades: trades,
		equity: equity,
		cfg:    cfg,
		seen:   cache.New(ttl, ttl/2),
		log:    logger.NewSyncLogger(baseLogger),
		now:    time.Now,
	}
}

// NewServiceFromConfig builds the service with its own exchange client
func NewServiceFromConfig(cfg *config.ReconcileConfig, trades repository.TradeRepository, equity repository.EquityRepository, baseLogger *logrus.Logger) *Service {
	httpCfg := DefaultHTTPClientConfig()
	if cfg.TimeoutSeconds > 0 {
		httpCfg.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	if cfg.MaxRetries > 0 {
		httpCfg.MaxRetries = cfg.MaxRetries
	}
	if cfg.RateLimit > 0 {
		httpCfg.RateLimit = cfg.RateLimit
	}

	httpClient := NewRateLimitedHTTPClient(httpCfg, baseLogger)
	client := NewBybitClient(httpClient, cfg.APIURL, cfg.APIKey, cfg.APISecret)

	return NewService(client, trades, equity, cfg, baseLogger)
}

// Sync fetches recent closed PnL records and inserts any trades the database
// is missing. Safe to call repeatedly.
func (s *Service) Sync(ctx context.Context) (*Result, error) {
	start := s.now()
	lookback := s.cfg.LookbackDays
	if lookback <= 0 {
		lookback = 7
	}
	since := start.AddDate(0, 0, -lookback)

	s.log.LogSyncStarted(s.cfg.Category, lookback)

	records, err := s.client.GetClosedPnL(ctx, s.cfg.Category, since)
	if err != nil {
		s.log.LogSyncError("fetch", err)
		metrics.RecordSyncError()
		return nil, fmt.Errorf("failed to fetch closed pnl: %w", err)
	}

	refEquity := s.referenceEquity(ctx)

	result := &Result{Fetched: len(records)}
	for _, rec := range records {
		inserted, err := s.importRecord(ctx, rec, refEquity)
		if err != nil {
			s.log.LogSyncError("import", err)
			metrics.RecordSyncError()
			return result, err
		}
		if inserted {
			result.Inserted++
		} else {
			result.Skipped++
		}
	}

	elapsed := s.now().Sub(start)
	s.log.LogSyncCompleted(result.Fetched, result.Inserted, result.Skipped, float64(elapsed.Microseconds())/1000.0)
	metrics.RecordSyncRun(result.Inserted, elapsed.Seconds())

	return result, nil
}

// referenceEquity returns the latest recorded account equity, or zero when no
// snapshot exists yet. Lookup failures only degrade the derived percentages.
func (s *Service) referenceEquity(ctx context.Context) float64 {
	snap, err := s.equity.Latest(ctx)
	if err != nil {
		if err != models.ErrNotFound {
			s.log.LogSyncError("equity_lookup", err)
		}
		return 0
	}
	return snap.Equity
}

func (s *Service) importRecord(ctx context.Context, rec ClosedPnLRecord, refEquity float64) (bool, error) {
	if _, found := s.seen.Get(rec.OrderID); found {
		return false, nil
	}

	if _, err := s.trades.GetByID(ctx, rec.OrderID); err == nil {
		s.seen.SetDefault(rec.OrderID, true)
		return false, nil
	} else if err != models.ErrNotFound {
		return false, fmt.Errorf("failed to look up trade %s: %w", rec.OrderID, err)
	}

	exists, err := s.trades.ExistsNear(ctx, rec.Symbol, rec.CreatedTime, dedupeWindow)
	if err != nil {
		return false, fmt.Errorf("failed to check for nearby trade: %w", err)
	}
	if exists {
		s.seen.SetDefault(rec.OrderID, true)
		return false, nil
	}

	trade := recordToTrade(rec, refEquity)
	if err := s.trades.Upsert(ctx, trade); err != nil {
		return false, fmt.Errorf("failed to insert synced trade %s: %w", rec.OrderID, err)
	}

	s.seen.SetDefault(rec.OrderID, true)
	s.log.LogTradeImported(trade.TradeID, trade.Symbol, trade.RealizedPnL)
	return true, nil
}

// recordToTrade converts an exchange record into a trade row. The record's
// side is that of the closing order, so the position direction is inverted.
// refEquity is the account equity used for the equity-relative percentage;
// zero means no snapshot was available and the percentage stays unset.
func recordToTrade(rec ClosedPnLRecord, refEquity float64) *models.Trade {
	side := models.TradeSideLong
	if strings.EqualFold(rec.Side, "Buy") {
		side = models.TradeSideShort
	}

	entry := rec.AvgEntry.InexactFloat64()
	exit := rec.AvgExit.InexactFloat64()
	pnl := rec.ClosedPnL.InexactFloat64()
	closedAt := rec.UpdatedTime
	openedAt := rec.CreatedTime

	trade := &models.Trade{
		TradeID:     rec.OrderID,
		Symbol:      rec.Symbol,
		Side:        side,
		EntryPrice:  entry,
		AvgPrice:    entry,
		ClosePrice:  &exit,
		TotalQty:    rec.Qty.InexactFloat64(),
		Leverage:    int(rec.Leverage.IntPart()),
		RealizedPnL: pnl,
		IsWin:       rec.ClosedPnL.IsPositive(),
		CloseReason: SyncCloseReason,
		OpenedAt:    &openedAt,
		ClosedAt:    &closedAt,
	}

	if trade.Leverage > 0 {
		trade.TotalMargin = trade.TotalQty * entry / float64(trade.Leverage)
	}
	if trade.TotalMargin > 0 {
		trade.PnLPctMargin = pnl / trade.TotalMargin * 100
	}
	if refEquity > 0 {
		trade.EquityAtEntry = refEquity
		trade.EquityAtClose = refEquity + pnl
		trade.PnLPctEquity = pnl / refEquity * 100
	}

	if closedAt.After(openedAt) {
		minutes := int(closedAt.Sub(openedAt).Minutes())
		trade.DurationMinutes = &minutes
	}

	return trade
}
