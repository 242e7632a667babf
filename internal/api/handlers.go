package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dca-analytics/internal/analytics"
	"github.com/yourusername/dca-analytics/internal/config"
	"github.com/yourusername/dca-analytics/internal/metrics"
	"github.com/yourusername/dca-analytics/internal/models"
	"github.com/yourusername/dca-analytics/internal/reconcile"
	"github.com/yourusername/dca-analytics/internal/replay"
	"github.com/yourusername/dca-analytics/internal/repository"
)

const dateLayout = "2006-01-02"

// Handler holds the dependencies shared by all HTTP handlers
type Handler struct {
	cfg        *config.Config
	repos      *repository.Repositories
	reconciler *reconcile.Service
	log        *logrus.Logger
}

// NewHandler creates a new Handler
func NewHandler(cfg *config.Config, repos *repository.Repositories, reconciler *reconcile.Service, log *logrus.Logger) *Handler {
	return &Handler{cfg: cfg, repos: repos, reconciler: reconciler, log: log}
}

// Health reports process liveness
// GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Pinger reports backing store connectivity for readiness checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ready reports readiness including database connectivity
// GET /ready
func (h *Handler) Ready(pinger Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := pinger.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	}
}

// GetTrades returns closed trades, newest filters first
// GET /api/trades?days=30&from=2025-01-01&to=2025-02-01&limit=100
func (h *Handler) GetTrades(c *gin.Context) {
	filter := h.tradeFilter(c)
	if filter.Limit == 0 {
		filter.Limit = h.cfg.Server.DefaultTradeLimit
	}

	trades, err := h.repos.Trade.ListClosed(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, "failed to list trades", err)
		return
	}
	if trades == nil {
		trades = []*models.Trade{}
	}

	c.JSON(http.StatusOK, trades)
}

// GetStats returns aggregate statistics over closed trades
// GET /api/stats?days=90
func (h *Handler) GetStats(c *gin.Context) {
	trades, err := h.repos.Trade.ListClosed(c.Request.Context(), h.tradeFilter(c))
	if err != nil {
		h.internalError(c, "failed to load trades for stats", err)
		return
	}

	stats := analytics.Aggregate(trades)
	metrics.RecordStatsQuery(stats.TotalTrades)

	c.JSON(http.StatusOK, stats)
}

// GetTPDistribution returns the exit category distribution
// GET /api/tp-distribution?days=90
func (h *Handler) GetTPDistribution(c *gin.Context) {
	trades, err := h.repos.Trade.ListClosed(c.Request.Context(), h.tradeFilter(c))
	if err != nil {
		h.internalError(c, "failed to load trades for distribution", err)
		return
	}

	c.JSON(http.StatusOK, analytics.ExitDistribution(trades))
}

// GetDCADistribution returns the DCA usage distribution
// GET /api/dca-distribution?days=90
func (h *Handler) GetDCADistribution(c *gin.Context) {
	trades, err := h.repos.Trade.ListClosed(c.Request.Context(), h.tradeFilter(c))
	if err != nil {
		h.internalError(c, "failed to load trades for distribution", err)
		return
	}

	c.JSON(http.StatusOK, analytics.DCADistribution(trades))
}

// GetDailyEquity returns the daily equity history ascending by date
// GET /api/daily-equity?days=30
func (h *Handler) GetDailyEquity(c *gin.Context) {
	filter := repository.EquityFilter{
		From: parseDateParam(c, "from"),
		To:   parseDateParam(c, "to"),
		Days: parseIntParam(c, "days"),
	}

	history, err := h.repos.Equity.History(c.Request.Context(), filter)
	if err != nil {
		h.internalError(c, "failed to load equity history", err)
		return
	}
	if history == nil {
		history = []*models.EquitySnapshot{}
	}

	c.JSON(http.StatusOK, history)
}

// Simulate replays the closed trade history under hypothetical settings
// POST /api/simulate
func (h *Handler) Simulate(c *gin.Context) {
	settings := replay.Settings{
		Equity:      h.cfg.Replay.DefaultEquity,
		TradePct:    h.cfg.Replay.DefaultTradePct,
		Compounding: true,
	}
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if err := settings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	trades, err := h.repos.Trade.ListClosed(c.Request.Context(), h.tradeFilter(c))
	if err != nil {
		h.internalError(c, "failed to load trades for simulation", err)
		return
	}

	sim := replay.NewSimulator(h.cfg.Replay.FallbackTradePct)
	summary := sim.Run(trades, settings)
	metrics.RecordReplayRun()

	c.JSON(http.StatusOK, summary)
}

// SyncPnL triggers an on-demand exchange reconciliation run
// POST /api/sync-pnl
func (h *Handler) SyncPnL(c *gin.Context) {
	if h.reconciler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "exchange sync is not configured"})
		return
	}

	result, err := h.reconciler.Sync(c.Request.Context())
	if err != nil {
		h.internalError(c, "exchange sync failed", err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// tradeFilter builds a TradeFilter from query parameters. Malformed values
// are treated as absent rather than rejected.
func (h *Handler) tradeFilter(c *gin.Context) repository.TradeFilter {
	return repository.TradeFilter{
		From:  parseDateParam(c, "from"),
		To:    parseDateParam(c, "to"),
		Days:  parseIntParam(c, "days"),
		Limit: parseIntParam(c, "limit"),
	}
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.log.WithFields(logrus.Fields{
		"request_id": c.GetString(requestIDKey),
		"error":      err.Error(),
	}).Error(msg)

	if errors.Is(err, models.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func parseDateParam(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		t, err = time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil
		}
	}
	return &t
}

func parseIntParam(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
