// Package api exposes the analytics HTTP surface over Gin.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/dca-analytics/internal/config"
	"github.com/yourusername/dca-analytics/internal/database"
	"github.com/yourusername/dca-analytics/internal/metrics"
	"github.com/yourusername/dca-analytics/internal/reconcile"
	"github.com/yourusername/dca-analytics/internal/repository"
)

// Server wraps the Gin engine and its HTTP listener
type Server struct {
	engine *gin.Engine
	http   *http.Server
	log    *logrus.Logger
}

// NewServer builds the router and wires all handlers
func NewServer(cfg *config.Config, repos *repository.Repositories, db *database.DB, reconciler *reconcile.Service, log *logrus.Logger) *Server {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(RequestID())
	engine.Use(RequestLogger(log))
	engine.Use(Metrics())

	h := NewHandler(cfg, repos, reconciler, log)

	engine.GET("/health", h.Health)
	engine.GET("/ready", h.Ready(db))

	if cfg.Metrics.Enabled {
		engine.GET(cfg.Metrics.Path, gin.WrapH(metrics.Handler()))
	}

	apiGroup := engine.Group("/api")
	{
		apiGroup.GET("/trades", h.GetTrades)
		apiGroup.GET("/stats", h.GetStats)
		apiGroup.GET("/tp-distribution", h.GetTPDistribution)
		apiGroup.GET("/dca-distribution", h.GetDCADistribution)
		apiGroup.GET("/daily-equity", h.GetDailyEquity)
		apiGroup.POST("/simulate", h.Simulate)
		apiGroup.POST("/sync-pnl", h.SyncPnL)
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	return &Server{engine: engine, http: httpServer, log: log}
}

// Engine returns the underlying Gin engine, mainly for tests
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start begins serving HTTP requests and blocks until the listener stops
func (s *Server) Start() error {
	s.log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
