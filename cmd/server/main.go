// Package main provides the entry point for the analytics API server.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/dca-analytics/internal/api"
	"github.com/yourusername/dca-analytics/internal/config"
	"github.com/yourusername/dca-analytics/internal/database"
	"github.com/yourusername/dca-analytics/internal/logger"
	"github.com/yourusername/dca-analytics/internal/reconcile"
	"github.com/yourusername/dca-analytics/internal/repository"
	"github.com/yourusername/dca-analytics/internal/scheduler"
)

func main() {
	// Load configuration
	cfg, err := config.LoadWithDefaults("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel, cfg.App.Environment)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("DCA Analytics starting")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to initialize database schema")
	}
	appLog.Info("Database connection established")

	// Initialize repositories
	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	// Initialize exchange reconciliation when configured
	var reconciler *reconcile.Service
	if cfg.Reconcile.Enabled {
		reconciler = reconcile.NewServiceFromConfig(&cfg.Reconcile, repos.Trade, repos.Equity, appLog)
		appLog.WithField("api_url", cfg.Reconcile.APIURL).Info("Exchange PnL sync enabled")
	}

	// Schedule recurring jobs
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.NewScheduler(appLog, cfg.Scheduler.JobTimeoutSeconds)

		snapshotJob := scheduler.NewEquitySnapshotJob(repos.Trade, repos.Equity)
		if err := sched.Schedule(cfg.Scheduler.EquitySnapshotCron, "equity_snapshot", snapshotJob.Run); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule equity snapshot job")
		}

		if reconciler != nil && cfg.Scheduler.ReconcileCron != "" {
			syncJob := func(ctx context.Context) error {
				_, err := reconciler.Sync(ctx)
				return err
			}
			if err := sched.Schedule(cfg.Scheduler.ReconcileCron, "pnl_sync", syncJob); err != nil {
				appLog.WithError(err).Fatal("Failed to schedule PnL sync job")
			}
		}

		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		appLog.WithField("next_run", sched.NextRun()).Info("Scheduler started")
	}

	// Start HTTP server
	server := api.NewServer(cfg, repos, db, reconciler, appLog)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		appLog.WithField("signal", sig).Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			appLog.WithError(err).Error("HTTP server stopped unexpectedly")
		}
	}

	// Graceful shutdown
	if sched != nil {
		sched.Stop()
		appLog.Info("Scheduler stopped")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Failed to shut down HTTP server cleanly")
	}

	appLog.Info("DCA Analytics stopped")
}
