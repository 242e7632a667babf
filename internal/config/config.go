// Package config provides configuration management for the trade analytics service.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Replay    ReplayConfig    `mapstructure:"replay" validate:"required"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Port                int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadTimeoutSeconds  int `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds int `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	DefaultTradeLimit   int `mapstructure:"default_trade_limit" validate:"required,gt=0"`
}

// ReplayConfig represents equity replay simulator defaults.
// FallbackTradePct covers trade records that predate the stored
// equity-percentage field.
type ReplayConfig struct {
	FallbackTradePct float64 `mapstructure:"fallback_trade_pct" validate:"required,gt=0,lte=100"`
	DefaultEquity    float64 `mapstructure:"default_equity" validate:"required,gt=0"`
	DefaultTradePct  float64 `mapstructure:"default_trade_pct" validate:"required,gt=0,lte=100"`
}

// ReconcileConfig represents exchange PnL reconciliation configuration
type ReconcileConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	APIURL         string  `mapstructure:"api_url" validate:"omitempty,url"`
	APIKey         string  `mapstructure:"api_key"`
	APISecret      string  `mapstructure:"api_secret"`
	Category       string  `mapstructure:"category"`
	LookbackDays   int     `mapstructure:"lookback_days" validate:"omitempty,gt=0"`
	RateLimit      float64 `mapstructure:"rate_limit" validate:"omitempty,gt=0"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds" validate:"omitempty,gt=0"`
	MaxRetries     int     `mapstructure:"max_retries" validate:"omitempty,gte=0"`
	CacheTTLHours  int     `mapstructure:"cache_ttl_hours" validate:"omitempty,gt=0"`
}

// SchedulerConfig represents cron job configuration
type SchedulerConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	EquitySnapshotCron string `mapstructure:"equity_snapshot_cron"`
	ReconcileCron      string `mapstructure:"reconcile_cron"`
	JobTimeoutSeconds  int    `mapstructure:"job_timeout_seconds" validate:"omitempty,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
