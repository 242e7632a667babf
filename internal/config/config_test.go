package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{Name: "dca-analytics", Environment: "development", LogLevel: "info"},
		Database: DatabaseConfig{
			Host: "localhost", Port: 5432, Name: "trades", User: "app",
			Password: "secret", SSLMode: "disable", MaxConnections: 10,
		},
		Server: ServerConfig{Port: 8080, ReadTimeoutSeconds: 5, WriteTimeoutSeconds: 10, DefaultTradeLimit: 50},
		Replay: ReplayConfig{FallbackTradePct: 5, DefaultEquity: 1000, DefaultTradePct: 5},
		Metrics: MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

func TestValidateValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "qa"
	assert.Error(t, Validate(cfg))
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.App.LogLevel = "verbose"
	assert.Error(t, Validate(cfg))
}

func TestValidateReconcileCrossField(t *testing.T) {
	cfg := validConfig()
	cfg.Reconcile.Enabled = true
	assert.Error(t, Validate(cfg))

	cfg.Reconcile.APIURL = "https://api.bybit.com"
	cfg.Reconcile.APIKey = "key"
	cfg.Reconcile.APISecret = "secret"
	assert.NoError(t, Validate(cfg))
}

func TestLoadExpandsEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  name: dca-analytics
  environment: development
  log_level: info
database:
  host: localhost
  port: 5432
  name: trades
  user: app
  password: ${TEST_DB_PASSWORD}
  ssl_mode: disable
  max_connections: 10
server:
  port: 8080
  read_timeout_seconds: 5
  write_timeout_seconds: 10
  default_trade_limit: 50
replay:
  fallback_trade_pct: 5
  default_equity: 1000
  default_trade_pct: 5
metrics:
  enabled: true
  path: /metrics
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("TEST_DB_PASSWORD", "hunter2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Database.Password)
	assert.Equal(t, 50, cfg.Server.DefaultTradeLimit)
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	cfg, err := LoadWithDefaults(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.InDelta(t, 5.0, cfg.Replay.FallbackTradePct, 1e-9)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}
