// Package types provides configuration types for the trading journal backend.
package types

import "time"

// Config is the full application configuration.
type Config struct {
	Server      ServerConfig    `mapstructure:"server"`
	Storage     StorageConfig   `mapstructure:"storage"`
	Logging     LogConfig       `mapstructure:"logging"`
	Alerts      AlertThresholds `mapstructure:"alerts"`
	AccountSize float64         `mapstructure:"account_size"`
}

// ServerConfig represents HTTP/WebSocket server configuration.
type ServerConfig struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	WebSocketPath string        `mapstructure:"websocket_path"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	EnableMetrics bool          `mapstructure:"enable_metrics"`
	MetricsPort   int           `mapstructure:"metrics_port"`
}

// StorageConfig represents journal storage configuration.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// LogConfig represents logging configuration. File output rotates
// through lumberjack when enabled.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       bool   `mapstructure:"file"`
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// AlertThresholds configures the alert detector. Any subset may be
// overridden; zero values fall back to the documented defaults.
type AlertThresholds struct {
	MaxDrawdownPct    float64 `json:"max_drawdown_pct" mapstructure:"max_drawdown_pct"`
	DailyLossLimit    float64 `json:"daily_loss_limit" mapstructure:"daily_loss_limit"`
	ConsecutiveLosses int     `json:"consecutive_losses" mapstructure:"consecutive_losses"`
	WinRateDropPct    float64 `json:"winrate_drop_pct" mapstructure:"winrate_drop_pct"`
	DailyTradeLimit   int     `json:"daily_trade_limit" mapstructure:"daily_trade_limit"`
	RiskPerTradePct   float64 `json:"risk_per_trade_pct" mapstructure:"risk_per_trade_pct"`
}

// DefaultThresholds returns the documented default alert thresholds.
func DefaultThresholds() AlertThresholds {
	return AlertThresholds{
		MaxDrawdownPct:    10.0,
		DailyLossLimit:    500.0,
		ConsecutiveLosses: 3,
		WinRateDropPct:    10.0,
		DailyTradeLimit:   10,
		RiskPerTradePct:   2.0,
	}
}

// Normalize fills unset threshold fields with defaults.
func (a AlertThresholds) Normalize() AlertThresholds {
	def := DefaultThresholds()
	if a.MaxDrawdownPct <= 0 {
		a.MaxDrawdownPct = def.MaxDrawdownPct
	}
	if a.DailyLossLimit <= 0 {
		a.DailyLossLimit = def.DailyLossLimit
	}
	if a.ConsecutiveLosses <= 0 {
		a.ConsecutiveLosses = def.ConsecutiveLosses
	}
	if a.WinRateDropPct <= 0 {
		a.WinRateDropPct = def.WinRateDropPct
	}
	if a.DailyTradeLimit <= 0 {
		a.DailyTradeLimit = def.DailyTradeLimit
	}
	if a.RiskPerTradePct <= 0 {
		a.RiskPerTradePct = def.RiskPerTradePct
	}
	return a
}

// DefaultConfig returns a runnable default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:          "localhost",
			Port:          8080,
			WebSocketPath: "/ws",
			ReadTimeout:   30 * time.Second,
			WriteTimeout:  30 * time.Second,
			EnableMetrics: true,
			MetricsPort:   9090,
		},
		Storage: StorageConfig{
			DataDir: "./data",
		},
		Logging: LogConfig{
			Level:      "info",
			File:       false,
			FilePath:   "./logs/journal.log",
			MaxSizeMB:  100,
			MaxBackups: 7,
			MaxAgeDays: 30,
		},
		Alerts:      DefaultThresholds(),
		AccountSize: 10000,
	}
}
