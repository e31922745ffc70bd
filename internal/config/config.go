// Package config loads the application configuration from file and
// environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/a2o90/trading-journal-pro-sub000/pkg/types"
	"github.com/spf13/viper"
)

// Load reads configuration from the given file (optional), overlaid by
// JOURNAL_-prefixed environment variables, on top of the defaults.
func Load(path string) (*types.Config, error) {
	v := viper.New()

	def := types.DefaultConfig()
	v.SetDefault("server.host", def.Server.Host)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("server.websocket_path", def.Server.WebSocketPath)
	v.SetDefault("server.read_timeout", def.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", def.Server.WriteTimeout)
	v.SetDefault("server.enable_metrics", def.Server.EnableMetrics)
	v.SetDefault("server.metrics_port", def.Server.MetricsPort)
	v.SetDefault("storage.data_dir", def.Storage.DataDir)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.file", def.Logging.File)
	v.SetDefault("logging.file_path", def.Logging.FilePath)
	v.SetDefault("logging.max_size_mb", def.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", def.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", def.Logging.MaxAgeDays)
	v.SetDefault("alerts.max_drawdown_pct", def.Alerts.MaxDrawdownPct)
	v.SetDefault("alerts.daily_loss_limit", def.Alerts.DailyLossLimit)
	v.SetDefault("alerts.consecutive_losses", def.Alerts.ConsecutiveLosses)
	v.SetDefault("alerts.winrate_drop_pct", def.Alerts.WinRateDropPct)
	v.SetDefault("alerts.daily_trade_limit", def.Alerts.DailyTradeLimit)
	v.SetDefault("alerts.risk_per_trade_pct", def.Alerts.RiskPerTradePct)
	v.SetDefault("account_size", def.AccountSize)

	v.SetEnvPrefix("JOURNAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return nil, fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30 * time.Second
	}
	cfg.Alerts = cfg.Alerts.Normalize()

	return &cfg, nil
}
