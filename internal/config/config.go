// Package config provides configuration management for the tote value service.
package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/tote-value/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	ToteAPI   ToteAPIConfig   `mapstructure:"tote_api" validate:"required"`
	ValueBets ValueBetsConfig `mapstructure:"value_bets" validate:"required"`
	Refresh   RefreshConfig   `mapstructure:"refresh" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// ToteAPIConfig represents the upstream tote GraphQL API configuration
type ToteAPIConfig struct {
	URL             string  `mapstructure:"url" validate:"required,url"`
	APIKey          string  `mapstructure:"api_key" validate:"required"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries      int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimit       float64 `mapstructure:"rate_limit" validate:"required,gt=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`
}

// ValueBetsConfig represents the value-bet analysis settings
type ValueBetsConfig struct {
	ValueThresholdPercent float64 `mapstructure:"value_threshold_percent" validate:"gte=0"`
	MinimumPoolSize       float64 `mapstructure:"minimum_pool_size" validate:"gte=0"`
	MaxDilutionPercent    float64 `mapstructure:"max_dilution_percent" validate:"gte=0"`
	DefaultStake          float64 `mapstructure:"default_stake" validate:"gte=0"`
	TopBetCount           int     `mapstructure:"top_bet_count" validate:"required,gt=0"`
	OddsType              string  `mapstructure:"odds_type" validate:"omitempty,oddstype"`
}

// RefreshConfig represents the periodic snapshot refresh configuration
type RefreshConfig struct {
	CronSchedule   string   `mapstructure:"cron_schedule" validate:"required"`
	Races          []string `mapstructure:"races"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// HealthConfig represents health check server configuration
type HealthConfig struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

// IsProduction returns whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ConnectionString builds a PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// Timeout returns the tote API request timeout as a duration
func (t *ToteAPIConfig) Timeout() time.Duration {
	return time.Duration(t.TimeoutSeconds) * time.Second
}

// CacheTTL returns the snapshot cache lifetime as a duration
func (t *ToteAPIConfig) CacheTTL() time.Duration {
	return time.Duration(t.CacheTTLSeconds) * time.Second
}

// Settings converts the configuration into engine settings with exact
// decimal fields.
func (v *ValueBetsConfig) Settings() models.ValueBetSettings {
	oddsType := v.OddsType
	if oddsType == "" {
		oddsType = models.OddsTypeBase
	}
	return models.ValueBetSettings{
		ValueThresholdPercent: decimal.NewFromFloat(v.ValueThresholdPercent),
		MinimumPoolSize:       decimal.NewFromFloat(v.MinimumPoolSize),
		MaxDilutionPercent:    decimal.NewFromFloat(v.MaxDilutionPercent),
		DefaultStake:          decimal.NewFromFloat(v.DefaultStake),
		TopBetCount:           v.TopBetCount,
		OddsType:              oddsType,
	}
}
