package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/flexprice/orderlimit/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	ClickHouse ClickHouseConfig `mapstructure:"clickhouse"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Limit      LimitConfig      `mapstructure:"limit" validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type ClickHouseConfig struct {
	Address  string `mapstructure:"address"`
	TLS      bool   `mapstructure:"tls"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

// LimitConfig drives the purchase limit engine
type LimitConfig struct {
	// Timezone is the IANA location calendar periods are aligned to
	Timezone       string              `mapstructure:"timezone" validate:"required"`
	HistorySource  types.HistorySource `mapstructure:"history_source" validate:"required"`
	RuleSource     types.RuleSource    `mapstructure:"rule_source" validate:"required"`
	RuleFile       string              `mapstructure:"rule_file"`
	ParallelRules  bool                `mapstructure:"parallel_rules"`
	HistoryRetries uint64              `mapstructure:"history_retries"`
	Messages       MessageTemplates    `mapstructure:"messages"`
}

// MessageTemplates overrides the user facing violation messages.
// Empty fields fall back to the built-in defaults. Templates may reference
// {limit}, {rest} and {count}.
type MessageTemplates struct {
	SKUBuyLimitAlert      string `mapstructure:"sku_buy_limit_alert"`
	SPUBuyLimitAlert      string `mapstructure:"spu_buy_limit_alert"`
	CategoryBuyLimitAlert string `mapstructure:"category_buy_limit_alert"`
	MaxBuyLimit           string `mapstructure:"max_buy_limit"`
}

// BuyLimitAlert returns the hard limit override for the given granularity
func (m MessageTemplates) BuyLimitAlert(g types.LimitGranularity) string {
	switch g {
	case types.LimitGranularitySKU:
		return m.SKUBuyLimitAlert
	case types.LimitGranularitySPU:
		return m.SPUBuyLimitAlert
	case types.LimitGranularityCategory:
		return m.CategoryBuyLimitAlert
	}
	return ""
}

// Location resolves the configured timezone, defaulting to UTC
func (c LimitConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Timezone)
}

// messageEnvBindings keeps the historical env names working without the prefix
var messageEnvBindings = map[string]string{
	"limit.messages.sku_buy_limit_alert":      "SKU_BUY_LIMIT_ALERT_MSG",
	"limit.messages.spu_buy_limit_alert":      "SPU_BUY_LIMIT_ALERT_MSG",
	"limit.messages.category_buy_limit_alert": "CATEGORY_BUY_LIMIT_ALERT_MSG",
	"limit.messages.max_buy_limit":            "MAX_BUY_LIMIT_MSG",
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/orderlimit")

	setDefaults(v)

	v.SetEnvPrefix("ORDERLIMIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	for key, env := range messageEnvBindings {
		if err := v.BindEnv(key, "ORDERLIMIT_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("limit.timezone", "UTC")
	v.SetDefault("limit.history_source", types.HistorySourcePostgres)
	v.SetDefault("limit.rule_source", types.RuleSourcePostgres)
	v.SetDefault("limit.history_retries", 2)
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := c.Limit.HistorySource.Validate(); err != nil {
		return err
	}
	if err := c.Limit.RuleSource.Validate(); err != nil {
		return err
	}
	if c.Limit.RuleSource == types.RuleSourceFile && c.Limit.RuleFile == "" {
		return fmt.Errorf("limit.rule_file is required when limit.rule_source is %q", types.RuleSourceFile)
	}
	if _, err := c.Limit.Location(); err != nil {
		return fmt.Errorf("invalid limit.timezone %q: %w", c.Limit.Timezone, err)
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Cache:      CacheConfig{Enabled: true, TTL: 5 * time.Minute},
		Limit: LimitConfig{
			Timezone:       "UTC",
			HistorySource:  types.HistorySourcePostgres,
			RuleSource:     types.RuleSourcePostgres,
			HistoryRetries: 2,
		},
	}
}

func (c ClickHouseConfig) GetClientOptions() *clickhouse.Options {
	options := &clickhouse.Options{
		Addr: []string{c.Address},
		Auth: clickhouse.Auth{
			Database: c.Database,
			Username: c.Username,
			Password: c.Password,
		},
		ConnOpenStrategy: clickhouse.ConnOpenInOrder,
	}
	if c.TLS {
		options.TLS = &tls.Config{}
	}
	return options
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
