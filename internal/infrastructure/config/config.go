package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	sharedConfig "github.com/orris-inc/satsgate/internal/shared/config"
)

type Config struct {
	Server     sharedConfig.ServerConfig     `mapstructure:"server"`
	Database   sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger     sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Redis      sharedConfig.RedisConfig      `mapstructure:"redis"`
	Email      sharedConfig.EmailConfig      `mapstructure:"email"`
	Bitcoin    sharedConfig.BitcoinConfig    `mapstructure:"bitcoin"`
	Pool       sharedConfig.PoolConfig       `mapstructure:"pool"`
	Blockchain sharedConfig.BlockchainConfig `mapstructure:"blockchain"`
	Webhook    sharedConfig.WebhookConfig    `mapstructure:"webhook"`
	Outbox     sharedConfig.OutboxConfig     `mapstructure:"outbox"`
	Pricing    sharedConfig.PricingConfig    `mapstructure:"pricing"`
	Health     sharedConfig.HealthConfig     `mapstructure:"health"`
	Alerts     sharedConfig.AlertsConfig     `mapstructure:"alerts"`
	Admin      sharedConfig.AdminConfig      `mapstructure:"admin"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (or configPath when set) and SATSGATE_* environment
// variables. A missing config file is tolerated so the binary can run from env alone.
func Load(env string, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("SATSGATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", mapEnvToMode(env))
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func mapEnvToMode(env string) string {
	switch env {
	case "production", "prod", "release":
		return "release"
	case "test", "testing":
		return "test"
	default:
		return "debug"
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "UTC")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "satsgate_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.from_address", "payments@satsgate.local")
	v.SetDefault("email.from_name", "Satsgate")

	v.SetDefault("bitcoin.network", "mainnet")
	v.SetDefault("bitcoin.confirmation_threshold", 1)
	v.SetDefault("bitcoin.payment_ttl", 30*time.Minute)

	v.SetDefault("pool.reservation_ttl", 30*time.Minute)
	v.SetDefault("pool.target_size", 50)
	v.SetDefault("pool.batch_size", 20)
	v.SetDefault("pool.critical_threshold", 3)
	v.SetDefault("pool.soft_floor", 10)
	v.SetDefault("pool.hard_floor", 3)
	v.SetDefault("pool.replenish_interval", 5*time.Minute)
	v.SetDefault("pool.max_assign_retries", 3)
	v.SetDefault("pool.retry_base_delay", time.Second)
	v.SetDefault("pool.retry_jitter", 0.25)

	v.SetDefault("blockchain.api_base_url", "https://mempool.space/api")
	v.SetDefault("blockchain.api_timeout", 5*time.Second)
	v.SetDefault("blockchain.webhook_secret", "")
	v.SetDefault("blockchain.webhook_rate_limit", 600)

	v.SetDefault("webhook.default_max_retries", 3)
	v.SetDefault("webhook.request_timeout", 10*time.Second)
	v.SetDefault("webhook.retry_base_delay", 30*time.Second)
	v.SetDefault("webhook.retry_max_delay", time.Hour)
	v.SetDefault("webhook.sweep_interval", time.Minute)
	v.SetDefault("webhook.sweep_batch_size", 100)
	v.SetDefault("webhook.concurrency", 8)

	v.SetDefault("outbox.poll_interval", 15*time.Second)
	v.SetDefault("outbox.batch_size", 50)
	v.SetDefault("outbox.max_attempts", 8)

	v.SetDefault("pricing.cache_ttl", 5*time.Minute)
	v.SetDefault("pricing.max_stale_age", 15*time.Minute)
	v.SetDefault("pricing.coingecko_url", "https://api.coingecko.com/api/v3")
	v.SetDefault("pricing.coinbase_url", "https://api.coinbase.com/v2")
	v.SetDefault("pricing.default_currency", "USD")

	v.SetDefault("health.stale_pending_after", 2*time.Hour)
	v.SetDefault("health.check_timeout", 3*time.Second)

	v.SetDefault("alerts.email", "")
	v.SetDefault("alerts.dedup_window", time.Hour)

	v.SetDefault("admin.api_key", "")
}
