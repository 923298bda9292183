package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host     string `mapstructure:"host" validate:"required"`
	Port     int    `mapstructure:"port" validate:"min=1,max=65535"`
	Mode     string `mapstructure:"mode" validate:"oneof=debug release test"`
	BaseURL  string `mapstructure:"base_url"`
	Timezone string `mapstructure:"timezone"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects the gorm dialector. sqlite is used for local runs and tests.
type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" validate:"oneof=mysql sqlite"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database" validate:"required"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.Driver == "sqlite" {
		return d.Database
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format" validate:"omitempty,oneof=console json"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

// BitcoinConfig controls derivation and payment acceptance.
type BitcoinConfig struct {
	Network               string        `mapstructure:"network" validate:"oneof=mainnet testnet"`
	ConfirmationThreshold int           `mapstructure:"confirmation_threshold" validate:"min=1"`
	PaymentTTL            time.Duration `mapstructure:"payment_ttl"`
}

// PoolConfig holds address pool sizing and reservation settings.
type PoolConfig struct {
	ReservationTTL    time.Duration `mapstructure:"reservation_ttl"`
	TargetSize        int           `mapstructure:"target_size" validate:"min=1"`
	BatchSize         int           `mapstructure:"batch_size" validate:"min=1"`
	CriticalThreshold int           `mapstructure:"critical_threshold"`
	SoftFloor         int           `mapstructure:"soft_floor"`
	HardFloor         int           `mapstructure:"hard_floor"`
	ReplenishInterval time.Duration `mapstructure:"replenish_interval"`
	MaxAssignRetries  int           `mapstructure:"max_assign_retries"`
	RetryBaseDelay    time.Duration `mapstructure:"retry_base_delay"`
	RetryJitter       float64       `mapstructure:"retry_jitter" validate:"gte=0,lt=1"`
}

// BlockchainConfig describes the third-party indexing service.
type BlockchainConfig struct {
	APIBaseURL       string        `mapstructure:"api_base_url" validate:"omitempty,url"`
	APITimeout       time.Duration `mapstructure:"api_timeout"`
	WebhookSecret    string        `mapstructure:"webhook_secret"`
	WebhookRateLimit int           `mapstructure:"webhook_rate_limit"`
}

type WebhookConfig struct {
	DefaultMaxRetries int           `mapstructure:"default_max_retries" validate:"min=1"`
	RequestTimeout    time.Duration `mapstructure:"request_timeout"`
	RetryBaseDelay    time.Duration `mapstructure:"retry_base_delay"`
	RetryMaxDelay     time.Duration `mapstructure:"retry_max_delay"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	SweepBatchSize    int           `mapstructure:"sweep_batch_size"`
	Concurrency       int           `mapstructure:"concurrency"`
}

type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	MaxAttempts  int           `mapstructure:"max_attempts"`
}

type PricingConfig struct {
	CacheTTL        time.Duration `mapstructure:"cache_ttl"`
	MaxStaleAge     time.Duration `mapstructure:"max_stale_age"`
	CoinGeckoURL    string        `mapstructure:"coingecko_url"`
	CoinbaseURL     string        `mapstructure:"coinbase_url"`
	DefaultCurrency string        `mapstructure:"default_currency"`
}

type HealthConfig struct {
	StalePendingAfter time.Duration `mapstructure:"stale_pending_after"`
	CheckTimeout      time.Duration `mapstructure:"check_timeout"`
}

type AlertsConfig struct {
	Email       string        `mapstructure:"email"`
	DedupWindow time.Duration `mapstructure:"dedup_window"`
}

type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}
