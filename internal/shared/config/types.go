package config

import (
	"fmt"
	"time"
)

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// IsProduction reports whether the server runs in release mode.
func (s *ServerConfig) IsProduction() bool {
	return s.Mode == "release" || s.Mode == "production" || s.Mode == "prod"
}

type DatabaseConfig struct {
	// Driver is one of mysql, sqlite or memory.
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	SQLitePath      string `mapstructure:"sqlite_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// LedgerConfig configures the on-chain authorization ledger.
type LedgerConfig struct {
	// Provider is one of chiliz, memory or none.
	Provider        string        `mapstructure:"provider"`
	RPCURL          string        `mapstructure:"rpc_url"`
	ChainID         int64         `mapstructure:"chain_id"`
	ContractAddress string        `mapstructure:"contract_address"`
	PrivateKey      string        `mapstructure:"private_key"`
	ConfirmTimeout  time.Duration `mapstructure:"confirm_timeout"`
	// WriteMode is sync (grant waits for the ledger) or async.
	WriteMode string `mapstructure:"write_mode"`
}

// IsConfigured reports whether every value needed to sign and send
// contract transactions is present.
func (l *LedgerConfig) IsConfigured() bool {
	return l.RPCURL != "" && l.ContractAddress != "" && l.PrivateKey != ""
}

const (
	AmountPolicyAcceptAny          = "accept_any"
	AmountPolicyRejectUnderpayment = "reject_underpayment"
	AmountPolicyExact              = "exact"
)

type PaymentConfig struct {
	// Provider is one of mock or x402.
	Provider              string        `mapstructure:"provider"`
	Realm                 string        `mapstructure:"realm"`
	Currency              string        `mapstructure:"currency"`
	FacilitatorURL        string        `mapstructure:"facilitator_url"`
	APIKey                string        `mapstructure:"api_key"`
	WebhookSecret         string        `mapstructure:"webhook_secret"`
	AllowUnsignedWebhooks bool          `mapstructure:"allow_unsigned_webhooks"`
	VerifyTimeout         time.Duration `mapstructure:"verify_timeout"`
	AmountPolicy          string        `mapstructure:"amount_policy"`
	// VerificationCacheTTL bounds how long a verified receipt is remembered.
	VerificationCacheTTL time.Duration `mapstructure:"verification_cache_ttl"`
}

type StorageConfig struct {
	// Provider is one of mock, signed or youtube.
	Provider      string        `mapstructure:"provider"`
	BaseURL       string        `mapstructure:"base_url"`
	SigningSecret string        `mapstructure:"signing_secret"`
	URLExpiry     time.Duration `mapstructure:"url_expiry"`
	MaxUploadSize int64         `mapstructure:"max_upload_size"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}

type SchedulerConfig struct {
	LedgerSyncInterval  time.Duration `mapstructure:"ledger_sync_interval"`
	LedgerSyncBatchSize int           `mapstructure:"ledger_sync_batch_size"`
	LedgerMaxAttempts   int           `mapstructure:"ledger_max_attempts"`
}

type ProcessingConfig struct {
	// SimulatedDuration is how long the development transcoder takes.
	SimulatedDuration time.Duration `mapstructure:"simulated_duration"`
	DefaultPrice      string        `mapstructure:"default_price"`
}
