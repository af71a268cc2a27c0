package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/scoutystream/scouty/internal/shared/config"
)

type Config struct {
	Server     sharedConfig.ServerConfig     `mapstructure:"server"`
	Database   sharedConfig.DatabaseConfig   `mapstructure:"database"`
	Logger     sharedConfig.LoggerConfig     `mapstructure:"logger"`
	Redis      sharedConfig.RedisConfig      `mapstructure:"redis"`
	Ledger     sharedConfig.LedgerConfig     `mapstructure:"ledger"`
	Payment    sharedConfig.PaymentConfig    `mapstructure:"payment"`
	Storage    sharedConfig.StorageConfig    `mapstructure:"storage"`
	Auth       sharedConfig.AuthConfig       `mapstructure:"auth"`
	RateLimit  sharedConfig.RateLimitConfig  `mapstructure:"ratelimit"`
	Scheduler  sharedConfig.SchedulerConfig  `mapstructure:"scheduler"`
	Processing sharedConfig.ProcessingConfig `mapstructure:"processing"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// A missing config file is not an error; defaults and SCOUTY_* variables apply.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("SCOUTY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate rejects combinations that must not reach a running server.
func (c *Config) Validate() error {
	switch c.Payment.Provider {
	case "mock", "x402":
	default:
		return fmt.Errorf("unsupported payment provider %q", c.Payment.Provider)
	}

	switch c.Payment.AmountPolicy {
	case sharedConfig.AmountPolicyAcceptAny, sharedConfig.AmountPolicyRejectUnderpayment, sharedConfig.AmountPolicyExact:
	default:
		return fmt.Errorf("unsupported payment amount policy %q", c.Payment.AmountPolicy)
	}

	switch c.Ledger.Provider {
	case "chiliz", "memory", "none":
	default:
		return fmt.Errorf("unsupported ledger provider %q", c.Ledger.Provider)
	}

	switch c.Ledger.WriteMode {
	case "sync", "async":
	default:
		return fmt.Errorf("unsupported ledger write mode %q", c.Ledger.WriteMode)
	}

	switch c.Storage.Provider {
	case "mock", "signed", "youtube":
	default:
		return fmt.Errorf("unsupported storage provider %q", c.Storage.Provider)
	}

	switch c.Database.Driver {
	case "mysql", "sqlite", "memory":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Server.IsProduction() {
		if c.Payment.Provider == "mock" {
			return fmt.Errorf("payment.provider mock accepts any receipt and is not allowed in production")
		}
		if c.Payment.WebhookSecret == "" && !c.Payment.AllowUnsignedWebhooks {
			return fmt.Errorf("payment.webhook_secret is required in production (set payment.allow_unsigned_webhooks to override)")
		}
		if c.Auth.JWT.Secret == "" || c.Auth.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("auth.jwt.secret must be set in production")
		}
		if c.Storage.Provider == "signed" && c.Storage.SigningSecret == "" {
			return fmt.Errorf("storage.signing_secret is required for the signed storage provider")
		}
	}

	return nil
}

const defaultJWTSecret = "change-me-in-production"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:3001")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.sqlite_path", "scouty.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "scouty_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("ledger.provider", "chiliz")
	v.SetDefault("ledger.rpc_url", "https://spicy-rpc.chiliz.com")
	v.SetDefault("ledger.chain_id", 88882)
	v.SetDefault("ledger.contract_address", "")
	v.SetDefault("ledger.private_key", "")
	v.SetDefault("ledger.confirm_timeout", "60s")
	v.SetDefault("ledger.write_mode", "sync")

	v.SetDefault("payment.provider", "mock")
	v.SetDefault("payment.realm", "ScoutyStream")
	v.SetDefault("payment.currency", "USD")
	v.SetDefault("payment.facilitator_url", "")
	v.SetDefault("payment.api_key", "")
	v.SetDefault("payment.webhook_secret", "")
	v.SetDefault("payment.allow_unsigned_webhooks", false)
	v.SetDefault("payment.verify_timeout", "10s")
	v.SetDefault("payment.amount_policy", sharedConfig.AmountPolicyAcceptAny)
	v.SetDefault("payment.verification_cache_ttl", "24h")

	v.SetDefault("storage.provider", "mock")
	v.SetDefault("storage.base_url", "https://cdn.scoutystream.local")
	v.SetDefault("storage.signing_secret", "")
	v.SetDefault("storage.url_expiry", "5m")
	v.SetDefault("storage.max_upload_size", 500*1024*1024)

	v.SetDefault("auth.jwt.secret", defaultJWTSecret)
	v.SetDefault("auth.jwt.access_exp_minutes", 60)

	v.SetDefault("ratelimit.enabled", true)
	v.SetDefault("ratelimit.limit", 120)
	v.SetDefault("ratelimit.window", "1m")

	v.SetDefault("scheduler.ledger_sync_interval", "5m")
	v.SetDefault("scheduler.ledger_sync_batch_size", 50)
	v.SetDefault("scheduler.ledger_max_attempts", 10)

	v.SetDefault("processing.simulated_duration", "5s")
	v.SetDefault("processing.default_price", "5.99")
}
