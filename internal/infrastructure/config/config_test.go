package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sharedConfig "github.com/scoutystream/scouty/internal/shared/config"
)

func validConfig() *Config {
	return &Config{
		Server:   sharedConfig.ServerConfig{Mode: "debug"},
		Database: sharedConfig.DatabaseConfig{Driver: "sqlite"},
		Ledger:   sharedConfig.LedgerConfig{Provider: "chiliz", WriteMode: "sync"},
		Payment:  sharedConfig.PaymentConfig{Provider: "x402", AmountPolicy: sharedConfig.AmountPolicyAcceptAny},
		Storage:  sharedConfig.StorageConfig{Provider: "mock"},
		Auth:     sharedConfig.AuthConfig{JWT: sharedConfig.JWTConfig{Secret: defaultJWTSecret}},
	}
}

func TestValidate_Development(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_RejectsUnknownValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"payment provider", func(c *Config) { c.Payment.Provider = "stripe" }},
		{"amount policy", func(c *Config) { c.Payment.AmountPolicy = "generous" }},
		{"ledger provider", func(c *Config) { c.Ledger.Provider = "polygon" }},
		{"write mode", func(c *Config) { c.Ledger.WriteMode = "eventually" }},
		{"storage provider", func(c *Config) { c.Storage.Provider = "s3" }},
		{"database driver", func(c *Config) { c.Database.Driver = "postgres" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_ProductionRules(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Mode = "production"
	cfg.Auth.JWT.Secret = "a-real-secret"

	err := cfg.Validate()
	assert.ErrorContains(t, err, "webhook_secret")

	cfg.Payment.AllowUnsignedWebhooks = true
	assert.NoError(t, cfg.Validate())

	cfg.Payment.WebhookSecret = "whsec"
	cfg.Payment.AllowUnsignedWebhooks = false
	cfg.Auth.JWT.Secret = defaultJWTSecret
	assert.ErrorContains(t, cfg.Validate(), "jwt.secret")

	cfg.Auth.JWT.Secret = "a-real-secret"
	cfg.Storage.Provider = "signed"
	assert.ErrorContains(t, cfg.Validate(), "signing_secret")

	cfg.Storage.SigningSecret = "sign"
	assert.NoError(t, cfg.Validate())
}

func TestValidate_ProductionRejectsMockPayments(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Mode = "release"
	cfg.Auth.JWT.Secret = "a-real-secret"
	cfg.Payment.Provider = "mock"

	assert.ErrorContains(t, cfg.Validate(), "payment.provider")

	cfg.Payment.AllowUnsignedWebhooks = true
	assert.ErrorContains(t, cfg.Validate(), "payment.provider", "unsigned webhooks do not make mock acceptable")

	cfg.Server.Mode = "debug"
	assert.NoError(t, cfg.Validate())
}
