package payment

import (
	"fmt"
	"net/http"

	"github.com/scoutystream/scouty/internal/application/payment/paymentgateway"
	"github.com/scoutystream/scouty/internal/shared/config"
	"github.com/scoutystream/scouty/internal/shared/logger"
)

// New returns the challenge issuer and verifier for cfg.Provider.
func New(cfg config.PaymentConfig, client *http.Client, log logger.Interface) (paymentgateway.ChallengeIssuer, paymentgateway.Verifier, error) {
	currency := cfg.Currency
	if currency == "" {
		currency = "USD"
	}

	switch cfg.Provider {
	case ProviderX402:
		if cfg.FacilitatorURL == "" {
			return nil, nil, fmt.Errorf("payment.facilitator_url is required for the x402 provider")
		}
		if cfg.WebhookSecret == "" && cfg.AllowUnsignedWebhooks {
			log.Warnw("UNSIGNED WEBHOOKS ARE ACCEPTED: payment.allow_unsigned_webhooks is set without a webhook secret")
		}
		realm := cfg.Realm
		if realm == "" {
			realm = "ScoutyStream"
		}
		return NewX402ChallengeIssuer(realm, currency),
			NewX402Verifier(cfg.FacilitatorURL, cfg.APIKey, cfg.WebhookSecret, client, log),
			nil
	case ProviderMock, "":
		return NewMockChallengeIssuer(currency), NewMockVerifier(cfg.WebhookSecret, log), nil
	default:
		return nil, nil, fmt.Errorf("unsupported payment provider %q", cfg.Provider)
	}
}
