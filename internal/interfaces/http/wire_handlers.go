package http

import (
	"github.com/scoutystream/scouty/internal/interfaces/http/handlers"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	assetHandler       *handlers.AssetHandler
	uploadHandler      *handlers.UploadHandler
	paymentHandler     *handlers.PaymentHandler
	adminAccessHandler *handlers.AdminAccessHandler
	healthHandler      *handlers.HealthHandler
}

func newHandlers(c *Container, collab *collaborators) *allHandlers {
	cfg := c.cfg
	log := c.log
	ucs := c.ucs

	return &allHandlers{
		assetHandler: handlers.NewAssetHandler(
			ucs.listAssetsUC, ucs.getAssetUC, ucs.requestAccessUC, ucs.devPurchaseUC,
			log.Named("asset_handler"),
		),
		uploadHandler: handlers.NewUploadHandler(
			ucs.requestUploadUC, ucs.commitUploadUC, ucs.uploadStatusUC,
			log.Named("upload_handler"),
		),
		paymentHandler: handlers.NewPaymentHandler(
			ucs.verifyPaymentUC, ucs.handleWebhookUC, ucs.paymentStatusUC, ucs.userAccessUC,
			log.Named("payment_handler"),
		),
		adminAccessHandler: handlers.NewAdminAccessHandler(
			ucs.grantAccessUC, ucs.revokeAccessUC, ucs.assetAccessUC,
			log.Named("admin_access_handler"),
		),
		healthHandler: handlers.NewHealthHandler(
			c.ledger, c.repos.grants, c.repos.assets,
			handlers.StorageInfo{Provider: collab.storage.Name(), BaseURL: cfg.Storage.BaseURL},
			handlers.PaymentInfo{
				Provider:          collab.verifier.Provider(),
				Currency:          cfg.Payment.Currency,
				WebhookConfigured: cfg.Payment.WebhookSecret != "",
				APIConfigured:     cfg.Payment.APIKey != "",
			},
			cfg.Server.Mode,
			log.Named("health_handler"),
		),
	}
}
