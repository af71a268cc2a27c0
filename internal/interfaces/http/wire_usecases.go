package http

import (
	accessUsecases "github.com/scoutystream/scouty/internal/application/access/usecases"
	assetUsecases "github.com/scoutystream/scouty/internal/application/asset/usecases"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	// Access
	grantWriter     *accessUsecases.GrantWriter
	checkAccessUC   *accessUsecases.CheckAccessUseCase
	requestAccessUC *accessUsecases.RequestAccessUseCase
	verifyPaymentUC *accessUsecases.VerifyPaymentUseCase
	handleWebhookUC *accessUsecases.HandleWebhookUseCase
	devPurchaseUC   *accessUsecases.DevPurchaseUseCase
	paymentStatusUC *accessUsecases.GetPaymentStatusUseCase
	userAccessUC    *accessUsecases.GetUserAccessUseCase

	// Admin
	grantAccessUC  *accessUsecases.GrantAccessUseCase
	revokeAccessUC *accessUsecases.RevokeAccessUseCase
	assetAccessUC  *accessUsecases.GetAssetAccessUseCase
	syncLedgerUC   *accessUsecases.SyncLedgerUseCase

	// Assets
	listAssetsUC    *assetUsecases.ListAssetsUseCase
	getAssetUC      *assetUsecases.GetAssetUseCase
	requestUploadUC *assetUsecases.RequestUploadUseCase
	commitUploadUC  *assetUsecases.CommitUploadUseCase
	uploadStatusUC  *assetUsecases.GetUploadStatusUseCase
}

func newUseCases(c *Container, collab *collaborators) *allUseCases {
	cfg := c.cfg
	log := c.log
	grants := c.repos.grants
	assets := c.repos.assets

	writer := accessUsecases.NewGrantWriter(grants, c.ledger, c.metrics, cfg.Ledger.WriteMode == "async", log.Named("grant_writer"))
	checker := accessUsecases.NewCheckAccessUseCase(grants, c.ledger, c.metrics, log)

	return &allUseCases{
		grantWriter:   writer,
		checkAccessUC: checker,
		requestAccessUC: accessUsecases.NewRequestAccessUseCase(
			assets, checker, collab.issuer, collab.storage, c.metrics, log,
		),
		verifyPaymentUC: accessUsecases.NewVerifyPaymentUseCase(
			assets, collab.verifier, writer, collab.policy, cfg.Payment.VerifyTimeout, c.metrics, log,
		),
		handleWebhookUC: accessUsecases.NewHandleWebhookUseCase(
			grants, assets, collab.verifier, writer, collab.policy, c.metrics, log,
		),
		devPurchaseUC:   accessUsecases.NewDevPurchaseUseCase(assets, writer, log),
		paymentStatusUC: accessUsecases.NewGetPaymentStatusUseCase(grants, log),
		userAccessUC:    accessUsecases.NewGetUserAccessUseCase(grants, assets, log),

		grantAccessUC:  accessUsecases.NewGrantAccessUseCase(assets, writer, log),
		revokeAccessUC: accessUsecases.NewRevokeAccessUseCase(grants, c.ledger, c.metrics, log),
		assetAccessUC:  accessUsecases.NewGetAssetAccessUseCase(grants, assets, log),
		syncLedgerUC: accessUsecases.NewSyncLedgerUseCase(
			grants, c.ledger, writer,
			cfg.Scheduler.LedgerSyncBatchSize, cfg.Scheduler.LedgerMaxAttempts,
			log.Named("ledger_sync"),
		),

		listAssetsUC: assetUsecases.NewListAssetsUseCase(assets, collab.renderer, log),
		getAssetUC:   assetUsecases.NewGetAssetUseCase(assets, checker, collab.renderer, log),
		requestUploadUC: assetUsecases.NewRequestUploadUseCase(
			assets, collab.storage, cfg.Storage.MaxUploadSize, collab.defaultPrice, log,
		),
		commitUploadUC: assetUsecases.NewCommitUploadUseCase(assets, c.runner, log),
		uploadStatusUC: assetUsecases.NewGetUploadStatusUseCase(assets, c.runner),
	}
}
