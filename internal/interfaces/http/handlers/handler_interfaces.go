package handlers

import (
	"context"

	accessdto "github.com/scoutystream/scouty/internal/application/access/dto"
	accessuc "github.com/scoutystream/scouty/internal/application/access/usecases"
	assetdto "github.com/scoutystream/scouty/internal/application/asset/dto"
	"github.com/scoutystream/scouty/internal/application/asset/processing"
	assetuc "github.com/scoutystream/scouty/internal/application/asset/usecases"
)

// Use case interfaces for AssetHandler

type listAssetsUseCase interface {
	Execute(ctx context.Context, query assetuc.ListAssetsQuery) ([]*assetdto.AssetDTO, error)
}

type getAssetUseCase interface {
	Execute(ctx context.Context, query assetuc.GetAssetQuery) (*assetdto.AssetDTO, error)
}

type requestAccessUseCase interface {
	Execute(ctx context.Context, cmd accessuc.RequestAccessCommand) (*accessuc.RequestAccessResult, error)
}

type devPurchaseUseCase interface {
	Execute(ctx context.Context, cmd accessuc.DevPurchaseCommand) (*accessuc.DevPurchaseResult, error)
}

// Use case interfaces for UploadHandler

type requestUploadUseCase interface {
	Execute(ctx context.Context, cmd assetuc.RequestUploadCommand) (*assetdto.UploadDTO, error)
}

type commitUploadUseCase interface {
	Execute(ctx context.Context, cmd assetuc.CommitUploadCommand) (*assetdto.AssetDTO, *processing.Task, error)
}

type uploadStatusUseCase interface {
	Execute(ctx context.Context, assetID uint64) (*assetdto.UploadStatusDTO, error)
}

// Use case interfaces for PaymentHandler

type verifyPaymentUseCase interface {
	Execute(ctx context.Context, cmd accessuc.VerifyPaymentCommand) (*accessuc.VerifyPaymentResult, error)
}

type handleWebhookUseCase interface {
	Execute(ctx context.Context, cmd accessuc.HandleWebhookCommand) (*accessuc.HandleWebhookResult, error)
}

type paymentStatusUseCase interface {
	Execute(ctx context.Context, transactionID string) (*accessdto.GrantDTO, error)
}

type userAccessUseCase interface {
	Execute(ctx context.Context, userID string) (*accessdto.UserHistoryDTO, error)
}

// Use case interfaces for AdminAccessHandler

type grantAccessUseCase interface {
	Execute(ctx context.Context, cmd accessuc.GrantAccessCommand) (*accessuc.GrantOutcome, error)
	ExecuteBatch(ctx context.Context, cmd accessuc.GrantAccessBatchCommand) (*accessuc.GrantAccessBatchResult, error)
}

type revokeAccessUseCase interface {
	Execute(ctx context.Context, cmd accessuc.RevokeAccessCommand) (*accessuc.RevokeAccessResult, error)
}

type assetAccessUseCase interface {
	Execute(ctx context.Context, assetID uint64) ([]*accessdto.GrantDTO, error)
}
