package usecases

import (
	"context"
	"fmt"

	"github.com/scoutystream/scouty/internal/application/access/metrics"
	"github.com/scoutystream/scouty/internal/application/asset/storage"
	"github.com/scoutystream/scouty/internal/application/payment/paymentgateway"
	"github.com/scoutystream/scouty/internal/domain/asset"
	"github.com/scoutystream/scouty/internal/domain/payment"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type RequestAccessCommand struct {
	AssetID uint64 `json:"assetId" validate:"gt=0"`
	// UserID may be empty; an anonymous caller always receives a challenge.
	UserID string `json:"userId"`
}

// RequestAccessResult holds either a descriptor (authorized) or a challenge.
type RequestAccessResult struct {
	Asset      *asset.Asset
	Authorized bool
	Descriptor *storage.Descriptor
	Challenge  *payment.Challenge
}

// RequestAccessUseCase is the entry point of the access flow: it resolves the
// asset, decides authorization and produces a descriptor or a 402 challenge.
type RequestAccessUseCase struct {
	assets  asset.Repository
	checker *CheckAccessUseCase
	issuer  paymentgateway.ChallengeIssuer
	storage storage.Provider
	metrics metrics.Recorder
	logger  logger.Interface
}

func NewRequestAccessUseCase(
	assets asset.Repository,
	checker *CheckAccessUseCase,
	issuer paymentgateway.ChallengeIssuer,
	storageProvider storage.Provider,
	recorder metrics.Recorder,
	logger logger.Interface,
) *RequestAccessUseCase {
	if recorder == nil {
		recorder = metrics.NewNop()
	}
	return &RequestAccessUseCase{
		assets:  assets,
		checker: checker,
		issuer:  issuer,
		storage: storageProvider,
		metrics: recorder,
		logger:  logger,
	}
}

func (uc *RequestAccessUseCase) Execute(ctx context.Context, cmd RequestAccessCommand) (*RequestAccessResult, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	a, err := uc.assets.GetByID(ctx, cmd.AssetID)
	if err != nil {
		uc.logger.Errorw("failed to load asset", "asset_id", cmd.AssetID, "error", err)
		return nil, fmt.Errorf("failed to load asset: %w", err)
	}
	if a == nil {
		return nil, apperrors.NewNotFoundError("Asset not found", fmt.Sprintf("asset %d", cmd.AssetID))
	}
	if !a.IsReady() {
		return nil, apperrors.NewAssetNotReadyError(a.Status().String())
	}

	decision, err := uc.checker.Execute(ctx, CheckAccessQuery{UserID: cmd.UserID, AssetID: a.ID()})
	if err != nil {
		return nil, err
	}

	if !decision.Authorized {
		uc.metrics.AccessDecision(metrics.DecisionPaymentRequired)
		return &RequestAccessResult{
			Asset:     a,
			Challenge: uc.issuer.IssueChallenge(a.ID(), a.Price()),
		}, nil
	}

	descriptor, err := uc.storage.GenerateAccessDescriptor(ctx, a)
	if err != nil {
		uc.logger.Errorw("failed to generate access descriptor",
			"asset_id", a.ID(), "storage", uc.storage.Name(), "error", err)
		return nil, fmt.Errorf("failed to generate access descriptor: %w", err)
	}

	uc.logger.Debugw("access granted",
		"user_id", cmd.UserID, "asset_id", a.ID(), "source", decision.Source)

	return &RequestAccessResult{
		Asset:      a,
		Authorized: true,
		Descriptor: descriptor,
	}, nil
}
