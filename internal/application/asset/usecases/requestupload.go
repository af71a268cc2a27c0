package usecases

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/scoutystream/scouty/internal/application/asset/dto"
	"github.com/scoutystream/scouty/internal/application/asset/storage"
	"github.com/scoutystream/scouty/internal/domain/asset"
	apperrors "github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type RequestUploadCommand struct {
	FileName string `json:"filename" validate:"notblank,max=255"`
	FileSize int64  `json:"size" validate:"gt=0"`
	MimeType string `json:"mimeType" validate:"startswith=video/"`
}

// RequestUploadUseCase registers a new asset in the uploading state and
// returns where to upload the file.
type RequestUploadUseCase struct {
	assets       asset.Repository
	storage      storage.Provider
	maxSize      int64
	defaultPrice decimal.Decimal
	logger       logger.Interface
}

func NewRequestUploadUseCase(
	assets asset.Repository,
	storageProvider storage.Provider,
	maxSize int64,
	defaultPrice decimal.Decimal,
	logger logger.Interface,
) *RequestUploadUseCase {
	return &RequestUploadUseCase{
		assets:       assets,
		storage:      storageProvider,
		maxSize:      maxSize,
		defaultPrice: defaultPrice,
		logger:       logger,
	}
}

func (uc *RequestUploadUseCase) Execute(ctx context.Context, cmd RequestUploadCommand) (*dto.UploadDTO, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	if uc.maxSize > 0 && cmd.FileSize > uc.maxSize {
		return nil, apperrors.NewValidationError("File too large",
			fmt.Sprintf("maximum upload size is %d bytes", uc.maxSize))
	}

	a, err := asset.NewUpload(strings.TrimSpace(cmd.FileName), cmd.FileSize, cmd.MimeType, uc.defaultPrice)
	if err != nil {
		return nil, apperrors.NewValidationError("Invalid upload", err.Error())
	}
	if err := uc.assets.Create(ctx, a); err != nil {
		uc.logger.Errorw("failed to create asset for upload", "filename", cmd.FileName, "error", err)
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	target, err := uc.storage.GenerateUploadURL(ctx, a.ID(), a.FileName())
	if err != nil {
		uc.logger.Errorw("failed to generate upload url", "asset_id", a.ID(), "error", err)
		return nil, apperrors.NewUnavailableError("Uploads are not available", err.Error())
	}

	uc.logger.Infow("upload requested", "asset_id", a.ID(), "filename", a.FileName(), "size", cmd.FileSize)
	return &dto.UploadDTO{AssetID: a.ID(), UploadURL: target.UploadURL, ExpiresIn: target.ExpiresIn}, nil
}
