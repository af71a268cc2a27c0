package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	assetdto "github.com/scoutystream/scouty/internal/application/asset/dto"
	assetuc "github.com/scoutystream/scouty/internal/application/asset/usecases"
	"github.com/scoutystream/scouty/internal/shared/constants"
	"github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type UploadHandler struct {
	requestUploadUC requestUploadUseCase
	commitUploadUC  commitUploadUseCase
	uploadStatusUC  uploadStatusUseCase
	logger          logger.Interface
}

func NewUploadHandler(
	requestUploadUC requestUploadUseCase,
	commitUploadUC commitUploadUseCase,
	uploadStatusUC uploadStatusUseCase,
	logger logger.Interface,
) *UploadHandler {
	return &UploadHandler{
		requestUploadUC: requestUploadUC,
		commitUploadUC:  commitUploadUC,
		uploadStatusUC:  uploadStatusUC,
		logger:          logger,
	}
}

// CommitUploadResponse reports the committed asset; processing continues in
// the background and is observed through the status endpoint.
type CommitUploadResponse struct {
	Asset      *assetdto.AssetDTO `json:"asset"`
	Processing bool               `json:"processing"`
}

// RequestUpload godoc
//
//	@Summary		Request an upload URL
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			request	body		usecases.RequestUploadCommand	true	"File metadata"
//	@Success		201		{object}	utils.APIResponse{data=dto.UploadDTO}
//	@Failure		400		{object}	utils.APIResponse
//	@Failure		401		{object}	utils.APIResponse
//	@Failure		403		{object}	utils.APIResponse
//	@Router			/api/uploads/request [post]
func (h *UploadHandler) RequestUpload(c *gin.Context) {
	var cmd assetuc.RequestUploadCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for upload request", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.requestUploadUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("upload requested",
		"asset_id", result.AssetID,
		"filename", cmd.FileName,
		"size", cmd.FileSize,
		"requested_by", c.GetString(constants.ContextKeyUserID))

	utils.CreatedResponse(c, result, "Upload URL issued")
}

// CommitUpload godoc
//
//	@Summary		Commit an upload
//	@Description	Stores metadata and starts processing; the asset becomes ready when processing completes
//	@Tags			uploads
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			request	body		usecases.CommitUploadCommand	true	"Asset metadata"
//	@Success		202		{object}	utils.APIResponse{data=CommitUploadResponse}
//	@Failure		400		{object}	utils.APIResponse
//	@Failure		404		{object}	utils.APIResponse
//	@Failure		409		{object}	utils.APIResponse
//	@Router			/api/uploads/commit [post]
func (h *UploadHandler) CommitUpload(c *gin.Context) {
	var cmd assetuc.CommitUploadCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for upload commit", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, task, err := h.commitUploadUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusAccepted, "Upload committed, processing started", CommitUploadResponse{
		Asset:      result,
		Processing: task != nil,
	})
}

// GetUploadStatus godoc
//
//	@Summary		Get upload status
//	@Tags			uploads
//	@Produce		json
//	@Security		Bearer
//	@Param			assetId	path		int	true	"Asset ID"
//	@Success		200		{object}	utils.APIResponse{data=dto.UploadStatusDTO}
//	@Failure		404		{object}	utils.APIResponse
//	@Router			/api/uploads/status/{assetId} [get]
func (h *UploadHandler) GetUploadStatus(c *gin.Context) {
	assetID, err := utils.ParseAssetIDParam(c, "assetId")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.uploadStatusUC.Execute(c.Request.Context(), assetID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
