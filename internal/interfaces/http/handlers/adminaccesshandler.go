package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	accessdto "github.com/scoutystream/scouty/internal/application/access/dto"
	accessuc "github.com/scoutystream/scouty/internal/application/access/usecases"
	"github.com/scoutystream/scouty/internal/shared/constants"
	"github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

// AdminAccessHandler manages grants outside the payment flow.
type AdminAccessHandler struct {
	grantAccessUC  grantAccessUseCase
	revokeAccessUC revokeAccessUseCase
	assetAccessUC  assetAccessUseCase
	logger         logger.Interface
}

func NewAdminAccessHandler(
	grantAccessUC grantAccessUseCase,
	revokeAccessUC revokeAccessUseCase,
	assetAccessUC assetAccessUseCase,
	logger logger.Interface,
) *AdminAccessHandler {
	return &AdminAccessHandler{
		grantAccessUC:  grantAccessUC,
		revokeAccessUC: revokeAccessUC,
		assetAccessUC:  assetAccessUC,
		logger:         logger,
	}
}

type GrantAccessResponse struct {
	Grant          *accessdto.GrantDTO `json:"grant"`
	LedgerRecorded bool                `json:"ledgerRecorded"`
	LedgerQueued   bool                `json:"ledgerQueued"`
}

type GrantAccessBatchResponse struct {
	Grants         []*accessdto.GrantDTO `json:"grants"`
	LedgerRecorded bool                  `json:"ledgerRecorded"`
}

// GrantAccess godoc
//
//	@Summary		Grant access
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			request	body		usecases.GrantAccessCommand	true	"Grant"
//	@Success		200		{object}	utils.APIResponse{data=GrantAccessResponse}
//	@Failure		400		{object}	utils.APIResponse
//	@Failure		404		{object}	utils.APIResponse
//	@Router			/api/admin/access/grant [post]
func (h *AdminAccessHandler) GrantAccess(c *gin.Context) {
	var cmd accessuc.GrantAccessCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for grant access", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	outcome, err := h.grantAccessUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("access granted by admin",
		"admin", c.GetString(constants.ContextKeyUserID),
		"user_id", cmd.UserID,
		"asset_id", cmd.AssetID)

	utils.SuccessResponse(c, http.StatusOK, "Access granted", GrantAccessResponse{
		Grant:          accessdto.ToGrantDTO(outcome.Grant),
		LedgerRecorded: outcome.LedgerRecorded,
		LedgerQueued:   outcome.LedgerQueued,
	})
}

// GrantAccessBatch godoc
//
//	@Summary		Grant access to several users
//	@Description	The ledger receives one batch transaction and reports a single result
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			request	body		usecases.GrantAccessBatchCommand	true	"Batch grant"
//	@Success		200		{object}	utils.APIResponse{data=GrantAccessBatchResponse}
//	@Failure		400		{object}	utils.APIResponse
//	@Failure		404		{object}	utils.APIResponse
//	@Router			/api/admin/access/grant-batch [post]
func (h *AdminAccessHandler) GrantAccessBatch(c *gin.Context) {
	var cmd accessuc.GrantAccessBatchCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for batch grant", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.grantAccessUC.ExecuteBatch(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("batch access granted by admin",
		"admin", c.GetString(constants.ContextKeyUserID),
		"asset_id", cmd.AssetID,
		"count", len(result.Grants))

	utils.SuccessResponse(c, http.StatusOK, "Access granted", GrantAccessBatchResponse{
		Grants:         accessdto.ToGrantDTOs(result.Grants),
		LedgerRecorded: result.LedgerRecorded,
	})
}

// RevokeAccess godoc
//
//	@Summary		Revoke access
//	@Description	Revoking a grant that does not exist succeeds with revoked=false
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Param			request	body		usecases.RevokeAccessCommand	true	"Revoke"
//	@Success		200		{object}	utils.APIResponse{data=usecases.RevokeAccessResult}
//	@Failure		400		{object}	utils.APIResponse
//	@Router			/api/admin/access/revoke [post]
func (h *AdminAccessHandler) RevokeAccess(c *gin.Context) {
	var cmd accessuc.RevokeAccessCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for revoke access", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	result, err := h.revokeAccessUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	h.logger.Infow("access revoked by admin",
		"admin", c.GetString(constants.ContextKeyUserID),
		"user_id", cmd.UserID,
		"asset_id", cmd.AssetID,
		"revoked", result.Revoked)

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetAssetAccess godoc
//
//	@Summary		List grants for an asset
//	@Tags			admin
//	@Produce		json
//	@Security		Bearer
//	@Param			id	path		int	true	"Asset ID"
//	@Success		200	{object}	utils.APIResponse{data=[]dto.GrantDTO}
//	@Failure		404	{object}	utils.APIResponse
//	@Router			/api/admin/assets/{id}/access [get]
func (h *AdminAccessHandler) GetAssetAccess(c *gin.Context) {
	assetID, err := utils.ParseAssetIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	grants, err := h.assetAccessUC.Execute(c.Request.Context(), assetID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", grants)
}
