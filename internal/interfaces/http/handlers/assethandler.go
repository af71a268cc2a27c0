package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	accessuc "github.com/scoutystream/scouty/internal/application/access/usecases"
	assetuc "github.com/scoutystream/scouty/internal/application/asset/usecases"
	"github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

// AssetHandler serves the public catalog and the protected manifest.
type AssetHandler struct {
	listAssetsUC    listAssetsUseCase
	getAssetUC      getAssetUseCase
	requestAccessUC requestAccessUseCase
	devPurchaseUC   devPurchaseUseCase
	logger          logger.Interface
}

func NewAssetHandler(
	listAssetsUC listAssetsUseCase,
	getAssetUC getAssetUseCase,
	requestAccessUC requestAccessUseCase,
	devPurchaseUC devPurchaseUseCase,
	logger logger.Interface,
) *AssetHandler {
	return &AssetHandler{
		listAssetsUC:    listAssetsUC,
		getAssetUC:      getAssetUC,
		requestAccessUC: requestAccessUC,
		devPurchaseUC:   devPurchaseUC,
		logger:          logger,
	}
}

// PaymentRequiredResponse is the body of a 402 manifest response. The
// challenge itself travels in the response headers.
type PaymentRequiredResponse struct {
	Error   string  `json:"error" example:"payment_required"`
	Message string  `json:"message"`
	Price   float64 `json:"price" example:"5.99"`
	AssetID uint64  `json:"assetId" example:"42"`
}

type PurchaseRequest struct {
	UserID string `json:"userId"`
}

type PurchaseResponse struct {
	AssetID        uint64 `json:"assetId"`
	UserID         string `json:"userId"`
	TransactionID  string `json:"transactionId"`
	LedgerRecorded bool   `json:"ledgerRecorded"`
}

// ListAssets godoc
//
//	@Summary		List assets
//	@Description	List the catalog, optionally filtered by status
//	@Tags			assets
//	@Produce		json
//	@Param			status	query		string	false	"Status filter"	Enums(uploading, processing, ready, failed)
//	@Success		200		{object}	utils.APIResponse{data=[]dto.AssetDTO}
//	@Failure		400		{object}	utils.APIResponse
//	@Router			/api/assets [get]
func (h *AssetHandler) ListAssets(c *gin.Context) {
	query := assetuc.ListAssetsQuery{Status: strings.TrimSpace(c.Query("status"))}

	assets, err := h.listAssetsUC.Execute(c.Request.Context(), query)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", assets)
}

// GetAsset godoc
//
//	@Summary		Get asset
//	@Description	Public metadata; hasAccess is included when an address is supplied
//	@Tags			assets
//	@Produce		json
//	@Param			id		path		int		true	"Asset ID"
//	@Param			address	query		string	false	"Wallet address"
//	@Success		200		{object}	utils.APIResponse{data=dto.AssetDTO}
//	@Failure		400		{object}	utils.APIResponse
//	@Failure		404		{object}	utils.APIResponse
//	@Router			/api/assets/{id} [get]
func (h *AssetHandler) GetAsset(c *gin.Context) {
	assetID, err := utils.ParseAssetIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.getAssetUC.Execute(c.Request.Context(), assetuc.GetAssetQuery{
		AssetID: assetID,
		UserID:  utils.CallerAddress(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetManifest godoc
//
//	@Summary		Get streaming manifest
//	@Description	Returns an access descriptor when the caller holds access, otherwise a 402 payment challenge
//	@Tags			assets
//	@Produce		json
//	@Param			id				path		int		true	"Asset ID"
//	@Param			address			query		string	false	"Wallet address"
//	@Param			X-User-Address	header		string	false	"Wallet address"
//	@Success		200				{object}	storage.Descriptor
//	@Failure		400				{object}	utils.APIResponse
//	@Failure		402				{object}	PaymentRequiredResponse
//	@Failure		404				{object}	utils.APIResponse
//	@Router			/api/assets/{id}/manifest [get]
func (h *AssetHandler) GetManifest(c *gin.Context) {
	assetID, err := utils.ParseAssetIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.requestAccessUC.Execute(c.Request.Context(), accessuc.RequestAccessCommand{
		AssetID: assetID,
		UserID:  utils.CallerAddress(c),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	if !result.Authorized {
		challenge := result.Challenge
		for key, value := range challenge.Headers {
			c.Header(key, value)
		}
		c.JSON(http.StatusPaymentRequired, PaymentRequiredResponse{
			Error:   "payment_required",
			Message: "Payment required to access this asset",
			Price:   challenge.Price.InexactFloat64(),
			AssetID: challenge.AssetID,
		})
		return
	}

	c.JSON(http.StatusOK, result.Descriptor)
}

// Purchase godoc
//
//	@Summary		Simulate a purchase
//	@Description	Grants access with a generated transaction id. Only available with the mock payment provider.
//	@Tags			assets
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Asset ID"
//	@Param			request	body		PurchaseRequest	true	"Buyer"
//	@Success		200		{object}	utils.APIResponse{data=PurchaseResponse}
//	@Failure		400		{object}	utils.APIResponse
//	@Failure		404		{object}	utils.APIResponse
//	@Router			/api/assets/{id}/purchase [post]
func (h *AssetHandler) Purchase(c *gin.Context) {
	assetID, err := utils.ParseAssetIDParam(c, "id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var req PurchaseRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.logger.Warnw("invalid request body for purchase", "error", err)
			utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
			return
		}
	}
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = utils.CallerAddress(c)
	}

	result, err := h.devPurchaseUC.Execute(c.Request.Context(), accessuc.DevPurchaseCommand{
		AssetID: assetID,
		UserID:  req.UserID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Purchase successful", PurchaseResponse{
		AssetID:        assetID,
		UserID:         req.UserID,
		TransactionID:  result.TransactionID,
		LedgerRecorded: result.Outcome != nil && result.Outcome.LedgerRecorded,
	})
}
