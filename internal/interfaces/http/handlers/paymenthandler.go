package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	accessdto "github.com/scoutystream/scouty/internal/application/access/dto"
	accessuc "github.com/scoutystream/scouty/internal/application/access/usecases"
	"github.com/scoutystream/scouty/internal/shared/constants"
	"github.com/scoutystream/scouty/internal/shared/errors"
	"github.com/scoutystream/scouty/internal/shared/logger"
	"github.com/scoutystream/scouty/internal/shared/utils"
)

type PaymentHandler struct {
	verifyPaymentUC verifyPaymentUseCase
	handleWebhookUC handleWebhookUseCase
	paymentStatusUC paymentStatusUseCase
	userAccessUC    userAccessUseCase
	logger          logger.Interface
}

func NewPaymentHandler(
	verifyPaymentUC verifyPaymentUseCase,
	handleWebhookUC handleWebhookUseCase,
	paymentStatusUC paymentStatusUseCase,
	userAccessUC userAccessUseCase,
	logger logger.Interface,
) *PaymentHandler {
	return &PaymentHandler{
		verifyPaymentUC: verifyPaymentUC,
		handleWebhookUC: handleWebhookUC,
		paymentStatusUC: paymentStatusUC,
		userAccessUC:    userAccessUC,
		logger:          logger,
	}
}

// VerifyPaymentRequest accepts the receipt either as an opaque token string
// or as an object carrying the transaction id and optional hints.
type VerifyPaymentRequest struct {
	AssetID uint64           `json:"assetId" example:"42"`
	Receipt json.RawMessage  `json:"receipt" swaggertype:"string" example:"tx_1"`
	UserID  string           `json:"userId,omitempty" example:"0xABC"`
	Amount  *decimal.Decimal `json:"amount,omitempty" swaggertype:"number"`
}

type receiptObject struct {
	TransactionID string           `json:"transactionId"`
	UserID        string           `json:"userId"`
	Amount        *decimal.Decimal `json:"amount"`
	AssetID       uint64           `json:"assetId"`
}

type VerifyPaymentResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Payment *accessdto.PaymentDTO `json:"payment"`
}

type WebhookResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// toCommand flattens the request into the verification command. Hints in an
// object receipt only fill fields the request left empty.
func (r VerifyPaymentRequest) toCommand() (accessuc.VerifyPaymentCommand, error) {
	cmd := accessuc.VerifyPaymentCommand{
		AssetID: r.AssetID,
		UserID:  strings.TrimSpace(r.UserID),
		Amount:  r.Amount,
	}

	raw := bytes.TrimSpace(r.Receipt)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return cmd, errors.NewValidationError("Validation failed", "receipt is required")
	}

	switch raw[0] {
	case '"':
		if err := json.Unmarshal(raw, &cmd.Receipt); err != nil {
			return cmd, errors.NewValidationError("Validation failed", "receipt must be a string or an object")
		}
	case '{':
		var obj receiptObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return cmd, errors.NewValidationError("Validation failed", "receipt must be a string or an object")
		}
		if obj.AssetID != 0 && r.AssetID != 0 && obj.AssetID != r.AssetID {
			return cmd, errors.NewValidationError("Validation failed",
				fmt.Sprintf("receipt assetId %d does not match assetId %d", obj.AssetID, r.AssetID))
		}
		if cmd.AssetID == 0 {
			cmd.AssetID = obj.AssetID
		}
		cmd.Receipt = obj.TransactionID
		if cmd.UserID == "" {
			cmd.UserID = strings.TrimSpace(obj.UserID)
		}
		if cmd.Amount == nil {
			cmd.Amount = obj.Amount
		}
	default:
		return cmd, errors.NewValidationError("Validation failed", "receipt must be a string or an object")
	}

	return cmd, nil
}

// VerifyPayment godoc
//
//	@Summary		Verify a payment receipt
//	@Description	Verifies the receipt with the payment provider and grants access when it settles the asset price
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			request	body		VerifyPaymentRequest	true	"Receipt"
//	@Success		200		{object}	VerifyPaymentResponse
//	@Failure		400		{object}	utils.APIResponse
//	@Failure		404		{object}	utils.APIResponse
//	@Router			/api/payments/x402/verify [post]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for payment verification", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid request body", err.Error()))
		return
	}

	cmd, err := req.toCommand()
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.verifyPaymentUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, VerifyPaymentResponse{
		Success: true,
		Message: "Payment verified and access granted",
		Payment: accessdto.ToPaymentDTO(result.Record, result.UserID),
	})
}

// HandleWebhook godoc
//
//	@Summary		Payment provider webhook
//	@Description	Authenticated with X-Webhook-Signature when a webhook secret is configured. Redeliveries are acknowledged without side effects.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			X-Webhook-Signature	header		string	false	"HMAC-SHA256 of the raw body"
//	@Success		200					{object}	WebhookResponse
//	@Failure		400					{object}	utils.APIResponse
//	@Failure		404					{object}	utils.APIResponse
//	@Router			/api/payments/webhook [post]
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		h.logger.Warnw("failed to read webhook body", "error", err)
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("failed to read request body"))
		return
	}

	result, err := h.handleWebhookUC.Execute(c.Request.Context(), accessuc.HandleWebhookCommand{
		Payload:   payload,
		Signature: c.GetHeader(constants.HeaderWebhookSig),
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	message := "Access granted"
	if result.AlreadyGranted {
		message = "Access already granted"
	}

	c.JSON(http.StatusOK, WebhookResponse{Success: true, Message: message})
}

// GetPaymentStatus godoc
//
//	@Summary		Get payment status
//	@Description	Returns the grant recorded for a transaction
//	@Tags			payments
//	@Produce		json
//	@Param			transactionId	path		string	true	"Transaction ID"
//	@Success		200				{object}	utils.APIResponse{data=dto.GrantDTO}
//	@Failure		404				{object}	utils.APIResponse
//	@Router			/api/payments/status/{transactionId} [get]
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	result, err := h.paymentStatusUC.Execute(c.Request.Context(), strings.TrimSpace(c.Param("transactionId")))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}

// GetUserHistory godoc
//
//	@Summary		Get purchase history
//	@Tags			payments
//	@Produce		json
//	@Param			userId	path		string	true	"Wallet address"
//	@Success		200		{object}	utils.APIResponse{data=dto.UserHistoryDTO}
//	@Failure		400		{object}	utils.APIResponse
//	@Router			/api/payments/history/{userId} [get]
func (h *PaymentHandler) GetUserHistory(c *gin.Context) {
	result, err := h.userAccessUC.Execute(c.Request.Context(), strings.TrimSpace(c.Param("userId")))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", result)
}
