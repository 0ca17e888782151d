package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hhbot/dispatcher/internal/application/payment"
	"github.com/hhbot/dispatcher/internal/interfaces/http/dto"
	"github.com/hhbot/dispatcher/internal/shared/biztime"
	"github.com/hhbot/dispatcher/internal/shared/errors"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// SignatureHeader carries the base64-encoded HMAC-SHA256 of the raw request
// body (§6.2).
const SignatureHeader = "X-Signature"

// PaymentHandler handles the inbound payment-confirmation webhook. It is
// never wrapped by the internal-API bearer auth middleware; the HMAC
// signature over the raw body is its own authentication.
type PaymentHandler struct {
	payment *payment.Service
	log     logger.Interface
}

// NewPaymentHandler builds a PaymentHandler.
func NewPaymentHandler(svc *payment.Service, log logger.Interface) *PaymentHandler {
	return &PaymentHandler{payment: svc, log: log}
}

// Succeeded handles the "payment succeeded" webhook.
func (h *PaymentHandler) Succeeded(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("unreadable body"))
		return
	}

	signature := c.GetHeader(SignatureHeader)
	if signature == "" || !h.payment.VerifySignature(rawBody, signature) {
		h.log.Warnw("payment webhook signature mismatch", "ip", c.ClientIP())
		utils.ErrorResponseWithError(c, errors.NewUnauthorizedError("invalid signature"))
		return
	}

	var req dto.PaymentSucceededRequest
	if err := json.Unmarshal(rawBody, &req); err != nil {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("invalid payload"))
		return
	}

	ev := payment.Event{
		Provider:              req.Provider,
		ProviderTransactionID: req.ProviderTransactionID,
		UserID:                req.UserID,
		TariffID:              req.TariffID,
		PeriodDays:            req.PeriodDays,
		PriceCents:            req.PriceCents,
	}
	if err := h.payment.HandlePaymentSucceeded(c.Request.Context(), ev, biztime.NowUTC()); err != nil {
		h.log.Warnw("payment webhook processing failed", "provider_transaction_id", req.ProviderTransactionID, "error", err)
		utils.ErrorResponseWithError(c, errors.NewInternalError("failed to process payment"))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "ok", nil)
}
