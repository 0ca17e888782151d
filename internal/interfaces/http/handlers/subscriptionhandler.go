package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hhbot/dispatcher/internal/domain/subscription"
	"github.com/hhbot/dispatcher/internal/interfaces/http/dto"
	"github.com/hhbot/dispatcher/internal/shared/errors"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// SubscriptionHandler reports the caller's current entitlement period.
type SubscriptionHandler struct {
	subscriptions subscription.Repository
	log           logger.Interface
}

// NewSubscriptionHandler builds a SubscriptionHandler.
func NewSubscriptionHandler(subscriptions subscription.Repository, log logger.Interface) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptions: subscriptions, log: log}
}

// Current handles GET /subscriptions/current?user_id=.
func (h *SubscriptionHandler) Current(c *gin.Context) {
	userID, ok, err := dto.ParseUintQuery(c, "user_id")
	if err != nil || !ok {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("user_id is required"))
		return
	}
	sub, err := h.subscriptions.GetCurrentByUserID(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if sub == nil {
		utils.SuccessResponse(c, http.StatusOK, "", nil)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.FromSubscription(sub))
}
