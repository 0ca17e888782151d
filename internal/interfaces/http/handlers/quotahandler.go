package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hhbot/dispatcher/internal/application/quota"
	"github.com/hhbot/dispatcher/internal/domain/user"
	"github.com/hhbot/dispatcher/internal/interfaces/http/dto"
	"github.com/hhbot/dispatcher/internal/shared/biztime"
	"github.com/hhbot/dispatcher/internal/shared/errors"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// QuotaHandler exposes the Quota Engine's view by user_id or tg_id.
type QuotaHandler struct {
	quota *quota.Service
	users user.Repository
	log   logger.Interface
}

// NewQuotaHandler builds a QuotaHandler.
func NewQuotaHandler(q *quota.Service, users user.Repository, log logger.Interface) *QuotaHandler {
	return &QuotaHandler{quota: q, users: users, log: log}
}

// View handles GET /quota?user_id= or ?tg_id=.
func (h *QuotaHandler) View(c *gin.Context) {
	userID, ok, err := dto.ParseUintQuery(c, "user_id")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if !ok {
		tgID := c.Query("tg_id")
		if tgID == "" {
			utils.ErrorResponseWithError(c, errors.NewBadRequestError("user_id or tg_id is required"))
			return
		}
		u, err := h.users.GetByMessengerID(c.Request.Context(), tgID)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		if u == nil {
			utils.ErrorResponseWithError(c, errors.NewNotFoundError("user not found"))
			return
		}
		userID = u.ID
	}

	view, err := h.quota.QuotaView(c.Request.Context(), userID, biztime.NowUTC())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.FromQuotaView(view))
}
