package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userapp "github.com/hhbot/dispatcher/internal/application/user"
	"github.com/hhbot/dispatcher/internal/interfaces/http/dto"
	"github.com/hhbot/dispatcher/internal/shared/biztime"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// UserHandler handles the bot frontend's identity/attribution calls.
type UserHandler struct {
	users *userapp.Service
	log   logger.Interface
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(users *userapp.Service, log logger.Interface) *UserHandler {
	return &UserHandler{users: users, log: log}
}

// Seen handles POST /users/seen.
func (h *UserHandler) Seen(c *gin.Context) {
	var req dto.SeenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	u, err := h.users.Seen(c.Request.Context(), req.MessengerID)
	if err != nil {
		h.log.Warnw("users/seen failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.FromUser(u))
}

// Register handles POST /users/register.
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	u, err := h.users.Register(c.Request.Context(), req.MessengerID, req.DisplayName, biztime.NowUTC())
	if err != nil {
		h.log.Warnw("users/register failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.FromUser(u))
}

// SetUTM handles POST /users/utm.
func (h *UserHandler) SetUTM(c *gin.Context) {
	var req dto.UTMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	u, err := h.users.SetUTM(c.Request.Context(), req.MessengerID, req.UTMSource, req.UTMMedium, req.UTMCampaign, biztime.NowUTC())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.FromUser(u))
}
