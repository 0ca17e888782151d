package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hhbot/dispatcher/internal/application/referral"
	"github.com/hhbot/dispatcher/internal/interfaces/http/dto"
	"github.com/hhbot/dispatcher/internal/shared/biztime"
	"github.com/hhbot/dispatcher/internal/shared/errors"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// ReferralHandler exposes the referral front door.
type ReferralHandler struct {
	referral *referral.Service
	log      logger.Interface
}

// NewReferralHandler builds a ReferralHandler.
func NewReferralHandler(svc *referral.Service, log logger.Interface) *ReferralHandler {
	return &ReferralHandler{referral: svc, log: log}
}

// Me handles GET /referrals/me?user_id=.
func (h *ReferralHandler) Me(c *gin.Context) {
	userID, ok, err := dto.ParseUintQuery(c, "user_id")
	if err != nil || !ok {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("user_id is required"))
		return
	}
	summary, err := h.referral.Me(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.FromReferralSummary(summary))
}

// Generate handles POST /referrals/generate.
func (h *ReferralHandler) Generate(c *gin.Context) {
	var req dto.GenerateReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	code, err := h.referral.Generate(c.Request.Context(), req.UserID, biztime.NowUTC())
	if err != nil {
		h.log.Warnw("referral generate failed", "user_id", req.UserID, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.GenerateReferralResponse{Code: code})
}

// Track handles POST /referrals/track.
func (h *ReferralHandler) Track(c *gin.Context) {
	var req dto.TrackReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.referral.Track(c.Request.Context(), req.MessengerID, req.Code, biztime.NowUTC()); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
