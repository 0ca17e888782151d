package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	campaignapp "github.com/hhbot/dispatcher/internal/application/campaign"
	campaigndomain "github.com/hhbot/dispatcher/internal/domain/campaign"
	"github.com/hhbot/dispatcher/internal/interfaces/http/dto"
	"github.com/hhbot/dispatcher/internal/shared/biztime"
	apperrors "github.com/hhbot/dispatcher/internal/shared/errors"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// CampaignHandler handles campaign CRUD and the user-triggered lifecycle
// and manual-send actions backed by the Campaign Scheduler.
type CampaignHandler struct {
	campaigns campaigndomain.Repository
	svc       *campaignapp.Service
	log       logger.Interface
}

// NewCampaignHandler builds a CampaignHandler.
func NewCampaignHandler(campaigns campaigndomain.Repository, svc *campaignapp.Service, log logger.Interface) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns, svc: svc, log: log}
}

// List handles GET /hh/campaigns?user_id=.
func (h *CampaignHandler) List(c *gin.Context) {
	userID, ok, err := dto.ParseUintQuery(c, "user_id")
	if err != nil || !ok {
		utils.ErrorResponseWithError(c, apperrors.NewBadRequestError("user_id is required"))
		return
	}
	rows, err := h.campaigns.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	out := make([]dto.CampaignResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, dto.FromCampaign(row))
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

// Upsert handles POST /hh/campaigns/upsert.
func (h *CampaignHandler) Upsert(c *gin.Context) {
	var req dto.UpsertCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	now := biztime.NowUTC()

	if req.ID != 0 {
		existing, err := h.campaigns.GetByID(c.Request.Context(), req.ID)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		if existing == nil {
			utils.ErrorResponseWithError(c, apperrors.NewNotFoundError("campaign not found"))
			return
		}
		if err := existing.SetDailyLimit(req.DailyLimit, now); err != nil {
			utils.ErrorResponseWithError(c, apperrors.NewValidationError(err.Error()))
			return
		}
		if err := h.campaigns.Update(c.Request.Context(), existing); err != nil {
			utils.ErrorResponseWithError(c, err)
			return
		}
		utils.SuccessResponse(c, http.StatusOK, "", dto.FromCampaign(existing))
		return
	}

	created, err := campaigndomain.New(req.UserID, req.Title, req.SavedRequestID, req.ResumeExternalID, req.DailyLimit, now)
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}
	if err := h.campaigns.Create(c.Request.Context(), created); err != nil {
		h.log.Warnw("campaign create failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, dto.FromCampaign(created))
}

// Start handles POST /hh/campaigns/start.
func (h *CampaignHandler) Start(c *gin.Context) {
	var req dto.CampaignIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.svc.Activate(c.Request.Context(), req.ID, biztime.NowUTC()); err != nil {
		if errors.Is(err, campaigndomain.ErrActiveCampaignExists) {
			utils.ErrorResponseWithError(c, apperrors.NewConflictError(err.Error()))
			return
		}
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// Stop handles POST /hh/campaigns/stop.
func (h *CampaignHandler) Stop(c *gin.Context) {
	var req dto.CampaignIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.svc.Stop(c.Request.Context(), req.ID, biztime.NowUTC()); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// Delete handles POST /hh/campaigns/delete.
func (h *CampaignHandler) Delete(c *gin.Context) {
	var req struct {
		ID     uint `json:"id" binding:"required"`
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.campaigns.Delete(c.Request.Context(), req.ID, req.UserID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// SendNow handles POST /hh/campaigns/send_now.
func (h *CampaignHandler) SendNow(c *gin.Context) {
	var req dto.SendNowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	enqueued, err := h.svc.SendNow(c.Request.Context(), req.ID, req.Cap, biztime.NowUTC())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.SendNowResponse{Enqueued: enqueued})
}

// defaultAutoTickInterval is used when the caller doesn't specify one; it
// matches the periodic scheduler's own default cadence.
const defaultAutoTickInterval = 300 * time.Second

// AutoTick handles POST /hh/campaigns/auto_tick: an out-of-band trigger of
// one full scheduler pass, mirroring what the periodic worker does.
func (h *CampaignHandler) AutoTick(c *gin.Context) {
	var req dto.AutoTickRequest
	_ = c.ShouldBindJSON(&req)

	tickInterval := defaultAutoTickInterval
	if req.TickIntervalSeconds > 0 {
		tickInterval = time.Duration(req.TickIntervalSeconds) * time.Second
	}
	if err := h.svc.Tick(c.Request.Context(), tickInterval, biztime.NowUTC()); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
