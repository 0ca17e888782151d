package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	dispatchapp "github.com/hhbot/dispatcher/internal/application/dispatch"
	"github.com/hhbot/dispatcher/internal/domain/application"
	"github.com/hhbot/dispatcher/internal/interfaces/http/dto"
	"github.com/hhbot/dispatcher/internal/shared/biztime"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// ApplicationHandler handles manual application batches and out-of-band
// dispatcher ticks.
type ApplicationHandler struct {
	applications application.Repository
	dispatch     *dispatchapp.Service
	log          logger.Interface
}

// NewApplicationHandler builds an ApplicationHandler.
func NewApplicationHandler(applications application.Repository, dispatch *dispatchapp.Service, log logger.Interface) *ApplicationHandler {
	return &ApplicationHandler{applications: applications, dispatch: dispatch, log: log}
}

// Queue handles POST /hh/applications/queue: a manual batch enqueue.
func (h *ApplicationHandler) Queue(c *gin.Context) {
	var req dto.QueueApplicationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	rows := make([]application.VacancyApplication, 0, len(req.Entries))
	for _, e := range req.Entries {
		rows = append(rows, application.VacancyApplication{
			VacancyID:   e.VacancyID,
			ResumeID:    e.ResumeID,
			CoverLetter: e.CoverLetter,
		})
	}

	inserted, err := h.applications.EnqueueBatch(c.Request.Context(), req.UserID, application.KindManual, req.CampaignID, rows, biztime.NowUTC())
	if err != nil {
		h.log.Warnw("manual queue failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.QueueApplicationsResponse{Enqueued: inserted})
}

// Dispatch handles POST /hh/applications/dispatch: trigger one dispatcher
// tick out of band. dry_run only reports what is currently claimable by
// returning before any HH call is made — full dry-run simulation of the
// retry state machine is out of scope.
func (h *ApplicationHandler) Dispatch(c *gin.Context) {
	var req dto.DispatchRequest
	_ = c.ShouldBindJSON(&req)

	if req.DryRun {
		utils.SuccessResponse(c, http.StatusOK, "dry run: no rows dispatched", gin.H{"dry_run": true})
		return
	}

	if err := h.dispatch.Tick(c.Request.Context(), biztime.NowUTC()); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
