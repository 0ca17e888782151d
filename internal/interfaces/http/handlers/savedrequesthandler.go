package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hhbot/dispatcher/internal/domain/savedrequest"
	"github.com/hhbot/dispatcher/internal/interfaces/http/dto"
	"github.com/hhbot/dispatcher/internal/shared/biztime"
	"github.com/hhbot/dispatcher/internal/shared/errors"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// SavedRequestHandler handles CRUD over reusable search specifications.
type SavedRequestHandler struct {
	savedRequests savedrequest.Repository
	log           logger.Interface
}

// NewSavedRequestHandler builds a SavedRequestHandler.
func NewSavedRequestHandler(savedRequests savedrequest.Repository, log logger.Interface) *SavedRequestHandler {
	return &SavedRequestHandler{savedRequests: savedRequests, log: log}
}

// List handles GET /saved-requests?user_id=.
func (h *SavedRequestHandler) List(c *gin.Context) {
	userID, ok, err := dto.ParseUintQuery(c, "user_id")
	if err != nil || !ok {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("user_id is required"))
		return
	}
	rows, err := h.savedRequests.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	out := make([]dto.SavedRequestResponse, 0, len(rows))
	for _, sr := range rows {
		out = append(out, dto.FromSavedRequest(sr))
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

// Create handles POST /saved-requests.
func (h *SavedRequestHandler) Create(c *gin.Context) {
	var req dto.CreateSavedRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	now := biztime.NowUTC()
	sr := savedrequest.New(req.UserID, req.Title, req.Query, req.AreaID, req.Employment, req.WorkSchedule, req.ProfessionalRoleIDs, req.SearchFieldScopes, req.DefaultCoverLetter, now)
	if err := h.savedRequests.Create(c.Request.Context(), sr); err != nil {
		h.log.Warnw("saved request create failed", "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, dto.FromSavedRequest(sr))
}

// Update handles POST /saved-requests/{id}.
func (h *SavedRequestHandler) Update(c *gin.Context) {
	id, err := dto.ParseUintParam(c, "id", "saved request")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	var req dto.UpdateSavedRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	sr, err := h.savedRequests.GetByID(c.Request.Context(), id)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if sr == nil {
		utils.ErrorResponseWithError(c, errors.NewNotFoundError("saved request not found"))
		return
	}

	sr.Title = req.Title
	sr.Query = req.Query
	sr.AreaID = req.AreaID
	sr.Employment = req.Employment
	sr.WorkSchedule = req.WorkSchedule
	sr.ProfessionalRoleIDs = req.ProfessionalRoleIDs
	sr.SearchFieldScopes = req.SearchFieldScopes
	sr.DefaultCoverLetter = req.DefaultCoverLetter
	sr.UpdatedAt = biztime.NowUTC()
	sr.Recompute()

	if err := h.savedRequests.Update(c.Request.Context(), sr); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.FromSavedRequest(sr))
}

// Delete handles DELETE /saved-requests/{id}?user_id=.
func (h *SavedRequestHandler) Delete(c *gin.Context) {
	id, err := dto.ParseUintParam(c, "id", "saved request")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	userID, ok, err := dto.ParseUintQuery(c, "user_id")
	if err != nil || !ok {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("user_id is required"))
		return
	}
	if err := h.savedRequests.Delete(c.Request.Context(), id, userID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
