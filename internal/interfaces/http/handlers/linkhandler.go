package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hhbot/dispatcher/internal/application/link"
	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/application/token"
	"github.com/hhbot/dispatcher/internal/domain/resume"
	"github.com/hhbot/dispatcher/internal/interfaces/http/dto"
	"github.com/hhbot/dispatcher/internal/shared/biztime"
	"github.com/hhbot/dispatcher/internal/shared/errors"
	"github.com/hhbot/dispatcher/internal/shared/goroutine"
	"github.com/hhbot/dispatcher/internal/shared/logger"
	"github.com/hhbot/dispatcher/internal/shared/utils"
)

// LinkHandler handles the HH OAuth front door and résumé surface.
type LinkHandler struct {
	link                *link.Service
	tokens              *token.Service
	resumes             resume.Repository
	notifier            ports.Notifier
	frontendCallbackURL string
	log                 logger.Interface
}

// NewLinkHandler builds a LinkHandler. frontendCallbackURL, if set, is
// where the OAuth callback redirects on success; otherwise it replies JSON.
func NewLinkHandler(linkSvc *link.Service, tokens *token.Service, resumes resume.Repository, notifier ports.Notifier, frontendCallbackURL string, log logger.Interface) *LinkHandler {
	return &LinkHandler{link: linkSvc, tokens: tokens, resumes: resumes, notifier: notifier, frontendCallbackURL: frontendCallbackURL, log: log}
}

// Login handles GET /hh/login.
func (h *LinkHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	authURL, err := h.link.AuthorizeURL(c.Request.Context(), req.MessengerID)
	if err != nil {
		h.log.Warnw("hh/login failed", "error", err)
		utils.ErrorResponseWithError(c, errors.NewInternalError("failed to build authorize url"))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.AuthorizeURLResponse{AuthURL: authURL})
}

// Callback handles GET /hh/callback?code=&state=.
func (h *LinkHandler) Callback(c *gin.Context) {
	var req dto.CallbackRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	messengerID, err := h.link.Callback(c.Request.Context(), req.State, req.Code, biztime.NowUTC())
	if err != nil {
		h.log.Warnw("hh/callback failed", "error", err)
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("oauth callback failed"))
		return
	}

	// Opportunistic welcome message, sent off the request's own context so a
	// slow Telegram API never delays the redirect; never fails the callback.
	if h.notifier != nil {
		goroutine.SafeGo(h.log, "hh-callback-welcome-message", func() {
			if err := h.notifier.Send(context.Background(), messengerID, "Your HH account is linked."); err != nil {
				h.log.Warnw("welcome message failed", "messenger_id", messengerID, "error", err)
			}
		})
	}

	if h.frontendCallbackURL != "" {
		c.Redirect(http.StatusFound, h.frontendCallbackURL)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "account linked", gin.H{"messenger_id": messengerID})
}

// LinkStatus handles GET /hh/link-status?user_id=.
func (h *LinkHandler) LinkStatus(c *gin.Context) {
	userID, ok, err := dto.ParseUintQuery(c, "user_id")
	if err != nil || !ok {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("user_id is required"))
		return
	}
	t, err := h.tokens.LinkStatus(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if t == nil {
		utils.SuccessResponse(c, http.StatusOK, "", dto.LinkStatusResponse{Linked: false})
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", dto.LinkStatusResponse{Linked: true, ExpiresAt: &t.ExpiresAt})
}

// Unlink handles POST /hh/unlink.
func (h *LinkHandler) Unlink(c *gin.Context) {
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if err := h.tokens.Unlink(c.Request.Context(), req.UserID); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

// Refresh handles POST /hh/refresh: forces an EnsureFreshAccess call.
func (h *LinkHandler) Refresh(c *gin.Context) {
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	_, needsRefresh, err := h.tokens.EnsureFreshAccess(c.Request.Context(), req.UserID, 0, biztime.NowUTC())
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", gin.H{"needs_refresh": needsRefresh})
}

// Resumes handles GET /hh/resumes?user_id=.
func (h *LinkHandler) Resumes(c *gin.Context) {
	userID, ok, err := dto.ParseUintQuery(c, "user_id")
	if err != nil || !ok {
		utils.ErrorResponseWithError(c, errors.NewBadRequestError("user_id is required"))
		return
	}
	rows, err := h.resumes.ListByUserID(c.Request.Context(), userID)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	out := make([]dto.ResumeResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.ResumeResponse{
			ExternalID:    r.ExternalID,
			Title:         r.Title,
			Area:          r.Area,
			Visibility:    r.Visibility,
			LastUpdatedAt: r.LastUpdatedAt,
		})
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

// SyncResumes handles POST /hh/resumes/sync.
func (h *LinkHandler) SyncResumes(c *gin.Context) {
	var req struct {
		UserID uint `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	accessToken, needsRefresh, err := h.tokens.EnsureFreshAccess(c.Request.Context(), req.UserID, 0, biztime.NowUTC())
	if err != nil || (needsRefresh && accessToken == "") {
		utils.ErrorResponseWithError(c, errors.NewConflictError("no usable hh access token"))
		return
	}
	if err := h.tokens.SyncResumes(c.Request.Context(), req.UserID, accessToken); err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}
