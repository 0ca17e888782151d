package dto

import (
	"time"

	"github.com/hhbot/dispatcher/internal/domain/campaign"
)

// UpsertCampaignRequest is the POST /hh/campaigns/upsert body. ID is 0 for
// a new campaign, set for an update.
type UpsertCampaignRequest struct {
	ID               uint   `json:"id"`
	UserID           uint   `json:"user_id" binding:"required"`
	Title            string `json:"title"`
	SavedRequestID   *uint  `json:"saved_request_id"`
	ResumeExternalID string `json:"resume_external_id" binding:"required"`
	DailyLimit       int    `json:"daily_limit" binding:"required"`
}

// CampaignIDRequest is the body shared by start/stop/delete/send_now.
type CampaignIDRequest struct {
	ID uint `json:"id" binding:"required"`
}

// SendNowRequest is the POST /hh/campaigns/send_now body.
type SendNowRequest struct {
	ID  uint `json:"id" binding:"required"`
	Cap int  `json:"cap"`
}

// SendNowResponse reports how many applications were enqueued.
type SendNowResponse struct {
	Enqueued int `json:"enqueued"`
}

// AutoTickRequest is the POST /hh/campaigns/auto_tick body — used to trigger
// an out-of-band scheduler pass (e.g. from an ops runbook).
type AutoTickRequest struct {
	TickIntervalSeconds int `json:"tick_interval_seconds"`
}

// CampaignResponse mirrors the domain Campaign for the wire.
type CampaignResponse struct {
	ID               uint       `json:"id"`
	UserID           uint       `json:"user_id"`
	Title            string     `json:"title"`
	SavedRequestID   *uint      `json:"saved_request_id,omitempty"`
	ResumeExternalID string     `json:"resume_external_id"`
	Status           string     `json:"status"`
	DailyLimit       int        `json:"daily_limit"`
	SentToday        int        `json:"sent_today"`
	SentTotal        int        `json:"sent_total"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	StoppedAt        *time.Time `json:"stopped_at,omitempty"`
	LastPolledAt     *time.Time `json:"last_polled_at,omitempty"`
}

// FromCampaign converts a domain Campaign into its wire shape.
func FromCampaign(c *campaign.Campaign) CampaignResponse {
	return CampaignResponse{
		ID:               c.ID(),
		UserID:           c.UserID(),
		Title:            c.Title(),
		SavedRequestID:   c.SavedRequestID(),
		ResumeExternalID: c.ResumeExternalID(),
		Status:           string(c.Status()),
		DailyLimit:       c.DailyLimit(),
		SentToday:        c.SentToday(),
		SentTotal:        c.SentTotal(),
		StartedAt:        c.StartedAt(),
		StoppedAt:        c.StoppedAt(),
		LastPolledAt:     c.LastPolledAt(),
	}
}
