package dto

import (
	"time"

	"github.com/hhbot/dispatcher/internal/domain/application"
)

// QueueApplicationEntry is one row of a POST /hh/applications/queue batch.
type QueueApplicationEntry struct {
	VacancyID   int64   `json:"vacancy_id" binding:"required"`
	ResumeID    string  `json:"resume_id" binding:"required"`
	CoverLetter *string `json:"cover_letter"`
}

// QueueApplicationsRequest is the POST /hh/applications/queue body.
type QueueApplicationsRequest struct {
	UserID     uint                    `json:"user_id" binding:"required"`
	CampaignID *uint                   `json:"campaign_id"`
	Entries    []QueueApplicationEntry `json:"entries" binding:"required,min=1"`
}

// QueueApplicationsResponse reports how many rows were actually inserted,
// after (user_id, vacancy_id) dedup.
type QueueApplicationsResponse struct {
	Enqueued int `json:"enqueued"`
}

// DispatchRequest is the POST /hh/applications/dispatch body: trigger one
// dispatcher tick out of band, optionally without side effects.
type DispatchRequest struct {
	DryRun bool `json:"dry_run"`
}

// ApplicationResponse mirrors the domain Application for the wire.
type ApplicationResponse struct {
	ID           uint       `json:"id"`
	UserID       uint       `json:"user_id"`
	VacancyID    int64      `json:"vacancy_id"`
	ResumeID     string     `json:"resume_id"`
	Kind         string     `json:"kind"`
	Status       string     `json:"status"`
	AttemptCount int        `json:"attempt_count"`
	NextTryAt    *time.Time `json:"next_try_at,omitempty"`
	ErrorCode    *string    `json:"error_code,omitempty"`
	CampaignID   *uint      `json:"campaign_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
}

// FromApplication converts a domain Application into its wire shape.
func FromApplication(a *application.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:           a.ID(),
		UserID:       a.UserID(),
		VacancyID:    a.VacancyID(),
		ResumeID:     a.ResumeID(),
		Kind:         string(a.Kind()),
		Status:       string(a.Status()),
		AttemptCount: a.AttemptCount(),
		NextTryAt:    a.NextTryAt(),
		ErrorCode:    a.ErrorCode(),
		CampaignID:   a.CampaignID(),
		CreatedAt:    a.CreatedAt(),
		SentAt:       a.SentAt(),
	}
}
