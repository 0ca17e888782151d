package dto

import (
	"time"

	"github.com/hhbot/dispatcher/internal/domain/savedrequest"
)

// CreateSavedRequestRequest is the POST /saved-requests body.
type CreateSavedRequestRequest struct {
	UserID              uint     `json:"user_id" binding:"required"`
	Title               string   `json:"title" binding:"required"`
	Query               string   `json:"query"`
	AreaID              *string  `json:"area_id"`
	Employment          []string `json:"employment"`
	WorkSchedule        []string `json:"work_schedule"`
	ProfessionalRoleIDs []string `json:"professional_role_ids"`
	SearchFieldScopes   []string `json:"search_field_scopes"`
	DefaultCoverLetter  *string  `json:"default_cover_letter"`
}

// UpdateSavedRequestRequest is the PATCH-style POST /saved-requests/{id} body.
type UpdateSavedRequestRequest struct {
	Title               string   `json:"title" binding:"required"`
	Query               string   `json:"query"`
	AreaID              *string  `json:"area_id"`
	Employment          []string `json:"employment"`
	WorkSchedule        []string `json:"work_schedule"`
	ProfessionalRoleIDs []string `json:"professional_role_ids"`
	SearchFieldScopes   []string `json:"search_field_scopes"`
	DefaultCoverLetter  *string  `json:"default_cover_letter"`
}

// SavedRequestResponse mirrors the domain SavedRequest for the wire.
type SavedRequestResponse struct {
	ID                  uint     `json:"id"`
	UserID              uint     `json:"user_id"`
	Title               string   `json:"title"`
	Query               string   `json:"query"`
	AreaID              *string  `json:"area_id,omitempty"`
	Employment          []string `json:"employment,omitempty"`
	WorkSchedule        []string `json:"work_schedule,omitempty"`
	ProfessionalRoleIDs []string `json:"professional_role_ids,omitempty"`
	SearchFieldScopes   []string `json:"search_field_scopes,omitempty"`
	DefaultCoverLetter  *string  `json:"default_cover_letter,omitempty"`
	CanonicalQS         string   `json:"canonical_qs"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// FromSavedRequest converts a domain SavedRequest into its wire shape.
func FromSavedRequest(sr *savedrequest.SavedRequest) SavedRequestResponse {
	return SavedRequestResponse{
		ID:                  sr.ID,
		UserID:              sr.UserID,
		Title:               sr.Title,
		Query:               sr.Query,
		AreaID:              sr.AreaID,
		Employment:          sr.Employment,
		WorkSchedule:        sr.WorkSchedule,
		ProfessionalRoleIDs: sr.ProfessionalRoleIDs,
		SearchFieldScopes:   sr.SearchFieldScopes,
		DefaultCoverLetter:  sr.DefaultCoverLetter,
		CanonicalQS:         sr.CanonicalQS,
		CreatedAt:           sr.CreatedAt,
		UpdatedAt:           sr.UpdatedAt,
	}
}
