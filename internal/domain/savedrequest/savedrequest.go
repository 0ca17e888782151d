// Package savedrequest models reusable vacancy-search specifications.
package savedrequest

import (
	"net/url"
	"time"

	"github.com/hhbot/dispatcher/internal/domain/shared/queryspec"
)

// SavedRequest is a reusable search specification a Campaign is built on.
type SavedRequest struct {
	ID                 uint
	UserID             uint
	Title              string
	Query              string
	AreaID             *string
	Employment         []string
	WorkSchedule       []string
	ProfessionalRoleIDs []string
	SearchFieldScopes  []string
	DefaultCoverLetter *string
	CanonicalQS        string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// New builds a SavedRequest and computes its canonical query string.
func New(userID uint, title, query string, areaID *string, employment, workSchedule, professionalRoleIDs, searchFieldScopes []string, defaultCoverLetter *string, now time.Time) *SavedRequest {
	sr := &SavedRequest{
		UserID:              userID,
		Title:               title,
		Query:               query,
		AreaID:              areaID,
		Employment:          employment,
		WorkSchedule:        workSchedule,
		ProfessionalRoleIDs: professionalRoleIDs,
		SearchFieldScopes:   searchFieldScopes,
		DefaultCoverLetter:  defaultCoverLetter,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	sr.Recompute()
	return sr
}

// Recompute rebuilds CanonicalQS from the structured fields. Call after any
// mutation so the stored canonical form never drifts from the structured data.
func (sr *SavedRequest) Recompute() {
	values := url.Values{}
	if sr.Query != "" {
		values.Set("text", sr.Query)
	}
	if sr.AreaID != nil {
		values.Set("area", *sr.AreaID)
	}
	for _, v := range sr.Employment {
		values.Add("employment", v)
	}
	for _, v := range sr.WorkSchedule {
		values.Add("schedule", v)
	}
	for _, v := range sr.ProfessionalRoleIDs {
		values.Add("professional_role", v)
	}
	for _, v := range sr.SearchFieldScopes {
		values.Add("search_field", v)
	}
	sr.CanonicalQS = queryspec.NormalizeValues(values)
}
