package dto

import "time"

// LoginRequest is the GET /hh/login query: ?messenger_id=.
type LoginRequest struct {
	MessengerID string `form:"messenger_id" binding:"required"`
}

// AuthorizeURLResponse is the GET /hh/login response.
type AuthorizeURLResponse struct {
	AuthURL string `json:"auth_url"`
}

// CallbackRequest is the GET /hh/callback query.
type CallbackRequest struct {
	Code  string `form:"code" binding:"required"`
	State string `form:"state" binding:"required"`
}

// LinkStatusResponse is the GET /hh/link-status response.
type LinkStatusResponse struct {
	Linked    bool       `json:"linked"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ResumeResponse is one entry in GET /hh/resumes.
type ResumeResponse struct {
	ExternalID    string    `json:"external_id"`
	Title         string    `json:"title"`
	Area          string    `json:"area"`
	Visibility    string    `json:"visibility"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
}
