package dto

import (
	"time"

	"github.com/hhbot/dispatcher/internal/domain/user"
)

// SeenRequest is the POST /users/seen body.
type SeenRequest struct {
	MessengerID string `json:"messenger_id" binding:"required"`
}

// RegisterRequest is the POST /users/register body.
type RegisterRequest struct {
	MessengerID string  `json:"messenger_id" binding:"required"`
	DisplayName *string `json:"display_name"`
}

// UTMRequest is the POST /users/utm body.
type UTMRequest struct {
	MessengerID string `json:"messenger_id" binding:"required"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
}

// UserResponse is the shape returned for every /users/* call.
type UserResponse struct {
	ID           uint    `json:"id"`
	MessengerID  string  `json:"messenger_id"`
	DisplayName  *string `json:"display_name,omitempty"`
	ReferralCode *string `json:"referral_code,omitempty"`
	ReferredBy   *uint   `json:"referred_by,omitempty"`
	FirstSeenAt  time.Time `json:"first_seen_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
}

// FromUser converts a domain User into its wire shape.
func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		MessengerID:  u.MessengerID,
		DisplayName:  u.DisplayName,
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
		FirstSeenAt:  u.FirstSeenAt,
		LastSeenAt:   u.LastSeenAt,
	}
}
