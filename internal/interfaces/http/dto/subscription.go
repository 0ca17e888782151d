package dto

import (
	"time"

	"github.com/hhbot/dispatcher/internal/domain/subscription"
)

// SubscriptionResponse is the GET /subscriptions/current response.
type SubscriptionResponse struct {
	TariffRef string    `json:"tariff_ref"`
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FromSubscription converts a domain Subscription into its wire shape.
func FromSubscription(s *subscription.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		TariffRef: s.TariffRef,
		Status:    string(s.Status),
		StartedAt: s.StartedAt,
		ExpiresAt: s.ExpiresAt,
	}
}
