package subscription

import (
	"context"
	"time"
)

// Repository is the typed DAO over subscriptions and subscription_notifications.
type Repository interface {
	Create(ctx context.Context, s *Subscription) error
	Update(ctx context.Context, s *Subscription) error
	GetCurrentByUserID(ctx context.Context, userID uint) (*Subscription, error)

	// ListExpiringSoon returns active subscriptions with expires_at<=before.
	ListExpiringSoon(ctx context.Context, before time.Time) ([]*Subscription, error)

	// InsertReminderMarkerIfAbsent inserts (subscriptionID, kind) under
	// ON CONFLICT DO NOTHING, returning true only if a row was actually
	// created — the at-most-once-side-effect discipline from §9.
	InsertReminderMarkerIfAbsent(ctx context.Context, subscriptionID uint, kind ReminderKind) (inserted bool, err error)
}
