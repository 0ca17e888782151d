// Package subscription models paid entitlement periods and their
// once-per-kind expiry reminders.
package subscription

import "time"

// Status is the subscription lifecycle state.
type Status string

const (
	StatusActive    Status = "active"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Tariff is the effective entitlement class computed from subscriptions.
type Tariff string

const (
	TariffFree Tariff = "free"
	TariffPaid Tariff = "paid"
)

// ReminderKind enumerates the once-per-subscription reminder markers.
type ReminderKind string

const (
	ReminderD3      ReminderKind = "D3"
	ReminderD1      ReminderKind = "D1"
	ReminderExpired ReminderKind = "EXPIRED"
)

// Subscription represents one paid entitlement period.
type Subscription struct {
	ID        uint
	UserID    uint
	TariffRef string
	StartedAt time.Time
	ExpiresAt time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActiveAt reports whether the subscription is active and not yet expired
// as of now. This is the sole definition of "paid" tariff (§4.5).
func (s *Subscription) IsActiveAt(now time.Time) bool {
	return s.Status == StatusActive && now.Before(s.ExpiresAt)
}

// DaysLeft returns ceil((expires_at-now)/86400s), used to pick D3/D1 reminders.
func (s *Subscription) DaysLeft(now time.Time) int {
	d := s.ExpiresAt.Sub(now)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Expire transitions the subscription to expired.
func (s *Subscription) Expire(now time.Time) {
	s.Status = StatusExpired
	s.UpdatedAt = now
}

// Extend pushes expires_at out by periodDays, starting from the later of
// now or the current expiry (stacking unused paid time per §6.2).
func (s *Subscription) Extend(periodDays int, now time.Time) {
	base := s.ExpiresAt
	if now.After(base) {
		base = now
	}
	s.ExpiresAt = base.Add(time.Duration(periodDays) * 24 * time.Hour)
	s.Status = StatusActive
	s.UpdatedAt = now
}

// New creates a fresh, active subscription starting now.
func New(userID uint, tariffRef string, periodDays int, now time.Time) *Subscription {
	return &Subscription{
		UserID:    userID,
		TariffRef: tariffRef,
		StartedAt: now,
		ExpiresAt: now.Add(time.Duration(periodDays) * 24 * time.Hour),
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
