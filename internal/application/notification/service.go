// Package notification implements the Notification Scheduler (C8): once-per-
// kind subscription reminders, manual/broadcast delivery, and the
// at-most-once-per-day quota-exhaustion notice consumed by Campaign and
// Dispatch through ports.QuotaNotifier.
package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/domain/clock"
	"github.com/hhbot/dispatcher/internal/domain/notification"
	"github.com/hhbot/dispatcher/internal/domain/subscription"
	"github.com/hhbot/dispatcher/internal/domain/user"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

// BatchSize is the number of pending notifications claimed per tick.
const BatchSize = 100

// ReminderWindow is how far ahead ListExpiringSoon looks for subscriptions
// due a D3/D1/EXPIRED reminder.
const ReminderWindow = 4 * 24 * time.Hour

// Service drives subscription reminders and manual/broadcast delivery.
type Service struct {
	subscriptions subscription.Repository
	notifications notification.Repository
	users         user.Repository
	notifier      ports.Notifier
	log           logger.Interface
}

// NewService wires the Notification Scheduler.
func NewService(subscriptions subscription.Repository, notifications notification.Repository, users user.Repository, notifier ports.Notifier, log logger.Interface) *Service {
	return &Service{subscriptions: subscriptions, notifications: notifications, users: users, notifier: notifier, log: log}
}

var _ ports.QuotaNotifier = (*Service)(nil)

// NotifyQuotaExhaustedOnce inserts a pending quota-exhaustion Notification
// for userID unless one has already been created for the current MSK day.
func (s *Service) NotifyQuotaExhaustedOnce(ctx context.Context, userID uint, resetLabel, tariff string, now time.Time) error {
	startOfDay, _ := clock.DayBounds(clock.FixedClock{At: now})
	has, err := s.notifications.HasQuotaMarkerSince(ctx, userID, startOfDay, now)
	if err != nil {
		return fmt.Errorf("notification: check quota marker: %w", err)
	}
	if has {
		return nil
	}

	body := fmt.Sprintf("%s: daily quota used up, resets at %s", notification.QuotaExhaustedMarker, resetLabel)
	n := notification.NewUserScoped(userID, body, now)
	if err := s.notifications.Create(ctx, n); err != nil {
		return fmt.Errorf("notification: create quota notice: %w", err)
	}
	return nil
}

// ReminderTick scans for subscriptions entering their D3/D1/EXPIRED windows
// and schedules an at-most-once reminder per (subscription, kind).
func (s *Service) ReminderTick(ctx context.Context, now time.Time) error {
	subs, err := s.subscriptions.ListExpiringSoon(ctx, now.Add(ReminderWindow))
	if err != nil {
		return fmt.Errorf("notification: list expiring soon: %w", err)
	}

	for _, sub := range subs {
		kind, body := reminderFor(sub, now)
		if kind == "" {
			continue
		}
		inserted, err := s.subscriptions.InsertReminderMarkerIfAbsent(ctx, sub.ID, kind)
		if err != nil {
			s.log.Warnw("reminder marker insert failed", "subscription_id", sub.ID, "kind", kind, "error", err)
			continue
		}
		if kind == subscription.ReminderExpired {
			sub.Expire(now)
			if err := s.subscriptions.Update(ctx, sub); err != nil {
				s.log.Warnw("subscription expire failed", "subscription_id", sub.ID, "error", err)
			}
		}
		if !inserted {
			continue
		}
		n := notification.NewUserScoped(sub.UserID, body, now)
		if err := s.notifications.Create(ctx, n); err != nil {
			s.log.Warnw("reminder notification create failed", "subscription_id", sub.ID, "kind", kind, "error", err)
		}
	}
	return nil
}

func reminderFor(sub *subscription.Subscription, now time.Time) (subscription.ReminderKind, string) {
	if sub.Status != subscription.StatusActive {
		return "", ""
	}
	days := sub.DaysLeft(now)
	switch {
	case days <= 0:
		return subscription.ReminderExpired, "Your subscription has expired."
	case days == 1:
		return subscription.ReminderD1, "Your subscription expires tomorrow."
	case days == 3:
		return subscription.ReminderD3, "Your subscription expires in 3 days."
	default:
		return "", ""
	}
}

// DeliveryTick claims up to BatchSize due notifications and attempts
// delivery of each via the Notifier, resolving scope to one or more
// recipients.
func (s *Service) DeliveryTick(ctx context.Context, now time.Time) error {
	due, err := s.notifications.ClaimDue(ctx, now, BatchSize)
	if err != nil {
		return fmt.Errorf("notification: claim due: %w", err)
	}
	for _, n := range due {
		s.deliverOne(ctx, n, now)
	}
	return nil
}

func (s *Service) deliverOne(ctx context.Context, n *notification.Notification, now time.Time) {
	recipients, err := s.resolveRecipients(ctx, n)
	if err != nil {
		n.MarkFailed(err.Error(), now)
		if uerr := s.notifications.Update(ctx, n); uerr != nil {
			s.log.Warnw("notification update failed", "notification_id", n.ID, "error", uerr)
		}
		return
	}

	var lastErr error
	for _, messengerID := range recipients {
		if err := s.notifier.Send(ctx, messengerID, n.Body); err != nil {
			lastErr = err
			s.log.Warnw("notification send failed", "notification_id", n.ID, "messenger_id", messengerID, "error", err)
		}
	}

	if lastErr != nil && len(recipients) == 1 {
		n.MarkFailed(lastErr.Error(), now)
	} else {
		n.MarkSent(now)
	}
	if err := s.notifications.Update(ctx, n); err != nil {
		s.log.Warnw("notification update failed", "notification_id", n.ID, "error", err)
	}
}

func (s *Service) resolveRecipients(ctx context.Context, n *notification.Notification) ([]string, error) {
	switch {
	case n.Scope == notification.ScopeUser:
		if n.UserID == nil {
			return nil, fmt.Errorf("notification: user-scoped row missing user_id")
		}
		return s.resolveUser(ctx, *n.UserID)
	case n.Scope == notification.ScopeAll:
		return s.notifications.ResolveAll(ctx)
	default:
		return s.notifications.ResolveSegment(ctx, segmentKey(n.Scope))
	}
}

func (s *Service) resolveUser(ctx context.Context, userID uint) ([]string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("notification: load user: %w", err)
	}
	if u == nil {
		return nil, nil
	}
	return []string{u.MessengerID}, nil
}

func segmentKey(scope notification.Scope) string {
	const prefix = "segment:"
	s := string(scope)
	if len(s) > len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):]
	}
	return s
}
