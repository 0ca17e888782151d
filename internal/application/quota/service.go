// Package quota implements the Quota Engine (C5): a per-user, MSK-day
// bounded, tariff-aware view derived entirely from the applications table.
package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/hhbot/dispatcher/internal/domain/application"
	"github.com/hhbot/dispatcher/internal/domain/clock"
	"github.com/hhbot/dispatcher/internal/domain/subscription"
)

// Config holds the tariff-cap configuration (§6.5).
type Config struct {
	HardDailyCap int
	FreeDailyCap int
	PaidDailyCap int
}

// View is the per-user quota snapshot returned by GET /quota.
type View struct {
	Tariff     subscription.Tariff
	DailyCap   int
	HardCap    int
	UsedToday  int
	Remaining  int
	ResetLabel string
}

// Service computes QuotaView without maintaining any denormalized counter;
// used_today is always a count over applications bounded by the MSK day.
type Service struct {
	subscriptions subscription.Repository
	applications  application.Repository
	clock         clock.Clock
	cfg           Config
}

// NewService wires the Quota Engine.
func NewService(subscriptions subscription.Repository, applications application.Repository, clk clock.Clock, cfg Config) *Service {
	return &Service{subscriptions: subscriptions, applications: applications, clock: clk, cfg: cfg}
}

// QuotaView computes the current quota snapshot for a user. Consulted on
// every enqueue and every dispatch tick (§4.5).
func (s *Service) QuotaView(ctx context.Context, userID uint, now time.Time) (View, error) {
	tariff := subscription.TariffFree
	sub, err := s.subscriptions.GetCurrentByUserID(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("quota: load subscription: %w", err)
	}
	if sub != nil && sub.IsActiveAt(now) {
		tariff = subscription.TariffPaid
	}

	dailyCap := s.cfg.FreeDailyCap
	if tariff == subscription.TariffPaid {
		dailyCap = s.cfg.PaidDailyCap
	}
	if dailyCap > s.cfg.HardDailyCap {
		dailyCap = s.cfg.HardDailyCap
	}

	startUTC, endUTC := clock.DayBounds(clockAt(now))
	used, err := s.applications.CountToday(ctx, userID, startUTC, endUTC)
	if err != nil {
		return View{}, fmt.Errorf("quota: count today: %w", err)
	}

	remaining := dailyCap - int(used)
	if remaining < 0 {
		remaining = 0
	}

	return View{
		Tariff:     tariff,
		DailyCap:   dailyCap,
		HardCap:    s.cfg.HardDailyCap,
		UsedToday:  int(used),
		Remaining:  remaining,
		ResetLabel: clock.NextResetLabel(clockAt(now)),
	}, nil
}

// clockAt adapts a concrete instant to the clock.Clock interface so quota
// math uses exactly the "now" supplied by the caller (important for tests
// and for dispatcher/scheduler ticks that share one timestamp per tick).
func clockAt(now time.Time) clock.Clock { return clock.FixedClock{At: now} }
