// Package dispatch implements the Application Dispatcher (C7): claims due
// rows and drives each through the HH apply call and retry state machine.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hhbot/dispatcher/internal/application/quota"
	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/application/token"
	"github.com/hhbot/dispatcher/internal/domain/application"
	"github.com/hhbot/dispatcher/internal/domain/clock"
	"github.com/hhbot/dispatcher/internal/shared/db"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

// BatchSize is the number of rows claimed per tick.
const BatchSize = 100

// Service drives the retry/backoff dispatch loop.
type Service struct {
	applications application.Repository
	tokens       *token.Service
	quota        *quota.Service
	notifier     ports.QuotaNotifier
	hh           ports.HHClient
	tx           *db.TransactionManager
	log          logger.Interface
	concurrency  int
}

// NewService wires the Application Dispatcher.
func NewService(applications application.Repository, tokens *token.Service, q *quota.Service, notifier ports.QuotaNotifier, hh ports.HHClient, tx *db.TransactionManager, log logger.Interface, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{applications: applications, tokens: tokens, quota: q, notifier: notifier, hh: hh, tx: tx, log: log, concurrency: concurrency}
}

// Tick claims up to BatchSize due rows and dispatches each, fanned out
// through a bounded errgroup (§4.10).
func (s *Service) Tick(ctx context.Context, now time.Time) error {
	var claimed []*application.Application
	err := s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		var claimErr error
		claimed, claimErr = s.applications.ClaimDue(txCtx, now, BatchSize)
		return claimErr
	})
	if err != nil {
		return fmt.Errorf("dispatch: claim due: %w", err)
	}
	if len(claimed) == 0 {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, a := range claimed {
		a := a
		g.Go(func() error {
			if err := s.dispatchOne(gctx, a, now); err != nil {
				s.log.Warnw("dispatch of application failed", "application_id", a.ID(), "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) dispatchOne(ctx context.Context, a *application.Application, now time.Time) error {
	accessToken, needsRefresh, err := s.tokens.EnsureFreshAccess(ctx, a.UserID(), 0, now)
	if err != nil {
		a.MarkNoAccessToken(now)
		return s.persist(ctx, a)
	}
	if needsRefresh && accessToken == "" {
		a.MarkUnauthorizedRetry(now)
		return s.persist(ctx, a)
	}

	view, err := s.quota.QuotaView(ctx, a.UserID(), now)
	if err != nil {
		return fmt.Errorf("quota view: %w", err)
	}
	if view.Remaining <= 0 {
		_, endOfDay := clock.DayBounds(clock.FixedClock{At: now})
		a.MarkQuotaParked(endOfDay, now)
		if err := s.persist(ctx, a); err != nil {
			return err
		}
		return s.notifier.NotifyQuotaExhaustedOnce(ctx, a.UserID(), view.ResetLabel, string(view.Tariff), now)
	}

	// The HH call itself runs outside any transaction, per the claim/run/
	// persist bracketing (§5): a slow or hanging upstream call must never
	// hold a database transaction open.
	result, applyErr := s.hh.Apply(ctx, accessToken, a.VacancyID(), a.ResumeID(), a.CoverLetter())
	if applyErr != nil {
		a.MarkRetryOrExhausted(applyErr.Error(), now)
		return s.persist(ctx, a)
	}

	switch result.Outcome {
	case ports.ApplySuccess:
		a.MarkSent("", now)
	case ports.ApplyAlreadyApplied:
		a.MarkSent("already_applied", now)
	case ports.ApplyUnauthorized:
		a.MarkUnauthorizedRetry(now)
	case ports.ApplyNonRetryable:
		a.MarkNonRetryableError(string(result.NonRetryable), result.ResponseBody, now)
	case ports.ApplyRetryable:
		a.MarkRetryOrExhausted(result.ResponseBody, now)
	default:
		a.MarkRetryOrExhausted(result.ResponseBody, now)
	}
	return s.persist(ctx, a)
}

func (s *Service) persist(ctx context.Context, a *application.Application) error {
	return s.tx.RunInTransaction(ctx, func(txCtx context.Context) error {
		return s.applications.Update(txCtx, a)
	})
}
