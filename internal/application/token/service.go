// Package token implements the OAuth Token Manager (C4): grant exchange,
// refresh discipline, unlink, and the best-effort post-link side effects.
package token

import (
	"context"
	"fmt"
	"time"

	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/domain/hhtoken"
	"github.com/hhbot/dispatcher/internal/domain/referral"
	"github.com/hhbot/dispatcher/internal/domain/resume"
	"github.com/hhbot/dispatcher/internal/domain/user"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

// DefaultRefreshSkew is the window before expiry at which EnsureFreshAccess
// attempts a refresh.
const DefaultRefreshSkew = 60 * time.Second

// Service owns the HHToken lifecycle.
type Service struct {
	users     user.Repository
	tokens    hhtoken.Repository
	resumes   resume.Repository
	referrals referral.Repository
	hh        ports.HHClient
	lock      ports.RefreshLock
	log       logger.Interface
}

// NewService wires the Token Manager's collaborators.
func NewService(users user.Repository, tokens hhtoken.Repository, resumes resume.Repository, referrals referral.Repository, hh ports.HHClient, lock ports.RefreshLock, log logger.Interface) *Service {
	return &Service{users: users, tokens: tokens, resumes: resumes, referrals: referrals, hh: hh, lock: lock, log: log}
}

// OnOAuthCompleted exchanges the authorization code, upserts the User and
// HHToken, then runs the best-effort post-link side effects in order.
// Re-running with the same code leaves the database in the same state
// (invariant 6) barring token rotation, which HH performs on every exchange.
func (s *Service) OnOAuthCompleted(ctx context.Context, messengerID, code string, now time.Time) error {
	u, err := s.users.UpsertSeen(ctx, messengerID)
	if err != nil {
		return fmt.Errorf("token: upsert user: %w", err)
	}

	tokenSet, err := s.hh.ExchangeCode(ctx, code)
	if err != nil {
		return fmt.Errorf("token: exchange code: %w", err)
	}

	existing, err := s.tokens.GetByUserID(ctx, u.ID)
	if err != nil {
		return fmt.Errorf("token: load existing token: %w", err)
	}

	expiresAt := now.Add(tokenSet.ExpiresIn)
	if existing == nil {
		t, err := hhtoken.New(u.ID, tokenSet.AccessToken, tokenSet.RefreshToken, tokenSet.TokenType, expiresAt, now)
		if err != nil {
			return fmt.Errorf("token: construct token: %w", err)
		}
		if err := s.tokens.Upsert(ctx, t); err != nil {
			return fmt.Errorf("token: persist token: %w", err)
		}
	} else {
		existing.Replace(tokenSet.AccessToken, tokenSet.RefreshToken, tokenSet.TokenType, expiresAt, now)
		if err := s.tokens.Upsert(ctx, existing); err != nil {
			return fmt.Errorf("token: persist refreshed token: %w", err)
		}
	}

	// Best-effort side effects: a failure in any of these must not fail
	// linking, only be logged.
	s.syncProfile(ctx, u.ID, tokenSet.AccessToken)
	s.syncResumes(ctx, u.ID, tokenSet.AccessToken)
	s.attachReferral(ctx, u.ID, now)

	return nil
}

func (s *Service) syncProfile(ctx context.Context, userID uint, accessToken string) {
	profile, err := s.hh.GetMe(ctx, accessToken)
	if err != nil {
		s.log.Warnw("post-link profile sync failed", "user_id", userID, "error", err)
		return
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		s.log.Warnw("post-link profile sync: reload user failed", "user_id", userID, "error", err)
		return
	}
	ext := profile.ExternalID
	u.HHExternalID = &ext
	if profile.DisplayName != "" {
		name := profile.DisplayName
		u.DisplayName = &name
	}
	if err := s.users.Update(ctx, u); err != nil {
		s.log.Warnw("post-link profile sync: save failed", "user_id", userID, "error", err)
	}
}

func (s *Service) syncResumes(ctx context.Context, userID uint, accessToken string) {
	summaries, err := s.hh.GetResumes(ctx, accessToken)
	if err != nil {
		s.log.Warnw("post-link resume sync failed", "user_id", userID, "error", err)
		return
	}
	rows := make([]*resume.Resume, 0, len(summaries))
	for _, sum := range summaries {
		rows = append(rows, &resume.Resume{
			UserID:        userID,
			ExternalID:    sum.ExternalID,
			Title:         sum.Title,
			Area:          sum.Area,
			Visibility:    sum.Visibility,
			LastUpdatedAt: sum.LastUpdatedAt,
		})
	}
	if err := s.resumes.UpsertAll(ctx, userID, rows); err != nil {
		s.log.Warnw("post-link resume sync: save failed", "user_id", userID, "error", err)
	}
}

// SyncResumes re-runs the résumé sync on demand (POST /hh/resumes/sync).
func (s *Service) SyncResumes(ctx context.Context, userID uint, accessToken string) error {
	summaries, err := s.hh.GetResumes(ctx, accessToken)
	if err != nil {
		return fmt.Errorf("token: resume sync: %w", err)
	}
	rows := make([]*resume.Resume, 0, len(summaries))
	for _, sum := range summaries {
		rows = append(rows, &resume.Resume{
			UserID:        userID,
			ExternalID:    sum.ExternalID,
			Title:         sum.Title,
			Area:          sum.Area,
			Visibility:    sum.Visibility,
			LastUpdatedAt: sum.LastUpdatedAt,
		})
	}
	return s.resumes.UpsertAll(ctx, userID, rows)
}

// attachReferral is idempotent: it only sets parent/inserts edges when the
// user has no parent yet and a pending referral code was stored (scenario
// S6), and every edge insert is ON CONFLICT DO NOTHING.
func (s *Service) attachReferral(ctx context.Context, userID uint, now time.Time) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil || u == nil || u.ReferredBy != nil || u.PendingRefCode == nil {
		return
	}

	parent, err := s.users.GetByReferralCode(ctx, *u.PendingRefCode)
	if err != nil || parent == nil || parent.ID == userID {
		return
	}

	u.ReferredBy = &parent.ID
	u.UpdatedAt = now
	if err := s.users.Update(ctx, u); err != nil {
		s.log.Warnw("referral attach: save parent failed", "user_id", userID, "error", err)
		return
	}

	chain := []uint{parent.ID}
	cursor := parent
	for level := 2; level <= referral.MaxLevel; level++ {
		if cursor.ReferredBy == nil {
			break
		}
		cursor, err = s.users.GetByID(ctx, *cursor.ReferredBy)
		if err != nil || cursor == nil {
			break
		}
		chain = append(chain, cursor.ID)
	}

	for i, ancestorID := range chain {
		r, err := referral.New(userID, ancestorID, i+1, now)
		if err != nil {
			continue
		}
		if err := s.referrals.InsertIfAbsent(ctx, r); err != nil {
			s.log.Warnw("referral attach: insert edge failed", "user_id", userID, "level", i+1, "error", err)
		}
	}
}

// Unlink deletes the user's HHToken.
func (s *Service) Unlink(ctx context.Context, userID uint) error {
	return s.tokens.DeleteByUserID(ctx, userID)
}

// LinkStatus returns the user's HHToken, or nil if unlinked — GET /hh/link-status.
func (s *Service) LinkStatus(ctx context.Context, userID uint) (*hhtoken.HHToken, error) {
	return s.tokens.GetByUserID(ctx, userID)
}

// EnsureFreshAccess returns a usable access token, refreshing it if it is
// within skew of expiry. On refresh failure it returns the last known token
// with needsRefresh=true so callers can decide how to proceed.
func (s *Service) EnsureFreshAccess(ctx context.Context, userID uint, skew time.Duration, now time.Time) (accessToken string, needsRefresh bool, err error) {
	if skew <= 0 {
		skew = DefaultRefreshSkew
	}

	t, err := s.tokens.GetByUserID(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("token: load token: %w", err)
	}
	if t == nil {
		return "", false, fmt.Errorf("token: %w", errNoToken)
	}

	if !t.NeedsRefresh(now, skew) {
		return t.AccessToken, false, nil
	}

	unlock, ok, lockErr := s.lock.TryLock(ctx, userID, 10*time.Second)
	if lockErr != nil {
		s.log.Warnw("refresh lock error", "user_id", userID, "error", lockErr)
	}
	if ok {
		defer unlock()
	} else {
		// Another worker is already refreshing; use the token we have.
		return t.AccessToken, true, nil
	}

	// Re-read after acquiring the lock in case another worker just refreshed.
	t, err = s.tokens.GetByUserID(ctx, userID)
	if err != nil || t == nil {
		return "", false, fmt.Errorf("token: reload token: %w", err)
	}
	if !t.NeedsRefresh(now, skew) {
		return t.AccessToken, false, nil
	}

	tokenSet, refreshErr := s.hh.RefreshToken(ctx, t.RefreshToken)
	if refreshErr != nil {
		s.log.Warnw("token refresh failed", "user_id", userID, "error", refreshErr)
		return t.AccessToken, true, nil
	}

	t.Replace(tokenSet.AccessToken, tokenSet.RefreshToken, tokenSet.TokenType, now.Add(tokenSet.ExpiresIn), now)
	if err := s.tokens.Upsert(ctx, t); err != nil {
		return t.AccessToken, true, fmt.Errorf("token: persist refresh: %w", err)
	}
	return t.AccessToken, false, nil
}

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const errNoToken sentinelError = "no hh token linked for user"
