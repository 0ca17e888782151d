// Package referral implements the referral front door: issuing a user's
// own shareable code, recording a pending code entered before linking, and
// reporting the referrer graph back to the user (§6.3, §4.2).
package referral

import (
	"context"
	"fmt"
	"time"

	"github.com/hhbot/dispatcher/internal/domain/referral"
	"github.com/hhbot/dispatcher/internal/domain/user"
	"github.com/hhbot/dispatcher/internal/shared/id"
)

// referralCodeLength keeps codes short enough to type into a Telegram deep
// link, unlike the longer internal SIDs.
const referralCodeLength = 8

// Summary is the GET /referrals/me response shape.
type Summary struct {
	Code          string
	ReferredByMe  map[int]int // level -> descendant count
}

// Service owns referral-code issuance and pending-code tracking.
type Service struct {
	users     user.Repository
	referrals referral.Repository
}

// NewService wires the referral front door.
func NewService(users user.Repository, referrals referral.Repository) *Service {
	return &Service{users: users, referrals: referrals}
}

// Generate assigns userID a shareable referral code if it doesn't have one
// yet, returning the code either way — POST /referrals/generate.
func (s *Service) Generate(ctx context.Context, userID uint, now time.Time) (string, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("referral: load user: %w", err)
	}
	if u == nil {
		return "", fmt.Errorf("referral: user %d not found", userID)
	}
	if u.ReferralCode != nil {
		return *u.ReferralCode, nil
	}

	code, err := id.Generate(referralCodeLength)
	if err != nil {
		return "", fmt.Errorf("referral: generate code: %w", err)
	}
	result := u.EnsureReferralCode(code, now)
	if err := s.users.Update(ctx, u); err != nil {
		return "", fmt.Errorf("referral: persist code: %w", err)
	}
	return result, nil
}

// Track records the code a not-yet-linked user entered (e.g. a Telegram
// deep link of the form /start ref=ABC123), first-write-wins — POST
// /referrals/track. The user is created on first contact if needed.
func (s *Service) Track(ctx context.Context, messengerID, code string, now time.Time) error {
	u, err := s.users.UpsertSeen(ctx, messengerID)
	if err != nil {
		return fmt.Errorf("referral: upsert user: %w", err)
	}
	u.SetPendingRefIfAbsent(code, now)
	if err := s.users.Update(ctx, u); err != nil {
		return fmt.Errorf("referral: persist pending code: %w", err)
	}
	return nil
}

// Me returns userID's own code and how many users they have referred at
// each level — GET /referrals/me.
func (s *Service) Me(ctx context.Context, userID uint) (Summary, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("referral: load user: %w", err)
	}
	if u == nil {
		return Summary{}, fmt.Errorf("referral: user %d not found", userID)
	}

	counts, err := s.referrals.CountByParentID(ctx, userID)
	if err != nil {
		return Summary{}, fmt.Errorf("referral: count descendants: %w", err)
	}

	code := ""
	if u.ReferralCode != nil {
		code = *u.ReferralCode
	}
	return Summary{Code: code, ReferredByMe: counts}, nil
}
