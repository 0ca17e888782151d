// Package user implements the thin identity front door: first-contact
// upsert and attribution, consumed by the bot frontend's /users/* calls.
package user

import (
	"context"
	"fmt"
	"time"

	"github.com/hhbot/dispatcher/internal/domain/user"
)

// Service owns User upsert and attribution writes.
type Service struct {
	users user.Repository
}

// NewService wires the identity front door.
func NewService(users user.Repository) *Service {
	return &Service{users: users}
}

// Seen upserts a User on inbound contact — POST /users/seen.
func (s *Service) Seen(ctx context.Context, messengerID string) (*user.User, error) {
	u, err := s.users.UpsertSeen(ctx, messengerID)
	if err != nil {
		return nil, fmt.Errorf("user: seen: %w", err)
	}
	return u, nil
}

// Register upserts a User and, first-write-wins, records a display name —
// POST /users/register.
func (s *Service) Register(ctx context.Context, messengerID string, displayName *string, now time.Time) (*user.User, error) {
	u, err := s.users.UpsertSeen(ctx, messengerID)
	if err != nil {
		return nil, fmt.Errorf("user: register: %w", err)
	}
	if displayName != nil && *displayName != "" && u.DisplayName == nil {
		u.DisplayName = displayName
		u.UpdatedAt = now
		if err := s.users.Update(ctx, u); err != nil {
			return nil, fmt.Errorf("user: register: persist display name: %w", err)
		}
	}
	return u, nil
}

// SetUTM records UTM attribution on a first-write-wins basis — POST /users/utm.
func (s *Service) SetUTM(ctx context.Context, messengerID, source, medium, campaign string, now time.Time) (*user.User, error) {
	u, err := s.users.GetByMessengerID(ctx, messengerID)
	if err != nil {
		return nil, fmt.Errorf("user: set utm: load: %w", err)
	}
	if u == nil {
		return nil, fmt.Errorf("user: set utm: %w", ErrUserNotFound)
	}
	u.SetUTMIfAbsent(source, medium, campaign, now)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, fmt.Errorf("user: set utm: persist: %w", err)
	}
	return u, nil
}

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

// ErrUserNotFound signals that GetByMessengerID found no row.
const ErrUserNotFound sentinelError = "user not found"
