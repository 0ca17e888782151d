// Package hhtoken models the OAuth credential HH issues for one linked user.
package hhtoken

import (
	"fmt"
	"time"
)

// HHToken is the 0..1 OAuth credential owned by a User. It is replaced
// wholesale on refresh and deleted on unlink.
type HHToken struct {
	ID           uint
	UserID       uint
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// New validates the invariant that access token, refresh token and
// expiry must all be present together.
func New(userID uint, accessToken, refreshToken, tokenType string, expiresAt, now time.Time) (*HHToken, error) {
	if accessToken == "" || refreshToken == "" || expiresAt.IsZero() {
		return nil, fmt.Errorf("hhtoken: access token, refresh token and expiry are all required")
	}
	if tokenType == "" {
		tokenType = "bearer"
	}
	return &HHToken{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    tokenType,
		ExpiresAt:    expiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// Replace overwrites the token in place after a refresh or re-link.
func (t *HHToken) Replace(accessToken, refreshToken, tokenType string, expiresAt, now time.Time) {
	t.AccessToken = accessToken
	if refreshToken != "" {
		t.RefreshToken = refreshToken
	}
	if tokenType != "" {
		t.TokenType = tokenType
	}
	t.ExpiresAt = expiresAt
	t.UpdatedAt = now
}

// NeedsRefresh reports whether the access token expires within skew of now.
func (t *HHToken) NeedsRefresh(now time.Time, skew time.Duration) bool {
	return t.ExpiresAt.Sub(now) < skew
}
