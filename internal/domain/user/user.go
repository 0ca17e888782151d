// Package user models the end-user identity shared by every other component.
package user

import "time"

// User is the identity for one end-user, keyed by their messenger id.
// A User is created on first contact and never destroyed.
type User struct {
	ID             uint
	MessengerID    string
	DisplayName    *string
	ReferralCode   *string
	// PendingRefCode is the code the user entered before linking (e.g. via
	// the bot's /start ref=ABC123), consumed exactly once at OAuth-link
	// time to materialize the referrer graph (§6.1, scenario S6).
	PendingRefCode *string
	ReferredBy     *uint
	FirstSeenAt    time.Time
	LastSeenAt     time.Time
	UTMSource      *string
	UTMMedium      *string
	UTMCampaign    *string
	HHExternalID   *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New creates a User for a first-contact messenger id.
func New(messengerID string, now time.Time) *User {
	return &User{
		MessengerID: messengerID,
		FirstSeenAt: now,
		LastSeenAt:  now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Touch bumps LastSeenAt. Called on every inbound contact from the bot.
func (u *User) Touch(now time.Time) {
	u.LastSeenAt = now
	u.UpdatedAt = now
}

// SetUTMIfAbsent applies UTM attribution on a first-write-wins basis.
func (u *User) SetUTMIfAbsent(source, medium, campaign string, now time.Time) {
	if u.UTMSource == nil && source != "" {
		u.UTMSource = &source
	}
	if u.UTMMedium == nil && medium != "" {
		u.UTMMedium = &medium
	}
	if u.UTMCampaign == nil && campaign != "" {
		u.UTMCampaign = &campaign
	}
	u.UpdatedAt = now
}

// SetPendingRefIfAbsent records the referral code the user entered before
// linking, first-write-wins: a user who already has a parent or an earlier
// pending code keeps it.
func (u *User) SetPendingRefIfAbsent(code string, now time.Time) {
	if code == "" || u.ReferredBy != nil || u.PendingRefCode != nil {
		return
	}
	u.PendingRefCode = &code
	u.UpdatedAt = now
}

// EnsureReferralCode assigns code as the user's own shareable referral code
// if one isn't already set, returning the code now on the user either way.
// Idempotent so a retried POST /referrals/generate never rotates a code
// that has already been handed out.
func (u *User) EnsureReferralCode(code string, now time.Time) string {
	if u.ReferralCode == nil {
		u.ReferralCode = &code
		u.UpdatedAt = now
	}
	return *u.ReferralCode
}

// IsPaid is intentionally not a User method: tariff is derived from the
// subscription table, not stored on the user (see quota.Service).
