// Package campaign models a user's dispatch program: a SavedRequest plus a
// résumé, run continuously while active.
package campaign

import (
	"fmt"
	"time"
)

// Status is the campaign lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusStopped Status = "stopped"
)

// HardDailyLimit is the absolute ceiling on Campaign.DailyLimit regardless
// of tariff; the Quota Engine applies its own, separate per-user hard cap.
const HardDailyLimit = 200

// Campaign is an active or paused dispatch program owned by one User.
// Encapsulated: mutations go through methods so the active/stopped
// invariant and the daily_limit ceiling are never bypassed.
type Campaign struct {
	id                 uint
	userID             uint
	title              string
	savedRequestID     *uint
	resumeExternalID   string
	status             Status
	dailyLimit         int
	sentToday          int
	sentTotal          int
	startedAt          *time.Time
	stoppedAt          *time.Time
	lastPolledAt       *time.Time
	createdAt          time.Time
	updatedAt          time.Time
}

// New creates a stopped campaign. Activate must be called separately so the
// at-most-one-active-per-user check can run with the caller's repository.
func New(userID uint, title string, savedRequestID *uint, resumeExternalID string, dailyLimit int, now time.Time) (*Campaign, error) {
	if resumeExternalID == "" {
		return nil, fmt.Errorf("campaign: resume id is required")
	}
	if dailyLimit <= 0 || dailyLimit > HardDailyLimit {
		return nil, fmt.Errorf("campaign: daily limit must be in (0, %d]", HardDailyLimit)
	}
	return &Campaign{
		userID:           userID,
		title:            title,
		savedRequestID:   savedRequestID,
		resumeExternalID: resumeExternalID,
		status:           StatusStopped,
		dailyLimit:       dailyLimit,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// Reconstruct rebuilds a Campaign from persisted state.
func Reconstruct(id, userID uint, title string, savedRequestID *uint, resumeExternalID string, status Status, dailyLimit, sentToday, sentTotal int, startedAt, stoppedAt, lastPolledAt *time.Time, createdAt, updatedAt time.Time) *Campaign {
	return &Campaign{
		id:               id,
		userID:           userID,
		title:            title,
		savedRequestID:   savedRequestID,
		resumeExternalID: resumeExternalID,
		status:           status,
		dailyLimit:       dailyLimit,
		sentToday:        sentToday,
		sentTotal:        sentTotal,
		startedAt:        startedAt,
		stoppedAt:        stoppedAt,
		lastPolledAt:     lastPolledAt,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// Activate transitions stopped->active. Callers must have already verified
// there is no other active campaign for this user and that an HH token is
// linked; the store's partial unique index is the final backstop.
func (c *Campaign) Activate(now time.Time) error {
	if c.status == StatusActive {
		return nil
	}
	c.status = StatusActive
	c.startedAt = &now
	c.stoppedAt = nil
	c.updatedAt = now
	return nil
}

// Stop transitions active->stopped. Idempotent.
func (c *Campaign) Stop(now time.Time) {
	if c.status == StatusStopped {
		return
	}
	c.status = StatusStopped
	c.stoppedAt = &now
	c.updatedAt = now
}

// IsActive reports whether the campaign currently dispatches.
func (c *Campaign) IsActive() bool { return c.status == StatusActive }

// RemainingToday is max(0, daily_limit - sent_today).
func (c *Campaign) RemainingToday() int {
	remain := c.dailyLimit - c.sentToday
	if remain < 0 {
		return 0
	}
	return remain
}

// RecordEnqueued bumps sent_today/sent_total by the number of applications
// actually inserted this tick, and records the poll timestamp.
func (c *Campaign) RecordEnqueued(inserted int, now time.Time) {
	c.sentToday += inserted
	c.sentTotal += inserted
	c.lastPolledAt = &now
	c.updatedAt = now
}

// ResetDailyCounter zeroes sent_today. The scheduler calls it on every tick
// and send-now call while LastPolledAt is nil or before the current MSK day;
// it leaves LastPolledAt unchanged, so the reset repeats until
// RecordEnqueued stamps a poll for the day.
func (c *Campaign) ResetDailyCounter(now time.Time) {
	c.sentToday = 0
	c.updatedAt = now
}

func (c *Campaign) ID() uint                    { return c.id }
func (c *Campaign) SetID(id uint)                { c.id = id }
func (c *Campaign) UserID() uint                { return c.userID }
func (c *Campaign) Title() string               { return c.title }
func (c *Campaign) SavedRequestID() *uint       { return c.savedRequestID }
func (c *Campaign) ResumeExternalID() string    { return c.resumeExternalID }
func (c *Campaign) Status() Status              { return c.status }
func (c *Campaign) DailyLimit() int             { return c.dailyLimit }
func (c *Campaign) SentToday() int              { return c.sentToday }
func (c *Campaign) SentTotal() int              { return c.sentTotal }
func (c *Campaign) StartedAt() *time.Time       { return c.startedAt }
func (c *Campaign) StoppedAt() *time.Time       { return c.stoppedAt }
func (c *Campaign) LastPolledAt() *time.Time    { return c.lastPolledAt }
func (c *Campaign) CreatedAt() time.Time        { return c.createdAt }
func (c *Campaign) UpdatedAt() time.Time        { return c.updatedAt }

// SetDailyLimit updates the per-campaign cap, re-validating the ceiling.
func (c *Campaign) SetDailyLimit(limit int, now time.Time) error {
	if limit <= 0 || limit > HardDailyLimit {
		return fmt.Errorf("campaign: daily limit must be in (0, %d]", HardDailyLimit)
	}
	c.dailyLimit = limit
	c.updatedAt = now
	return nil
}
