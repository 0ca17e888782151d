package notification

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewUserScoped_IsPendingAndImmediatelyDue(t *testing.T) {
	now := time.Now().UTC()
	n := NewUserScoped(7, "your quota resets at 00:00 MSK", now)

	assert.Equal(t, ScopeUser, n.Scope)
	assert.Equal(t, StatusPending, n.Status)
	assert.Equal(t, now, n.ScheduledAt)
	assert.Equal(t, uint(7), *n.UserID)
}

func TestMarkSent_SetsSentAt(t *testing.T) {
	now := time.Now().UTC()
	n := NewUserScoped(1, "body", now)

	later := now.Add(time.Minute)
	n.MarkSent(later)

	assert.Equal(t, StatusSent, n.Status)
	assert.Equal(t, later, *n.SentAt)
	assert.Equal(t, later, n.UpdatedAt)
}

func TestMarkFailed_TruncatesReasonToErrorMaxLen(t *testing.T) {
	now := time.Now().UTC()
	n := NewUserScoped(1, "body", now)

	n.MarkFailed(strings.Repeat("x", ErrorMaxLen+100), now)

	assert.Equal(t, StatusFailed, n.Status)
	assert.Len(t, *n.Error, ErrorMaxLen)
}

func TestSegmentScope_BuildsCanonicalPrefix(t *testing.T) {
	assert.Equal(t, Scope("segment:premium"), SegmentScope(SegmentPremium))
}
