package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayBounds_IsHalfOpenMSKDay(t *testing.T) {
	// 2026-07-30 12:00 UTC is 2026-07-30 15:00 MSK (UTC+3, no DST).
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	start, end := DayBounds(FixedClock{At: now})

	wantStart := time.Date(2026, 7, 29, 21, 0, 0, 0, time.UTC) // 2026-07-30 00:00 MSK
	wantEnd := time.Date(2026, 7, 30, 21, 0, 0, 0, time.UTC)   // 2026-07-31 00:00 MSK

	assert.True(t, start.Equal(wantStart), "start: got %v want %v", start, wantStart)
	assert.True(t, end.Equal(wantEnd), "end: got %v want %v", end, wantEnd)
	assert.True(t, now.After(start) && now.Before(end))
}

func TestDayBounds_IsHalfOpenAtTheBoundaryItself(t *testing.T) {
	// Exactly at the MSK midnight boundary.
	boundary := time.Date(2026, 7, 29, 21, 0, 0, 0, time.UTC)

	start, end := DayBounds(FixedClock{At: boundary})
	require.True(t, start.Equal(boundary))

	// An instant one nanosecond before belongs to the previous day.
	prevStart, prevEnd := DayBounds(FixedClock{At: boundary.Add(-time.Nanosecond)})
	assert.True(t, prevEnd.Equal(start), "previous day's end is this day's start")
	assert.False(t, boundary.Before(prevEnd), "boundary itself is not in the previous half-open interval")
	_ = prevStart
}

func TestNextResetLabel_FormatsEndOfMSKDay(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)

	label := NextResetLabel(FixedClock{At: now})

	assert.Equal(t, "00:00 31.07.2026", label)
}
