// Package clock implements the MSK-day utility: the half-open UTC bounds
// of "today" in Europe/Moscow, and the human label for the next reset.
package clock

import (
	"time"

	"github.com/hhbot/dispatcher/internal/shared/biztime"
)

// Timezone is fixed regardless of any configurable business timezone:
// quota and notification day boundaries are always MSK.
const Timezone = "Europe/Moscow"

func init() {
	biztime.MustInit(Timezone)
}

// Clock abstracts "now" so day-boundary math is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current UTC time.
func (RealClock) Now() time.Time { return time.Now().UTC() }

// FixedClock always returns the same instant. Used by tests.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (f FixedClock) Now() time.Time { return f.At }

// DayBounds returns the half-open [00:00 MSK, 24:00 MSK) interval of the
// current MSK calendar day, expressed in UTC.
func DayBounds(clk Clock) (start, end time.Time) {
	now := clk.Now()
	start = biztime.StartOfDayUTC(now)
	end = biztime.EndOfDayUTC(now).Add(time.Nanosecond)
	return start, end
}

// NextResetLabel formats the end of the current MSK day as "HH:MM DD.MM.YYYY".
func NextResetLabel(clk Clock) string {
	_, end := DayBounds(clk)
	return biztime.FormatInBizTimezone(end, "15:04 02.01.2006")
}
