package ports

import (
	"context"
	"time"
)

// QuotaNotifier is the Notification Scheduler's narrow contract consumed by
// the Campaign Scheduler and Application Dispatcher when they observe an
// exhausted quota (§4.8).
type QuotaNotifier interface {
	NotifyQuotaExhaustedOnce(ctx context.Context, userID uint, resetLabel, tariff string, now time.Time) error
}
