// Package scheduler provides unified scheduler management using gocron v2.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/hhbot/dispatcher/internal/shared/biztime"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

// CampaignTicker runs one Campaign Scheduler (C6) tick.
type CampaignTicker interface {
	Tick(ctx context.Context, tickInterval time.Duration, now time.Time) error
}

// DispatchTicker runs one Application Dispatcher (C7) tick.
type DispatchTicker interface {
	Tick(ctx context.Context, now time.Time) error
}

// NotificationTicker runs the Notification Scheduler's (C8) two independent
// passes: reminder scanning and queued-notification delivery.
type NotificationTicker interface {
	ReminderTick(ctx context.Context, now time.Time) error
	DeliveryTick(ctx context.Context, now time.Time) error
}

// SchedulerManager manages all scheduled jobs using gocron v2: the campaign
// scheduler, application dispatcher, and notification scheduler each run as
// a single named, tagged, singleton-mode job.
type SchedulerManager struct {
	scheduler gocron.Scheduler
	logger    logger.Interface

	// Track whether the scheduler has been started
	started   bool
	startedMu sync.RWMutex
}

// NewSchedulerManager creates a new SchedulerManager instance.
// It initializes gocron with the business timezone for cron expressions.
func NewSchedulerManager(log logger.Interface) (*SchedulerManager, error) {
	scheduler, err := gocron.NewScheduler(
		gocron.WithLocation(biztime.Location()),
	)
	if err != nil {
		return nil, err
	}

	return &SchedulerManager{
		scheduler: scheduler,
		logger:    log,
	}, nil
}

// ========================================
// Campaign Scheduler (C6)
// ========================================

// RegisterCampaignJob registers the per-tick campaign scan: for every active
// campaign, discover new vacancies and enqueue applications within quota.
func (m *SchedulerManager) RegisterCampaignJob(ticker CampaignTicker, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.runCampaignTick(ctx, ticker, interval)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("campaign", "auto-poll"),
		gocron.WithName("campaign-scheduler"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered campaign scheduler job", "interval", interval)
	return nil
}

func (m *SchedulerManager) runCampaignTick(ctx context.Context, ticker CampaignTicker, interval time.Duration) {
	startTime := biztime.NowUTC()

	if err := ticker.Tick(ctx, interval, startTime); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("campaign tick failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Debugw("campaign tick completed", "duration", time.Since(startTime))
}

// ========================================
// Application Dispatcher (C7)
// ========================================

// RegisterDispatchJob registers the per-tick dispatcher pass: claim due
// applications and send them to HH, honoring per-user quota and backoff.
func (m *SchedulerManager) RegisterDispatchJob(ticker DispatchTicker, interval time.Duration) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			m.runDispatchTick(ctx, ticker)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("dispatch", "applications"),
		gocron.WithName("application-dispatcher"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered application dispatcher job", "interval", interval)
	return nil
}

func (m *SchedulerManager) runDispatchTick(ctx context.Context, ticker DispatchTicker) {
	startTime := biztime.NowUTC()

	if err := ticker.Tick(ctx, startTime); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("dispatch tick failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Debugw("dispatch tick completed", "duration", time.Since(startTime))
}

// ========================================
// Notification Scheduler (C8)
// ========================================

// ReminderInterval is how often the subscription-expiry reminder scan runs.
const ReminderInterval = 6 * time.Hour

// DeliveryInterval is how often the queued-notification delivery pass runs.
const DeliveryInterval = 1 * time.Minute

// RegisterNotificationJobs registers the two independent notification
// passes: the 6-hourly subscription reminder scan and the frequent delivery
// sweep over anything already queued (quota-exhaustion notices, reminders,
// broadcasts).
func (m *SchedulerManager) RegisterNotificationJobs(ticker NotificationTicker) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(ReminderInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			m.runReminderTick(ctx, ticker)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("notification", "reminder"),
		gocron.WithName("notification-reminder-scan"),
	)
	if err != nil {
		return err
	}

	_, err = m.scheduler.NewJob(
		gocron.DurationJob(DeliveryInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()
			m.runDeliveryTick(ctx, ticker)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithTags("notification", "delivery"),
		gocron.WithName("notification-delivery"),
	)
	if err != nil {
		return err
	}

	m.logger.Infow("registered notification scheduler jobs",
		"reminder_interval", ReminderInterval,
		"delivery_interval", DeliveryInterval,
	)
	return nil
}

func (m *SchedulerManager) runReminderTick(ctx context.Context, ticker NotificationTicker) {
	startTime := biztime.NowUTC()

	if err := ticker.ReminderTick(ctx, startTime); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("notification reminder tick failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Debugw("notification reminder tick completed", "duration", time.Since(startTime))
}

func (m *SchedulerManager) runDeliveryTick(ctx context.Context, ticker NotificationTicker) {
	startTime := biztime.NowUTC()

	if err := ticker.DeliveryTick(ctx, startTime); err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Errorw("notification delivery tick failed",
			"error", err,
			"duration", time.Since(startTime),
		)
		return
	}

	m.logger.Debugw("notification delivery tick completed", "duration", time.Since(startTime))
}

// ========================================
// Scheduler Lifecycle Methods
// ========================================

// Start starts the scheduler and all registered jobs.
func (m *SchedulerManager) Start() {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if m.started {
		return
	}

	m.scheduler.Start()
	m.started = true
	m.logger.Infow("scheduler manager started", "job_count", len(m.scheduler.Jobs()))
}

// Stop gracefully stops the scheduler.
// It waits for all running jobs to complete before returning.
func (m *SchedulerManager) Stop() error {
	m.startedMu.Lock()
	defer m.startedMu.Unlock()

	if !m.started {
		return nil
	}

	m.logger.Infow("stopping scheduler manager")

	// Shutdown scheduler and wait for running jobs
	err := m.scheduler.Shutdown()
	m.started = false

	if err != nil {
		m.logger.Errorw("scheduler manager shutdown with error", "error", err)
		return err
	}

	m.logger.Infow("scheduler manager stopped")
	return nil
}

// IsStarted returns whether the scheduler is running.
func (m *SchedulerManager) IsStarted() bool {
	m.startedMu.RLock()
	defer m.startedMu.RUnlock()
	return m.started
}

// Jobs returns all registered jobs for inspection.
func (m *SchedulerManager) Jobs() []gocron.Job {
	return m.scheduler.Jobs()
}
