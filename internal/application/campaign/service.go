// Package campaign implements the Campaign Scheduler (C6): per active
// campaign, discover new vacancies via HH search and enqueue work within
// quota.
package campaign

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hhbot/dispatcher/internal/application/quota"
	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/application/token"
	"github.com/hhbot/dispatcher/internal/domain/application"
	campaigndomain "github.com/hhbot/dispatcher/internal/domain/campaign"
	"github.com/hhbot/dispatcher/internal/domain/clock"
	"github.com/hhbot/dispatcher/internal/domain/resume"
	"github.com/hhbot/dispatcher/internal/domain/savedrequest"
	"github.com/hhbot/dispatcher/internal/domain/shared/queryspec"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

// ManualSendCap bounds the one-shot "send now" path regardless of caller input.
const ManualSendCap = 150

// PerPage is the HH search page size used by every tick.
const PerPage = 50

// Service drives campaign ticks and CRUD.
type Service struct {
	campaigns     campaigndomain.Repository
	savedRequests savedrequest.Repository
	resumes       resume.Repository
	applications  application.Repository
	tokens        *token.Service
	quota         *quota.Service
	notifier      ports.QuotaNotifier
	hh            ports.HHClient
	log           logger.Interface
	concurrency   int
}

// NewService wires the Campaign Scheduler.
func NewService(campaigns campaigndomain.Repository, savedRequests savedrequest.Repository, resumes resume.Repository, applications application.Repository, tokens *token.Service, q *quota.Service, notifier ports.QuotaNotifier, hh ports.HHClient, log logger.Interface, concurrency int) *Service {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Service{campaigns: campaigns, savedRequests: savedRequests, resumes: resumes, applications: applications, tokens: tokens, quota: q, notifier: notifier, hh: hh, log: log, concurrency: concurrency}
}

// Tick runs one scheduler pass over every active campaign, fanning the
// per-campaign work out through a bounded errgroup (§4.10).
func (s *Service) Tick(ctx context.Context, tickInterval time.Duration, now time.Time) error {
	campaigns, err := s.campaigns.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("campaign: list active: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, c := range campaigns {
		c := c
		g.Go(func() error {
			if err := s.tickOne(gctx, c, tickInterval, now); err != nil {
				s.log.Warnw("campaign tick failed", "campaign_id", c.ID(), "error", err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *Service) tickOne(ctx context.Context, c *campaigndomain.Campaign, tickInterval time.Duration, now time.Time) error {
	belongs, err := s.resumes.BelongsToUser(ctx, c.UserID(), c.ResumeExternalID())
	if err != nil {
		return fmt.Errorf("verify resume ownership: %w", err)
	}
	if !belongs {
		return nil
	}

	if err := s.rolloverDailyCounter(ctx, c, now); err != nil {
		return err
	}

	accessToken, needsRefresh, err := s.tokens.EnsureFreshAccess(ctx, c.UserID(), 0, now)
	if err != nil || (needsRefresh && accessToken == "") {
		return nil
	}

	remainCampaign := c.RemainingToday()
	view, err := s.quota.QuotaView(ctx, c.UserID(), now)
	if err != nil {
		return fmt.Errorf("quota view: %w", err)
	}
	allowed := remainCampaign
	if view.Remaining < allowed {
		allowed = view.Remaining
	}
	if allowed <= 0 {
		return s.notifier.NotifyQuotaExhaustedOnce(ctx, c.UserID(), view.ResetLabel, string(view.Tariff), now)
	}

	canonical, coverLetter, err := s.cursorQS(ctx, c, tickInterval, now)
	if err != nil {
		return err
	}

	inserted, err := s.searchAndEnqueue(ctx, c, accessToken, canonical, coverLetter, allowed, now)
	if err != nil {
		return err
	}

	if inserted > 0 {
		c.RecordEnqueued(inserted, now)
		return s.campaigns.Update(ctx, c)
	}
	return nil
}

// rolloverDailyCounter zeroes sent_today when the campaign's last poll fell
// on a prior MSK day, so daily_limit governs each day independently rather
// than only the first (§3 Campaign, §4.6 step 3).
func (s *Service) rolloverDailyCounter(ctx context.Context, c *campaigndomain.Campaign, now time.Time) error {
	startOfDay, _ := clock.DayBounds(clock.FixedClock{At: now})
	last := c.LastPolledAt()
	if last != nil && !last.Before(startOfDay) {
		return nil
	}
	c.ResetDailyCounter(now)
	return s.campaigns.Update(ctx, c)
}

// defaultCoverLetter is sent when a saved request carries no cover letter of
// its own, matching the original scheduler's fallback greeting.
const defaultCoverLetter = "Здравствуйте! Откликаюсь на вакансию."

// cursorQS determines date_from (§4.6 step 4) and appends it, plus
// order_by=publication_time, to the saved canonical query string. It also
// returns the cover letter every enqueued application in this tick should
// carry (§4.6 step 6): the saved request's own text, or the default greeting
// when none was set.
func (s *Service) cursorQS(ctx context.Context, c *campaigndomain.Campaign, tickInterval time.Duration, now time.Time) (canonicalQS string, coverLetter string, err error) {
	startOfDay, _ := clock.DayBounds(clock.FixedClock{At: now})
	cursor := startOfDay

	latest, err := s.campaigns.LatestAutoApplicationCreatedAt(ctx, c.ID())
	if err != nil {
		return "", "", fmt.Errorf("latest auto application: %w", err)
	}
	if !latest.IsZero() {
		candidate := latest.Add(-2 * tickInterval)
		if candidate.After(cursor) {
			cursor = candidate
		}
	}

	sr, err := s.savedRequestFor(ctx, c)
	if err != nil {
		return "", "", err
	}
	coverLetter = defaultCoverLetter
	if sr.DefaultCoverLetter != nil && *sr.DefaultCoverLetter != "" {
		coverLetter = *sr.DefaultCoverLetter
	}
	return queryspec.WithCursor(sr.CanonicalQS, cursor.UTC().Format(time.RFC3339)), coverLetter, nil
}

func (s *Service) savedRequestFor(ctx context.Context, c *campaigndomain.Campaign) (*savedrequest.SavedRequest, error) {
	if c.SavedRequestID() == nil {
		return &savedrequest.SavedRequest{}, nil
	}
	sr, err := s.savedRequests.GetByID(ctx, *c.SavedRequestID())
	if err != nil {
		return nil, fmt.Errorf("load saved request: %w", err)
	}
	return sr, nil
}

// searchAndEnqueue calls SearchVacancies, dedups against the user's existing
// applications, and atomically enqueues up to allowed rows.
func (s *Service) searchAndEnqueue(ctx context.Context, c *campaigndomain.Campaign, accessToken, canonicalQS, coverLetter string, allowed int, now time.Time) (int, error) {
	result, err := s.hh.SearchVacancies(ctx, accessToken, canonicalQS, 1, PerPage)
	if err != nil {
		return 0, fmt.Errorf("search vacancies: %w", err)
	}

	existing, err := s.applications.ExistingVacancyIDs(ctx, c.UserID(), result.VacancyIDs)
	if err != nil {
		return 0, fmt.Errorf("dedup existing: %w", err)
	}

	rows := make([]application.VacancyApplication, 0, allowed)
	for _, id := range result.VacancyIDs {
		if existing[id] {
			continue
		}
		rows = append(rows, application.VacancyApplication{
			VacancyID:   id,
			ResumeID:    c.ResumeExternalID(),
			CoverLetter: &coverLetter,
		})
		if len(rows) >= allowed {
			break
		}
	}
	if len(rows) == 0 {
		return 0, nil
	}

	campaignID := c.ID()
	inserted, err := s.applications.EnqueueBatch(ctx, c.UserID(), application.KindAuto, &campaignID, rows, now)
	if err != nil {
		return 0, fmt.Errorf("enqueue batch: %w", err)
	}
	return inserted, nil
}

// SendNow performs the same procedure once for one campaign, up to
// min(cap, ManualSendCap), never exceeding the user's remaining quota.
func (s *Service) SendNow(ctx context.Context, campaignID uint, cap int, now time.Time) (int, error) {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return 0, fmt.Errorf("campaign: load: %w", err)
	}
	if cap <= 0 || cap > ManualSendCap {
		cap = ManualSendCap
	}
	if err := s.rolloverDailyCounter(ctx, c, now); err != nil {
		return 0, err
	}

	accessToken, needsRefresh, err := s.tokens.EnsureFreshAccess(ctx, c.UserID(), 0, now)
	if err != nil {
		return 0, fmt.Errorf("ensure access: %w", err)
	}
	if needsRefresh && accessToken == "" {
		return 0, fmt.Errorf("campaign: no usable hh access token")
	}

	view, err := s.quota.QuotaView(ctx, c.UserID(), now)
	if err != nil {
		return 0, fmt.Errorf("quota view: %w", err)
	}
	allowed := cap
	if view.Remaining < allowed {
		allowed = view.Remaining
	}
	if allowed <= 0 {
		return 0, s.notifier.NotifyQuotaExhaustedOnce(ctx, c.UserID(), view.ResetLabel, string(view.Tariff), now)
	}

	canonical, coverLetter, err := s.cursorQS(ctx, c, 0, now)
	if err != nil {
		return 0, err
	}
	inserted, err := s.searchAndEnqueue(ctx, c, accessToken, canonical, coverLetter, allowed, now)
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		c.RecordEnqueued(inserted, now)
		if err := s.campaigns.Update(ctx, c); err != nil {
			return inserted, err
		}
	}
	return inserted, nil
}

// Activate starts a campaign, refusing to do so if another campaign is
// already active for the user (the at-most-one-active invariant).
func (s *Service) Activate(ctx context.Context, campaignID uint, now time.Time) error {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("campaign: load: %w", err)
	}
	existingActive, err := s.campaigns.GetActiveByUserID(ctx, c.UserID())
	if err != nil {
		return fmt.Errorf("campaign: check active: %w", err)
	}
	if existingActive != nil && existingActive.ID() != c.ID() {
		return campaigndomain.ErrActiveCampaignExists
	}
	if err := c.Activate(now); err != nil {
		return err
	}
	return s.campaigns.Update(ctx, c)
}

// Stop idempotently stops a campaign.
func (s *Service) Stop(ctx context.Context, campaignID uint, now time.Time) error {
	c, err := s.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return fmt.Errorf("campaign: load: %w", err)
	}
	c.Stop(now)
	return s.campaigns.Update(ctx, c)
}
