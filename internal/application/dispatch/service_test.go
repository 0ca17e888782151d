package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hhbot/dispatcher/internal/application/quota"
	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/application/token"
	"github.com/hhbot/dispatcher/internal/domain/application"
	"github.com/hhbot/dispatcher/internal/domain/hhtoken"
	"github.com/hhbot/dispatcher/internal/shared/db"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

func freshToken(userID uint, now time.Time) *hhtoken.HHToken {
	return &hhtoken.HHToken{
		ID:           1,
		UserID:       userID,
		AccessToken:  "access-tok",
		RefreshToken: "refresh-tok",
		TokenType:    "bearer",
		ExpiresAt:    now.Add(time.Hour),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func nopLog() logger.Interface { return logger.NewLoggerWithZap(zap.NewNop()) }

func newTestTxManager(t *testing.T) *db.TransactionManager {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open in-memory sqlite: %v", err)
	}
	return db.NewTransactionManager(gormDB)
}

func newTokenService(tokens *mockTokenRepository, hh *mockHHClient) *token.Service {
	return token.NewService(new(mockUserRepository), tokens, new(mockResumeRepository), new(mockReferralRepository), hh, new(mockRefreshLock), nopLog())
}

func newQuotaService(subs *mockSubscriptionRepository, apps *mockApplicationRepository) *quota.Service {
	return quota.NewService(subs, apps, nil, quota.Config{HardDailyCap: 50, FreeDailyCap: 5, PaidDailyCap: 30})
}

func TestTick_ReturnsNilWhenNothingClaimed(t *testing.T) {
	apps := new(mockApplicationRepository)
	now := time.Now().UTC()

	apps.On("ClaimDue", mock.Anything, now, BatchSize).Return([]*application.Application(nil), nil)

	svc := NewService(apps, newTokenService(new(mockTokenRepository), new(mockHHClient)), newQuotaService(new(mockSubscriptionRepository), new(mockApplicationRepository)), new(mockQuotaNotifier), new(mockHHClient), newTestTxManager(t), nopLog(), 2)
	err := svc.Tick(context.Background(), now)

	assert.NoError(t, err)
	apps.AssertExpectations(t)
	apps.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestTick_MarksApplicationSentOnSuccessfulApply(t *testing.T) {
	apps := new(mockApplicationRepository)
	quotaApps := new(mockApplicationRepository)
	subs := new(mockSubscriptionRepository)
	tokens := new(mockTokenRepository)
	hh := new(mockHHClient)
	notifier := new(mockQuotaNotifier)
	now := time.Now().UTC()

	a := application.New(1, 555, "resume-1", nil, application.KindAuto, nil, now)
	a.SetID(1)

	apps.On("ClaimDue", mock.Anything, now, BatchSize).Return([]*application.Application{a}, nil)
	apps.On("Update", mock.Anything, mock.MatchedBy(func(a *application.Application) bool {
		return a.Status() == application.StatusSent
	})).Return(nil)

	tokens.On("GetByUserID", mock.Anything, uint(1)).Return(freshToken(1, now), nil)
	subs.On("GetCurrentByUserID", mock.Anything, uint(1)).Return(nil, nil)
	quotaApps.On("CountToday", mock.Anything, uint(1), mock.Anything, mock.Anything).Return(int64(0), nil)

	hh.On("Apply", mock.Anything, "access-tok", int64(555), "resume-1", (*string)(nil)).
		Return(ports.ApplyResult{Outcome: ports.ApplySuccess}, nil)

	svc := NewService(apps, newTokenService(tokens, hh), newQuotaService(subs, quotaApps), notifier, hh, newTestTxManager(t), nopLog(), 2)
	err := svc.Tick(context.Background(), now)

	assert.NoError(t, err)
	apps.AssertExpectations(t)
	notifier.AssertNotCalled(t, "NotifyQuotaExhaustedOnce", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTick_ParksApplicationAndNotifiesOnceWhenQuotaExhausted(t *testing.T) {
	apps := new(mockApplicationRepository)
	quotaApps := new(mockApplicationRepository)
	subs := new(mockSubscriptionRepository)
	tokens := new(mockTokenRepository)
	hh := new(mockHHClient)
	notifier := new(mockQuotaNotifier)
	now := time.Now().UTC()

	a := application.New(1, 555, "resume-1", nil, application.KindAuto, nil, now)
	a.SetID(1)

	apps.On("ClaimDue", mock.Anything, now, BatchSize).Return([]*application.Application{a}, nil)
	apps.On("Update", mock.Anything, mock.MatchedBy(func(a *application.Application) bool {
		return a.Status() == application.StatusRetry && a.ErrorCode() != nil && *a.ErrorCode() == application.ErrQuotaExhausted
	})).Return(nil)

	tokens.On("GetByUserID", mock.Anything, uint(1)).Return(freshToken(1, now), nil)
	subs.On("GetCurrentByUserID", mock.Anything, uint(1)).Return(nil, nil)
	quotaApps.On("CountToday", mock.Anything, uint(1), mock.Anything, mock.Anything).Return(int64(5), nil)

	notifier.On("NotifyQuotaExhaustedOnce", mock.Anything, uint(1), mock.Anything, mock.Anything, now).Return(nil)

	svc := NewService(apps, newTokenService(tokens, hh), newQuotaService(subs, quotaApps), notifier, hh, newTestTxManager(t), nopLog(), 2)
	err := svc.Tick(context.Background(), now)

	assert.NoError(t, err)
	apps.AssertExpectations(t)
	notifier.AssertExpectations(t)
	hh.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTick_MarksTerminalErrorWhenUserHasNoAccessToken(t *testing.T) {
	apps := new(mockApplicationRepository)
	tokens := new(mockTokenRepository)
	hh := new(mockHHClient)
	now := time.Now().UTC()

	a := application.New(1, 555, "resume-1", nil, application.KindAuto, nil, now)
	a.SetID(1)

	apps.On("ClaimDue", mock.Anything, now, BatchSize).Return([]*application.Application{a}, nil)
	apps.On("Update", mock.Anything, mock.MatchedBy(func(a *application.Application) bool {
		return a.Status() == application.StatusError && a.ErrorCode() != nil && *a.ErrorCode() == application.ErrNoAccessToken
	})).Return(nil)

	tokens.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)

	svc := NewService(apps, newTokenService(tokens, hh), newQuotaService(new(mockSubscriptionRepository), new(mockApplicationRepository)), new(mockQuotaNotifier), hh, newTestTxManager(t), nopLog(), 2)
	err := svc.Tick(context.Background(), now)

	assert.NoError(t, err)
	apps.AssertExpectations(t)
	hh.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTick_SchedulesRetryWithBackoffWhenApplyFails(t *testing.T) {
	apps := new(mockApplicationRepository)
	quotaApps := new(mockApplicationRepository)
	subs := new(mockSubscriptionRepository)
	tokens := new(mockTokenRepository)
	hh := new(mockHHClient)
	now := time.Now().UTC()

	a := application.New(1, 555, "resume-1", nil, application.KindAuto, nil, now)
	a.SetID(1)

	apps.On("ClaimDue", mock.Anything, now, BatchSize).Return([]*application.Application{a}, nil)
	apps.On("Update", mock.Anything, mock.MatchedBy(func(a *application.Application) bool {
		return a.Status() == application.StatusRetry && a.AttemptCount() == 1
	})).Return(nil)

	tokens.On("GetByUserID", mock.Anything, uint(1)).Return(freshToken(1, now), nil)
	subs.On("GetCurrentByUserID", mock.Anything, uint(1)).Return(nil, nil)
	quotaApps.On("CountToday", mock.Anything, uint(1), mock.Anything, mock.Anything).Return(int64(0), nil)

	hh.On("Apply", mock.Anything, "access-tok", int64(555), "resume-1", (*string)(nil)).
		Return(ports.ApplyResult{Outcome: ports.ApplyRetryable, ResponseBody: "upstream 500"}, nil)

	svc := NewService(apps, newTokenService(tokens, hh), newQuotaService(subs, quotaApps), new(mockQuotaNotifier), hh, newTestTxManager(t), nopLog(), 2)
	err := svc.Tick(context.Background(), now)

	assert.NoError(t, err)
	apps.AssertExpectations(t)
}
