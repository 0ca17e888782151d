package quota

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hhbot/dispatcher/internal/domain/application"
	"github.com/hhbot/dispatcher/internal/domain/subscription"
)

type mockSubscriptionRepository struct {
	mock.Mock
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *mockSubscriptionRepository) GetCurrentByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) ListExpiringSoon(ctx context.Context, before time.Time) ([]*subscription.Subscription, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*subscription.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepository) InsertReminderMarkerIfAbsent(ctx context.Context, subscriptionID uint, kind subscription.ReminderKind) (bool, error) {
	args := m.Called(ctx, subscriptionID, kind)
	return args.Bool(0), args.Error(1)
}

type mockApplicationRepository struct {
	mock.Mock
}

func (m *mockApplicationRepository) EnqueueBatch(ctx context.Context, userID uint, kind application.Kind, campaignID *uint, rows []application.VacancyApplication, now time.Time) (int, error) {
	args := m.Called(ctx, userID, kind, campaignID, rows, now)
	return args.Int(0), args.Error(1)
}

func (m *mockApplicationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*application.Application, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*application.Application), args.Error(1)
}

func (m *mockApplicationRepository) Update(ctx context.Context, a *application.Application) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *mockApplicationRepository) GetByID(ctx context.Context, id uint) (*application.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*application.Application), args.Error(1)
}

func (m *mockApplicationRepository) CountToday(ctx context.Context, userID uint, startUTC, endUTC time.Time) (int64, error) {
	args := m.Called(ctx, userID, startUTC, endUTC)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockApplicationRepository) ExistingVacancyIDs(ctx context.Context, userID uint, candidateVacancyIDs []int64) (map[int64]bool, error) {
	args := m.Called(ctx, userID, candidateVacancyIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]bool), args.Error(1)
}
