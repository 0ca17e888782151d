package notification

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hhbot/dispatcher/internal/domain/notification"
	"github.com/hhbot/dispatcher/internal/domain/subscription"
	"github.com/hhbot/dispatcher/internal/domain/user"
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

type mockNotificationRepository struct {
	mock.Mock
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *mockNotificationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*notification.Notification), args.Error(1)
}

func (m *mockNotificationRepository) HasQuotaMarkerSince(ctx context.Context, userID uint, sinceUTC, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, sinceUTC, now)
	return args.Bool(0), args.Error(1)
}

func (m *mockNotificationRepository) ResolveSegment(ctx context.Context, key string) ([]string, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockNotificationRepository) ResolveAll(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepository) Update(ctx context.Context, u *user.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepository) GetByMessengerID(ctx context.Context, messengerID string) (*user.User, error) {
	args := m.Called(ctx, messengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepository) GetByReferralCode(ctx context.Context, code string) (*user.User, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *mockUserRepository) UpsertSeen(ctx context.Context, messengerID string) (*user.User, error) {
	args := m.Called(ctx, messengerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, messengerID string, body string) error {
	args := m.Called(ctx, messengerID, body)
	return args.Error(0)
}
