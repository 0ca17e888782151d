package payment

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hhbot/dispatcher/internal/domain/payment"
	"github.com/hhbot/dispatcher/internal/domain/subscription"
)

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) GetOrCreateByProviderTransaction(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Payment), args.Error(1)
}

func (m *mockPaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPaymentRepository) AppendTransaction(ctx context.Context, t *payment.Transaction) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

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

type mockPayoutRoutine struct {
	mock.Mock
}

func (m *mockPayoutRoutine) OnPaymentSucceeded(ctx context.Context, userID uint, tariffID string, priceCents int64) error {
	args := m.Called(ctx, userID, tariffID, priceCents)
	return args.Error(0)
}
