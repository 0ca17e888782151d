package referral

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/hhbot/dispatcher/internal/domain/referral"
	"github.com/hhbot/dispatcher/internal/domain/user"
)

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

type mockReferralRepository struct {
	mock.Mock
}

func (m *mockReferralRepository) InsertIfAbsent(ctx context.Context, r *referral.Referral) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *mockReferralRepository) ListByUserID(ctx context.Context, userID uint) ([]*referral.Referral, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*referral.Referral), args.Error(1)
}

func (m *mockReferralRepository) CountByParentID(ctx context.Context, parentID uint) (map[int]int, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]int), args.Error(1)
}
