package token

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/domain/hhtoken"
	"github.com/hhbot/dispatcher/internal/domain/referral"
	"github.com/hhbot/dispatcher/internal/domain/resume"
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

type mockTokenRepository struct {
	mock.Mock
}

func (m *mockTokenRepository) Upsert(ctx context.Context, t *hhtoken.HHToken) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTokenRepository) GetByUserID(ctx context.Context, userID uint) (*hhtoken.HHToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*hhtoken.HHToken), args.Error(1)
}

func (m *mockTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type mockResumeRepository struct {
	mock.Mock
}

func (m *mockResumeRepository) UpsertAll(ctx context.Context, userID uint, resumes []*resume.Resume) error {
	args := m.Called(ctx, userID, resumes)
	return args.Error(0)
}

func (m *mockResumeRepository) ListByUserID(ctx context.Context, userID uint) ([]*resume.Resume, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*resume.Resume), args.Error(1)
}

func (m *mockResumeRepository) BelongsToUser(ctx context.Context, userID uint, externalID string) (bool, error) {
	args := m.Called(ctx, userID, externalID)
	return args.Bool(0), args.Error(1)
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

type mockHHClient struct {
	mock.Mock
}

func (m *mockHHClient) AuthorizeURL(messengerID, nonce string) string {
	args := m.Called(messengerID, nonce)
	return args.String(0)
}

func (m *mockHHClient) SearchVacancies(ctx context.Context, accessToken, canonicalQS string, page, perPage int) (ports.SearchResult, error) {
	args := m.Called(ctx, accessToken, canonicalQS, page, perPage)
	return args.Get(0).(ports.SearchResult), args.Error(1)
}

func (m *mockHHClient) Apply(ctx context.Context, accessToken string, vacancyID int64, resumeID string, coverLetter *string) (ports.ApplyResult, error) {
	args := m.Called(ctx, accessToken, vacancyID, resumeID, coverLetter)
	return args.Get(0).(ports.ApplyResult), args.Error(1)
}

func (m *mockHHClient) GetResumes(ctx context.Context, accessToken string) ([]ports.ResumeSummary, error) {
	args := m.Called(ctx, accessToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.ResumeSummary), args.Error(1)
}

func (m *mockHHClient) GetMe(ctx context.Context, accessToken string) (ports.Profile, error) {
	args := m.Called(ctx, accessToken)
	return args.Get(0).(ports.Profile), args.Error(1)
}

func (m *mockHHClient) RefreshToken(ctx context.Context, refreshToken string) (ports.TokenSet, error) {
	args := m.Called(ctx, refreshToken)
	return args.Get(0).(ports.TokenSet), args.Error(1)
}

func (m *mockHHClient) ExchangeCode(ctx context.Context, code string) (ports.TokenSet, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(ports.TokenSet), args.Error(1)
}

type mockRefreshLock struct {
	mock.Mock
}

func (m *mockRefreshLock) TryLock(ctx context.Context, userID uint, ttl time.Duration) (func(), bool, error) {
	args := m.Called(ctx, userID, ttl)
	var unlock func()
	if f, ok := args.Get(0).(func()); ok {
		unlock = f
	} else {
		unlock = func() {}
	}
	return unlock, args.Bool(1), args.Error(2)
}
