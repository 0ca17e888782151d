package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/domain/hhtoken"
	"github.com/hhbot/dispatcher/internal/domain/user"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

func nopLog() logger.Interface { return logger.NewLoggerWithZap(zap.NewNop()) }

func TestEnsureFreshAccess_ReturnsTokenWithoutRefreshWhenFresh(t *testing.T) {
	users := new(mockUserRepository)
	tokens := new(mockTokenRepository)
	resumes := new(mockResumeRepository)
	referrals := new(mockReferralRepository)
	hh := new(mockHHClient)
	lock := new(mockRefreshLock)

	now := time.Now().UTC()
	tok := &hhtoken.HHToken{UserID: 1, AccessToken: "access", RefreshToken: "refresh", TokenType: "bearer", ExpiresAt: now.Add(time.Hour)}
	tokens.On("GetByUserID", mock.Anything, uint(1)).Return(tok, nil)

	svc := NewService(users, tokens, resumes, referrals, hh, lock, nopLog())
	access, needsRefresh, err := svc.EnsureFreshAccess(context.Background(), 1, 0, now)

	assert.NoError(t, err)
	assert.Equal(t, "access", access)
	assert.False(t, needsRefresh)
	lock.AssertNotCalled(t, "TryLock", mock.Anything, mock.Anything, mock.Anything)
}

func TestEnsureFreshAccess_RefreshesWhenWithinSkew(t *testing.T) {
	users := new(mockUserRepository)
	tokens := new(mockTokenRepository)
	resumes := new(mockResumeRepository)
	referrals := new(mockReferralRepository)
	hh := new(mockHHClient)
	lock := new(mockRefreshLock)

	now := time.Now().UTC()
	tok := &hhtoken.HHToken{UserID: 1, AccessToken: "stale", RefreshToken: "refresh-1", TokenType: "bearer", ExpiresAt: now.Add(5 * time.Second)}
	tokens.On("GetByUserID", mock.Anything, uint(1)).Return(tok, nil).Twice()
	lock.On("TryLock", mock.Anything, uint(1), 10*time.Second).Return(func() {}, true, nil)
	hh.On("RefreshToken", mock.Anything, "refresh-1").Return(ports.TokenSet{AccessToken: "fresh", RefreshToken: "refresh-2", TokenType: "bearer", ExpiresIn: time.Hour}, nil)
	tokens.On("Upsert", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(users, tokens, resumes, referrals, hh, lock, nopLog())
	access, needsRefresh, err := svc.EnsureFreshAccess(context.Background(), 1, DefaultRefreshSkew, now)

	assert.NoError(t, err)
	assert.Equal(t, "fresh", access)
	assert.False(t, needsRefresh)
}

func TestEnsureFreshAccess_UsesLastKnownTokenWhenLockHeldElsewhere(t *testing.T) {
	users := new(mockUserRepository)
	tokens := new(mockTokenRepository)
	resumes := new(mockResumeRepository)
	referrals := new(mockReferralRepository)
	hh := new(mockHHClient)
	lock := new(mockRefreshLock)

	now := time.Now().UTC()
	tok := &hhtoken.HHToken{UserID: 1, AccessToken: "stale", RefreshToken: "refresh-1", TokenType: "bearer", ExpiresAt: now.Add(5 * time.Second)}
	tokens.On("GetByUserID", mock.Anything, uint(1)).Return(tok, nil).Once()
	lock.On("TryLock", mock.Anything, uint(1), 10*time.Second).Return(func() {}, false, nil)

	svc := NewService(users, tokens, resumes, referrals, hh, lock, nopLog())
	access, needsRefresh, err := svc.EnsureFreshAccess(context.Background(), 1, DefaultRefreshSkew, now)

	assert.NoError(t, err)
	assert.Equal(t, "stale", access)
	assert.True(t, needsRefresh, "caller must be told the token may be stale when another worker owns the refresh")
	hh.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
}

func TestEnsureFreshAccess_ReturnsErrorWhenNoTokenLinked(t *testing.T) {
	users := new(mockUserRepository)
	tokens := new(mockTokenRepository)
	resumes := new(mockResumeRepository)
	referrals := new(mockReferralRepository)
	hh := new(mockHHClient)
	lock := new(mockRefreshLock)

	tokens.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)

	svc := NewService(users, tokens, resumes, referrals, hh, lock, nopLog())
	_, _, err := svc.EnsureFreshAccess(context.Background(), 1, 0, time.Now().UTC())

	assert.Error(t, err)
}

func TestUnlink_DeletesToken(t *testing.T) {
	users := new(mockUserRepository)
	tokens := new(mockTokenRepository)
	resumes := new(mockResumeRepository)
	referrals := new(mockReferralRepository)
	hh := new(mockHHClient)
	lock := new(mockRefreshLock)

	tokens.On("DeleteByUserID", mock.Anything, uint(1)).Return(nil)

	svc := NewService(users, tokens, resumes, referrals, hh, lock, nopLog())
	err := svc.Unlink(context.Background(), 1)

	assert.NoError(t, err)
	tokens.AssertExpectations(t)
}

func TestOnOAuthCompleted_AttachesReferralWhenPendingCodeAndNoParent(t *testing.T) {
	users := new(mockUserRepository)
	tokens := new(mockTokenRepository)
	resumes := new(mockResumeRepository)
	referrals := new(mockReferralRepository)
	hh := new(mockHHClient)
	lock := new(mockRefreshLock)

	now := time.Now().UTC()
	u := &user.User{ID: 1, MessengerID: "tg-1"}
	parentCode := "PARENT1"
	u.PendingRefCode = &parentCode
	parent := &user.User{ID: 2, MessengerID: "tg-2"}

	users.On("UpsertSeen", mock.Anything, "tg-1").Return(u, nil)
	hh.On("ExchangeCode", mock.Anything, "code-1").Return(ports.TokenSet{AccessToken: "a", RefreshToken: "r", TokenType: "bearer", ExpiresIn: time.Hour}, nil)
	tokens.On("GetByUserID", mock.Anything, uint(1)).Return(nil, nil)
	tokens.On("Upsert", mock.Anything, mock.Anything).Return(nil)
	hh.On("GetMe", mock.Anything, "a").Return(ports.Profile{ExternalID: "ext-1", DisplayName: "Test"}, nil)
	users.On("GetByID", mock.Anything, uint(1)).Return(u, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	hh.On("GetResumes", mock.Anything, "a").Return([]ports.ResumeSummary{}, nil)
	resumes.On("UpsertAll", mock.Anything, uint(1), mock.Anything).Return(nil)
	users.On("GetByReferralCode", mock.Anything, parentCode).Return(parent, nil)
	referrals.On("InsertIfAbsent", mock.Anything, mock.Anything).Return(nil)

	svc := NewService(users, tokens, resumes, referrals, hh, lock, nopLog())
	err := svc.OnOAuthCompleted(context.Background(), "tg-1", "code-1", now)

	assert.NoError(t, err)
	referrals.AssertCalled(t, "InsertIfAbsent", mock.Anything, mock.MatchedBy(func(r interface{}) bool { return true }))
}
