// Package ports declares the application layer's view of its external
// collaborators, so application services depend on small interfaces rather
// than concrete infrastructure packages.
package ports

import (
	"context"
	"time"
)

// ApplyOutcome classifies the result of one Apply call, as depended on by
// the Application Dispatcher's state machine.
type ApplyOutcome int

const (
	ApplySuccess ApplyOutcome = iota
	ApplyAlreadyApplied
	ApplyUnauthorized
	ApplyNonRetryable
	ApplyRetryable
)

// NonRetryableReason enumerates the known terminal business classifications.
type NonRetryableReason string

const (
	ReasonVacancyNotFound NonRetryableReason = "vacancy_not_found"
	ReasonResumeNotFound  NonRetryableReason = "resume_not_found"
	ReasonTestRequired    NonRetryableReason = "test_required"
	ReasonLetterRequired  NonRetryableReason = "letter_required"
	ReasonOther           NonRetryableReason = ""
)

// ApplyResult is the classified response from one Apply attempt.
type ApplyResult struct {
	Outcome         ApplyOutcome
	NonRetryable    NonRetryableReason
	ResponseBody    string // truncated by the caller before persisting
}

// TokenSet is the token endpoint response shape shared by code exchange
// and refresh.
type TokenSet struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    time.Duration
}

// ResumeSummary is one entry from GetResumes.
type ResumeSummary struct {
	ExternalID    string
	Title         string
	Area          string
	Visibility    string
	LastUpdatedAt time.Time
}

// Profile is the /me response shape.
type Profile struct {
	ExternalID  string
	DisplayName string
}

// SearchResult is the SearchVacancies response.
type SearchResult struct {
	VacancyIDs []int64
	Found      int
}

// HHClient is the typed wrapper for the HH REST API (C3).
type HHClient interface {
	AuthorizeURL(messengerID, nonce string) string
	SearchVacancies(ctx context.Context, accessToken, canonicalQS string, page, perPage int) (SearchResult, error)
	Apply(ctx context.Context, accessToken string, vacancyID int64, resumeID string, coverLetter *string) (ApplyResult, error)
	GetResumes(ctx context.Context, accessToken string) ([]ResumeSummary, error)
	GetMe(ctx context.Context, accessToken string) (Profile, error)
	RefreshToken(ctx context.Context, refreshToken string) (TokenSet, error)
	ExchangeCode(ctx context.Context, code string) (TokenSet, error)
}

// OAuthStateStore is the one-time-use nonce store behind the OAuth state
// parameter (§6.1): a nonce authorizes exactly one callback.
type OAuthStateStore interface {
	Issue(ctx context.Context, jti, messengerID string) error
	VerifyAndConsume(ctx context.Context, jti, messengerID string) error
}

// OAuthStateSigner signs and verifies the nonce embedded in state so a
// forged state parameter is rejected before it reaches the state store.
type OAuthStateSigner interface {
	Sign(messengerID, jti string) (nonce string, err error)
	Verify(nonce string) (messengerID, jti string, err error)
}

// Notifier delivers a message to the Telegram frontend out-channel (C9's
// collaborator, consumed by the Notification Scheduler).
type Notifier interface {
	Send(ctx context.Context, messengerID string, body string) error
}
