// Package link implements the OAuth front door: minting a signed,
// replay-proof authorize URL and validating the callback before handing the
// authorization code to the Token Manager (§4.9, §6.1).
package link

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hhbot/dispatcher/internal/application/shared/ports"
	"github.com/hhbot/dispatcher/internal/application/token"
)

// Service issues and redeems HH OAuth state parameters.
type Service struct {
	hh     ports.HHClient
	store  ports.OAuthStateStore
	signer ports.OAuthStateSigner
	tokens *token.Service
}

// NewService wires the OAuth front door.
func NewService(hh ports.HHClient, store ports.OAuthStateStore, signer ports.OAuthStateSigner, tokens *token.Service) *Service {
	return &Service{hh: hh, store: store, signer: signer, tokens: tokens}
}

// AuthorizeURL mints a fresh signed nonce for messengerID, registers it as
// unused, and returns the HH authorize URL — GET /hh/login.
func (s *Service) AuthorizeURL(ctx context.Context, messengerID string) (string, error) {
	jti := uuid.NewString()
	nonce, err := s.signer.Sign(messengerID, jti)
	if err != nil {
		return "", fmt.Errorf("link: sign state: %w", err)
	}
	if err := s.store.Issue(ctx, jti, messengerID); err != nil {
		return "", fmt.Errorf("link: issue state: %w", err)
	}
	return s.hh.AuthorizeURL(messengerID, nonce), nil
}

// Callback validates state, consumes its nonce, and completes the link —
// GET /hh/callback?code=&state=. Any referral code is picked up from the
// user's PendingRefCode (set earlier via POST /referrals/track), not from
// this request.
func (s *Service) Callback(ctx context.Context, state, code string, now time.Time) (messengerID string, err error) {
	messengerID, nonce, ok := parseState(state)
	if !ok {
		return "", fmt.Errorf("link: malformed state parameter")
	}

	claimedID, jti, err := s.signer.Verify(nonce)
	if err != nil {
		return "", fmt.Errorf("link: verify state: %w", err)
	}
	if claimedID != messengerID {
		return "", fmt.Errorf("link: state messenger id mismatch")
	}
	if err := s.store.VerifyAndConsume(ctx, jti, messengerID); err != nil {
		return "", fmt.Errorf("link: consume state: %w", err)
	}

	if err := s.tokens.OnOAuthCompleted(ctx, messengerID, code, now); err != nil {
		return "", fmt.Errorf("link: complete oauth: %w", err)
	}
	return messengerID, nil
}

// parseState splits "tg:<messenger_id>:<nonce>" (§6.1); the nonce itself
// may contain ':' (it is a JWT), so it is everything after the second colon.
func parseState(state string) (messengerID, nonce string, ok bool) {
	parts := strings.SplitN(state, ":", 3)
	if len(parts) != 3 || parts[0] != "tg" || parts[1] == "" || parts[2] == "" {
		return "", "", false
	}
	return parts[1], parts[2], true
}
