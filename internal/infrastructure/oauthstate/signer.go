// Package oauthstate signs and verifies the nonce embedded in the HH OAuth
// "state" parameter (state = "tg:<messenger_id>:<nonce>", §6.1), so a
// forged or replayed state is rejected before it ever reaches the Token
// Manager.
package oauthstate

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hhbot/dispatcher/internal/shared/biztime"
)

// Claims binds a signed nonce to the messenger id it was issued for and a
// unique jti, which the Redis state store consumes exactly once.
type Claims struct {
	MessengerID string `json:"messenger_id"`
	jwt.RegisteredClaims
}

// Signer mints and verifies state nonces with HMAC-SHA256.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner builds a Signer. ttl bounds how long an authorize URL stays
// redeemable (recommended: 10 minutes).
func NewSigner(secret string, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign mints a nonce for messengerID carrying jti as its ID claim, and
// returns the signed nonce string; the caller registers the same jti as
// unused in the one-time-use store.
func (s *Signer) Sign(messengerID, jti string) (nonce string, err error) {
	now := biztime.NowUTC()
	claims := &Claims{
		MessengerID: messengerID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("oauthstate: sign: %w", err)
	}
	return signed, nil
}

// Verify validates nonce's signature and expiry, returning the messenger id
// and jti it was issued for.
func (s *Signer) Verify(nonce string) (messengerID, jti string, err error) {
	token, err := jwt.ParseWithClaims(nonce, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", "", fmt.Errorf("oauthstate: parse: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("oauthstate: invalid nonce")
	}
	return claims.MessengerID, claims.ID, nil
}
