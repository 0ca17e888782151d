// Package payment implements the inbound payment-confirmation use case
// (§6.2): signature verification, idempotent first-transition-to-paid, and
// the subscription extension plus advisory payout side effect.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/hhbot/dispatcher/internal/domain/payment"
	"github.com/hhbot/dispatcher/internal/domain/subscription"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

// Event is the inbound "payment succeeded" payload.
type Event struct {
	Provider              string
	ProviderTransactionID string
	UserID                uint
	TariffID              string
	PeriodDays            int
	PriceCents            int64
}

// Service drives the payment-confirmation webhook.
type Service struct {
	payments      payment.Repository
	subscriptions subscription.Repository
	payout        payment.PayoutRoutine
	secret        []byte
	log           logger.Interface
}

// NewService wires the payment-confirmation handler. secret is the shared
// HMAC-SHA256 key used to verify inbound webhook signatures.
func NewService(payments payment.Repository, subscriptions subscription.Repository, payout payment.PayoutRoutine, secret []byte, log logger.Interface) *Service {
	return &Service{payments: payments, subscriptions: subscriptions, payout: payout, secret: secret, log: log}
}

// VerifySignature reports whether b64Signature is the base64-encoded
// HMAC-SHA256 of rawBody under the configured shared secret.
func (s *Service) VerifySignature(rawBody []byte, b64Signature string) bool {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(b64Signature))
}

// HandlePaymentSucceeded upserts the ledger row and, only on the row's
// first transition to paid, extends the subscription and invokes the
// advisory payout routine.
func (s *Service) HandlePaymentSucceeded(ctx context.Context, ev Event, now time.Time) error {
	shell := &payment.Payment{
		Provider:              ev.Provider,
		ProviderTransactionID: ev.ProviderTransactionID,
		UserID:                ev.UserID,
		TariffID:              ev.TariffID,
		PeriodDays:            ev.PeriodDays,
		PriceCents:            ev.PriceCents,
		Status:                payment.StatusPending,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	p, err := s.payments.GetOrCreateByProviderTransaction(ctx, shell)
	if err != nil {
		return fmt.Errorf("payment: get or create: %w", err)
	}

	transitioned := p.MarkPaid(now)
	if err := s.payments.Update(ctx, p); err != nil {
		return fmt.Errorf("payment: persist paid status: %w", err)
	}

	if !transitioned {
		return nil
	}

	if err := s.payments.AppendTransaction(ctx, &payment.Transaction{
		UserID:      p.UserID,
		Kind:        payment.TransactionPayment,
		AmountCents: p.PriceCents,
		ReferenceID: p.ProviderTransactionID,
		Status:      string(p.Status),
		CreatedAt:   now,
	}); err != nil {
		return fmt.Errorf("payment: append ledger entry: %w", err)
	}

	if err := s.extendSubscription(ctx, p, now); err != nil {
		return fmt.Errorf("payment: extend subscription: %w", err)
	}

	if err := s.payout.OnPaymentSucceeded(ctx, p.UserID, p.TariffID, p.PriceCents); err != nil {
		s.log.Warnw("advisory payout routine failed", "user_id", p.UserID, "tariff_id", p.TariffID, "error", err)
	}
	return nil
}

func (s *Service) extendSubscription(ctx context.Context, p *payment.Payment, now time.Time) error {
	sub, err := s.subscriptions.GetCurrentByUserID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load subscription: %w", err)
	}
	if sub == nil {
		return s.subscriptions.Create(ctx, subscription.New(p.UserID, p.TariffID, p.PeriodDays, now))
	}
	sub.Extend(p.PeriodDays, now)
	sub.TariffRef = p.TariffID
	return s.subscriptions.Update(ctx, sub)
}
