// Package payout implements an advisory referral-commission routine: when a
// paying user was referred, the direct referrer's commission is logged for
// later out-of-band settlement. It never blocks or reverses the payment
// itself (§1, §6.2) — payment.Service treats its result as advisory.
package payout

import (
	"context"
	"fmt"

	"github.com/hhbot/dispatcher/internal/domain/user"
	"github.com/hhbot/dispatcher/internal/shared/logger"
)

// CommissionRate is the fraction of priceCents credited to a direct
// referrer on a successful payment.
const CommissionRate = 0.10

// ReferralRoutine implements payment.PayoutRoutine by logging the commission
// owed to the paying user's direct referrer, if any.
type ReferralRoutine struct {
	users user.Repository
	log   logger.Interface
}

// New builds a ReferralRoutine.
func New(users user.Repository, log logger.Interface) *ReferralRoutine {
	return &ReferralRoutine{users: users, log: log}
}

// OnPaymentSucceeded logs the commission owed to userID's referrer, if one
// is on record. Settlement itself happens out of band.
func (r *ReferralRoutine) OnPaymentSucceeded(ctx context.Context, userID uint, tariffID string, priceCents int64) error {
	u, err := r.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("payout: load user: %w", err)
	}
	if u == nil || u.ReferredBy == nil {
		return nil
	}

	commissionCents := int64(float64(priceCents) * CommissionRate)
	r.log.Infow("referral commission owed",
		"referrer_id", *u.ReferredBy,
		"paying_user_id", userID,
		"tariff_id", tariffID,
		"commission_cents", commissionCents,
	)
	return nil
}
