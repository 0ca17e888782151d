// Package payment models the inbound payment ledger. Full payout math is
// out of scope; this package only records the ledger and exposes the
// idempotent "first transition to paid" check the webhook handler needs.
package payment

import "time"

// Status is the payment lifecycle state.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// TransactionKind enumerates the append-only ledger event types.
type TransactionKind string

const (
	TransactionPayment    TransactionKind = "PAYMENT"
	TransactionRefund     TransactionKind = "REFUND"
	TransactionBonus      TransactionKind = "BONUS"
	TransactionCharge     TransactionKind = "CHARGE"
	TransactionAdjustment TransactionKind = "ADJUSTMENT"
)

// Payment is one inbound provider transaction, unique on
// (provider, provider_transaction_id).
type Payment struct {
	ID                    uint
	Provider              string
	ProviderTransactionID string
	UserID                uint
	TariffID              string
	PeriodDays            int
	PriceCents            int64
	Status                Status
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// MarkPaid transitions pending -> paid. Returns false if the payment was
// already paid, signalling the caller to skip the subscription-extension
// and payout side effects (idempotency on first transition).
func (p *Payment) MarkPaid(now time.Time) (transitioned bool) {
	if p.Status == StatusPaid {
		return false
	}
	p.Status = StatusPaid
	p.UpdatedAt = now
	return true
}

// Transaction is one append-only ledger entry.
type Transaction struct {
	ID          uint
	UserID      uint
	Kind        TransactionKind
	AmountCents int64
	ReferenceID string
	Status      string
	CreatedAt   time.Time
}
