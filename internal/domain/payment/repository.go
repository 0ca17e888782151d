package payment

import "context"

// Repository is the typed DAO over payments and the transaction ledger.
type Repository interface {
	// GetOrCreateByProviderTransaction upserts the pending shell row for
	// (provider, providerTransactionID), returning the existing row if one
	// was already recorded — the idempotency key from §6.2.
	GetOrCreateByProviderTransaction(ctx context.Context, p *Payment) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	AppendTransaction(ctx context.Context, t *Transaction) error
}

// PayoutRoutine is the external referral-payout collaborator. The core only
// invokes it and treats the result as advisory (§1, §6.2).
type PayoutRoutine interface {
	OnPaymentSucceeded(ctx context.Context, userID uint, tariffID string, priceCents int64) error
}
