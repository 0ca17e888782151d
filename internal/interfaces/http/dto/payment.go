package dto

// PaymentSucceededRequest is the inbound "payment succeeded" webhook body
// (§6.2). Parsed only after HMAC signature verification against the raw
// body succeeds.
type PaymentSucceededRequest struct {
	Provider              string `json:"provider" binding:"required"`
	ProviderTransactionID string `json:"provider_transaction_id" binding:"required"`
	UserID                uint   `json:"user_id" binding:"required"`
	TariffID              string `json:"tariff_id" binding:"required"`
	PeriodDays            int    `json:"period_days" binding:"required"`
	PriceCents            int64  `json:"price_cents" binding:"required"`
}
