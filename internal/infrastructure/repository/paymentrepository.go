package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hhbot/dispatcher/internal/domain/payment"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// PaymentRepository is the gorm-backed payment.Repository implementation.
type PaymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository builds a PaymentRepository.
func NewPaymentRepository(gdb *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: gdb}
}

func paymentToModel(p *payment.Payment) *models.PaymentModel {
	return &models.PaymentModel{
		ID:                    p.ID,
		Provider:              p.Provider,
		ProviderTransactionID: p.ProviderTransactionID,
		UserID:                p.UserID,
		TariffID:              p.TariffID,
		PeriodDays:            p.PeriodDays,
		PriceCents:            p.PriceCents,
		Status:                string(p.Status),
		CreatedAt:             p.CreatedAt,
		UpdatedAt:             p.UpdatedAt,
	}
}

func paymentToDomain(m *models.PaymentModel) *payment.Payment {
	return &payment.Payment{
		ID:                    m.ID,
		Provider:              m.Provider,
		ProviderTransactionID: m.ProviderTransactionID,
		UserID:                m.UserID,
		TariffID:              m.TariffID,
		PeriodDays:            m.PeriodDays,
		PriceCents:            m.PriceCents,
		Status:                payment.Status(m.Status),
		CreatedAt:             m.CreatedAt,
		UpdatedAt:             m.UpdatedAt,
	}
}

// GetOrCreateByProviderTransaction upserts the pending shell row for
// (provider, provider_transaction_id), returning the existing row if one
// was already recorded — the idempotency key from §6.2.
func (r *PaymentRepository) GetOrCreateByProviderTransaction(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var existing models.PaymentModel
	err := tx.Where("provider = ? AND provider_transaction_id = ?", p.Provider, p.ProviderTransactionID).
		First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		model := paymentToModel(p)
		if err := tx.Create(model).Error; err != nil {
			return nil, fmt.Errorf("payment: create: %w", err)
		}
		return paymentToDomain(model), nil
	case err != nil:
		return nil, fmt.Errorf("payment: lookup: %w", err)
	default:
		return paymentToDomain(&existing), nil
	}
}

func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	model := paymentToModel(p)
	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		return fmt.Errorf("payment: update: %w", err)
	}
	return nil
}

func (r *PaymentRepository) AppendTransaction(ctx context.Context, t *payment.Transaction) error {
	model := &models.TransactionModel{
		UserID:      t.UserID,
		Kind:        string(t.Kind),
		AmountCents: t.AmountCents,
		ReferenceID: t.ReferenceID,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("payment: append transaction: %w", err)
	}
	t.ID = model.ID
	return nil
}
