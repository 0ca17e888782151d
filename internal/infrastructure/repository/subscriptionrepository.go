package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hhbot/dispatcher/internal/domain/subscription"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// SubscriptionRepository is the gorm-backed subscription.Repository implementation.
type SubscriptionRepository struct {
	db *gorm.DB
}

// NewSubscriptionRepository builds a SubscriptionRepository.
func NewSubscriptionRepository(gdb *gorm.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: gdb}
}

func subscriptionToModel(s *subscription.Subscription) *models.SubscriptionModel {
	return &models.SubscriptionModel{
		ID:        s.ID,
		UserID:    s.UserID,
		TariffRef: s.TariffRef,
		StartedAt: s.StartedAt,
		ExpiresAt: s.ExpiresAt,
		Status:    string(s.Status),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func subscriptionToDomain(m *models.SubscriptionModel) *subscription.Subscription {
	return &subscription.Subscription{
		ID:        m.ID,
		UserID:    m.UserID,
		TariffRef: m.TariffRef,
		StartedAt: m.StartedAt,
		ExpiresAt: m.ExpiresAt,
		Status:    subscription.Status(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	model := subscriptionToModel(s)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("subscription: create: %w", err)
	}
	s.ID = model.ID
	return nil
}

func (r *SubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	model := subscriptionToModel(s)
	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		return fmt.Errorf("subscription: update: %w", err)
	}
	return nil
}

// GetCurrentByUserID returns the most recently started subscription for
// userID, active or not — callers decide relevance via IsActiveAt.
func (r *SubscriptionRepository) GetCurrentByUserID(ctx context.Context, userID uint) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("subscription: get current by user id: %w", err)
	}
	return subscriptionToDomain(&model), nil
}

func (r *SubscriptionRepository) ListExpiringSoon(ctx context.Context, before time.Time) ([]*subscription.Subscription, error) {
	var rows []models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND expires_at <= ?", string(subscription.StatusActive), before).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("subscription: list expiring soon: %w", err)
	}
	out := make([]*subscription.Subscription, 0, len(rows))
	for i := range rows {
		out = append(out, subscriptionToDomain(&rows[i]))
	}
	return out, nil
}

func (r *SubscriptionRepository) InsertReminderMarkerIfAbsent(ctx context.Context, subscriptionID uint, kind subscription.ReminderKind) (bool, error) {
	marker := models.SubscriptionReminderModel{
		SubscriptionID: subscriptionID,
		Kind:           string(kind),
		CreatedAt:      nowUTC(),
	}
	result := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&marker)
	if result.Error != nil {
		return false, fmt.Errorf("subscription: insert reminder marker: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
