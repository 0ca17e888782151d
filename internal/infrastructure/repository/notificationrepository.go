package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hhbot/dispatcher/internal/domain/notification"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// NotificationRepository is the gorm-backed notification.Repository implementation.
type NotificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository builds a NotificationRepository.
func NewNotificationRepository(gdb *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: gdb}
}

func notificationToModel(n *notification.Notification) *models.NotificationModel {
	return &models.NotificationModel{
		ID:          n.ID,
		UserID:      n.UserID,
		Scope:       string(n.Scope),
		Body:        n.Body,
		ScheduledAt: n.ScheduledAt,
		SentAt:      n.SentAt,
		Status:      string(n.Status),
		Error:       n.Error,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

func notificationToDomain(m *models.NotificationModel) *notification.Notification {
	return &notification.Notification{
		ID:          m.ID,
		UserID:      m.UserID,
		Scope:       notification.Scope(m.Scope),
		Body:        m.Body,
		ScheduledAt: m.ScheduledAt,
		SentAt:      m.SentAt,
		Status:      notification.Status(m.Status),
		Error:       m.Error,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	model := notificationToModel(n)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("notification: create: %w", err)
	}
	n.ID = model.ID
	return nil
}

func (r *NotificationRepository) Update(ctx context.Context, n *notification.Notification) error {
	model := notificationToModel(n)
	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		return fmt.Errorf("notification: update: %w", err)
	}
	return nil
}

func (r *NotificationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*notification.Notification, error) {
	var rows []models.NotificationModel
	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ? AND scheduled_at <= ?", string(notification.StatusPending), now).
		Order("id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("notification: claim due: %w", err)
	}
	out := make([]*notification.Notification, 0, len(rows))
	for i := range rows {
		out = append(out, notificationToDomain(&rows[i]))
	}
	return out, nil
}

func (r *NotificationRepository) HasQuotaMarkerSince(ctx context.Context, userID uint, sinceUTC, now time.Time) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.NotificationModel{}).
		Where("user_id = ? AND body LIKE ? AND created_at >= ? AND created_at <= ? AND status IN ?",
			userID, "%"+notification.QuotaExhaustedMarker+"%", sinceUTC, now,
			[]string{string(notification.StatusPending), string(notification.StatusSent)}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("notification: has quota marker since: %w", err)
	}
	return count > 0, nil
}

func (r *NotificationRepository) ResolveSegment(ctx context.Context, key string) ([]string, error) {
	var ids []string
	q := db.GetTxFromContext(ctx, r.db).Table("users")
	switch key {
	case notification.SegmentPremium:
		q = q.Joins("JOIN subscriptions ON subscriptions.user_id = users.id AND subscriptions.status = 'active'")
	case notification.SegmentNoSubscription:
		q = q.Where("NOT EXISTS (SELECT 1 FROM subscriptions WHERE subscriptions.user_id = users.id AND subscriptions.status = 'active')")
	case notification.SegmentActive30d:
		q = q.Where("last_seen_at >= ?", nowUTC().AddDate(0, 0, -30))
	case notification.SegmentAutoResponses, notification.SegmentAIResponses:
		q = q.Joins("JOIN campaigns ON campaigns.user_id = users.id AND campaigns.status = 'active'")
	default:
		// Unrecognized segment keys resolve to no recipients rather than erroring.
		return nil, nil
	}
	if err := q.Distinct().Pluck("users.messenger_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("notification: resolve segment %q: %w", key, err)
	}
	return ids, nil
}

func (r *NotificationRepository) ResolveAll(ctx context.Context) ([]string, error) {
	var ids []string
	if err := db.GetTxFromContext(ctx, r.db).Table("users").Pluck("messenger_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("notification: resolve all: %w", err)
	}
	return ids, nil
}
