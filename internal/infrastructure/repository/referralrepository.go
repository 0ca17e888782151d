package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hhbot/dispatcher/internal/domain/referral"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// ReferralRepository is the gorm-backed referral.Repository implementation.
type ReferralRepository struct {
	db *gorm.DB
}

// NewReferralRepository builds a ReferralRepository.
func NewReferralRepository(gdb *gorm.DB) *ReferralRepository {
	return &ReferralRepository{db: gdb}
}

func referralToModel(r *referral.Referral) *models.ReferralModel {
	return &models.ReferralModel{
		ID:        r.ID,
		UserID:    r.UserID,
		ParentID:  r.ParentID,
		Level:     r.Level,
		CreatedAt: r.CreatedAt,
	}
}

func referralToDomain(m *models.ReferralModel) *referral.Referral {
	return &referral.Referral{
		ID:        m.ID,
		UserID:    m.UserID,
		ParentID:  m.ParentID,
		Level:     m.Level,
		CreatedAt: m.CreatedAt,
	}
}

func (r *ReferralRepository) InsertIfAbsent(ctx context.Context, ref *referral.Referral) error {
	model := referralToModel(ref)
	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error
	if err != nil {
		return fmt.Errorf("referral: insert if absent: %w", err)
	}
	ref.ID = model.ID
	return nil
}

func (r *ReferralRepository) ListByUserID(ctx context.Context, userID uint) ([]*referral.Referral, error) {
	var rows []models.ReferralModel
	if err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("referral: list by user id: %w", err)
	}
	out := make([]*referral.Referral, 0, len(rows))
	for i := range rows {
		out = append(out, referralToDomain(&rows[i]))
	}
	return out, nil
}

func (r *ReferralRepository) CountByParentID(ctx context.Context, parentID uint) (map[int]int, error) {
	var rows []struct {
		Level int
		Count int
	}
	err := db.GetTxFromContext(ctx, r.db).Model(&models.ReferralModel{}).
		Select("level, count(*) as count").
		Where("parent_id = ?", parentID).
		Group("level").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("referral: count by parent id: %w", err)
	}
	out := make(map[int]int, len(rows))
	for _, row := range rows {
		out[row.Level] = row.Count
	}
	return out, nil
}
