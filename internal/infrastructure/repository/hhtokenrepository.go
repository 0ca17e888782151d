package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hhbot/dispatcher/internal/domain/hhtoken"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// HHTokenRepository is the gorm-backed hhtoken.Repository implementation.
type HHTokenRepository struct {
	db *gorm.DB
}

// NewHHTokenRepository builds an HHTokenRepository.
func NewHHTokenRepository(gdb *gorm.DB) *HHTokenRepository {
	return &HHTokenRepository{db: gdb}
}

func hhTokenToModel(t *hhtoken.HHToken) *models.HHTokenModel {
	return &models.HHTokenModel{
		ID:           t.ID,
		UserID:       t.UserID,
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		ExpiresAt:    t.ExpiresAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func hhTokenToDomain(m *models.HHTokenModel) *hhtoken.HHToken {
	return &hhtoken.HHToken{
		ID:           m.ID,
		UserID:       m.UserID,
		AccessToken:  m.AccessToken,
		RefreshToken: m.RefreshToken,
		TokenType:    m.TokenType,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// Upsert inserts or replaces the user's single token row.
func (r *HHTokenRepository) Upsert(ctx context.Context, t *hhtoken.HHToken) error {
	model := hhTokenToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	if model.ID == 0 {
		var existing models.HHTokenModel
		err := tx.Where("user_id = ?", model.UserID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(model).Error; err != nil {
				return fmt.Errorf("hhtoken: create: %w", err)
			}
			t.ID = model.ID
			return nil
		case err != nil:
			return fmt.Errorf("hhtoken: upsert lookup: %w", err)
		default:
			model.ID = existing.ID
			t.ID = existing.ID
		}
	}

	if err := tx.Save(model).Error; err != nil {
		return fmt.Errorf("hhtoken: save: %w", err)
	}
	return nil
}

func (r *HHTokenRepository) GetByUserID(ctx context.Context, userID uint) (*hhtoken.HHToken, error) {
	var model models.HHTokenModel
	if err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("hhtoken: get by user id: %w", err)
	}
	return hhTokenToDomain(&model), nil
}

func (r *HHTokenRepository) DeleteByUserID(ctx context.Context, userID uint) error {
	if err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).Delete(&models.HHTokenModel{}).Error; err != nil {
		return fmt.Errorf("hhtoken: delete by user id: %w", err)
	}
	return nil
}
