package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hhbot/dispatcher/internal/domain/user"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// UserRepository is the gorm-backed user.Repository implementation.
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a UserRepository.
func NewUserRepository(gdb *gorm.DB) *UserRepository {
	return &UserRepository{db: gdb}
}

func userToModel(u *user.User) *models.UserModel {
	return &models.UserModel{
		ID:           u.ID,
		MessengerID:  u.MessengerID,
		DisplayName:  u.DisplayName,
		ReferralCode:   u.ReferralCode,
		PendingRefCode: u.PendingRefCode,
		ReferredBy:   u.ReferredBy,
		FirstSeenAt:  u.FirstSeenAt,
		LastSeenAt:   u.LastSeenAt,
		UTMSource:    u.UTMSource,
		UTMMedium:    u.UTMMedium,
		UTMCampaign:  u.UTMCampaign,
		HHExternalID: u.HHExternalID,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func userToDomain(m *models.UserModel) *user.User {
	return &user.User{
		ID:           m.ID,
		MessengerID:  m.MessengerID,
		DisplayName:  m.DisplayName,
		ReferralCode:   m.ReferralCode,
		PendingRefCode: m.PendingRefCode,
		ReferredBy:   m.ReferredBy,
		FirstSeenAt:  m.FirstSeenAt,
		LastSeenAt:   m.LastSeenAt,
		UTMSource:    m.UTMSource,
		UTMMedium:    m.UTMMedium,
		UTMCampaign:  m.UTMCampaign,
		HHExternalID: m.HHExternalID,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	model := userToModel(u)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("user: create: %w", err)
	}
	u.ID = model.ID
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	model := userToModel(u)
	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		return fmt.Errorf("user: update: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*user.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("user: get by id: %w", err)
	}
	return userToDomain(&model), nil
}

func (r *UserRepository) GetByMessengerID(ctx context.Context, messengerID string) (*user.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where("messenger_id = ?", messengerID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("user: get by messenger id: %w", err)
	}
	return userToDomain(&model), nil
}

func (r *UserRepository) GetByReferralCode(ctx context.Context, code string) (*user.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where("referral_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("user: get by referral code: %w", err)
	}
	return userToDomain(&model), nil
}

// UpsertSeen creates the user on first contact or touches LastSeenAt on
// repeat contact. It runs on the transaction carried by ctx, if any, and
// opens none of its own.
func (r *UserRepository) UpsertSeen(ctx context.Context, messengerID string) (*user.User, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var model models.UserModel
	err := tx.Where("messenger_id = ?", messengerID).First(&model).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		now := nowUTC()
		u := user.New(messengerID, now)
		created := userToModel(u)
		if err := tx.Create(created).Error; err != nil {
			return nil, fmt.Errorf("user: upsert create: %w", err)
		}
		return userToDomain(created), nil
	case err != nil:
		return nil, fmt.Errorf("user: upsert lookup: %w", err)
	default:
		now := nowUTC()
		if err := tx.Model(&model).Update("last_seen_at", now).Error; err != nil {
			return nil, fmt.Errorf("user: upsert touch: %w", err)
		}
		model.LastSeenAt = now
		return userToDomain(&model), nil
	}
}
