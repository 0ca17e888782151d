package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hhbot/dispatcher/internal/domain/application"
	"github.com/hhbot/dispatcher/internal/domain/campaign"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// CampaignRepository is the gorm-backed campaign.Repository implementation.
type CampaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository builds a CampaignRepository.
func NewCampaignRepository(gdb *gorm.DB) *CampaignRepository {
	return &CampaignRepository{db: gdb}
}

func campaignToModel(c *campaign.Campaign) *models.CampaignModel {
	return &models.CampaignModel{
		ID:               c.ID(),
		UserID:           c.UserID(),
		Title:            c.Title(),
		SavedRequestID:   c.SavedRequestID(),
		ResumeExternalID: c.ResumeExternalID(),
		Status:           string(c.Status()),
		DailyLimit:       c.DailyLimit(),
		SentToday:        c.SentToday(),
		SentTotal:        c.SentTotal(),
		StartedAt:        c.StartedAt(),
		StoppedAt:        c.StoppedAt(),
		LastPolledAt:     c.LastPolledAt(),
		CreatedAt:        c.CreatedAt(),
		UpdatedAt:        c.UpdatedAt(),
	}
}

func campaignToDomain(m *models.CampaignModel) *campaign.Campaign {
	return campaign.Reconstruct(
		m.ID, m.UserID, m.Title, m.SavedRequestID, m.ResumeExternalID,
		campaign.Status(m.Status), m.DailyLimit, m.SentToday, m.SentTotal,
		m.StartedAt, m.StoppedAt, m.LastPolledAt, m.CreatedAt, m.UpdatedAt,
	)
}

func (r *CampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	model := campaignToModel(c)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("campaign: create: %w", err)
	}
	c.SetID(model.ID)
	return nil
}

func (r *CampaignRepository) Update(ctx context.Context, c *campaign.Campaign) error {
	model := campaignToModel(c)
	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		return fmt.Errorf("campaign: update: %w", err)
	}
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id, userID uint) error {
	res := db.GetTxFromContext(ctx, r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.CampaignModel{})
	if res.Error != nil {
		return fmt.Errorf("campaign: delete: %w", res.Error)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id uint) (*campaign.Campaign, error) {
	var model models.CampaignModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("campaign: get by id: %w", err)
	}
	return campaignToDomain(&model), nil
}

func (r *CampaignRepository) ListByUserID(ctx context.Context, userID uint) ([]*campaign.Campaign, error) {
	var rows []models.CampaignModel
	if err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("campaign: list by user id: %w", err)
	}
	out := make([]*campaign.Campaign, 0, len(rows))
	for i := range rows {
		out = append(out, campaignToDomain(&rows[i]))
	}
	return out, nil
}

func (r *CampaignRepository) GetActiveByUserID(ctx context.Context, userID uint) (*campaign.Campaign, error) {
	var model models.CampaignModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, string(campaign.StatusActive)).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("campaign: get active by user id: %w", err)
	}
	return campaignToDomain(&model), nil
}

func (r *CampaignRepository) ListActive(ctx context.Context) ([]*campaign.Campaign, error) {
	var rows []models.CampaignModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("status = ?", string(campaign.StatusActive)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("campaign: list active: %w", err)
	}
	out := make([]*campaign.Campaign, 0, len(rows))
	for i := range rows {
		out = append(out, campaignToDomain(&rows[i]))
	}
	return out, nil
}

func (r *CampaignRepository) LatestAutoApplicationCreatedAt(ctx context.Context, campaignID uint) (time.Time, error) {
	var model models.ApplicationModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("campaign_id = ? AND kind = ?", campaignID, string(application.KindAuto)).
		Order("created_at DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("campaign: latest auto application: %w", err)
	}
	return model.CreatedAt, nil
}
