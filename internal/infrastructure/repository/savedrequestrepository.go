package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hhbot/dispatcher/internal/domain/savedrequest"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// SavedRequestRepository is the gorm-backed savedrequest.Repository implementation.
type SavedRequestRepository struct {
	db *gorm.DB
}

// NewSavedRequestRepository builds a SavedRequestRepository.
func NewSavedRequestRepository(gdb *gorm.DB) *SavedRequestRepository {
	return &SavedRequestRepository{db: gdb}
}

func savedRequestToModel(sr *savedrequest.SavedRequest) *models.SavedRequestModel {
	return &models.SavedRequestModel{
		ID:                  sr.ID,
		UserID:              sr.UserID,
		Title:               sr.Title,
		Query:               sr.Query,
		AreaID:              sr.AreaID,
		Employment:          joinCSV(sr.Employment),
		WorkSchedule:        joinCSV(sr.WorkSchedule),
		ProfessionalRoleIDs: joinCSV(sr.ProfessionalRoleIDs),
		SearchFieldScopes:   joinCSV(sr.SearchFieldScopes),
		DefaultCoverLetter:  sr.DefaultCoverLetter,
		CanonicalQS:         sr.CanonicalQS,
		CreatedAt:           sr.CreatedAt,
		UpdatedAt:           sr.UpdatedAt,
	}
}

func savedRequestToDomain(m *models.SavedRequestModel) *savedrequest.SavedRequest {
	return &savedrequest.SavedRequest{
		ID:                  m.ID,
		UserID:              m.UserID,
		Title:               m.Title,
		Query:               m.Query,
		AreaID:              m.AreaID,
		Employment:          splitCSV(m.Employment),
		WorkSchedule:        splitCSV(m.WorkSchedule),
		ProfessionalRoleIDs: splitCSV(m.ProfessionalRoleIDs),
		SearchFieldScopes:   splitCSV(m.SearchFieldScopes),
		DefaultCoverLetter:  m.DefaultCoverLetter,
		CanonicalQS:         m.CanonicalQS,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

func (r *SavedRequestRepository) Create(ctx context.Context, sr *savedrequest.SavedRequest) error {
	model := savedRequestToModel(sr)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		return fmt.Errorf("savedrequest: create: %w", err)
	}
	sr.ID = model.ID
	return nil
}

func (r *SavedRequestRepository) Update(ctx context.Context, sr *savedrequest.SavedRequest) error {
	model := savedRequestToModel(sr)
	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		return fmt.Errorf("savedrequest: update: %w", err)
	}
	return nil
}

func (r *SavedRequestRepository) Delete(ctx context.Context, id, userID uint) error {
	res := db.GetTxFromContext(ctx, r.db).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.SavedRequestModel{})
	if res.Error != nil {
		return fmt.Errorf("savedrequest: delete: %w", res.Error)
	}
	return nil
}

func (r *SavedRequestRepository) GetByID(ctx context.Context, id uint) (*savedrequest.SavedRequest, error) {
	var model models.SavedRequestModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("savedrequest: get by id: %w", err)
	}
	return savedRequestToDomain(&model), nil
}

func (r *SavedRequestRepository) ListByUserID(ctx context.Context, userID uint) ([]*savedrequest.SavedRequest, error) {
	var rows []models.SavedRequestModel
	if err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("savedrequest: list by user id: %w", err)
	}
	out := make([]*savedrequest.SavedRequest, 0, len(rows))
	for i := range rows {
		out = append(out, savedRequestToDomain(&rows[i]))
	}
	return out, nil
}
