package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hhbot/dispatcher/internal/domain/resume"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// ResumeRepository is the gorm-backed resume.Repository implementation.
type ResumeRepository struct {
	db *gorm.DB
}

// NewResumeRepository builds a ResumeRepository.
func NewResumeRepository(gdb *gorm.DB) *ResumeRepository {
	return &ResumeRepository{db: gdb}
}

func resumeToModel(r *resume.Resume) *models.ResumeModel {
	return &models.ResumeModel{
		ID:            r.ID,
		UserID:        r.UserID,
		ExternalID:    r.ExternalID,
		Title:         r.Title,
		Area:          r.Area,
		Visibility:    r.Visibility,
		LastUpdatedAt: r.LastUpdatedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func resumeToDomain(m *models.ResumeModel) *resume.Resume {
	return &resume.Resume{
		ID:            m.ID,
		UserID:        m.UserID,
		ExternalID:    m.ExternalID,
		Title:         m.Title,
		Area:          m.Area,
		Visibility:    m.Visibility,
		LastUpdatedAt: m.LastUpdatedAt,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// UpsertAll inserts or updates a user's résumés, keyed by external id, via
// an ON CONFLICT upsert so unchanged rows do not regenerate primary keys.
// Stored résumés that are absent from the list are left in place.
func (r *ResumeRepository) UpsertAll(ctx context.Context, userID uint, resumes []*resume.Resume) error {
	if len(resumes) == 0 {
		return nil
	}
	now := nowUTC()
	rows := make([]models.ResumeModel, 0, len(resumes))
	for _, rs := range resumes {
		rs.UserID = userID
		if rs.CreatedAt.IsZero() {
			rs.CreatedAt = now
		}
		rs.UpdatedAt = now
		rows = append(rows, *resumeToModel(rs))
	}

	tx := db.GetTxFromContext(ctx, r.db)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "external_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"title", "area", "visibility", "last_updated_at", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("resume: upsert all: %w", err)
	}
	return nil
}

func (r *ResumeRepository) ListByUserID(ctx context.Context, userID uint) ([]*resume.Resume, error) {
	var rows []models.ResumeModel
	if err := db.GetTxFromContext(ctx, r.db).Where("user_id = ?", userID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("resume: list by user id: %w", err)
	}
	out := make([]*resume.Resume, 0, len(rows))
	for i := range rows {
		out = append(out, resumeToDomain(&rows[i]))
	}
	return out, nil
}

func (r *ResumeRepository) BelongsToUser(ctx context.Context, userID uint, externalID string) (bool, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ResumeModel{}).
		Where("user_id = ? AND external_id = ?", userID, externalID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("resume: belongs to user: %w", err)
	}
	return count > 0, nil
}
