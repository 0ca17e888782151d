package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hhbot/dispatcher/internal/domain/application"
	"github.com/hhbot/dispatcher/internal/infrastructure/persistence/models"
	"github.com/hhbot/dispatcher/internal/shared/db"
)

// ApplicationRepository is the gorm-backed application.Repository implementation.
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository builds an ApplicationRepository.
func NewApplicationRepository(gdb *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: gdb}
}

func applicationToModel(a *application.Application) *models.ApplicationModel {
	return &models.ApplicationModel{
		ID:              a.ID(),
		UserID:          a.UserID(),
		VacancyID:       a.VacancyID(),
		ResumeID:        a.ResumeID(),
		CoverLetter:     a.CoverLetter(),
		Kind:            string(a.Kind()),
		Status:          string(a.Status()),
		AttemptCount:    a.AttemptCount(),
		NextTryAt:       a.NextTryAt(),
		ErrorCode:       a.ErrorCode(),
		ResponsePayload: a.ResponsePayload(),
		CampaignID:      a.CampaignID(),
		CreatedAt:       a.CreatedAt(),
		UpdatedAt:       a.UpdatedAt(),
		SentAt:          a.SentAt(),
	}
}

func applicationToDomain(m *models.ApplicationModel) *application.Application {
	return application.Reconstruct(
		m.ID, m.UserID, m.VacancyID, m.ResumeID, m.CoverLetter,
		application.Kind(m.Kind), application.Status(m.Status), m.AttemptCount,
		m.NextTryAt, m.ErrorCode, m.ResponsePayload, m.CampaignID,
		m.CreatedAt, m.UpdatedAt, m.SentAt,
	)
}

// EnqueueBatch inserts rows for userID under ON CONFLICT DO NOTHING on the
// (user_id, vacancy_id) uniqueness constraint, and reports how many new
// rows actually landed.
func (r *ApplicationRepository) EnqueueBatch(ctx context.Context, userID uint, kind application.Kind, campaignID *uint, rows []application.VacancyApplication, now time.Time) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	batch := make([]models.ApplicationModel, 0, len(rows))
	for _, row := range rows {
		a := application.New(userID, row.VacancyID, row.ResumeID, row.CoverLetter, kind, campaignID, now)
		batch = append(batch, *applicationToModel(a))
	}

	tx := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "vacancy_id"}},
			DoNothing: true,
		})
	result := tx.Create(&batch)
	if result.Error != nil {
		return 0, fmt.Errorf("application: enqueue batch: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// ClaimDue locks up to limit due rows FOR UPDATE SKIP LOCKED, ordered by id.
// Callers are expected to run this inside a short transaction.
func (r *ApplicationRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*application.Application, error) {
	var rows []models.ApplicationModel
	err := db.GetTxFromContext(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("(status = ? AND (next_try_at IS NULL OR next_try_at <= ?)) OR (status = ? AND next_try_at <= ?)",
			string(application.StatusQueued), now, string(application.StatusRetry), now).
		Order("id").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("application: claim due: %w", err)
	}
	out := make([]*application.Application, 0, len(rows))
	for i := range rows {
		out = append(out, applicationToDomain(&rows[i]))
	}
	return out, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, a *application.Application) error {
	model := applicationToModel(a)
	if err := db.GetTxFromContext(ctx, r.db).Save(model).Error; err != nil {
		return fmt.Errorf("application: update: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id uint) (*application.Application, error) {
	var model models.ApplicationModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("application: get by id: %w", err)
	}
	return applicationToDomain(&model), nil
}

// CountToday counts non-cancelled applications created for userID within
// [startUTC, endUTC) — the Quota Engine's single source of truth.
func (r *ApplicationRepository) CountToday(ctx context.Context, userID uint, startUTC, endUTC time.Time) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ApplicationModel{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, startUTC, endUTC).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("application: count today: %w", err)
	}
	return count, nil
}

// ExistingVacancyIDs returns the subset of candidateVacancyIDs the user has
// already applied to.
func (r *ApplicationRepository) ExistingVacancyIDs(ctx context.Context, userID uint, candidateVacancyIDs []int64) (map[int64]bool, error) {
	out := make(map[int64]bool, len(candidateVacancyIDs))
	if len(candidateVacancyIDs) == 0 {
		return out, nil
	}
	var ids []int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.ApplicationModel{}).
		Where("user_id = ? AND vacancy_id IN ?", userID, candidateVacancyIDs).
		Pluck("vacancy_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("application: existing vacancy ids: %w", err)
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
