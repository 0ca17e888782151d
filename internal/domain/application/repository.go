package application

import (
	"context"
	"time"
)

// VacancyApplication is one row of a batch enqueue request.
type VacancyApplication struct {
	VacancyID   int64
	ResumeID    string
	CoverLetter *string
}

// Repository is the typed DAO over the applications table.
type Repository interface {
	// EnqueueBatch atomically inserts rows for userID, skipping any vacancy
	// id already present for that user (user_id, vacancy_id uniqueness).
	// Returns the number of rows actually inserted.
	EnqueueBatch(ctx context.Context, userID uint, kind Kind, campaignID *uint, rows []VacancyApplication, now time.Time) (inserted int, err error)

	// ClaimDue locks and returns up to limit rows in {queued with
	// next_try_at<=now or null, retry with next_try_at<=now}, ordered by id,
	// skipping rows locked by other workers (SKIP LOCKED semantics).
	ClaimDue(ctx context.Context, now time.Time, limit int) ([]*Application, error)

	Update(ctx context.Context, a *Application) error
	GetByID(ctx context.Context, id uint) (*Application, error)

	// CountToday counts non-cancelled applications created for userID within
	// [startUTC, endUTC) — the Quota Engine's single source of truth.
	CountToday(ctx context.Context, userID uint, startUTC, endUTC time.Time) (int64, error)

	// ExistingVacancyIDs returns the subset of candidateVacancyIDs the user
	// has already applied to, for client-side dedup before EnqueueBatch.
	ExistingVacancyIDs(ctx context.Context, userID uint, candidateVacancyIDs []int64) (map[int64]bool, error)
}
