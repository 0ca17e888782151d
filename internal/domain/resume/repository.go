package resume

import "context"

// Repository is the typed DAO over the resumes table.
type Repository interface {
	// UpsertAll replaces the résumé set for a user with the given snapshots,
	// keyed by external id.
	UpsertAll(ctx context.Context, userID uint, resumes []*Resume) error
	ListByUserID(ctx context.Context, userID uint) ([]*Resume, error)
	// BelongsToUser reports whether externalID is among userID's cached résumés.
	BelongsToUser(ctx context.Context, userID uint, externalID string) (bool, error)
}
