package campaign

import (
	"context"
	"time"
)

// ErrActiveCampaignExists signals a violation of the at-most-one-active-
// campaign-per-user invariant, whether detected by a pre-check or by the
// store's partial unique index.
var ErrActiveCampaignExists = repositoryConflictError("an active campaign already exists for this user")

type repositoryConflictError string

func (e repositoryConflictError) Error() string { return string(e) }

// Repository is the typed DAO over the campaigns table.
type Repository interface {
	Create(ctx context.Context, c *Campaign) error
	Update(ctx context.Context, c *Campaign) error
	Delete(ctx context.Context, id, userID uint) error
	GetByID(ctx context.Context, id uint) (*Campaign, error)
	ListByUserID(ctx context.Context, userID uint) ([]*Campaign, error)
	GetActiveByUserID(ctx context.Context, userID uint) (*Campaign, error)
	ListActive(ctx context.Context) ([]*Campaign, error)
	// LatestAutoApplicationCreatedAt returns the most recent created_at among
	// this campaign's kind=auto applications, or zero time if none exist.
	LatestAutoApplicationCreatedAt(ctx context.Context, campaignID uint) (time.Time, error)
}
