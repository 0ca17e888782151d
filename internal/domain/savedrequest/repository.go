package savedrequest

import "context"

// Repository is the typed DAO over the saved_requests table.
type Repository interface {
	Create(ctx context.Context, sr *SavedRequest) error
	Update(ctx context.Context, sr *SavedRequest) error
	Delete(ctx context.Context, id, userID uint) error
	GetByID(ctx context.Context, id uint) (*SavedRequest, error)
	ListByUserID(ctx context.Context, userID uint) ([]*SavedRequest, error)
}
