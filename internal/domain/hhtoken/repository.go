package hhtoken

import "context"

// Repository is the typed DAO over the hh_tokens table.
type Repository interface {
	Upsert(ctx context.Context, t *HHToken) error
	GetByUserID(ctx context.Context, userID uint) (*HHToken, error)
	DeleteByUserID(ctx context.Context, userID uint) error
}
