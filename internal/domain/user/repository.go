package user

import "context"

// Repository is the typed DAO over the users table.
type Repository interface {
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByMessengerID(ctx context.Context, messengerID string) (*User, error)
	GetByReferralCode(ctx context.Context, code string) (*User, error)
	// UpsertSeen creates the user on first contact or touches LastSeenAt on
	// repeat contact, returning the resulting row.
	UpsertSeen(ctx context.Context, messengerID string) (*User, error)
}
