package referral

import "context"

// Repository is the typed DAO over the referrals table.
type Repository interface {
	// InsertIfAbsent inserts the edge under ON CONFLICT DO NOTHING, so
	// attachment is safe to re-run (invariant 6, scenario S6).
	InsertIfAbsent(ctx context.Context, r *Referral) error
	ListByUserID(ctx context.Context, userID uint) ([]*Referral, error)
	// CountByParentID counts descendants at each level below parentID,
	// keyed by level — as depended on by GET /referrals/me.
	CountByParentID(ctx context.Context, parentID uint) (map[int]int, error)
}
