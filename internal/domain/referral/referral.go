// Package referral models the referrer graph: a directed, acyclic edge
// table materialized up to 3 levels at link time.
package referral

import (
	"fmt"
	"time"
)

// MaxLevel is the deepest ancestor level materialized on link.
const MaxLevel = 3

// Referral is one (child, parent, level) edge, unique per triple.
type Referral struct {
	ID        uint
	UserID    uint
	ParentID  uint
	Level     int
	CreatedAt time.Time
}

// New validates the no-self-edge rule before construction.
func New(userID, parentID uint, level int, now time.Time) (*Referral, error) {
	if userID == parentID {
		return nil, fmt.Errorf("referral: self-edge rejected for user %d", userID)
	}
	if level < 1 || level > MaxLevel {
		return nil, fmt.Errorf("referral: level must be in [1, %d]", MaxLevel)
	}
	return &Referral{UserID: userID, ParentID: parentID, Level: level, CreatedAt: now}, nil
}
