// Package resume caches remote résumé summaries owned by a linked User.
package resume

import "time"

// Resume is a snapshot of one remote résumé. Refreshed at link-time and on
// explicit sync; the external id is unique per owning user.
type Resume struct {
	ID            uint
	UserID        uint
	ExternalID    string
	Title         string
	Area          string
	Visibility    string
	LastUpdatedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
