package entities

import (
	"time"
)

// Account is the per-user document that anchors a rep's remote data.
// Doctors and protocols hang off it, partitioned by UID.
type Account struct {
	UID         string    `json:"uid" db:"uid"`
	DisplayName string    `json:"display_name" db:"display_name"`
	LastSyncAt  time.Time `json:"last_sync_at" db:"last_sync_at"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
