package repositories

import (
	"context"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

// DoctorRepository defines the remote, authoritative document collection
// of doctor records, partitioned by owner UID. PullAll gives no ordering
// guarantee; callers sort. UpsertBatch merges fields into any existing
// document rather than replacing it, and applies all records in one
// transaction.
type DoctorRepository interface {
	// PullAll retrieves every doctor document owned by uid
	PullAll(ctx context.Context, uid string) ([]*entities.Doctor, error)

	// UpsertBatch writes doctors as merge-upserts keyed by record ID,
	// stamping uid as the owner of each document
	UpsertBatch(ctx context.Context, uid string, doctors []*entities.Doctor) error

	// Delete removes a single doctor document
	Delete(ctx context.Context, uid, doctorID string) error
}

// DoctorSearchRepository indexes doctor records for full-text lookup
type DoctorSearchRepository interface {
	// IndexBatch upserts doctors into the search collection
	IndexBatch(ctx context.Context, uid string, doctors []*entities.Doctor) error

	// Search queries name, specialty and location scoped to one owner
	Search(ctx context.Context, uid, query string, limit int) ([]*entities.Doctor, error)

	// Remove drops a doctor from the index
	Remove(ctx context.Context, doctorID string) error
}
