package providers

import (
	"context"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

// DoctorCache is the per-user local cache of doctor records: the offline
// source of truth between explicit pushes. Implementations key each
// record list by UID and persist it as a single JSON-encoded value.
//
// Get returns found=false both for a missing key and for a cached value
// that no longer parses; corrupt cache data must never fail startup.
type DoctorCache interface {
	Get(ctx context.Context, uid string) (doctors []*entities.Doctor, found bool, err error)
	Put(ctx context.Context, uid string, doctors []*entities.Doctor) error
	Delete(ctx context.Context, uid string) error
}
