package repositories

import (
	"context"
	"time"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

// AccountRepository manages the per-user account documents
type AccountRepository interface {
	// GetByUID retrieves an account, or a NOT_FOUND error
	GetByUID(ctx context.Context, uid string) (*entities.Account, error)

	// TouchLastSync upserts the account document and stamps last_sync_at
	TouchLastSync(ctx context.Context, uid string, at time.Time) error
}
