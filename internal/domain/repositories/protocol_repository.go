package repositories

import (
	"context"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

// ProtocolRepository stores each rep's protocol library
type ProtocolRepository interface {
	// ListByOwner retrieves a user's protocols ordered by title
	ListByOwner(ctx context.Context, uid string) ([]*entities.Protocol, error)

	// Create adds a protocol to the library
	Create(ctx context.Context, protocol *entities.Protocol) error

	// Delete removes a protocol from the library
	Delete(ctx context.Context, uid, protocolID string) error
}
