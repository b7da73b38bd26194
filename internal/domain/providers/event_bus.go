package providers

import (
	"context"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

// EventBus broadcasts sync events to interested subscribers
type EventBus interface {
	// Publish delivers an event to all subscribers of a channel
	Publish(ctx context.Context, channel string, event *entities.SyncEvent) error

	// Subscribe returns a channel of events; it is closed when ctx ends
	Subscribe(ctx context.Context, channel string) (<-chan *entities.SyncEvent, error)

	// Unsubscribe tears down a channel subscription
	Unsubscribe(ctx context.Context, channel string) error

	// Close shuts the bus down
	Close() error
}
