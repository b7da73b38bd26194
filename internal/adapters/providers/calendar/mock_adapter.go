package calendar

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/providers"
)

// MockAdapter records events in memory for local development.
type MockAdapter struct {
	mu     sync.Mutex
	events []providers.CalendarEvent
}

// NewMockAdapter creates a mock calendar provider.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// CreateEvent stores the event and returns a deterministic-looking ID.
func (m *MockAdapter) CreateEvent(ctx context.Context, event *providers.CalendarEvent) (string, error) {
	if event.End.Before(event.Start) {
		return "", fmt.Errorf("invalid time range")
	}

	m.mu.Lock()
	m.events = append(m.events, *event)
	m.mu.Unlock()

	return fmt.Sprintf("mock-%d", time.Now().UnixNano()), nil
}

// Events returns a copy of everything created so far.
func (m *MockAdapter) Events() []providers.CalendarEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]providers.CalendarEvent, len(m.events))
	copy(out, m.events)
	return out
}
