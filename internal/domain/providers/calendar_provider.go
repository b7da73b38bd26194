package providers

import (
	"context"
	"time"
)

// CalendarEvent is the payload handed to the external calendar when a
// visit is scheduled.
type CalendarEvent struct {
	Summary     string
	Description string
	Location    string
	Start       time.Time
	End         time.Time
	// ReminderMinutes configures a popup alert before the event start
	ReminderMinutes int
	TimeZone        string
}

// CalendarProvider pushes scheduled visits into an external calendar
// (Google Calendar in production, a mock in development).
type CalendarProvider interface {
	// CreateEvent creates the event and returns its external ID
	CreateEvent(ctx context.Context, event *CalendarEvent) (string, error)
}
