package calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/providers"
)

// GoogleAdapter implements CalendarProvider against the Google Calendar
// v3 events endpoint of the user's primary calendar.
type GoogleAdapter struct {
	accessToken string
	client      *http.Client
	baseURL     string
}

// NewGoogleAdapter creates a new Google Calendar adapter
func NewGoogleAdapter(accessToken string) providers.CalendarProvider {
	return &GoogleAdapter{
		accessToken: accessToken,
		client:      &http.Client{Timeout: 10 * time.Second},
		baseURL:     "https://www.googleapis.com/calendar/v3",
	}
}

type googleEventPayload struct {
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Location    string          `json:"location,omitempty"`
	Start       googleEventTime `json:"start"`
	End         googleEventTime `json:"end"`
	Reminders   googleReminders `json:"reminders"`
}

type googleEventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googleReminders struct {
	UseDefault bool                     `json:"useDefault"`
	Overrides  []googleReminderOverride `json:"overrides,omitempty"`
}

type googleReminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

// CreateEvent creates the event on the primary calendar and returns its
// external ID.
func (a *GoogleAdapter) CreateEvent(ctx context.Context, event *providers.CalendarEvent) (string, error) {
	if a.accessToken == "" {
		return "", fmt.Errorf("google calendar access token is not configured")
	}

	payload := googleEventPayload{
		Summary:     event.Summary,
		Description: event.Description,
		Location:    event.Location,
		Start: googleEventTime{
			DateTime: event.Start.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
		End: googleEventTime{
			DateTime: event.End.Format(time.RFC3339),
			TimeZone: event.TimeZone,
		},
		Reminders: googleReminders{
			UseDefault: false,
			Overrides: []googleReminderOverride{
				{Method: "popup", Minutes: event.ReminderMinutes},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode calendar event: %w", err)
	}

	url := a.baseURL + "/calendars/primary/events"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+a.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		if errBody.Error.Message != "" {
			return "", fmt.Errorf("google calendar error: %s", errBody.Error.Message)
		}
		return "", fmt.Errorf("google calendar error: status %d", resp.StatusCode)
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("failed to decode calendar response: %w", err)
	}

	return created.ID, nil
}
