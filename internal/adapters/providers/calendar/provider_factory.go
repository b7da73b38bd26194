package calendar

import (
	"github.com/rs/zerolog/log"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/providers"
	"github.com/farmacliniq/fieldcrm/backend/pkg/config"
)

// NewCalendarProvider picks the configured provider, falling back to the
// mock when no real provider can run.
func NewCalendarProvider(cfg *config.CalendarConfig) providers.CalendarProvider {
	switch cfg.Provider {
	case "google":
		if cfg.AccessToken == "" {
			log.Warn().Msg("CALENDAR_ACCESS_TOKEN is not set, using mock calendar provider")
			return NewMockAdapter()
		}
		return NewGoogleAdapter(cfg.AccessToken)
	default:
		return NewMockAdapter()
	}
}
