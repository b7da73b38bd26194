package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/providers"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

const (
	visitDuration        = time.Hour
	visitReminderMinutes = 30
)

// VisitService schedules follow-up visits: it books a calendar slot
// through the configured provider and records the confirmation as a
// visit log on the doctor.
type VisitService struct {
	roster   *RosterService
	calendar providers.CalendarProvider
	timeZone string
}

// NewVisitService creates a new visit service
func NewVisitService(roster *RosterService, calendar providers.CalendarProvider, timeZone string) *VisitService {
	return &VisitService{
		roster:   roster,
		calendar: calendar,
		timeZone: timeZone,
	}
}

// Schedule books a one-hour visit at startAt for the identified doctor,
// with a popup reminder half an hour before, and stamps the doctor's
// next-visit field. A calendar failure is external and leaves the
// roster untouched.
func (s *VisitService) Schedule(ctx context.Context, uid, doctorID string, startAt time.Time) (*entities.Doctor, error) {
	if uid == "" {
		return nil, apperrors.NewUnauthenticatedError("scheduling a visit requires an authenticated user")
	}

	doctors, err := s.roster.List(ctx, uid)
	if err != nil {
		return nil, err
	}

	var doctor *entities.Doctor
	for _, d := range doctors {
		if d != nil && d.ID == doctorID {
			doctor = d
			break
		}
	}
	if doctor == nil {
		return nil, apperrors.NewNotFoundError("doctor not found")
	}

	event := &providers.CalendarEvent{
		Summary:         fmt.Sprintf("Visita: %s", doctor.Name),
		Description:     fmt.Sprintf("Visita comercial com %s (%s)", doctor.Name, doctor.Specialty),
		Location:        doctor.Location,
		Start:           startAt,
		End:             startAt.Add(visitDuration),
		ReminderMinutes: visitReminderMinutes,
		TimeZone:        s.timeZone,
	}

	eventID, err := s.calendar.CreateEvent(ctx, event)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to create calendar event", err)
	}
	log.Info().Str("uid", uid).Str("doctor_id", doctorID).Str("event_id", eventID).
		Msg("visit scheduled")

	updated, err := s.roster.AddVisitLog(ctx, uid, doctorID, entities.VisitLog{
		Note: fmt.Sprintf("Visita agendada para %s", startAt.Format("02/01/2006 15:04")),
		Kind: entities.VisitLogKindInPerson,
	})
	if err != nil {
		return nil, err
	}

	updated.NextVisitAt = startAt.Format(time.RFC3339)
	if _, err := s.roster.Update(ctx, uid, doctorID, &entities.Doctor{NextVisitAt: updated.NextVisitAt}); err != nil {
		log.Warn().Str("uid", uid).Str("doctor_id", doctorID).Err(err).
			Msg("failed to stamp next visit")
	}

	return updated, nil
}
