package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/providers"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/repositories"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

// RosterService handles doctor roster mutations. Every mutation applies
// to the local cache synchronously and nothing else; remote propagation
// is a separate, explicit push through the sync service. Keeping the
// two phases apart lets each fail and retry independently.
type RosterService struct {
	cache      providers.DoctorCache
	doctorRepo repositories.DoctorRepository
	searchRepo repositories.DoctorSearchRepository
	now        func() time.Time
}

// NewRosterService creates a new roster service
func NewRosterService(
	cache providers.DoctorCache,
	doctorRepo repositories.DoctorRepository,
	searchRepo repositories.DoctorSearchRepository,
) *RosterService {
	return &RosterService{
		cache:      cache,
		doctorRepo: doctorRepo,
		searchRepo: searchRepo,
		now:        time.Now,
	}
}

// NewRosterServiceWithClock creates a roster service with a fixed clock
func NewRosterServiceWithClock(
	cache providers.DoctorCache,
	doctorRepo repositories.DoctorRepository,
	searchRepo repositories.DoctorSearchRepository,
	now func() time.Time,
) *RosterService {
	s := NewRosterService(cache, doctorRepo, searchRepo)
	s.now = now
	return s
}

// List returns the user's cached roster, empty when nothing is cached
func (s *RosterService) List(ctx context.Context, uid string) ([]*entities.Doctor, error) {
	if uid == "" {
		return nil, apperrors.NewUnauthenticatedError("listing doctors requires an authenticated user")
	}

	doctors, found, err := s.cache.Get(ctx, uid)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read local doctor cache", err)
	}
	if !found {
		return []*entities.Doctor{}, nil
	}
	return doctors, nil
}

// Create adds a doctor to the roster with a fresh identifier
func (s *RosterService) Create(ctx context.Context, uid string, doctor *entities.Doctor) (*entities.Doctor, error) {
	if uid == "" {
		return nil, apperrors.NewUnauthenticatedError("creating a doctor requires an authenticated user")
	}
	if doctor == nil || strings.TrimSpace(doctor.Name) == "" {
		return nil, apperrors.NewValidationError("doctor name is required")
	}

	doctors, _, err := s.cache.Get(ctx, uid)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read local doctor cache", err)
	}

	doctor.ID = uuid.New().String()
	doctor.OwnerUID = uid
	if doctor.Status == "" {
		doctor.Status = entities.DoctorStatusProspecting
	}
	if doctor.LastContactAt == "" {
		doctor.LastContactAt = s.now().Format(time.RFC3339)
	}
	if doctor.VisitLogs == nil {
		doctor.VisitLogs = []entities.VisitLog{}
	}

	doctors = append([]*entities.Doctor{doctor}, doctors...)
	if err := s.cache.Put(ctx, uid, doctors); err != nil {
		return nil, apperrors.NewInternalError("failed to write local doctor cache", err)
	}

	return doctor, nil
}

// Update merges non-empty fields of patch into the identified doctor.
// Visit logs are not touched here; AddVisitLog owns them.
func (s *RosterService) Update(ctx context.Context, uid, doctorID string, patch *entities.Doctor) (*entities.Doctor, error) {
	if uid == "" {
		return nil, apperrors.NewUnauthenticatedError("updating a doctor requires an authenticated user")
	}
	if patch == nil {
		return nil, apperrors.NewValidationError("update payload is required")
	}

	doctors, found, err := s.cache.Get(ctx, uid)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read local doctor cache", err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("doctor not found")
	}

	var updated *entities.Doctor
	for _, doctor := range doctors {
		if doctor == nil || doctor.ID != doctorID {
			continue
		}
		if patch.Name != "" {
			doctor.Name = patch.Name
		}
		if patch.Specialty != "" {
			doctor.Specialty = patch.Specialty
		}
		if patch.Phone != "" {
			doctor.Phone = patch.Phone
		}
		if patch.Location != "" {
			doctor.Location = patch.Location
		}
		if patch.Status != "" {
			doctor.Status = patch.Status
		}
		if patch.NextVisitAt != "" {
			doctor.NextVisitAt = patch.NextVisitAt
		}
		if patch.Tags != nil {
			doctor.Tags = patch.Tags
		}
		updated = doctor
		break
	}
	if updated == nil {
		return nil, apperrors.NewNotFoundError("doctor not found")
	}

	if err := s.cache.Put(ctx, uid, doctors); err != nil {
		return nil, apperrors.NewInternalError("failed to write local doctor cache", err)
	}
	return updated, nil
}

// AddVisitLog prepends a log entry to the doctor and bumps the
// last-contact timestamp to now. Logs are append-only.
func (s *RosterService) AddVisitLog(ctx context.Context, uid, doctorID string, visitLog entities.VisitLog) (*entities.Doctor, error) {
	if uid == "" {
		return nil, apperrors.NewUnauthenticatedError("logging a visit requires an authenticated user")
	}
	if strings.TrimSpace(visitLog.Note) == "" {
		return nil, apperrors.NewValidationError("visit log note is required")
	}

	doctors, found, err := s.cache.Get(ctx, uid)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read local doctor cache", err)
	}
	if !found {
		return nil, apperrors.NewNotFoundError("doctor not found")
	}

	now := s.now().Format(time.RFC3339)
	visitLog.ID = uuid.New().String()
	if visitLog.Timestamp == "" {
		visitLog.Timestamp = now
	}

	var updated *entities.Doctor
	for _, doctor := range doctors {
		if doctor == nil || doctor.ID != doctorID {
			continue
		}
		doctor.VisitLogs = append([]entities.VisitLog{visitLog}, doctor.VisitLogs...)
		doctor.LastContactAt = now
		updated = doctor
		break
	}
	if updated == nil {
		return nil, apperrors.NewNotFoundError("doctor not found")
	}

	if err := s.cache.Put(ctx, uid, doctors); err != nil {
		return nil, apperrors.NewInternalError("failed to write local doctor cache", err)
	}
	return updated, nil
}

// Remove drops a doctor from the roster. The remote document and the
// search entry are deleted best-effort; the local removal stands even
// when either fails, otherwise the record would resurrect on the next
// pull from a store we could not reach anyway.
func (s *RosterService) Remove(ctx context.Context, uid, doctorID string) error {
	if uid == "" {
		return apperrors.NewUnauthenticatedError("removing a doctor requires an authenticated user")
	}

	doctors, found, err := s.cache.Get(ctx, uid)
	if err != nil {
		return apperrors.NewInternalError("failed to read local doctor cache", err)
	}
	if !found {
		return apperrors.NewNotFoundError("doctor not found")
	}

	filtered := make([]*entities.Doctor, 0, len(doctors))
	removed := false
	for _, doctor := range doctors {
		if doctor != nil && doctor.ID == doctorID {
			removed = true
			continue
		}
		filtered = append(filtered, doctor)
	}
	if !removed {
		return apperrors.NewNotFoundError("doctor not found")
	}

	if err := s.cache.Put(ctx, uid, filtered); err != nil {
		return apperrors.NewInternalError("failed to write local doctor cache", err)
	}

	if s.doctorRepo != nil {
		if err := s.doctorRepo.Delete(ctx, uid, doctorID); err != nil {
			log.Warn().Str("uid", uid).Str("doctor_id", doctorID).Err(err).
				Msg("failed to delete remote doctor document")
		}
	}
	if s.searchRepo != nil {
		if err := s.searchRepo.Remove(ctx, doctorID); err != nil {
			log.Warn().Str("doctor_id", doctorID).Err(err).Msg("failed to remove doctor from search index")
		}
	}

	return nil
}
