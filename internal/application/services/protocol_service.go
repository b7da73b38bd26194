package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/repositories"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

// defaultProtocols is the starter library written to an empty account
var defaultProtocols = []entities.Protocol{
	{Title: "Protocolo Capilar Avançado", Category: "Tricologia", Description: "Linha completa para queda capilar"},
	{Title: "Protocolo Skin Care Clínico", Category: "Dermatologia", Description: "Rotina dermocosmética pós-procedimento"},
	{Title: "Protocolo Nutracêutico", Category: "Nutrologia", Description: "Suplementação de suporte"},
}

// ProtocolService manages each rep's protocol library
type ProtocolService struct {
	repo repositories.ProtocolRepository
	now  func() time.Time
}

// NewProtocolService creates a new protocol service
func NewProtocolService(repo repositories.ProtocolRepository) *ProtocolService {
	return &ProtocolService{repo: repo, now: time.Now}
}

// List returns the user's protocols ordered by title, seeding the
// starter library when the account has none yet.
func (s *ProtocolService) List(ctx context.Context, uid string) ([]*entities.Protocol, error) {
	if uid == "" {
		return nil, apperrors.NewUnauthenticatedError("listing protocols requires an authenticated user")
	}

	protocols, err := s.repo.ListByOwner(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(protocols) > 0 {
		return protocols, nil
	}

	for _, template := range defaultProtocols {
		protocol := template
		protocol.ID = uuid.New().String()
		protocol.OwnerUID = uid
		protocol.CreatedAt = s.now()
		if err := s.repo.Create(ctx, &protocol); err != nil {
			log.Warn().Str("uid", uid).Str("title", protocol.Title).Err(err).
				Msg("failed to seed starter protocol")
		}
	}

	return s.repo.ListByOwner(ctx, uid)
}

// Add creates a protocol in the user's library
func (s *ProtocolService) Add(ctx context.Context, uid string, protocol *entities.Protocol) (*entities.Protocol, error) {
	if uid == "" {
		return nil, apperrors.NewUnauthenticatedError("adding a protocol requires an authenticated user")
	}
	if protocol == nil || strings.TrimSpace(protocol.Title) == "" {
		return nil, apperrors.NewValidationError("protocol title is required")
	}

	protocol.ID = uuid.New().String()
	protocol.OwnerUID = uid
	protocol.CreatedAt = s.now()

	if err := s.repo.Create(ctx, protocol); err != nil {
		return nil, err
	}
	return protocol, nil
}

// Remove deletes a protocol from the user's library
func (s *ProtocolService) Remove(ctx context.Context, uid, protocolID string) error {
	if uid == "" {
		return apperrors.NewUnauthenticatedError("removing a protocol requires an authenticated user")
	}
	return s.repo.Delete(ctx, uid, protocolID)
}
