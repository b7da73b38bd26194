package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/repositories"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

// ProtocolAdapter implements the ProtocolRepository interface
type ProtocolAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProtocolAdapter creates a new protocol adapter
func NewProtocolAdapter(client *postgres.Client) repositories.ProtocolRepository {
	return &ProtocolAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// ListByOwner retrieves a user's protocols ordered by title
func (a *ProtocolAdapter) ListByOwner(ctx context.Context, uid string) ([]*entities.Protocol, error) {
	query, args, err := a.db.Select(
		"id", "owner_uid", "title", "category", "description",
		"pdf_url", "cover_url", "created_at",
	).From("protocols").
		Where(goqu.Ex{"owner_uid": uid}).
		Order(goqu.I("title").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to list protocols", err)
	}
	defer rows.Close()

	var protocols []*entities.Protocol
	for rows.Next() {
		protocol := &entities.Protocol{}
		err := rows.Scan(
			&protocol.ID,
			&protocol.OwnerUID,
			&protocol.Title,
			&protocol.Category,
			&protocol.Description,
			&protocol.PDFURL,
			&protocol.CoverURL,
			&protocol.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan protocol", err)
		}
		protocols = append(protocols, protocol)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to list protocols", err)
	}

	return protocols, nil
}

// Create adds a protocol to the library
func (a *ProtocolAdapter) Create(ctx context.Context, protocol *entities.Protocol) error {
	query, args, err := a.db.Insert("protocols").
		Rows(goqu.Record{
			"id":          protocol.ID,
			"owner_uid":   protocol.OwnerUID,
			"title":       protocol.Title,
			"category":    protocol.Category,
			"description": protocol.Description,
			"pdf_url":     protocol.PDFURL,
			"cover_url":   protocol.CoverURL,
			"created_at":  protocol.CreatedAt,
		}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewExternalError("failed to create protocol", err)
	}

	return nil
}

// Delete removes a protocol from the library
func (a *ProtocolAdapter) Delete(ctx context.Context, uid, protocolID string) error {
	query, args, err := a.db.Delete("protocols").
		Where(goqu.Ex{"owner_uid": uid, "id": protocolID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewExternalError("failed to delete protocol", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("protocol " + protocolID + " not found")
	}

	return nil
}
