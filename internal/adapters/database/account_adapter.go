package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/repositories"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

// AccountAdapter implements the AccountRepository interface
type AccountAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAccountAdapter creates a new account adapter
func NewAccountAdapter(client *postgres.Client) repositories.AccountRepository {
	return &AccountAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByUID retrieves an account by UID
func (a *AccountAdapter) GetByUID(ctx context.Context, uid string) (*entities.Account, error) {
	query, args, err := a.db.Select("uid", "display_name", "last_sync_at", "created_at").
		From("accounts").
		Where(goqu.Ex{"uid": uid}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	account := &entities.Account{}
	var lastSync sql.NullTime

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&account.UID,
		&account.DisplayName,
		&lastSync,
		&account.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("account %s not found", uid))
	}
	if err != nil {
		return nil, apperrors.NewExternalError("failed to get account", err)
	}

	if lastSync.Valid {
		account.LastSyncAt = lastSync.Time
	}

	return account, nil
}

// TouchLastSync upserts the account document and stamps last_sync_at
func (a *AccountAdapter) TouchLastSync(ctx context.Context, uid string, at time.Time) error {
	if uid == "" {
		return apperrors.NewUnauthenticatedError("sync requires an authenticated user")
	}

	query, args, err := a.db.Insert("accounts").
		Rows(goqu.Record{
			"uid":          uid,
			"last_sync_at": at,
			"created_at":   at,
		}).
		OnConflict(goqu.DoUpdate("uid", goqu.Record{
			"last_sync_at": at,
		})).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build upsert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewExternalError("failed to update account sync time", err)
	}

	return nil
}
