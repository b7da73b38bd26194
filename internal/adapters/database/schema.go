package database

import (
	"context"
	"fmt"

	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/postgres"
)

// EnsureSchema creates the storage tables when they do not exist yet.
// The doctor collection is a JSONB document store keyed by owner and
// record id; no schema is enforced on the document body beyond what the
// adapters sanitize before writing.
func EnsureSchema(ctx context.Context, client *postgres.Client) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			uid           TEXT PRIMARY KEY,
			display_name  TEXT NOT NULL DEFAULT '',
			last_sync_at  TIMESTAMPTZ,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS doctors (
			owner_uid   TEXT NOT NULL,
			id          TEXT NOT NULL,
			doc         JSONB NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
			PRIMARY KEY (owner_uid, id)
		)`,
		`CREATE TABLE IF NOT EXISTS protocols (
			id           TEXT PRIMARY KEY,
			owner_uid    TEXT NOT NULL,
			title        TEXT NOT NULL,
			category     TEXT NOT NULL DEFAULT '',
			description  TEXT NOT NULL DEFAULT '',
			pdf_url      TEXT NOT NULL DEFAULT '',
			cover_url    TEXT NOT NULL DEFAULT '',
			created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_protocols_owner ON protocols (owner_uid)`,
	}

	for _, stmt := range statements {
		if _, err := client.DB().ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}

	return nil
}
