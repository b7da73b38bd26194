package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/repositories"
	"github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

// DoctorAdapter implements DoctorRepository over a JSONB document table.
// Each document is stored field-for-field as the client shipped it, with
// owner_uid stamped on write.
type DoctorAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDoctorAdapter creates a new doctor adapter
func NewDoctorAdapter(client *postgres.Client) repositories.DoctorRepository {
	return &DoctorAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// PullAll retrieves every doctor document owned by uid. No ordering is
// guaranteed; callers sort as needed.
func (a *DoctorAdapter) PullAll(ctx context.Context, uid string) ([]*entities.Doctor, error) {
	if uid == "" {
		return nil, apperrors.NewUnauthenticatedError("pull requires an authenticated user")
	}

	query, args, err := a.db.Select("doc").
		From("doctors").
		Where(goqu.Ex{"owner_uid": uid}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build pull query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewExternalError("failed to pull doctors", err)
	}
	defer rows.Close()

	var doctors []*entities.Doctor
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, apperrors.NewInternalError("failed to scan doctor document", err)
		}

		doctor := &entities.Doctor{}
		if err := json.Unmarshal(raw, doctor); err != nil {
			return nil, apperrors.NewInternalError("failed to decode doctor document", err)
		}
		doctors = append(doctors, doctor)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewExternalError("failed to pull doctors", err)
	}

	return doctors, nil
}

// UpsertBatch merge-upserts every doctor in one transaction. A single
// record failing to serialize aborts the whole batch with one error.
func (a *DoctorAdapter) UpsertBatch(ctx context.Context, uid string, doctors []*entities.Doctor) error {
	if uid == "" {
		return apperrors.NewUnauthenticatedError("push requires an authenticated user")
	}

	tx, err := a.client.DB().BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewExternalError("failed to open push transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()
	for _, doctor := range doctors {
		if doctor == nil {
			continue
		}

		doc, err := sanitizeDocument(doctor, uid)
		if err != nil {
			return apperrors.NewValidationError("doctor record cannot be serialized: " + err.Error())
		}

		query, args, err := a.db.Insert("doctors").
			Rows(goqu.Record{
				"owner_uid":  uid,
				"id":         doctor.ID,
				"doc":        doc,
				"updated_at": now,
			}).
			OnConflict(goqu.DoUpdate("owner_uid, id", goqu.Record{
				// Field merge, not replacement: fields absent from the
				// incoming document keep their remote values.
				"doc":        goqu.L("doctors.doc || excluded.doc"),
				"updated_at": now,
			})).
			ToSQL()
		if err != nil {
			return apperrors.NewInternalError("failed to build upsert query", err)
		}

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return apperrors.NewExternalError("failed to upsert doctor "+doctor.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewExternalError("failed to commit push transaction", err)
	}

	return nil
}

// Delete removes a single doctor document
func (a *DoctorAdapter) Delete(ctx context.Context, uid, doctorID string) error {
	if uid == "" {
		return apperrors.NewUnauthenticatedError("delete requires an authenticated user")
	}

	query, args, err := a.db.Delete("doctors").
		Where(goqu.Ex{"owner_uid": uid, "id": doctorID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewExternalError("failed to delete doctor", err)
	}

	return nil
}

// sanitizeDocument encodes a doctor for storage: the owner is stamped
// and JSON null fields are stripped, since the store rejects them and a
// null would clobber remote values under the merge operator.
func sanitizeDocument(doctor *entities.Doctor, uid string) ([]byte, error) {
	stamped := *doctor
	stamped.OwnerUID = uid

	raw, err := json.Marshal(&stamped)
	if err != nil {
		return nil, err
	}

	var doc map[string]interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	stripNulls(doc)

	return json.Marshal(doc)
}

func stripNulls(doc map[string]interface{}) {
	for key, value := range doc {
		switch v := value.(type) {
		case nil:
			delete(doc, key)
		case map[string]interface{}:
			stripNulls(v)
		case []interface{}:
			for _, item := range v {
				if nested, ok := item.(map[string]interface{}); ok {
					stripNulls(nested)
				}
			}
		}
	}
}
