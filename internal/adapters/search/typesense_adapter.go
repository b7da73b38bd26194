package search

import (
	"context"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense/api"
	"github.com/typesense/typesense-go/v2/typesense/api/pointer"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/repositories"
	tsclient "github.com/farmacliniq/fieldcrm/backend/internal/infrastructure/clients/typesense"
)

const collectionName = "doctors"

// TypesenseAdapter implements doctor search using Typesense. Documents
// are indexed on every push so the search view can lag the local cache
// between pushes.
type TypesenseAdapter struct {
	client *tsclient.Client
}

var _ repositories.DoctorSearchRepository = (*TypesenseAdapter)(nil)

// NewTypesenseAdapter creates a new Typesense adapter
func NewTypesenseAdapter(client *tsclient.Client) *TypesenseAdapter {
	return &TypesenseAdapter{client: client}
}

// InitSchema ensures the doctors collection exists
func (a *TypesenseAdapter) InitSchema(ctx context.Context) error {
	_, err := a.client.Client().Collection(collectionName).Retrieve(ctx)
	if err == nil {
		return nil // Collection exists
	}

	schema := &api.CollectionSchema{
		Name: collectionName,
		Fields: []api.Field{
			{Name: "id", Type: "string"},
			{Name: "owner_uid", Type: "string", Facet: pointer.True()},
			{Name: "name", Type: "string"},
			{Name: "specialty", Type: "string", Facet: pointer.True()},
			{Name: "location", Type: "string"},
			{Name: "status", Type: "string", Facet: pointer.True()},
			{Name: "last_contact_at", Type: "string", Optional: pointer.True()},
			{Name: "updated_at", Type: "int64"},
		},
		DefaultSortingField: pointer.String("updated_at"),
	}

	if _, err := a.client.Client().Collections().Create(ctx, schema); err != nil {
		return fmt.Errorf("failed to create typesense collection: %w", err)
	}

	return nil
}

// IndexBatch upserts doctors into the search collection
func (a *TypesenseAdapter) IndexBatch(ctx context.Context, uid string, doctors []*entities.Doctor) error {
	documents := make([]interface{}, 0, len(doctors))
	for _, doctor := range doctors {
		if doctor == nil {
			continue
		}
		documents = append(documents, map[string]interface{}{
			"id":              doctor.ID,
			"owner_uid":       uid,
			"name":            doctor.Name,
			"specialty":       doctor.Specialty,
			"location":        doctor.Location,
			"status":          string(doctor.Status),
			"last_contact_at": doctor.LastContactAt,
			"updated_at":      nowUnix(),
		})
	}
	if len(documents) == 0 {
		return nil
	}

	action := string(api.Upsert)
	params := &api.ImportDocumentsParams{Action: &action}
	if _, err := a.client.Client().Collection(collectionName).Documents().Import(ctx, documents, params); err != nil {
		return fmt.Errorf("failed to index doctors: %w", err)
	}

	return nil
}

func nowUnix() int64 {
	return time.Now().Unix()
}

// Search queries name, specialty and location scoped to one owner
func (a *TypesenseAdapter) Search(ctx context.Context, uid, query string, limit int) ([]*entities.Doctor, error) {
	if limit <= 0 {
		limit = 30
	}

	searchParams := &api.SearchCollectionParams{
		Q:        pointer.String(query),
		QueryBy:  pointer.String("name,specialty,location"),
		FilterBy: pointer.String(fmt.Sprintf("owner_uid:=%s", uid)),
		PerPage:  pointer.Int(limit),
	}

	result, err := a.client.Client().Collection(collectionName).Documents().Search(ctx, searchParams)
	if err != nil {
		return nil, fmt.Errorf("failed to search doctors: %w", err)
	}

	doctors := []*entities.Doctor{}
	if result.Hits == nil {
		return doctors, nil
	}
	for _, hit := range *result.Hits {
		doc := *hit.Document

		// Typesense returns map[string]interface{}; cast defensively and
		// rebuild a partial record. Full details live in the cache/store.
		doctor := &entities.Doctor{OwnerUID: uid}
		if val, ok := doc["id"].(string); ok {
			doctor.ID = val
		}
		if val, ok := doc["name"].(string); ok {
			doctor.Name = val
		}
		if val, ok := doc["specialty"].(string); ok {
			doctor.Specialty = val
		}
		if val, ok := doc["location"].(string); ok {
			doctor.Location = val
		}
		if val, ok := doc["status"].(string); ok {
			doctor.Status = entities.DoctorStatus(val)
		}
		if val, ok := doc["last_contact_at"].(string); ok {
			doctor.LastContactAt = val
		}

		doctors = append(doctors, doctor)
	}

	return doctors, nil
}

// Remove drops a doctor from the index
func (a *TypesenseAdapter) Remove(ctx context.Context, doctorID string) error {
	_, err := a.client.Client().Collection(collectionName).Document(doctorID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to remove doctor from index: %w", err)
	}
	return nil
}
