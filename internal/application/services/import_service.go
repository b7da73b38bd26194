package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/providers"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

// Column defaults applied to imported rows missing the field
const (
	importDefaultLocation = "N/A"
	importDefaultTag      = "Novo"
)

// ImportService loads doctor rosters from spreadsheets handed over by
// the sales operation. Imported records land in the local cache like
// any other local edit; they reach the remote store on the next push.
type ImportService struct {
	cache providers.DoctorCache
	now   func() time.Time
}

// NewImportService creates a new import service
func NewImportService(cache providers.DoctorCache) *ImportService {
	return &ImportService{cache: cache, now: time.Now}
}

// headerIndex maps known header spellings to column positions. Matching
// is case-insensitive; sheets arrive with Nome, NOME or nome depending
// on who exported them.
func headerIndex(header []string) map[string]int {
	index := make(map[string]int)
	for i, cell := range header {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "nome", "name":
			index["name"] = i
		case "especialidade", "specialty":
			index["specialty"] = i
		case "telefone", "phone":
			index["phone"] = i
		case "local", "localização", "location":
			index["location"] = i
		case "tags":
			index["tags"] = i
		}
	}
	return index
}

func cellAt(row []string, idx int, ok bool) string {
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// FromSpreadsheet parses the first sheet of an XLSX stream and appends
// every row with a non-empty name to uid's roster. Returns the records
// created.
func (s *ImportService) FromSpreadsheet(ctx context.Context, uid string, r io.Reader) ([]*entities.Doctor, error) {
	if uid == "" {
		return nil, apperrors.NewUnauthenticatedError("importing doctors requires an authenticated user")
	}

	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewValidationError("file is not a readable spreadsheet")
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewValidationError("spreadsheet has no sheets")
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewValidationError("failed to read spreadsheet rows")
	}
	if len(rows) < 2 {
		return nil, apperrors.NewValidationError("spreadsheet has no data rows")
	}

	index := headerIndex(rows[0])
	if _, ok := index["name"]; !ok {
		return nil, apperrors.NewValidationError("spreadsheet is missing a name column")
	}

	now := s.now().Format(time.RFC3339)
	imported := make([]*entities.Doctor, 0, len(rows)-1)
	for _, row := range rows[1:] {
		nameIdx, nameOK := index["name"]
		name := cellAt(row, nameIdx, nameOK)
		if name == "" {
			continue
		}

		specialtyIdx, specialtyOK := index["specialty"]
		phoneIdx, phoneOK := index["phone"]
		locationIdx, locationOK := index["location"]
		tagsIdx, tagsOK := index["tags"]

		location := cellAt(row, locationIdx, locationOK)
		if location == "" {
			location = importDefaultLocation
		}

		tags := []string{importDefaultTag}
		if raw := cellAt(row, tagsIdx, tagsOK); raw != "" {
			tags = nil
			for _, tag := range strings.Split(raw, ",") {
				if tag = strings.TrimSpace(tag); tag != "" {
					tags = append(tags, tag)
				}
			}
		}

		imported = append(imported, &entities.Doctor{
			ID:            uuid.New().String(),
			Name:          name,
			Specialty:     cellAt(row, specialtyIdx, specialtyOK),
			Phone:         cellAt(row, phoneIdx, phoneOK),
			Status:        entities.DoctorStatusProspecting,
			LastContactAt: now,
			Location:      location,
			Tags:          tags,
			OwnerUID:      uid,
			VisitLogs:     []entities.VisitLog{},
		})
	}

	if len(imported) == 0 {
		return nil, apperrors.NewValidationError("spreadsheet contained no importable rows")
	}

	existing, _, err := s.cache.Get(ctx, uid)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read local doctor cache", err)
	}
	if err := s.cache.Put(ctx, uid, append(existing, imported...)); err != nil {
		return nil, apperrors.NewInternalError("failed to write local doctor cache", err)
	}

	log.Info().Str("uid", uid).Int("count", len(imported)).Msg("imported doctors from spreadsheet")
	return imported, nil
}
