// Package seed bundles the starter doctor dataset loaded for accounts
// whose remote collection is empty on first sign-in.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

//go:embed doctors.json
var doctorsJSON []byte

// Doctors returns a fresh copy of the starter dataset. Entries carry no
// ID or owner; callers assign both before writing.
func Doctors() ([]*entities.Doctor, error) {
	var doctors []*entities.Doctor
	if err := json.Unmarshal(doctorsJSON, &doctors); err != nil {
		return nil, fmt.Errorf("failed to decode seed dataset: %w", err)
	}
	return doctors, nil
}
