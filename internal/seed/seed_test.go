package seed_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmacliniq/fieldcrm/backend/internal/seed"
)

func TestDoctors(t *testing.T) {
	doctors, err := seed.Doctors()
	require.NoError(t, err)
	require.NotEmpty(t, doctors)

	for _, doctor := range doctors {
		// IDs and owners are assigned by the caller at seed time
		assert.Empty(t, doctor.ID)
		assert.Empty(t, doctor.OwnerUID)
		assert.NotEmpty(t, doctor.Name)
		assert.NotEmpty(t, doctor.Status)
	}
}

func TestDoctorsReturnsFreshCopies(t *testing.T) {
	first, err := seed.Doctors()
	require.NoError(t, err)
	first[0].ID = "mutated"

	second, err := seed.Doctors()
	require.NoError(t, err)
	assert.Empty(t, second[0].ID)
}
