package services_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	apperrors "github.com/farmacliniq/fieldcrm/backend/pkg/errors"
)

func buildSpreadsheet(t *testing.T, rows [][]string) *bytes.Buffer {
	t.Helper()
	file := excelize.NewFile()
	sheet := file.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, file.SetSheetRow(sheet, cell, &row))
	}
	buf, err := file.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestImportService_FromSpreadsheet(t *testing.T) {
	t.Run("imports rows with defaults and fresh ids", func(t *testing.T) {
		// Arrange
		cache := new(MockDoctorCache)
		service := services.NewImportService(cache)

		sheet := buildSpreadsheet(t, [][]string{
			{"Nome", "Especialidade", "Telefone", "Tags"},
			{"Dr. Planilha", "Cardiologia", "(11) 99999-0000", "VIP, KOL"},
			{"Dra. Sem Dados", "", "", ""},
		})

		existing := []*entities.Doctor{{ID: "old-1"}}
		cache.On("Get", mock.Anything, "user-1").Return(existing, true, nil)
		cache.On("Put", mock.Anything, "user-1", mock.MatchedBy(func(doctors []*entities.Doctor) bool {
			return len(doctors) == 3 && doctors[0].ID == "old-1"
		})).Return(nil)

		// Act
		imported, err := service.FromSpreadsheet(context.Background(), "user-1", sheet)

		// Assert
		assert.NoError(t, err)
		require.Len(t, imported, 2)

		first := imported[0]
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, "Dr. Planilha", first.Name)
		assert.Equal(t, "Cardiologia", first.Specialty)
		assert.Equal(t, entities.DoctorStatusProspecting, first.Status)
		assert.Equal(t, []string{"VIP", "KOL"}, first.Tags)
		assert.Equal(t, "user-1", first.OwnerUID)

		second := imported[1]
		assert.Equal(t, "N/A", second.Location)
		assert.Equal(t, []string{"Novo"}, second.Tags)
		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("accepts lowercase and uppercase headers", func(t *testing.T) {
		cache := new(MockDoctorCache)
		service := services.NewImportService(cache)

		sheet := buildSpreadsheet(t, [][]string{
			{"NOME", "especialidade"},
			{"Dr. Caps", "Ortopedia"},
		})

		cache.On("Get", mock.Anything, "user-1").Return(nil, false, nil)
		cache.On("Put", mock.Anything, "user-1", mock.Anything).Return(nil)

		imported, err := service.FromSpreadsheet(context.Background(), "user-1", sheet)

		assert.NoError(t, err)
		require.Len(t, imported, 1)
		assert.Equal(t, "Dr. Caps", imported[0].Name)
		assert.Equal(t, "Ortopedia", imported[0].Specialty)
	})

	t.Run("skips rows without a name", func(t *testing.T) {
		cache := new(MockDoctorCache)
		service := services.NewImportService(cache)

		sheet := buildSpreadsheet(t, [][]string{
			{"Nome"},
			{""},
			{"Dr. Único"},
		})

		cache.On("Get", mock.Anything, "user-1").Return(nil, false, nil)
		cache.On("Put", mock.Anything, "user-1", mock.Anything).Return(nil)

		imported, err := service.FromSpreadsheet(context.Background(), "user-1", sheet)

		assert.NoError(t, err)
		assert.Len(t, imported, 1)
	})

	t.Run("rejects a sheet without a name column", func(t *testing.T) {
		service := services.NewImportService(new(MockDoctorCache))

		sheet := buildSpreadsheet(t, [][]string{
			{"Telefone"},
			{"(11) 90000-0000"},
		})

		_, err := service.FromSpreadsheet(context.Background(), "user-1", sheet)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("rejects a stream that is not a spreadsheet", func(t *testing.T) {
		service := services.NewImportService(new(MockDoctorCache))

		_, err := service.FromSpreadsheet(context.Background(), "user-1", strings.NewReader("not xlsx"))

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})
}
