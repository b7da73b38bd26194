package handlers

import (
	"net/http"

	"github.com/farmacliniq/fieldcrm/backend/internal/api/middleware"
	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
)

// maxImportSize bounds uploaded spreadsheets to 10 MiB
const maxImportSize = 10 << 20

// ImportHandler handles spreadsheet import HTTP requests
type ImportHandler struct {
	importer *services.ImportService
}

// NewImportHandler creates a new import handler
func NewImportHandler(importer *services.ImportService) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// ImportSpreadsheet handles POST /api/import/spreadsheet. The sheet is
// sent as multipart form data under the "file" field.
func (h *ImportHandler) ImportSpreadsheet(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	imported, err := h.importer.FromSpreadsheet(r.Context(), uid, file)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"imported": imported,
		"count":    len(imported),
	})
}
