package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/farmacliniq/fieldcrm/backend/internal/api/middleware"
	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/repositories"
)

// DoctorHandler handles doctor roster HTTP requests
type DoctorHandler struct {
	roster     *services.RosterService
	followUp   *services.FollowUpService
	stats      *services.StatsService
	searchRepo repositories.DoctorSearchRepository
}

// NewDoctorHandler creates a new doctor handler
func NewDoctorHandler(
	roster *services.RosterService,
	followUp *services.FollowUpService,
	stats *services.StatsService,
	searchRepo repositories.DoctorSearchRepository,
) *DoctorHandler {
	return &DoctorHandler{
		roster:     roster,
		followUp:   followUp,
		stats:      stats,
		searchRepo: searchRepo,
	}
}

// ListDoctors handles GET /api/doctors
func (h *DoctorHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	doctors, err := h.roster.List(r.Context(), uid)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// CreateDoctor handles POST /api/doctors
func (h *DoctorHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	var doctor entities.Doctor
	if err := json.NewDecoder(r.Body).Decode(&doctor); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.roster.Create(r.Context(), uid, &doctor)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// UpdateDoctor handles PATCH /api/doctors/{id}
func (h *DoctorHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	var patch entities.Doctor
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.roster.Update(r.Context(), uid, doctorID, &patch)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// DeleteDoctor handles DELETE /api/doctors/{id}
func (h *DoctorHandler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	if err := h.roster.Remove(r.Context(), uid, doctorID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddVisitLog handles POST /api/doctors/{id}/logs
func (h *DoctorHandler) AddVisitLog(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())
	doctorID := r.PathValue("id")
	if doctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor ID is required")
		return
	}

	var visitLog entities.VisitLog
	if err := json.NewDecoder(r.Body).Decode(&visitLog); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	updated, err := h.roster.AddVisitLog(r.Context(), uid, doctorID, visitLog)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

// GetFollowUpAlerts handles GET /api/doctors/alerts
func (h *DoctorHandler) GetFollowUpAlerts(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	doctors, err := h.roster.List(r.Context(), uid)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	alerts := h.followUp.Overdue(doctors)
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"alerts": alerts,
		"count":  len(alerts),
	})
}

// GetMonthlyStats handles GET /api/doctors/stats
func (h *DoctorHandler) GetMonthlyStats(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	doctors, err := h.roster.List(r.Context(), uid)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, h.stats.Monthly(doctors))
}

// SearchDoctors handles GET /api/doctors/search
func (h *DoctorHandler) SearchDoctors(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	doctors, err := h.searchRepo.Search(r.Context(), uid, query, limit)
	if err != nil {
		respondWithError(w, http.StatusBadGateway, "search is unavailable")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}
