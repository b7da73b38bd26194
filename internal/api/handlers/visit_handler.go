package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/farmacliniq/fieldcrm/backend/internal/api/middleware"
	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
)

// VisitHandler handles visit scheduling HTTP requests
type VisitHandler struct {
	visits *services.VisitService
}

// NewVisitHandler creates a new visit handler
func NewVisitHandler(visits *services.VisitService) *VisitHandler {
	return &VisitHandler{visits: visits}
}

type scheduleVisitRequest struct {
	DoctorID string `json:"doctor_id"`
	StartAt  string `json:"start_at"` // RFC3339
}

// ScheduleVisit handles POST /api/visits
func (h *VisitHandler) ScheduleVisit(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	var req scheduleVisitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DoctorID == "" {
		respondWithError(w, http.StatusBadRequest, "doctor_id is required")
		return
	}

	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "start_at must be an RFC3339 timestamp")
		return
	}

	doctor, err := h.visits.Schedule(r.Context(), uid, req.DoctorID, startAt)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, doctor)
}
