package handlers

import (
	"net/http"

	"github.com/farmacliniq/fieldcrm/backend/internal/api/middleware"
	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
)

// SyncHandler drives the session and synchronization endpoints
type SyncHandler struct {
	sync *services.SyncService
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(sync *services.SyncService) *SyncHandler {
	return &SyncHandler{sync: sync}
}

// OpenSession handles POST /api/session/open. It runs the sign-in
// reconciliation and returns the resolved roster.
func (h *SyncHandler) OpenSession(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	doctors, err := h.sync.OpenSession(r.Context(), uid)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}

// CloseSession handles POST /api/session/close
func (h *SyncHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	if err := h.sync.CloseSession(r.Context(), uid); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Push handles POST /api/sync/push
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	count, err := h.sync.Push(r.Context(), uid)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"pushed": count,
	})
}

// Pull handles POST /api/sync/pull
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	doctors, err := h.sync.Pull(r.Context(), uid)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"doctors": doctors,
		"count":   len(doctors),
	})
}
