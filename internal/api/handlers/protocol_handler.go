package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/farmacliniq/fieldcrm/backend/internal/api/middleware"
	"github.com/farmacliniq/fieldcrm/backend/internal/application/services"
	"github.com/farmacliniq/fieldcrm/backend/internal/domain/entities"
)

// ProtocolHandler handles protocol library HTTP requests
type ProtocolHandler struct {
	protocols *services.ProtocolService
}

// NewProtocolHandler creates a new protocol handler
func NewProtocolHandler(protocols *services.ProtocolService) *ProtocolHandler {
	return &ProtocolHandler{protocols: protocols}
}

// ListProtocols handles GET /api/protocols
func (h *ProtocolHandler) ListProtocols(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	protocols, err := h.protocols.List(r.Context(), uid)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"protocols": protocols,
		"count":     len(protocols),
	})
}

// CreateProtocol handles POST /api/protocols
func (h *ProtocolHandler) CreateProtocol(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())

	var protocol entities.Protocol
	if err := json.NewDecoder(r.Body).Decode(&protocol); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	created, err := h.protocols.Add(r.Context(), uid, &protocol)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

// DeleteProtocol handles DELETE /api/protocols/{id}
func (h *ProtocolHandler) DeleteProtocol(w http.ResponseWriter, r *http.Request) {
	uid := middleware.UIDFromContext(r.Context())
	protocolID := r.PathValue("id")
	if protocolID == "" {
		respondWithError(w, http.StatusBadRequest, "protocol ID is required")
		return
	}

	if err := h.protocols.Remove(r.Context(), uid, protocolID); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
