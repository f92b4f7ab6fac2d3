package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetGameMetrics handles GET /api/v1/games/{gameID}/metrics. It serves
// the flat metric map cached at processing time.
func (h *Handler) GetGameMetrics(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "gameID")
	if gameID == "" {
		h.errorResponse(w, http.StatusBadRequest, "Missing game ID")
		return
	}

	flat, err := h.metrics.GetGameMetrics(r.Context(), gameID)
	if err != nil {
		h.logger.Errorw("Game metrics lookup failed", "game_id", gameID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Metrics lookup failed")
		return
	}
	if len(flat) == 0 {
		h.errorResponse(w, http.StatusNotFound, "Game not found or not processed yet")
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"game_id": gameID,
		"metrics": flat,
	})
}
