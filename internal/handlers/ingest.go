package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/rinklab/analytics-api/internal/models"
)

// IngestGame handles POST /api/v1/ingest/game. The whole game arrives in
// one payload: boxscore plus the ordered play-by-play. Accepted games are
// queued and processed asynchronously; the response is a 202.
func (h *Handler) IngestGame(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	var payload models.GamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}

	if err := h.validator.Struct(&payload); err != nil {
		h.logger.Warnw("Game payload failed validation",
			"game_id", payload.GameID, "error", err)
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	// Unknown event types survive validation; the engine drops them with a
	// log line. An all-unknown list is rejected here instead.
	known := 0
	for i := range payload.Events {
		if payload.Events[i].Type.Valid() {
			known++
		}
	}
	if known == 0 {
		h.errorResponse(w, http.StatusBadRequest, "No recognized events in payload")
		return
	}

	payload.Received = time.Now().UTC()
	if !h.pool.Enqueue(&payload) {
		h.errorResponse(w, http.StatusServiceUnavailable, "Ingest queue unavailable")
		return
	}

	h.logger.Infow("Game accepted",
		"game_id", payload.GameID,
		"away", payload.Boxscore.AwayTeam, "home", payload.Boxscore.HomeTeam,
		"events", len(payload.Events))
	h.jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"status":  "accepted",
		"game_id": payload.GameID,
		"events":  len(payload.Events),
	})
}
