package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/rinklab/analytics-api/internal/models"
)

// GetTeamProfile handles GET /api/v1/teams/{team}/profile. An optional
// ?venue=home|away query narrows the response to one venue; without it
// both venue profiles are returned. Teams with no history get the neutral
// default profile rather than a 404.
func (h *Handler) GetTeamProfile(w http.ResponseWriter, r *http.Request) {
	team := strings.ToUpper(chi.URLParam(r, "team"))
	if team == "" {
		h.errorResponse(w, http.StatusBadRequest, "Missing team abbreviation")
		return
	}

	if q := r.URL.Query().Get("venue"); q != "" {
		venue := models.Venue(strings.ToLower(q))
		if !venue.Valid() {
			h.errorResponse(w, http.StatusBadRequest, "Venue must be 'home' or 'away'")
			return
		}
		h.jsonResponse(w, http.StatusOK, h.store.GetProfile(team, venue))
		return
	}

	h.jsonResponse(w, http.StatusOK, map[string]interface{}{
		"team": team,
		"home": h.store.GetProfile(team, models.VenueHome),
		"away": h.store.GetProfile(team, models.VenueAway),
	})
}
