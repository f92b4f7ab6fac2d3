package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rinklab/analytics-api/internal/predictor"
)

// PredictionRequest names a matchup to forecast.
type PredictionRequest struct {
	AwayTeam string `json:"away_team" validate:"required,min=2,max=5"`
	HomeTeam string `json:"home_team" validate:"required,min=2,max=5"`
	GameDate string `json:"game_date" validate:"required,datetime=2006-01-02"`
}

// CreatePrediction handles POST /api/v1/predictions. A repeat request for
// the same matchup and date returns the already-stored prediction instead
// of recomputing it; the record is immutable once made.
func (h *Handler) CreatePrediction(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodySize)
	defer r.Body.Close()

	var req PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Invalid JSON: "+err.Error())
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}
	req.AwayTeam = strings.ToUpper(req.AwayTeam)
	req.HomeTeam = strings.ToUpper(req.HomeTeam)

	ctx := r.Context()
	gameID := predictor.PredictionID(req.AwayTeam, req.HomeTeam, req.GameDate)
	if existing, err := h.loop.Get(ctx, gameID); err == nil {
		h.jsonResponse(w, http.StatusOK, existing)
		return
	} else if !errors.Is(err, predictor.ErrPredictionNotFound) {
		h.logger.Errorw("Prediction lookup failed", "game_id", gameID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Prediction lookup failed")
		return
	}

	rec, err := h.predictor.Predict(ctx, req.AwayTeam, req.HomeTeam, req.GameDate)
	if err != nil {
		h.errorResponse(w, http.StatusBadRequest, "Prediction failed: "+err.Error())
		return
	}
	if err := h.loop.AddPrediction(ctx, rec); err != nil {
		h.logger.Errorw("Prediction store write failed",
			"game_id", rec.GameID, "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Prediction could not be stored")
		return
	}

	h.logger.Infow("Prediction created",
		"game_id", rec.GameID,
		"away", rec.AwayTeam, "home", rec.HomeTeam,
		"winner", rec.PredictedWinner, "confidence", rec.Confidence)
	h.jsonResponse(w, http.StatusCreated, rec)
}

// GetAccuracy handles GET /api/v1/predictions/accuracy.
func (h *Handler) GetAccuracy(w http.ResponseWriter, r *http.Request) {
	summary, err := h.loop.Accuracy(r.Context())
	if err != nil {
		h.logger.Errorw("Accuracy summary failed", "error", err)
		h.errorResponse(w, http.StatusInternalServerError, "Accuracy summary unavailable")
		return
	}
	h.jsonResponse(w, http.StatusOK, summary)
}
