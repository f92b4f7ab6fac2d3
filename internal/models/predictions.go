package models

import "time"

// ConfidenceTier buckets a prediction's trustworthiness.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
)

// PredictionRecord is one game's forecast. Created at prediction time;
// the only later mutation is filling in the actual winner once known.
type PredictionRecord struct {
	GameID    string    `json:"game_id"`
	GameDate  string    `json:"date"`
	AwayTeam  string    `json:"away_team"`
	HomeTeam  string    `json:"home_team"`
	CreatedAt time.Time `json:"created_at"`

	AwayProb        float64        `json:"away_prob"`
	HomeProb        float64        `json:"home_prob"`
	PredictedWinner string         `json:"predicted_winner"`
	Confidence      float64        `json:"confidence"`
	ConfidenceTier  ConfidenceTier `json:"confidence_tier"`

	AwayScores CompositeScores `json:"away_composite_scores"`
	HomeScores CompositeScores `json:"home_composite_scores"`

	// Filled once the outcome is known.
	ActualWinner string `json:"actual_winner,omitempty"`
	Resolved     bool   `json:"resolved,omitempty"`
	IsCorrect    bool   `json:"is_correct,omitempty"`
}

// AccuracySummary is the learning loop's running scoreboard.
type AccuracySummary struct {
	TotalPredictions int     `json:"total_predictions"`
	Resolved         int     `json:"resolved"`
	Correct          int     `json:"correct"`
	Accuracy         float64 `json:"accuracy"`
	LastRefitAt      int     `json:"last_refit_at_resolved_count"`
}
