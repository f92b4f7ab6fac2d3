package engine

import "github.com/rinklab/analytics-api/internal/models"

// Game Score linear weights. Fixed policy; re-fit never touches these.
const (
	gsGoal            = 0.75
	gsPrimaryAssist   = 0.70
	gsSecondaryAssist = 0.55
	gsShotOnGoal      = 0.075
	gsBlockedShot     = 0.05
	gsPenaltyDrawn    = 0.15
	gsPenaltyTaken    = -0.15
	gsFaceoffWin      = 0.01
	gsFaceoffLoss     = -0.01
	gsHit             = 0.15
	gsTakeaway        = 0.15
	gsGiveaway        = -0.15
)

// shotGameScore is the acting team's Game Score contribution for a
// shot-class event. Goals also count their shot on goal.
func shotGameScore(t models.EventType) float64 {
	switch t {
	case models.EventGoal:
		return gsGoal + gsShotOnGoal
	case models.EventShotOnGoal:
		return gsShotOnGoal
	default:
		return 0
	}
}

// gameScoreDeltas returns the Game Score contribution of one event for the
// acting team and for its opponent. Blocked shots credit the blocker (the
// opponent of the shooting team); penalties debit the taker and credit the
// team that drew it; faceoffs credit the winner and debit the loser.
func gameScoreDeltas(ev *models.Event) (forTeam, forOpponent float64) {
	switch ev.Type {
	case models.EventGoal:
		forTeam = gsGoal + gsShotOnGoal
		if ev.Assist1ID != "" {
			forTeam += gsPrimaryAssist
		}
		if ev.Assist2ID != "" {
			forTeam += gsSecondaryAssist
		}
	case models.EventShotOnGoal:
		forTeam = gsShotOnGoal
	case models.EventBlockedShot:
		forOpponent = gsBlockedShot
	case models.EventPenalty:
		forTeam = gsPenaltyTaken
		forOpponent = gsPenaltyDrawn
	case models.EventFaceoff:
		forTeam = gsFaceoffWin
		forOpponent = gsFaceoffLoss
	case models.EventHit:
		forTeam = gsHit
	case models.EventTakeaway:
		forTeam = gsTakeaway
	case models.EventGiveaway:
		forTeam = gsGiveaway
	case models.EventMissedShot:
		// No Game Score term for misses.
	}
	return forTeam, forOpponent
}
