package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/rinklab/analytics-api/internal/models"
)

// Seeds the ingest endpoint with a synthetic but structurally realistic
// game: faceoffs, a spread of shot attempts, a few goals, the usual
// possession noise. Useful for smoke-testing the full pipeline locally.

func main() {
	apiURL := flag.String("url", "http://localhost:8080/api/v1/ingest/game", "ingest endpoint")
	games := flag.Int("games", 1, "number of synthetic games to post")
	seed := flag.Int64("seed", time.Now().UnixNano(), "rng seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	matchups := [][2]string{
		{"EDM", "CGY"}, {"TOR", "MTL"}, {"BOS", "NYR"}, {"COL", "VGK"},
	}

	for i := 0; i < *games; i++ {
		m := matchups[i%len(matchups)]
		payload := syntheticGame(rng, m[0], m[1], i)
		if err := post(*apiURL, payload); err != nil {
			log.Fatalf("Failed to post game %s: %v", payload.GameID, err)
		}
	}
}

func syntheticGame(rng *rand.Rand, away, home string, n int) *models.GamePayload {
	awayScore := rng.Intn(5)
	homeScore := rng.Intn(5)
	if awayScore == homeScore {
		homeScore++
	}

	payload := &models.GamePayload{
		GameID:   fmt.Sprintf("seed-%d-%s-%s", n, away, home),
		GameDate: time.Now().Format("2006-01-02"),
		Boxscore: models.Boxscore{
			AwayTeam: away, HomeTeam: home,
			AwayScore: awayScore, HomeScore: homeScore,
		},
	}

	teams := []string{away, home}
	shotTypes := []models.ShotType{
		models.ShotWrist, models.ShotSlap, models.ShotSnap, models.ShotBackhand,
	}

	for period := 1; period <= 3; period++ {
		payload.Events = append(payload.Events, models.Event{
			Type: models.EventFaceoff, TeamID: teams[rng.Intn(2)],
			Period: period, TimeInPeriod: 0,
		})
		for j := 0; j < 18; j++ {
			team := teams[rng.Intn(2)]
			t := float64(rng.Intn(1200))
			switch rng.Intn(6) {
			case 0, 1, 2:
				payload.Events = append(payload.Events, models.Event{
					Type: models.EventShotOnGoal, TeamID: team,
					Period: period, TimeInPeriod: t,
					X: 40 + rng.Float64()*49, Y: rng.Float64()*60 - 30,
					ShotType: shotTypes[rng.Intn(len(shotTypes))], SituationCode: "1551",
				})
			case 3:
				payload.Events = append(payload.Events, models.Event{
					Type: models.EventMissedShot, TeamID: team,
					Period: period, TimeInPeriod: t,
					X: 30 + rng.Float64()*50, Y: rng.Float64()*60 - 30,
					ShotType: models.ShotWrist, SituationCode: "1551",
				})
			case 4:
				payload.Events = append(payload.Events, models.Event{
					Type: models.EventHit, TeamID: team,
					Period: period, TimeInPeriod: t,
					X: rng.Float64()*160 - 80, Y: rng.Float64()*60 - 30,
				})
			case 5:
				payload.Events = append(payload.Events, models.Event{
					Type: models.EventTakeaway, TeamID: team,
					Period: period, TimeInPeriod: t,
					X: rng.Float64()*160 - 80, Y: rng.Float64()*60 - 30,
				})
			}
		}
	}

	// Goals matching the boxscore, from the slot.
	for g := 0; g < awayScore+homeScore; g++ {
		team := home
		if g < awayScore {
			team = away
		}
		payload.Events = append(payload.Events, models.Event{
			Type: models.EventGoal, TeamID: team,
			Period: 1 + g%3, TimeInPeriod: float64(100 + g*137),
			X: 75 + rng.Float64()*10, Y: rng.Float64()*14 - 7,
			ShotType: models.ShotWrist, SituationCode: "1551",
		})
	}

	return payload
}

func post(url string, payload *models.GamePayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("status %d: %s", resp.StatusCode, respBody)
	}
	log.Printf("Seeded %s (%s @ %s): %s",
		payload.GameID, payload.Boxscore.AwayTeam, payload.Boxscore.HomeTeam, respBody)
	return nil
}
