package main

import (
	"errors"
	"net/http"

	"GameNightApi/internal/data"
	"GameNightApi/internal/scoring"
	"GameNightApi/internal/validator"
)

func (app *application) SaveGameScores(w http.ResponseWriter, r *http.Request) {
	gameID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	game, err := app.models.Games.Get(gameID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	var input struct {
		AutoRank      bool                    `json:"auto_rank"`
		TeamPenalties map[int64]map[int64]int `json:"team_penalties"`
		Scores        []struct {
			TeamID     int64    `json:"team_id"`
			ScoreValue *float64 `json:"score_value"`
			Points     int      `json:"points"`
			Notes      string   `json:"notes"`
		} `json:"scores"`
	}

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()

	var gamePenalties []*data.Penalty
	if len(input.TeamPenalties) > 0 {
		gamePenalties, err = app.models.Penalties.GetForGame(gameID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		for _, counts := range input.TeamPenalties {
			data.ValidatePenaltyCounts(v, gamePenalties, counts)
		}
		if !v.Valid() {
			app.failedValidationResponse(w, r, v.Errors)
			return
		}
	}

	scores := make([]*data.Score, 0, len(input.Scores))
	for _, in := range input.Scores {
		score := &data.Score{
			GameID:     gameID,
			TeamID:     in.TeamID,
			ScoreValue: in.ScoreValue,
			Points:     in.Points,
			Notes:      in.Notes,
		}
		if data.ValidateScore(v, score); !v.Valid() {
			app.failedValidationResponse(w, r, v.Errors)
			return
		}
		scores = append(scores, score)
	}

	if input.AutoRank {
		app.assignPointsByRank(game, scores, gamePenalties, input.TeamPenalties)
	}

	for _, score := range scores {
		err = app.models.Scores.Upsert(score)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"scores": scores}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// assignPointsByRank replaces the submitted points with placement points
// derived from the score values, using the game's direction and multiplier.
// Applied penalty counts adjust each team's final score before ranking.
// Teams without a score value keep zero points.
func (app *application) assignPointsByRank(game *data.Game, scores []*data.Score,
	gamePenalties []*data.Penalty, applied map[int64]map[int64]int) {
	penalties := make([]scoring.Penalty, 0, len(gamePenalties))
	for _, p := range gamePenalties {
		penalties = append(penalties, scoring.Penalty{
			ID:        p.ID,
			Value:     float64(p.Value),
			Stackable: p.Stackable,
		})
	}

	ranked := make([]*scoring.TeamScore, 0, len(scores))
	for _, s := range scores {
		if s.ScoreValue == nil {
			s.Points = 0
			continue
		}
		ts := &scoring.TeamScore{
			TeamID:       s.TeamID,
			BaseScore:    *s.ScoreValue,
			PenaltyTotal: scoring.PenaltyTotal(s.TeamID, penalties, applied),
		}
		ts.Recalc()
		ranked = append(ranked, ts)
	}

	scoring.RankAndScore(ranked, game.ScoringDirection, game.PointScheme, len(ranked))

	points := make(map[int64]int, len(ranked))
	for _, ts := range ranked {
		points[ts.TeamID] = ts.Points
	}
	for _, s := range scores {
		if s.ScoreValue != nil {
			s.Points = points[s.TeamID]
		}
	}
}

func (app *application) GetGameScores(w http.ResponseWriter, r *http.Request) {
	gameID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	scores, err := app.models.Scores.GetForGame(gameID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"scores": scores}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	leaderboard, err := app.models.Scores.Leaderboard()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"leaderboard": leaderboard}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
