package main

import (
	"net/http"

	"GameNightApi/internal/simulate"
)

// simulationInputs assembles the current standings and the games still to
// be played into the shape the simulate package works over.
func (app *application) simulationInputs() ([]simulate.Team, []simulate.Game, error) {
	leaderboard, err := app.models.Scores.Leaderboard()
	if err != nil {
		return nil, nil, err
	}

	teams := make([]simulate.Team, 0, len(leaderboard))
	for _, entry := range leaderboard {
		teams = append(teams, simulate.Team{
			ID:          entry.TeamID,
			Name:        entry.Name,
			TotalPoints: entry.TotalPoints,
		})
	}

	games, err := app.models.Games.GetAll()
	if err != nil {
		return nil, nil, err
	}

	remaining := make([]simulate.Game, 0, len(games))
	for _, game := range games {
		if game.IsCompleted {
			continue
		}
		remaining = append(remaining, simulate.Game{
			ID:          game.ID,
			Name:        game.Name,
			PointScheme: game.PointScheme,
		})
	}

	return teams, remaining, nil
}

func (app *application) GetWhatIfBounds(w http.ResponseWriter, r *http.Request) {
	teams, games, err := app.simulationInputs()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	bounds := simulate.ComputeMaxMinPoints(teams, games)

	err = app.writeJSON(w, http.StatusOK, envelope{"bounds": bounds}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetWhatIfOutlook(w http.ResponseWriter, r *http.Request) {
	teamID, err := app.readIDParam(r, "teamId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	teams, games, err := app.simulationInputs()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	outlook := simulate.EvaluateWinPossibility(teams, games, teamID)

	err = app.writeJSON(w, http.StatusOK, envelope{"outlook": outlook}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetWhatIfScenario(w http.ResponseWriter, r *http.Request) {
	teamID, err := app.readIDParam(r, "teamId")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	teams, games, err := app.simulationInputs()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	scenario := simulate.FindMinimalWinningScenario(teams, games, teamID)
	if scenario == nil {
		err = app.writeJSON(w, http.StatusOK,
			envelope{"scenario": nil, "message": "no winning scenario exists"}, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"scenario": scenario}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
