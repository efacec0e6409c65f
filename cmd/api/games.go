package main

import (
	"errors"
	"fmt"
	"net/http"

	"GameNightApi/internal/data"
	"GameNightApi/internal/scoring"
	"GameNightApi/internal/validator"
)

func (app *application) InsertGame(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name             string `json:"name"`
		Type             string `json:"type"`
		SequenceNumber   int    `json:"sequence_number"`
		PointScheme      int    `json:"point_scheme"`
		MetricType       string `json:"metric_type"`
		ScoringDirection string `json:"scoring_direction"`
		PublicInput      bool   `json:"public_input"`
		HasRounds        bool   `json:"has_rounds"`
		NumberOfRounds   *int   `json:"number_of_rounds"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	game := &data.Game{
		Name:             input.Name,
		Type:             input.Type,
		SequenceNumber:   input.SequenceNumber,
		PointScheme:      input.PointScheme,
		MetricType:       data.MetricType(input.MetricType),
		ScoringDirection: scoring.Direction(input.ScoringDirection),
		PublicInput:      input.PublicInput,
		HasRounds:        input.HasRounds,
		NumberOfRounds:   input.NumberOfRounds,
	}

	v := validator.New()
	if data.ValidateGame(v, game); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Games.Insert(game)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	if game.HasRounds {
		err = app.models.Rounds.CreateForGame(game.ID, *game.NumberOfRounds)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
	}

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/v1/game/%d", game.ID))
	err = app.writeJSON(w, http.StatusCreated, envelope{"game": game}, headers)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetGame(w http.ResponseWriter, r *http.Request) {
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

	env := envelope{"game": game}

	if game.HasRounds {
		rounds, err := app.models.Rounds.GetForGame(game.ID)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}
		env["rounds"] = rounds
	}

	err = app.writeJSON(w, http.StatusOK, env, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetAllGames(w http.ResponseWriter, r *http.Request) {
	games, err := app.models.Games.GetAll()
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"games": games}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) UpdateGame(w http.ResponseWriter, r *http.Request) {
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
		Name             *string `json:"name"`
		Type             *string `json:"type"`
		SequenceNumber   *int    `json:"sequence_number"`
		PointScheme      *int    `json:"point_scheme"`
		MetricType       *string `json:"metric_type"`
		ScoringDirection *string `json:"scoring_direction"`
		PublicInput      *bool   `json:"public_input"`
		IsCompleted      *bool   `json:"is_completed"`
	}

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if input.Name != nil {
		game.Name = *input.Name
	}
	if input.Type != nil {
		game.Type = *input.Type
	}
	if input.SequenceNumber != nil {
		game.SequenceNumber = *input.SequenceNumber
	}
	if input.PointScheme != nil {
		game.PointScheme = *input.PointScheme
	}
	if input.MetricType != nil {
		game.MetricType = data.MetricType(*input.MetricType)
	}
	if input.ScoringDirection != nil {
		game.ScoringDirection = scoring.Direction(*input.ScoringDirection)
	}
	if input.PublicInput != nil {
		game.PublicInput = *input.PublicInput
	}
	if input.IsCompleted != nil {
		game.IsCompleted = *input.IsCompleted
	}

	v := validator.New()
	if data.ValidateGame(v, game); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Games.Update(game)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"game": game}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) DeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Games.Delete(gameID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	app.mu.Lock()
	delete(app.liveGames, gameID)
	app.mu.Unlock()

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "game successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
