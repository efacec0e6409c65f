package main

import (
	"errors"
	"net/http"

	"GameNightApi/internal/data"
	"GameNightApi/internal/validator"
)

func (app *application) InsertPenalty(w http.ResponseWriter, r *http.Request) {
	gameID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Name      string `json:"name"`
		Value     int    `json:"value"`
		Stackable bool   `json:"stackable"`
	}

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	penalty := &data.Penalty{
		GameID:    gameID,
		Name:      input.Name,
		Value:     input.Value,
		Stackable: input.Stackable,
	}

	v := validator.New()
	if data.ValidatePenalty(v, penalty); !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	err = app.models.Penalties.Insert(penalty)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusCreated, envelope{"penalty": penalty}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) GetGamePenalties(w http.ResponseWriter, r *http.Request) {
	gameID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	penalties, err := app.models.Penalties.GetForGame(gameID)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"penalties": penalties}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) ReplaceGamePenalties(w http.ResponseWriter, r *http.Request) {
	gameID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	var input struct {
		Penalties []struct {
			Name      string `json:"name"`
			Value     int    `json:"value"`
			Stackable bool   `json:"stackable"`
		} `json:"penalties"`
	}

	err = app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	penalties := make([]*data.Penalty, 0, len(input.Penalties))
	v := validator.New()
	for _, in := range input.Penalties {
		penalty := &data.Penalty{
			GameID:    gameID,
			Name:      in.Name,
			Value:     in.Value,
			Stackable: in.Stackable,
		}
		if data.ValidatePenalty(v, penalty); !v.Valid() {
			app.failedValidationResponse(w, r, v.Errors)
			return
		}
		penalties = append(penalties, penalty)
	}

	err = app.models.Penalties.ReplaceForGame(gameID, penalties)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"penalties": penalties}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) DeletePenalty(w http.ResponseWriter, r *http.Request) {
	penaltyID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Penalties.Delete(penaltyID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"message": "penalty successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
