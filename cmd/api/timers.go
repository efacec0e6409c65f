package main

import (
	"errors"
	"net/http"

	"GameNightApi/internal/data"
	"GameNightApi/internal/validator"
)

func (app *application) GetTimerRecords(w http.ResponseWriter, r *http.Request) {
	gameID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	v := validator.New()
	teamID := app.readInt(r.URL.Query(), "team_id", 0, v)
	v.Check(teamID > 0, "team_id", "must be provided and greater than zero")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	records, err := app.models.Timers.GetForTeam(gameID, int64(teamID))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"timer_records": records}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) DeleteTimerRecord(w http.ResponseWriter, r *http.Request) {
	recordID, err := app.readIDParam(r, "id")
	if err != nil {
		app.notFoundResponse(w, r)
		return
	}

	err = app.models.Timers.Delete(recordID)
	if err != nil {
		switch {
		case errors.Is(err, data.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	err = app.writeJSON(w, http.StatusOK,
		envelope{"message": "timer record successfully deleted"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
