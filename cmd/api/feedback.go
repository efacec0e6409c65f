package main

import (
	"net/http"

	"GameNightApi/internal/validator"
)

func (app *application) SendFeedback(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SenderName string `json:"sender_name"`
		Category   string `json:"category"`
		Message    string `json:"message"`
	}

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	v := validator.New()
	v.Check(input.Message != "", "message", "must be provided")
	v.Check(len(input.Message) <= 2000, "message", "must not be more than 2000 bytes long")
	v.Check(validator.In(input.Category, "bug", "idea", "other"), "category",
		"must be one of 'bug', 'idea' or 'other'")
	if !v.Valid() {
		app.failedValidationResponse(w, r, v.Errors)
		return
	}

	if input.SenderName == "" {
		input.SenderName = "Anonymous"
	}

	mailData := map[string]any{
		"senderName": input.SenderName,
		"category":   input.Category,
		"message":    input.Message,
	}

	app.backgroundTask(func() {
		err := app.mailer.Send(app.config.feedback.recipient, "feedback.tmpl", mailData)
		if err != nil {
			app.logger.PrintError(err, nil)
		}
	})

	err = app.writeJSON(w, http.StatusAccepted, envelope{"message": "feedback received"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
