package main

import (
	"expvar"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

func (app *application) routes() http.Handler {
	router := chi.NewRouter()

	// Router
	router.NotFound(app.notFoundResponse)
	router.MethodNotAllowed(app.methodNotAllowedRequest)

	// Middleware
	router.Use(app.metrics)
	router.Use(app.recoverPanic)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   app.config.cors.trustedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler)
	router.Use(app.rateLimit)
	router.Use(app.authenticate)

	// Healthcheck
	router.Get("/v1/healthcheck", app.HealthCheck)
	router.Method(http.MethodGet, "/v1/metrics", expvar.Handler())

	// Admin Endpoints
	router.Post("/v1/admin/login", app.LoginAdmin)

	// Team Endpoints
	router.Get("/v1/team", app.GetAllTeams)
	router.Get("/v1/team/{id}", app.GetTeam)
	router.With(app.requireAdmin).Post("/v1/team", app.InsertTeam)
	router.With(app.requireAdmin).Patch("/v1/team/{id}", app.UpdateTeam)
	router.With(app.requireAdmin).Delete("/v1/team/{id}", app.DeleteTeam)

	// Game Endpoints
	router.Get("/v1/game", app.GetAllGames)
	router.Get("/v1/game/{id}", app.GetGame)
	router.With(app.requireAdmin).Post("/v1/game", app.InsertGame)
	router.With(app.requireAdmin).Patch("/v1/game/{id}", app.UpdateGame)
	router.With(app.requireAdmin).Delete("/v1/game/{id}", app.DeleteGame)

	// Penalty Endpoints
	router.Get("/v1/game/{id}/penalty", app.GetGamePenalties)
	router.With(app.requireAdmin).Post("/v1/game/{id}/penalty", app.InsertPenalty)
	router.With(app.requireAdmin).Put("/v1/game/{id}/penalty", app.ReplaceGamePenalties)
	router.With(app.requireAdmin).Delete("/v1/penalty/{id}", app.DeletePenalty)

	// Score Endpoints
	router.Get("/v1/leaderboard", app.GetLeaderboard)
	router.Get("/v1/game/{id}/scores", app.GetGameScores)
	router.With(app.requireAdmin).Post("/v1/game/{id}/scores", app.SaveGameScores)

	// What-If Endpoints
	router.Get("/v1/whatif/bounds", app.GetWhatIfBounds)
	router.Get("/v1/whatif/outlook/{teamId}", app.GetWhatIfOutlook)
	router.Get("/v1/whatif/scenario/{teamId}", app.GetWhatIfScenario)

	// Live Channel
	router.Get("/v1/game/live/{id}", app.LiveGame)

	// Timer Records
	router.Get("/v1/game/{id}/timers", app.GetTimerRecords)
	router.With(app.requireAdmin).Delete("/v1/timer/{id}", app.DeleteTimerRecord)

	// Feedback
	router.Post("/v1/feedback", app.SendFeedback)

	return router
}
