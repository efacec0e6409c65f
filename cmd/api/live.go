package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"GameNightApi/internal/data"
	"GameNightApi/internal/scorehub"

	"github.com/gorilla/websocket"
)

// LiveGame upgrades the request to a websocket and attaches the caller to
// the game's hub, starting the hub on first join. Authenticated admins keep
// their username on the wire; everyone else joins as an anonymous Player.
func (app *application) LiveGame(w http.ResponseWriter, r *http.Request) {
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

	var roundID int64
	if game.HasRounds {
		if s := r.URL.Query().Get("round_id"); s != "" {
			roundID, err = strconv.ParseInt(s, 10, 64)
			if err != nil || roundID < 1 {
				app.badRequestResponse(w, r, errors.New("invalid round_id parameter"))
				return
			}

			round, err := app.models.Rounds.Get(roundID)
			if err != nil {
				switch {
				case errors.Is(err, data.ErrRecordNotFound):
					app.notFoundResponse(w, r)
				default:
					app.serverErrorResponse(w, r, err)
				}
				return
			}
			if round.GameID != game.ID {
				app.badRequestResponse(w, r,
					errors.New("round does not belong to this game"))
				return
			}
		}
	}

	admin := app.contextGetAdmin(r)

	userID := fmt.Sprintf("anon_%s", randomSuffix())
	displayName := "Player"
	if !admin.IsAnonymous() {
		userID = fmt.Sprintf("admin_%d", admin.ID)
		displayName = admin.Username
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, trusted := range app.config.cors.trustedOrigins {
				if origin == trusted {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		app.logError(r, err)
		return
	}

	hub := app.hubForGame(game)

	session := scorehub.NewSession(hub, conn, userID, displayName, !admin.IsAnonymous())
	session.RoundID = roundID

	hub.Join <- session

	go session.WriteEvents()
	go session.ReadEvents()
}

// hubForGame returns the running hub for a game, creating and starting one
// on first use. Hubs stay resident until the game is deleted.
func (app *application) hubForGame(game *data.Game) *scorehub.Hub {
	app.mu.Lock()
	defer app.mu.Unlock()

	hub, ok := app.liveGames[game.ID]
	if !ok {
		hub = scorehub.NewHub(game.ID, game.HasRounds, &app.models.Scores,
			&app.models.Timers, app.logger)
		app.liveGames[game.ID] = hub
		go hub.Run()
	}

	return hub
}

func randomSuffix() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}
