package data

import (
	"database/sql"
	"errors"
)

var ErrRecordNotFound = errors.New("record not found")
var ErrEditConflict = errors.New("edit conflict")

type Models struct {
	Teams     TeamModel
	Games     GameModel
	Rounds    RoundModel
	Penalties PenaltyModel
	Scores    ScoreModel
	Timers    TimerModel
	Admins    AdminModel
	Tokens    TokenModel
}

func NewModels(initDb *sql.DB) Models {
	return Models{
		Teams:     TeamModel{db: initDb},
		Games:     GameModel{db: initDb},
		Rounds:    RoundModel{db: initDb},
		Penalties: PenaltyModel{db: initDb},
		Scores:    ScoreModel{db: initDb},
		Timers:    TimerModel{db: initDb},
		Admins:    AdminModel{db: initDb},
		Tokens:    TokenModel{db: initDb},
	}
}
