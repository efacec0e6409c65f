package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"GameNightApi/internal/scoring"
	"GameNightApi/internal/validator"
)

type MetricType string

const (
	MetricScore MetricType = "score"
	MetricTime  MetricType = "time"
)

type Game struct {
	ID               int64             `json:"id"`
	Name             string            `json:"name"`
	Type             string            `json:"type,omitempty"`
	SequenceNumber   int               `json:"sequence_number"`
	PointScheme      int               `json:"point_scheme"`
	MetricType       MetricType        `json:"metric_type"`
	ScoringDirection scoring.Direction `json:"scoring_direction"`
	PublicInput      bool              `json:"public_input"`
	IsCompleted      bool              `json:"is_completed"`
	HasRounds        bool              `json:"has_rounds"`
	NumberOfRounds   *int              `json:"number_of_rounds,omitempty"`
	CreatedAt        time.Time         `json:"-"`
	Version          int32             `json:"-"`
}

type GameModel struct {
	db *sql.DB
}

func (m *GameModel) Insert(game *Game) error {
	stmt := `
		INSERT INTO games (name, type, sequence_number, point_scheme, metric_type,
			scoring_direction, public_input, has_rounds, number_of_rounds)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, version`

	args := []any{
		game.Name,
		game.Type,
		game.SequenceNumber,
		game.PointScheme,
		game.MetricType,
		game.ScoringDirection,
		game.PublicInput,
		game.HasRounds,
		game.NumberOfRounds,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return m.db.QueryRowContext(ctx, stmt, args...).Scan(
		&game.ID,
		&game.CreatedAt,
		&game.Version,
	)
}

func (m *GameModel) Get(gameID int64) (*Game, error) {
	stmt := `
		SELECT id, name, type, sequence_number, point_scheme, metric_type,
			scoring_direction, public_input, is_completed, has_rounds, number_of_rounds,
			created_at, version
		FROM games
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var game Game
	err := m.db.QueryRowContext(ctx, stmt, gameID).Scan(
		&game.ID,
		&game.Name,
		&game.Type,
		&game.SequenceNumber,
		&game.PointScheme,
		&game.MetricType,
		&game.ScoringDirection,
		&game.PublicInput,
		&game.IsCompleted,
		&game.HasRounds,
		&game.NumberOfRounds,
		&game.CreatedAt,
		&game.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &game, nil
}

func (m *GameModel) GetAll() ([]*Game, error) {
	stmt := `
		SELECT id, name, type, sequence_number, point_scheme, metric_type,
			scoring_direction, public_input, is_completed, has_rounds, number_of_rounds,
			created_at, version
		FROM games
		ORDER BY sequence_number ASC, id ASC`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	games := make([]*Game, 0)
	for rows.Next() {
		var game Game
		err := rows.Scan(
			&game.ID,
			&game.Name,
			&game.Type,
			&game.SequenceNumber,
			&game.PointScheme,
			&game.MetricType,
			&game.ScoringDirection,
			&game.PublicInput,
			&game.IsCompleted,
			&game.HasRounds,
			&game.NumberOfRounds,
			&game.CreatedAt,
			&game.Version,
		)
		if err != nil {
			return nil, err
		}
		games = append(games, &game)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return games, nil
}

func (m *GameModel) Update(game *Game) error {
	stmt := `
		UPDATE games
		SET name = $1, type = $2, sequence_number = $3, point_scheme = $4, metric_type = $5,
			scoring_direction = $6, public_input = $7, is_completed = $8, has_rounds = $9,
			number_of_rounds = $10, version = version + 1
		WHERE id = $11 AND version = $12
		RETURNING version`

	args := []any{
		game.Name,
		game.Type,
		game.SequenceNumber,
		game.PointScheme,
		game.MetricType,
		game.ScoringDirection,
		game.PublicInput,
		game.IsCompleted,
		game.HasRounds,
		game.NumberOfRounds,
		game.ID,
		game.Version,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, stmt, args...).Scan(&game.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}

	return nil
}

func (m *GameModel) Delete(gameID int64) error {
	stmt := `
		DELETE FROM games
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, stmt, gameID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}

	return nil
}

func ValidateGame(v *validator.Validator, game *Game) {
	v.Check(game.Name != "", "name", "must be provided")
	v.Check(len(game.Name) <= 100, "name", "must be 100 characters or less")
	v.Check(game.PointScheme >= 1, "point_scheme", "must be at least 1")
	v.Check(game.PointScheme <= 100, "point_scheme", "must be 100 or less")
	v.Check(game.MetricType == MetricScore || game.MetricType == MetricTime, "metric_type",
		fmt.Sprintf(`must be one of the following: "%s", "%s"`, MetricScore, MetricTime))
	v.Check(game.ScoringDirection == scoring.LowerBetter ||
		game.ScoringDirection == scoring.HigherBetter, "scoring_direction",
		fmt.Sprintf(`must be one of the following: "%s", "%s"`, scoring.LowerBetter,
			scoring.HigherBetter))

	if game.HasRounds {
		v.Check(game.NumberOfRounds != nil, "number_of_rounds",
			"must be provided for a game with rounds")
		if game.NumberOfRounds != nil {
			v.Check(*game.NumberOfRounds >= 2, "number_of_rounds", "must be at least 2")
			v.Check(*game.NumberOfRounds <= 20, "number_of_rounds", "must be 20 or less")
		}
	} else {
		v.Check(game.NumberOfRounds == nil, "number_of_rounds",
			"cannot be provided for a game without rounds")
	}
}
