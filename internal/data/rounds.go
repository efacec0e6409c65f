package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type Round struct {
	ID          int64  `json:"id"`
	GameID      int64  `json:"game_id"`
	RoundNumber int    `json:"round_number"`
	Description string `json:"description,omitempty"`
}

// Name is the display label for a round.
func (r *Round) Name() string {
	if r.Description != "" {
		return fmt.Sprintf("Round %d: %s", r.RoundNumber, r.Description)
	}
	return fmt.Sprintf("Round %d", r.RoundNumber)
}

type RoundModel struct {
	db *sql.DB
}

// CreateForGame inserts rounds 1..count for a game, skipping any that
// already exist so repeated setup calls are safe.
func (m *RoundModel) CreateForGame(gameID int64, count int) error {
	stmt := `
		INSERT INTO rounds (game_id, round_number)
		VALUES ($1, $2)
		ON CONFLICT (game_id, round_number) DO NOTHING`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	for n := 1; n <= count; n++ {
		if _, err := tx.ExecContext(ctx, stmt, gameID, n); err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				return rollbackErr
			}
			return err
		}
	}

	return tx.Commit()
}

func (m *RoundModel) Get(roundID int64) (*Round, error) {
	stmt := `
		SELECT id, game_id, round_number, coalesce(description, '')
		FROM rounds
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var round Round
	err := m.db.QueryRowContext(ctx, stmt, roundID).Scan(
		&round.ID,
		&round.GameID,
		&round.RoundNumber,
		&round.Description,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &round, nil
}

func (m *RoundModel) GetForGame(gameID int64) ([]*Round, error) {
	stmt := `
		SELECT id, game_id, round_number, coalesce(description, '')
		FROM rounds
		WHERE game_id = $1
		ORDER BY round_number ASC`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rounds := make([]*Round, 0)
	for rows.Next() {
		var round Round
		err := rows.Scan(
			&round.ID,
			&round.GameID,
			&round.RoundNumber,
			&round.Description,
		)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, &round)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return rounds, nil
}
