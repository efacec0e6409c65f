package data

import (
	"context"
	"database/sql"
	"time"

	"GameNightApi/internal/validator"
)

type Penalty struct {
	ID        int64  `json:"id"`
	GameID    int64  `json:"game_id"`
	Name      string `json:"name"`
	Value     int    `json:"value"`
	Stackable bool   `json:"stackable"`
}

// Unit is derived from the owning game's metric type.
func (p *Penalty) Unit(metricType MetricType) string {
	if metricType == MetricTime {
		return "seconds"
	}
	return "points"
}

type PenaltyModel struct {
	db *sql.DB
}

func (m *PenaltyModel) Insert(penalty *Penalty) error {
	stmt := `
		INSERT INTO penalties (game_id, name, value, stackable)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	args := []any{penalty.GameID, penalty.Name, penalty.Value, penalty.Stackable}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, stmt, args...).Scan(&penalty.ID)
	if err != nil {
		switch {
		case err.Error() == `pq: insert or update on table "penalties" violates foreign key `+
			`constraint "penalties_game_id_fkey"`:
			return ErrRecordNotFound
		default:
			return err
		}
	}

	return nil
}

func (m *PenaltyModel) GetForGame(gameID int64) ([]*Penalty, error) {
	stmt := `
		SELECT id, game_id, name, value, stackable
		FROM penalties
		WHERE game_id = $1
		ORDER BY id ASC`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	penalties := make([]*Penalty, 0)
	for rows.Next() {
		var penalty Penalty
		err := rows.Scan(
			&penalty.ID,
			&penalty.GameID,
			&penalty.Name,
			&penalty.Value,
			&penalty.Stackable,
		)
		if err != nil {
			return nil, err
		}
		penalties = append(penalties, &penalty)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return penalties, nil
}

// ReplaceForGame swaps a game's penalty definitions wholesale, matching how
// game edits submit the full list each time.
func (m *PenaltyModel) ReplaceForGame(gameID int64, penalties []*Penalty) error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM penalties WHERE game_id = $1`, gameID); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	stmt := `
		INSERT INTO penalties (game_id, name, value, stackable)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	for _, penalty := range penalties {
		penalty.GameID = gameID
		err := tx.QueryRowContext(ctx, stmt, gameID, penalty.Name, penalty.Value,
			penalty.Stackable).Scan(&penalty.ID)
		if err != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				return rollbackErr
			}
			return err
		}
	}

	return tx.Commit()
}

func (m *PenaltyModel) Delete(penaltyID int64) error {
	stmt := `
		DELETE FROM penalties
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, stmt, penaltyID)
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

func ValidatePenalty(v *validator.Validator, penalty *Penalty) {
	v.Check(penalty.Name != "", "name", "must be provided")
	v.Check(len(penalty.Name) <= 200, "name", "must be 200 characters or less")
	v.Check(penalty.Value >= -999999, "value", "must be -999999 or more")
	v.Check(penalty.Value <= 999999, "value", "must be 999999 or less")
}

func ValidatePenaltyCounts(v *validator.Validator, penalties []*Penalty, counts map[int64]int) {
	known := make(map[int64]*Penalty, len(penalties))
	for _, p := range penalties {
		known[p.ID] = p
	}

	for id, count := range counts {
		p, ok := known[id]
		if !ok {
			v.AddError("penalties", "unknown penalty id")
			continue
		}
		v.Check(count >= 0, "penalties", "count cannot be negative")
		if p.Stackable {
			v.Check(count <= 99, "penalties", "count must be 99 or less")
		} else {
			v.Check(count <= 1, "penalties", "penalty cannot be applied more than once")
		}
	}
}
