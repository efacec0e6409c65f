package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"GameNightApi/internal/scorehub"
)

// TimerModel is the durable side of multi-user timing. It implements
// scorehub.TimerStore.
type TimerModel struct {
	db *sql.DB
}

func (m *TimerModel) Insert(record *scorehub.TimerRecord) error {
	stmt := `
		INSERT INTO timer_records (game_id, team_id, user_id, user_display_name, time_value,
			is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, recorded_at`

	args := []any{
		record.GameID,
		record.TeamID,
		record.UserID,
		record.DisplayName,
		record.TimeValue,
		record.IsActive,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return m.db.QueryRowContext(ctx, stmt, args...).Scan(&record.ID, &record.RecordedAt)
}

func (m *TimerModel) GetForTeam(gameID, teamID int64) ([]*scorehub.TimerRecord, error) {
	stmt := `
		SELECT id, game_id, team_id, user_id, coalesce(user_display_name, ''), time_value,
			recorded_at, is_active
		FROM timer_records
		WHERE game_id = $1 AND team_id = $2 AND is_active = TRUE
		ORDER BY recorded_at ASC`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, gameID, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*scorehub.TimerRecord, 0)
	for rows.Next() {
		var record scorehub.TimerRecord
		err := rows.Scan(
			&record.ID,
			&record.GameID,
			&record.TeamID,
			&record.UserID,
			&record.DisplayName,
			&record.TimeValue,
			&record.RecordedAt,
			&record.IsActive,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// ClearForTeam marks a team's recorded timers inactive rather than deleting
// them, keeping the history inspectable.
func (m *TimerModel) ClearForTeam(gameID, teamID int64) (int, error) {
	stmt := `
		UPDATE timer_records
		SET is_active = FALSE
		WHERE game_id = $1 AND team_id = $2 AND is_active = TRUE`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, stmt, gameID, teamID)
	if err != nil {
		return 0, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rowsAffected), nil
}

func (m *TimerModel) Delete(recordID int64) error {
	stmt := `
		DELETE FROM timer_records
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, stmt, recordID)
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

// Get fetches one record by id, for delete confirmation responses.
func (m *TimerModel) Get(recordID int64) (*scorehub.TimerRecord, error) {
	stmt := `
		SELECT id, game_id, team_id, user_id, coalesce(user_display_name, ''), time_value,
			recorded_at, is_active
		FROM timer_records
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var record scorehub.TimerRecord
	err := m.db.QueryRowContext(ctx, stmt, recordID).Scan(
		&record.ID,
		&record.GameID,
		&record.TeamID,
		&record.UserID,
		&record.DisplayName,
		&record.TimeValue,
		&record.RecordedAt,
		&record.IsActive,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &record, nil
}
