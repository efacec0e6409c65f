package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"GameNightApi/internal/validator"
)

var (
	ErrDuplicateTeamName = errors.New("duplicate team name")
)

type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"-"`
	Version   int32     `json:"-"`
}

// Abbreviation shortens a team name for narrow displays: initials for
// multi-word names, a three letter prefix otherwise.
func (t *Team) Abbreviation() string {
	words := strings.Fields(t.Name)
	if len(words) == 0 {
		return ""
	}

	if len(words) >= 2 {
		var b strings.Builder
		for _, w := range words {
			b.WriteString(strings.ToUpper(w[:1]))
		}
		return b.String()
	}

	word := words[0]
	if len(word) <= 3 {
		return strings.ToUpper(word)
	}
	return strings.ToUpper(word[:3])
}

type TeamModel struct {
	db *sql.DB
}

func (m *TeamModel) Insert(team *Team) error {
	stmt := `
		INSERT INTO teams (name, color)
		VALUES ($1, $2)
		RETURNING id, created_at, version`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, stmt, team.Name, team.Color).Scan(
		&team.ID,
		&team.CreatedAt,
		&team.Version,
	)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "unq_team_name"`:
			return ErrDuplicateTeamName
		default:
			return err
		}
	}

	return nil
}

func (m *TeamModel) Get(teamID int64) (*Team, error) {
	stmt := `
		SELECT id, name, color, created_at, version
		FROM teams
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	var team Team
	err := m.db.QueryRowContext(ctx, stmt, teamID).Scan(
		&team.ID,
		&team.Name,
		&team.Color,
		&team.CreatedAt,
		&team.Version,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &team, nil
}

func (m *TeamModel) GetAll() ([]*Team, error) {
	stmt := `
		SELECT id, name, color, created_at, version
		FROM teams
		ORDER BY name ASC, id ASC`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*Team, 0)
	for rows.Next() {
		var team Team
		err := rows.Scan(
			&team.ID,
			&team.Name,
			&team.Color,
			&team.CreatedAt,
			&team.Version,
		)
		if err != nil {
			return nil, err
		}
		teams = append(teams, &team)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return teams, nil
}

func (m *TeamModel) Update(team *Team) error {
	stmt := `
		UPDATE teams
		SET name = $1, color = $2, version = version + 1
		WHERE id = $3 AND version = $4
		RETURNING version`

	args := []any{team.Name, team.Color, team.ID, team.Version}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, stmt, args...).Scan(&team.Version)
	if err != nil {
		switch {
		case err.Error() == `pq: duplicate key value violates unique constraint "unq_team_name"`:
			return ErrDuplicateTeamName
		case errors.Is(err, sql.ErrNoRows):
			return ErrEditConflict
		default:
			return err
		}
	}

	return nil
}

func (m *TeamModel) Delete(teamID int64) error {
	stmt := `
		DELETE FROM teams
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, stmt, teamID)
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

func ValidateTeam(v *validator.Validator, team *Team) {
	v.Check(team.Name != "", "name", "must be provided")
	v.Check(len(team.Name) <= 100, "name", "must be 100 characters or less")
	v.Check(team.Color != "", "color", "must be provided")
	v.Check(validator.Matches(team.Color, validator.ColorRX), "color",
		"must be a hex color like #3b82f6")
}
