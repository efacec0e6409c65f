package data

import (
	"context"
	"database/sql"
	"time"

	"GameNightApi/internal/scorehub"
	"GameNightApi/internal/validator"
)

type Score struct {
	ID            int64    `json:"id"`
	GameID        int64    `json:"game_id"`
	TeamID        int64    `json:"team_id"`
	ScoreValue    *float64 `json:"score_value"`
	Points        int      `json:"points"`
	Notes         string   `json:"notes,omitempty"`
	MultiTimerAvg *float64 `json:"multi_timer_avg,omitempty"`
	TimerCount    int      `json:"timer_count,omitempty"`
}

type LeaderboardEntry struct {
	TeamID      int64  `json:"team_id"`
	Name        string `json:"name"`
	Color       string `json:"color"`
	TotalPoints int    `json:"total_points"`
	Rank        int    `json:"rank"`
}

type ScoreModel struct {
	db *sql.DB
}

func (m *ScoreModel) Upsert(score *Score) error {
	stmt := `
		INSERT INTO scores (game_id, team_id, score_value, points, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (game_id, team_id)
		DO UPDATE SET score_value = EXCLUDED.score_value, points = EXCLUDED.points,
			notes = EXCLUDED.notes
		RETURNING id`

	args := []any{score.GameID, score.TeamID, score.ScoreValue, score.Points, score.Notes}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	return m.db.QueryRowContext(ctx, stmt, args...).Scan(&score.ID)
}

func (m *ScoreModel) GetForGame(gameID int64) ([]*Score, error) {
	stmt := `
		SELECT id, game_id, team_id, score_value, points, coalesce(notes, ''),
			multi_timer_avg, coalesce(timer_count, 0)
		FROM scores
		WHERE game_id = $1
		ORDER BY team_id ASC`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make([]*Score, 0)
	for rows.Next() {
		var score Score
		err := rows.Scan(
			&score.ID,
			&score.GameID,
			&score.TeamID,
			&score.ScoreValue,
			&score.Points,
			&score.Notes,
			&score.MultiTimerAvg,
			&score.TimerCount,
		)
		if err != nil {
			return nil, err
		}
		scores = append(scores, &score)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return scores, nil
}

// Leaderboard sums every team's points across all games, best first.
func (m *ScoreModel) Leaderboard() ([]*LeaderboardEntry, error) {
	stmt := `
		SELECT teams.id, teams.name, teams.color, coalesce(sum(scores.points), 0) AS total
		FROM teams
		LEFT JOIN scores ON scores.team_id = teams.id
		GROUP BY teams.id, teams.name, teams.color
		ORDER BY total DESC, teams.name ASC`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]*LeaderboardEntry, 0)
	for rows.Next() {
		var entry LeaderboardEntry
		err := rows.Scan(&entry.TeamID, &entry.Name, &entry.Color, &entry.TotalPoints)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	assignLeaderboardRanks(entries)
	return entries, nil
}

// assignLeaderboardRanks numbers entries already sorted best-first, giving
// tied point totals the same rank.
func assignLeaderboardRanks(entries []*LeaderboardEntry) {
	for i, entry := range entries {
		if i > 0 && entry.TotalPoints == entries[i-1].TotalPoints {
			entry.Rank = entries[i-1].Rank
			continue
		}
		entry.Rank = i + 1
	}
}

// UpsertScore saves a live-channel value against the main score row.
func (m *ScoreModel) UpsertScore(gameID, teamID int64, scoreValue *float64, points int) error {
	stmt := `
		INSERT INTO scores (game_id, team_id, score_value, points)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (game_id, team_id)
		DO UPDATE SET score_value = EXCLUDED.score_value, points = EXCLUDED.points`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := m.db.ExecContext(ctx, stmt, gameID, teamID, scoreValue, points)
	return err
}

// UpsertRoundScore saves a round value, then syncs the team's cumulative
// round points into the main score row so the leaderboard stays consistent.
func (m *ScoreModel) UpsertRoundScore(gameID, roundID, teamID int64, scoreValue *float64,
	points int) error {
	upsertStmt := `
		INSERT INTO round_scores (round_id, team_id, score_value, points)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (round_id, team_id)
		DO UPDATE SET score_value = EXCLUDED.score_value, points = EXCLUDED.points`

	syncStmt := `
		INSERT INTO scores (game_id, team_id, score_value, points)
		SELECT $1, round_scores.team_id, sum(round_scores.points)::float8,
			sum(round_scores.points)
		FROM round_scores
		INNER JOIN rounds ON rounds.id = round_scores.round_id
		WHERE rounds.game_id = $1 AND round_scores.team_id = $2
		GROUP BY round_scores.team_id
		ON CONFLICT (game_id, team_id)
		DO UPDATE SET score_value = EXCLUDED.score_value, points = EXCLUDED.points`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, upsertStmt, roundID, teamID, scoreValue, points); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, syncStmt, gameID, teamID); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			return rollbackErr
		}
		return err
	}

	return tx.Commit()
}

// ScoresForGame loads the authoritative score snapshot shipped on join.
func (m *ScoreModel) ScoresForGame(gameID int64) (map[int64]scorehub.ScoreState, error) {
	stmt := `
		SELECT team_id, score_value, points, multi_timer_avg, coalesce(timer_count, 0)
		FROM scores
		WHERE game_id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScoreStates(rows)
}

// ScoresForRound is the round-scoped equivalent of ScoresForGame.
func (m *ScoreModel) ScoresForRound(roundID int64) (map[int64]scorehub.ScoreState, error) {
	stmt := `
		SELECT team_id, score_value, points, multi_timer_avg, coalesce(timer_count, 0)
		FROM round_scores
		WHERE round_id = $1`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, stmt, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanScoreStates(rows)
}

func scanScoreStates(rows *sql.Rows) (map[int64]scorehub.ScoreState, error) {
	states := make(map[int64]scorehub.ScoreState)
	for rows.Next() {
		var teamID int64
		var state scorehub.ScoreState
		err := rows.Scan(
			&teamID,
			&state.ScoreValue,
			&state.Points,
			&state.MultiTimerAvg,
			&state.TimerCount,
		)
		if err != nil {
			return nil, err
		}
		states[teamID] = state
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return states, nil
}

func ValidateScore(v *validator.Validator, score *Score) {
	if score.ScoreValue != nil {
		v.Check(*score.ScoreValue >= scorehub.ScoreValueMin, "score_value",
			"must be -999999.99 or more")
		v.Check(*score.ScoreValue <= scorehub.ScoreValueMax, "score_value",
			"must be 999999.99 or less")
	}
	v.Check(score.TeamID > 0, "team_id", "must be a valid team")
	v.Check(score.GameID > 0, "game_id", "must be a valid game")
}
