package scorehub

import (
	"sync"
	"time"
)

// TimerRecord is one user's recorded stopwatch value for a team. Durable
// records survive the session; the aggregator only tracks which timers are
// currently running in memory.
type TimerRecord struct {
	ID          int64     `json:"id"`
	GameID      int64     `json:"game_id"`
	TeamID      int64     `json:"team_id"`
	UserID      string    `json:"user_id"`
	DisplayName string    `json:"display_name"`
	TimeValue   float64   `json:"time_value"`
	RecordedAt  time.Time `json:"recorded_at"`
	IsActive    bool      `json:"is_active"`
}

// TimerStore is the durable side of timer aggregation. internal/data
// implements it over Postgres; tests use an in-memory fake.
type TimerStore interface {
	Insert(record *TimerRecord) error
	GetForTeam(gameID, teamID int64) ([]*TimerRecord, error)
	ClearForTeam(gameID, teamID int64) (int, error)
	Delete(id int64) error
}

type timerKey struct {
	gameID int64
	teamID int64
	userID string
}

type activeTimer struct {
	startedAt   time.Time
	displayName string
}

// TimerAggregator collects concurrent stopwatch values from multiple users
// timing the same team and reduces them to an average.
type TimerAggregator struct {
	mu     sync.Mutex
	active map[timerKey]activeTimer
	store  TimerStore
	now    func() time.Time
}

func NewTimerAggregator(store TimerStore) *TimerAggregator {
	return &TimerAggregator{
		active: make(map[timerKey]activeTimer),
		store:  store,
		now:    time.Now,
	}
}

// StartTimer marks a user's stopwatch as running for a team.
func (ta *TimerAggregator) StartTimer(gameID, teamID int64, userID, displayName string) {
	ta.mu.Lock()
	defer ta.mu.Unlock()

	ta.active[timerKey{gameID, teamID, userID}] = activeTimer{
		startedAt:   ta.now(),
		displayName: displayName,
	}
}

// RecordTime persists a stopped timer's value and removes it from the
// running set.
func (ta *TimerAggregator) RecordTime(gameID, teamID int64, userID, displayName string,
	timeValue float64) (*TimerRecord, error) {
	record := &TimerRecord{
		GameID:      gameID,
		TeamID:      teamID,
		UserID:      userID,
		DisplayName: displayName,
		TimeValue:   timeValue,
		RecordedAt:  ta.now(),
		IsActive:    true,
	}
	if err := ta.store.Insert(record); err != nil {
		return nil, err
	}

	ta.mu.Lock()
	delete(ta.active, timerKey{gameID, teamID, userID})
	ta.mu.Unlock()

	return record, nil
}

// TeamTimes fetches the active recorded values for a team.
func (ta *TimerAggregator) TeamTimes(gameID, teamID int64) ([]float64, []*TimerRecord, error) {
	records, err := ta.store.GetForTeam(gameID, teamID)
	if err != nil {
		return nil, nil, err
	}

	times := make([]float64, 0, len(records))
	for _, r := range records {
		times = append(times, r.TimeValue)
	}
	return times, records, nil
}

// ClearTeam marks a team's recorded timers inactive.
func (ta *TimerAggregator) ClearTeam(gameID, teamID int64) (int, error) {
	return ta.store.ClearForTeam(gameID, teamID)
}

// StoppedTimer identifies a running timer killed by a disconnect.
type StoppedTimer struct {
	GameID int64
	TeamID int64
}

// StopUserTimers drops all of a user's running timers, e.g. on disconnect.
func (ta *TimerAggregator) StopUserTimers(userID string) []StoppedTimer {
	ta.mu.Lock()
	defer ta.mu.Unlock()

	var stopped []StoppedTimer
	for key := range ta.active {
		if key.userID == userID {
			delete(ta.active, key)
			stopped = append(stopped, StoppedTimer{GameID: key.gameID, TeamID: key.teamID})
		}
	}
	return stopped
}

// Average reduces timer values to their mean; zero when empty.
func Average(times []float64) float64 {
	if len(times) == 0 {
		return 0
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return sum / float64(len(times))
}
