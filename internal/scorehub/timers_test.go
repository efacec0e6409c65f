package scorehub

import (
	"GameNightApi/internal/assert"
	"sync"
	"testing"
)

// memTimerStore is an in-memory TimerStore for hub and aggregator tests.
type memTimerStore struct {
	mu      sync.Mutex
	nextID  int64
	records []*TimerRecord
}

func newMemTimerStore() *memTimerStore {
	return &memTimerStore{nextID: 1}
}

func (m *memTimerStore) Insert(record *TimerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record.ID = m.nextID
	m.nextID++
	m.records = append(m.records, record)
	return nil
}

func (m *memTimerStore) GetForTeam(gameID, teamID int64) ([]*TimerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*TimerRecord
	for _, r := range m.records {
		if r.GameID == gameID && r.TeamID == teamID && r.IsActive {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memTimerStore) ClearForTeam(gameID, teamID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var cleared int
	for _, r := range m.records {
		if r.GameID == gameID && r.TeamID == teamID && r.IsActive {
			r.IsActive = false
			cleared++
		}
	}
	return cleared, nil
}

func (m *memTimerStore) Delete(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, r := range m.records {
		if r.ID == id {
			m.records = append(m.records[:i], m.records[i+1:]...)
			return nil
		}
	}
	return nil
}

func TestTimerAggregatorRecordAndAverage(t *testing.T) {
	store := newMemTimerStore()
	ta := NewTimerAggregator(store)

	ta.StartTimer(1, 5, "anon_1", "Player")
	ta.StartTimer(1, 5, "anon_2", "Player")

	_, err := ta.RecordTime(1, 5, "anon_1", "Player", 10.0)
	assert.NilError(t, err)
	_, err = ta.RecordTime(1, 5, "anon_2", "Player", 20.0)
	assert.NilError(t, err)

	times, records, err := ta.TeamTimes(1, 5)
	assert.NilError(t, err)
	assert.Equal(t, len(times), 2)
	assert.Equal(t, len(records), 2)
	assert.Equal(t, Average(times), 15.0)

	// Recording removed the running entries, so a disconnect stops nothing.
	assert.Equal(t, len(ta.StopUserTimers("anon_1")), 0)
}

func TestTimerAggregatorStopUserTimers(t *testing.T) {
	ta := NewTimerAggregator(newMemTimerStore())

	ta.StartTimer(1, 5, "anon_1", "Player")
	ta.StartTimer(1, 6, "anon_1", "Player")
	ta.StartTimer(1, 5, "anon_2", "Player")

	stopped := ta.StopUserTimers("anon_1")
	assert.Equal(t, len(stopped), 2)

	stopped = ta.StopUserTimers("anon_2")
	assert.Equal(t, len(stopped), 1)
	assert.Equal(t, stopped[0], StoppedTimer{GameID: 1, TeamID: 5})
}

func TestTimerAggregatorClearTeam(t *testing.T) {
	store := newMemTimerStore()
	ta := NewTimerAggregator(store)

	ta.RecordTime(1, 5, "anon_1", "Player", 12.5)
	ta.RecordTime(1, 5, "anon_2", "Player", 14.5)
	ta.RecordTime(1, 6, "anon_1", "Player", 30.0)

	cleared, err := ta.ClearTeam(1, 5)
	assert.NilError(t, err)
	assert.Equal(t, cleared, 2)

	times, _, err := ta.TeamTimes(1, 5)
	assert.NilError(t, err)
	assert.Equal(t, len(times), 0)

	// The other team's records are untouched.
	times, _, err = ta.TeamTimes(1, 6)
	assert.NilError(t, err)
	assert.Equal(t, len(times), 1)
}

func TestAverage(t *testing.T) {
	assert.Equal(t, Average(nil), 0.0)
	assert.Equal(t, Average([]float64{42}), 42.0)
	assert.Equal(t, Average([]float64{1, 2, 3, 4}), 2.5)
}
