package scorehub

import (
	"GameNightApi/internal/assert"
	"GameNightApi/internal/jsonlog"
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"
)

// memScoreStore is an in-memory ScoreStore for hub tests.
type memScoreStore struct {
	mu     sync.Mutex
	games  map[int64]map[int64]ScoreState
	rounds map[int64]map[int64]ScoreState
}

func newMemScoreStore() *memScoreStore {
	return &memScoreStore{
		games:  make(map[int64]map[int64]ScoreState),
		rounds: make(map[int64]map[int64]ScoreState),
	}
}

func (m *memScoreStore) UpsertScore(gameID, teamID int64, scoreValue *float64, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.games[gameID] == nil {
		m.games[gameID] = make(map[int64]ScoreState)
	}
	m.games[gameID][teamID] = ScoreState{ScoreValue: scoreValue, Points: points}
	return nil
}

func (m *memScoreStore) UpsertRoundScore(gameID, roundID, teamID int64, scoreValue *float64,
	points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rounds[roundID] == nil {
		m.rounds[roundID] = make(map[int64]ScoreState)
	}
	m.rounds[roundID][teamID] = ScoreState{ScoreValue: scoreValue, Points: points}
	return nil
}

func (m *memScoreStore) ScoresForGame(gameID int64) (map[int64]ScoreState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[int64]ScoreState, len(m.games[gameID]))
	for teamID, state := range m.games[gameID] {
		out[teamID] = state
	}
	return out, nil
}

func (m *memScoreStore) ScoresForRound(roundID int64) (map[int64]ScoreState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[int64]ScoreState, len(m.rounds[roundID]))
	for teamID, state := range m.rounds[roundID] {
		out[teamID] = state
	}
	return out, nil
}

type wireEvent struct {
	Event string         `json:"event"`
	Data  map[string]any `json:"data"`
}

func newTestHub(hasRounds bool) (*Hub, *memScoreStore) {
	store := newMemScoreStore()
	hub := NewHub(1, hasRounds, store, newMemTimerStore(),
		jsonlog.New(io.Discard, jsonlog.LevelOff))
	go hub.Run()
	return hub, store
}

// joinHub registers a session and consumes its connected event.
func joinHub(t *testing.T, hub *Hub, userID, displayName string, isAdmin bool) *Session {
	t.Helper()

	s := NewSession(hub, nil, userID, displayName, isAdmin)
	hub.Join <- s

	ev := nextEvent(t, s)
	assert.Equal(t, ev.Event, "connected")
	return s
}

func nextEvent(t *testing.T, s *Session) wireEvent {
	t.Helper()

	select {
	case msg := <-s.Receive:
		var ev wireEvent
		if err := json.Unmarshal(msg, &ev); err != nil {
			t.Fatalf("could not unmarshal event %q: %v", msg, err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return wireEvent{}
}

func noEvent(t *testing.T, s *Session) {
	t.Helper()

	select {
	case msg := <-s.Receive:
		t.Fatalf("expected no event, got %q", msg)
	case <-time.After(100 * time.Millisecond):
	}
}

func floatPtr(v float64) *float64 {
	return &v
}

func TestHubLockHandoff(t *testing.T) {
	hub, store := newTestHub(false)

	x := joinHub(t, hub, "admin_1", "admin", true)
	y := joinHub(t, hub, "anon_2", "Player", false)

	hub.Events <- SessionEvent{Session: x, Event: &RequestLockEvent{
		GameID: 1, TeamID: 5, Field: "score",
	}}

	ev := nextEvent(t, x)
	assert.Equal(t, ev.Event, "lock_acquired")
	assert.Equal(t, ev.Data["team_id"], 5.0)
	assert.Equal(t, ev.Data["field"], "score")

	ev = nextEvent(t, y)
	assert.Equal(t, ev.Event, "field_locked")
	assert.Equal(t, ev.Data["user_id"], "admin_1")
	assert.Equal(t, ev.Data["display_name"], "admin")

	// Second requester is denied and told who holds it.
	hub.Events <- SessionEvent{Session: y, Event: &RequestLockEvent{
		GameID: 1, TeamID: 5, Field: "score",
	}}

	ev = nextEvent(t, y)
	assert.Equal(t, ev.Event, "lock_denied")
	assert.Equal(t, ev.Data["locked_by"], "admin")
	noEvent(t, x)

	// Holder releases with a committed value; the whole room converges.
	hub.Events <- SessionEvent{Session: x, Event: &ReleaseLockEvent{
		RequestLockEvent: RequestLockEvent{GameID: 1, TeamID: 5, Field: "score"},
		Score:            floatPtr(100.5),
		Points:           floatPtr(9),
	}}

	for _, s := range []*Session{x, y} {
		ev = nextEvent(t, s)
		assert.Equal(t, ev.Event, "field_unlocked")
		assert.Equal(t, ev.Data["score"], 100.5)
		assert.Equal(t, ev.Data["points"], 9.0)
		assert.Equal(t, ev.Data["updated_by"], "admin")
	}

	scores, err := store.ScoresForGame(1)
	assert.NilError(t, err)
	assert.Equal(t, *scores[5].ScoreValue, 100.5)
	assert.Equal(t, scores[5].Points, 9)

	// The field is free again.
	hub.Events <- SessionEvent{Session: y, Event: &RequestLockEvent{
		GameID: 1, TeamID: 5, Field: "score",
	}}
	ev = nextEvent(t, y)
	assert.Equal(t, ev.Event, "lock_acquired")
}

func TestHubReleaseWithoutHolding(t *testing.T) {
	hub, store := newTestHub(false)

	x := joinHub(t, hub, "admin_1", "admin", true)
	y := joinHub(t, hub, "anon_2", "Player", false)

	hub.Events <- SessionEvent{Session: x, Event: &RequestLockEvent{
		GameID: 1, TeamID: 5, Field: "score",
	}}
	nextEvent(t, x)
	nextEvent(t, y)

	// Y does not hold the lock: no unlock, no persist, no broadcast.
	hub.Events <- SessionEvent{Session: y, Event: &ReleaseLockEvent{
		RequestLockEvent: RequestLockEvent{GameID: 1, TeamID: 5, Field: "score"},
		Score:            floatPtr(3),
		Points:           floatPtr(1),
	}}
	noEvent(t, x)
	noEvent(t, y)

	scores, err := store.ScoresForGame(1)
	assert.NilError(t, err)
	assert.Equal(t, len(scores), 0)
	assert.True(t, hub.Locks.HasLock(LockKey{GameID: 1, TeamID: 5, Field: "score"}, "admin_1"))
}

func TestHubJoinSendsGameState(t *testing.T) {
	hub, store := newTestHub(false)
	store.UpsertScore(1, 5, floatPtr(88), 7)

	x := joinHub(t, hub, "admin_1", "admin", true)
	hub.Events <- SessionEvent{Session: x, Event: &RequestLockEvent{
		GameID: 1, TeamID: 5, Field: "score",
	}}
	nextEvent(t, x)

	y := joinHub(t, hub, "anon_2", "Player", false)
	hub.Events <- SessionEvent{Session: y, Event: &JoinGameEvent{GameID: 1}}

	ev := nextEvent(t, y)
	assert.Equal(t, ev.Event, "game_state")

	scores, ok := ev.Data["scores"].(map[string]any)
	assert.True(t, ok)
	team, ok := scores["5"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, team["score_value"], 88.0)
	assert.Equal(t, team["points"], 7.0)

	locks, ok := ev.Data["locks"].([]any)
	assert.True(t, ok)
	assert.Equal(t, len(locks), 1)

	// The rest of the room hears about the newcomer.
	ev = nextEvent(t, x)
	assert.Equal(t, ev.Event, "user_joined")
	assert.Equal(t, ev.Data["user_id"], "anon_2")
}

func TestHubUpdateScore(t *testing.T) {
	hub, store := newTestHub(false)

	x := joinHub(t, hub, "admin_1", "admin", true)
	y := joinHub(t, hub, "anon_2", "Player", false)

	// Out-of-range values bounce back to the sender only.
	hub.Events <- SessionEvent{Session: x, Event: &UpdateScoreEvent{
		GameID: 1, TeamID: 5, Score: floatPtr(2000000),
	}}
	ev := nextEvent(t, x)
	assert.Equal(t, ev.Event, "error")
	assert.StringContains(t, ev.Data["message"].(string), "out of range")
	noEvent(t, y)

	scores, err := store.ScoresForGame(1)
	assert.NilError(t, err)
	assert.Equal(t, len(scores), 0)

	// In-range values persist and broadcast, no lock required.
	hub.Events <- SessionEvent{Session: x, Event: &UpdateScoreEvent{
		GameID: 1, TeamID: 5, Score: floatPtr(42.5), Points: floatPtr(3),
	}}
	for _, s := range []*Session{x, y} {
		ev = nextEvent(t, s)
		assert.Equal(t, ev.Event, "score_updated")
		assert.Equal(t, ev.Data["team_id"], 5.0)
		assert.Equal(t, ev.Data["score"], 42.5)
	}

	scores, err = store.ScoresForGame(1)
	assert.NilError(t, err)
	assert.Equal(t, *scores[5].ScoreValue, 42.5)
	assert.Equal(t, scores[5].Points, 3)
}

func TestHubRoundScopedPersistence(t *testing.T) {
	hub, store := newTestHub(true)

	x := joinHub(t, hub, "admin_1", "admin", true)
	hub.Events <- SessionEvent{Session: x, Event: &JoinGameEvent{GameID: 1, RoundID: 3}}
	ev := nextEvent(t, x)
	assert.Equal(t, ev.Event, "game_state")
	assert.Equal(t, ev.Data["round_id"], 3.0)

	// No round_id on the event: the session's joined round applies.
	hub.Events <- SessionEvent{Session: x, Event: &UpdateScoreEvent{
		GameID: 1, TeamID: 5, Score: floatPtr(17), Points: floatPtr(2),
	}}
	ev = nextEvent(t, x)
	assert.Equal(t, ev.Event, "score_updated")
	assert.Equal(t, ev.Data["round_id"], 3.0)

	roundScores, err := store.ScoresForRound(3)
	assert.NilError(t, err)
	assert.Equal(t, *roundScores[5].ScoreValue, 17.0)

	gameScores, err := store.ScoresForGame(1)
	assert.NilError(t, err)
	assert.Equal(t, len(gameScores), 0)
}

func TestHubDisconnectReleasesLocks(t *testing.T) {
	hub, store := newTestHub(false)
	store.UpsertScore(1, 5, floatPtr(60), 4)

	x := joinHub(t, hub, "admin_1", "admin", true)
	y := joinHub(t, hub, "anon_2", "Player", false)

	hub.Events <- SessionEvent{Session: x, Event: &RequestLockEvent{
		GameID: 1, TeamID: 5, Field: "score",
	}}
	nextEvent(t, x)
	nextEvent(t, y)

	hub.Events <- SessionEvent{Session: x, Event: &StartTimerEvent{GameID: 1, TeamID: 6}}
	nextEvent(t, x)
	nextEvent(t, y)

	hub.Leave <- x

	// Survivors see the lock fall back to the last committed value.
	ev := nextEvent(t, y)
	assert.Equal(t, ev.Event, "field_unlocked")
	assert.Equal(t, ev.Data["team_id"], 5.0)
	assert.Equal(t, ev.Data["score"], 60.0)
	assert.Equal(t, ev.Data["points"], 4.0)

	ev = nextEvent(t, y)
	assert.Equal(t, ev.Event, "timer_stopped")
	assert.Equal(t, ev.Data["team_id"], 6.0)

	ev = nextEvent(t, y)
	assert.Equal(t, ev.Event, "user_left")
	assert.Equal(t, ev.Data["user_id"], "admin_1")

	assert.Equal(t, len(hub.Locks.LocksForGame(1)), 0)
}

func TestHubTimerFlow(t *testing.T) {
	hub, _ := newTestHub(false)

	x := joinHub(t, hub, "admin_1", "admin", true)
	y := joinHub(t, hub, "anon_2", "Player", false)

	hub.Events <- SessionEvent{Session: x, Event: &StopTimerEvent{
		GameID: 1, TeamID: 5, TimeValue: 12,
	}}
	ev := nextEvent(t, x)
	assert.Equal(t, ev.Event, "timer_stopped")
	assert.Equal(t, ev.Data["time"], 12.0)
	assert.Equal(t, ev.Data["average"], 12.0)
	nextEvent(t, y)

	hub.Events <- SessionEvent{Session: y, Event: &StopTimerEvent{
		GameID: 1, TeamID: 5, TimeValue: 20,
	}}
	ev = nextEvent(t, y)
	assert.Equal(t, ev.Event, "timer_stopped")
	assert.Equal(t, ev.Data["average"], 16.0)
	assert.Equal(t, ev.Data["timer_count"], 2.0)
	nextEvent(t, x)

	// Out-of-range timer values are rejected to the sender.
	hub.Events <- SessionEvent{Session: y, Event: &StopTimerEvent{
		GameID: 1, TeamID: 5, TimeValue: -1,
	}}
	ev = nextEvent(t, y)
	assert.Equal(t, ev.Event, "error")
	noEvent(t, x)

	// Clearing is admin-only.
	hub.Events <- SessionEvent{Session: y, Event: &ClearTimersEvent{GameID: 1, TeamID: 5}}
	ev = nextEvent(t, y)
	assert.Equal(t, ev.Event, "error")
	noEvent(t, x)

	hub.Events <- SessionEvent{Session: x, Event: &ClearTimersEvent{GameID: 1, TeamID: 5}}
	for _, s := range []*Session{x, y} {
		ev = nextEvent(t, s)
		assert.Equal(t, ev.Event, "timers_cleared")
		assert.Equal(t, ev.Data["count"], 2.0)
	}
}

func TestHubSlowSessionDropReleasesLocks(t *testing.T) {
	hub, _ := newTestHub(false)

	x := joinHub(t, hub, "admin_1", "admin", true)
	y := joinHub(t, hub, "anon_2", "Player", false)

	hub.Events <- SessionEvent{Session: x, Event: &RequestLockEvent{
		GameID: 1, TeamID: 5, Field: "score",
	}}
	nextEvent(t, x)
	nextEvent(t, y)

	// Stop reading x and flood the room until its buffer overflows and the
	// hub drops it. The drop must release its lock for the survivors.
	var sawUnlock, sawLeft bool
	record := func(ev wireEvent) {
		switch ev.Event {
		case "field_unlocked":
			sawUnlock = true
			assert.Equal(t, ev.Data["team_id"], 5.0)
		case "user_left":
			sawLeft = true
			assert.Equal(t, ev.Data["user_id"], "admin_1")
		}
	}

	for i := 0; i < 2*cap(x.Receive); i++ {
		hub.Events <- SessionEvent{Session: y, Event: &UpdateScoreEvent{
			GameID: 1, TeamID: 6, Score: floatPtr(float64(i)),
		}}
		record(nextEvent(t, y))
	}
	for !sawUnlock || !sawLeft {
		record(nextEvent(t, y))
	}

	assert.Equal(t, len(hub.Locks.LocksForGame(1)), 0)
}

func TestHubSweepBroadcastsExpiredLocks(t *testing.T) {
	store := newMemScoreStore()
	store.UpsertScore(1, 5, floatPtr(42), 3)
	hub := NewHub(1, false, store, newMemTimerStore(),
		jsonlog.New(io.Discard, jsonlog.LevelOff))

	now := time.Now()
	hub.Locks.now = func() time.Time { return now }
	hub.Locks.Acquire(LockKey{GameID: 1, TeamID: 5, Field: "score"}, "anon_2", "Player")

	s := NewSession(hub, nil, "anon_3", "Player", false)
	hub.sessions[s] = true

	now = now.Add(DefaultLockTimeout + time.Second)
	hub.sweepExpiredLocks()

	ev := nextEvent(t, s)
	assert.Equal(t, ev.Event, "field_unlocked")
	assert.Equal(t, ev.Data["team_id"], 5.0)
	assert.Equal(t, ev.Data["score"], 42.0)
	assert.Equal(t, ev.Data["points"], 3.0)
	assert.Equal(t, len(hub.Locks.LocksForGame(1)), 0)
}
