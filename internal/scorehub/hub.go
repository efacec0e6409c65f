// Package scorehub is the server-authoritative coordinator for live scoring:
// one hub per in-progress game owns the room's sessions, the edit-lock table
// and timer aggregation, and applies every inbound event to completion on a
// single run loop before touching the next. That loop is what guarantees no
// two lock requests for the same field ever both observe it unlocked, and
// that broadcasts reach the room in transition order.
package scorehub

import (
	"fmt"
	"time"

	"GameNightApi/internal/jsonlog"
)

// ScoreState is the authoritative score snapshot for one team, shipped in
// game_state payloads on join.
type ScoreState struct {
	ScoreValue    *float64 `json:"score_value"`
	Points        int      `json:"points"`
	MultiTimerAvg *float64 `json:"multi_timer_avg,omitempty"`
	TimerCount    int      `json:"timer_count,omitempty"`
}

// ScoreStore is the persistence collaborator for committed and in-progress
// scores. internal/data implements it over Postgres.
type ScoreStore interface {
	UpsertScore(gameID, teamID int64, scoreValue *float64, points int) error
	UpsertRoundScore(gameID, roundID, teamID int64, scoreValue *float64, points int) error
	ScoresForGame(gameID int64) (map[int64]ScoreState, error)
	ScoresForRound(roundID int64) (map[int64]ScoreState, error)
}

// SessionEvent pairs an inbound event with the session that sent it so
// replies can target the requester alone.
type SessionEvent struct {
	Session *Session
	Event   GameEvent
}

type Hub struct {
	GameID    int64
	HasRounds bool

	Locks  *LockManager
	Timers *TimerAggregator
	scores ScoreStore
	logger *jsonlog.Logger

	sessions map[*Session]bool

	Events chan SessionEvent
	Errors chan error
	Join   chan *Session
	Leave  chan *Session
}

func NewHub(gameID int64, hasRounds bool, scores ScoreStore, timers TimerStore,
	logger *jsonlog.Logger) *Hub {
	return &Hub{
		GameID:    gameID,
		HasRounds: hasRounds,
		Locks:     NewLockManager(DefaultLockTimeout),
		Timers:    NewTimerAggregator(timers),
		scores:    scores,
		logger:    logger,
		sessions:  make(map[*Session]bool),
		Events:    make(chan SessionEvent),
		Errors:    make(chan error),
		Join:      make(chan *Session),
		Leave:     make(chan *Session),
	}
}

// Run is the hub's single-writer loop. Everything that mutates room state
// happens here, one message at a time.
func (h *Hub) Run() {
	sweep := time.NewTicker(DefaultLockTimeout)
	defer sweep.Stop()

	for {
		select {
		case s := <-h.Join:
			h.sessions[s] = true
			h.toSession(s, marshalEvent("connected", envelope{
				"user_id":      s.UserID,
				"display_name": s.DisplayName,
			}))

		case s := <-h.Leave:
			if _, ok := h.sessions[s]; ok {
				h.dropSession(s)
			}

		case se := <-h.Events:
			se.Event.execute(h, se.Session)

		case err := <-h.Errors:
			// Transport errors are per-session; the room keeps running.
			h.logger.PrintError(err, map[string]string{
				"game_id": fmt.Sprintf("%d", h.GameID),
			})

		case <-sweep.C:
			h.sweepExpiredLocks()
		}
	}
}

// sweepExpiredLocks drops locks past the timeout and tells the room each
// freed field, so clients that saw field_locked are not left staring at a
// phantom lock the holder abandoned without disconnecting.
func (h *Hub) sweepExpiredLocks() {
	swept := h.Locks.CleanupExpired()
	for _, key := range swept {
		h.broadcast(marshalEvent("field_unlocked", h.unlockPayload(key)))
	}
	if len(swept) > 0 {
		h.logger.PrintInfo("swept expired edit locks", map[string]string{
			"game_id": fmt.Sprintf("%d", h.GameID),
			"count":   fmt.Sprintf("%d", len(swept)),
		})
	}
}

// dropSession removes a session from the room and releases everything it
// held. Every disconnect path funnels through here: a session that falls
// behind on broadcasts gets the same lock and timer cleanup as a clean
// leave.
func (h *Hub) dropSession(s *Session) {
	delete(h.sessions, s)
	close(s.Receive)
	h.cleanupSession(s)
}

// cleanupSession releases a disconnecting session's locks and running
// timers, broadcasting each so no other client is left staring at a phantom
// lock.
func (h *Hub) cleanupSession(s *Session) {
	for _, key := range h.Locks.ReleaseAllForUser(s.UserID) {
		h.broadcast(marshalEvent("field_unlocked", h.unlockPayload(key)))
	}

	for _, stopped := range h.Timers.StopUserTimers(s.UserID) {
		h.broadcast(marshalEvent("timer_stopped", envelope{
			"team_id": stopped.TeamID,
			"user_id": s.UserID,
		}))
	}

	h.broadcastExcept(s, marshalEvent("user_left", envelope{
		"user_id":      s.UserID,
		"display_name": s.DisplayName,
	}))
}

// unlockPayload shapes a field_unlocked broadcast, attaching the last known
// score state when it can be read.
func (h *Hub) unlockPayload(key LockKey) envelope {
	payload := envelope{
		"team_id": key.TeamID,
		"field":   key.Field,
	}
	if state, err := h.scoreForTeam(key.RoundID, key.TeamID); err == nil && state != nil {
		payload["score"] = state.ScoreValue
		payload["points"] = state.Points
	}
	return payload
}

func (h *Hub) broadcast(msg []byte) {
	if msg == nil {
		return
	}
	for s := range h.sessions {
		select {
		case s.Receive <- msg:
		default:
			// Slow session: drop it rather than stall the room.
			h.dropSession(s)
		}
	}
}

func (h *Hub) broadcastExcept(skip *Session, msg []byte) {
	if msg == nil {
		return
	}
	for s := range h.sessions {
		if s == skip {
			continue
		}
		select {
		case s.Receive <- msg:
		default:
			h.dropSession(s)
		}
	}
}

func (h *Hub) toSession(s *Session, msg []byte) {
	if msg == nil {
		return
	}
	select {
	case s.Receive <- msg:
	default:
		if _, ok := h.sessions[s]; ok {
			h.dropSession(s)
		}
	}
}

func (h *Hub) rejectEvent(s *Session, message string) {
	h.toSession(s, marshalEvent("error", envelope{"message": message}))
}

// persistScore routes a value to the round table or the game table. Round
// scores additionally sync their cumulative totals to the main score row so
// the leaderboard stays consistent.
func (h *Hub) persistScore(roundID, teamID int64, scoreValue *float64, points int) error {
	if h.HasRounds && roundID != 0 {
		return h.scores.UpsertRoundScore(h.GameID, roundID, teamID, scoreValue, points)
	}
	return h.scores.UpsertScore(h.GameID, teamID, scoreValue, points)
}

func (h *Hub) scoresForScope(roundID int64) (map[int64]ScoreState, error) {
	if h.HasRounds && roundID != 0 {
		return h.scores.ScoresForRound(roundID)
	}
	return h.scores.ScoresForGame(h.GameID)
}

func (h *Hub) scoreForTeam(roundID, teamID int64) (*ScoreState, error) {
	scores, err := h.scoresForScope(roundID)
	if err != nil {
		return nil, err
	}
	if state, ok := scores[teamID]; ok {
		return &state, nil
	}
	return nil, nil
}
