package scorehub

import (
	"fmt"
)

// GameEvent is one inbound client action, executed on the hub's run loop so
// no two transitions for the same game ever interleave.
type GameEvent interface {
	execute(h *Hub, s *Session)
}

type GenericEvent map[string]any

// parseEvent maps the wire shape {"event": name, "data": {...}} onto a typed
// event. Unrecognized names and malformed payloads are rejected here so the
// run loop only ever sees well-formed transitions.
func (e GenericEvent) parseEvent() (GameEvent, error) {
	name, err := checkAndAssertStringFromMap(e, "event")
	if err != nil {
		return nil, ErrEventParseFailed
	}

	data, _ := e["data"].(map[string]any)
	if data == nil {
		data = map[string]any{}
	}

	switch name {
	case "join_game":
		event := &JoinGameEvent{}
		if event.GameID, err = checkAndAssertInt64FromMap(data, "game_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.RoundID, err = optionalInt64FromMap(data, "round_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		return event, nil

	case "leave_game":
		event := &LeaveGameEvent{}
		if event.GameID, err = checkAndAssertInt64FromMap(data, "game_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		return event, nil

	case "request_edit_lock":
		event := &RequestLockEvent{}
		if err = event.fill(data); err != nil {
			return nil, err
		}
		return event, nil

	case "release_edit_lock":
		event := &ReleaseLockEvent{}
		if err = event.RequestLockEvent.fill(data); err != nil {
			return nil, err
		}
		if event.Score, err = optionalFloatFromMap(data, "score"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.Points, err = optionalFloatFromMap(data, "points"); err != nil {
			return nil, ErrEventParseFailed
		}
		return event, nil

	case "update_score":
		event := &UpdateScoreEvent{}
		if event.GameID, err = checkAndAssertInt64FromMap(data, "game_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.TeamID, err = checkAndAssertInt64FromMap(data, "team_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.RoundID, err = optionalInt64FromMap(data, "round_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.Score, err = optionalFloatFromMap(data, "score"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.Points, err = optionalFloatFromMap(data, "points"); err != nil {
			return nil, ErrEventParseFailed
		}
		return event, nil

	case "start_timer":
		event := &StartTimerEvent{}
		if event.GameID, err = checkAndAssertInt64FromMap(data, "game_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.TeamID, err = checkAndAssertInt64FromMap(data, "team_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		return event, nil

	case "stop_timer":
		event := &StopTimerEvent{}
		if event.GameID, err = checkAndAssertInt64FromMap(data, "game_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.TeamID, err = checkAndAssertInt64FromMap(data, "team_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.TimeValue, err = checkAndAssertFloatFromMap(data, "time_value"); err != nil {
			return nil, ErrEventParseFailed
		}
		return event, nil

	case "clear_timers":
		event := &ClearTimersEvent{}
		if event.GameID, err = checkAndAssertInt64FromMap(data, "game_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		if event.TeamID, err = checkAndAssertInt64FromMap(data, "team_id"); err != nil {
			return nil, ErrEventParseFailed
		}
		return event, nil
	}

	return nil, ErrEventParseFailed
}

type JoinGameEvent struct {
	GameID  int64
	RoundID int64
}

func (e *JoinGameEvent) execute(h *Hub, s *Session) {
	s.RoundID = e.RoundID

	scores, err := h.scoresForScope(e.RoundID)
	if err != nil {
		h.logger.PrintError(err, map[string]string{
			"game_id": fmt.Sprintf("%d", h.GameID),
		})
		scores = map[int64]ScoreState{}
	}

	state := envelope{
		"scores": scores,
		"locks":  h.Locks.LocksForGame(h.GameID),
	}
	if e.RoundID != 0 {
		state["round_id"] = e.RoundID
	}
	h.toSession(s, marshalEvent("game_state", state))

	h.broadcastExcept(s, marshalEvent("user_joined", envelope{
		"user_id":      s.UserID,
		"display_name": s.DisplayName,
	}))
}

type LeaveGameEvent struct {
	GameID int64
}

func (e *LeaveGameEvent) execute(h *Hub, s *Session) {
	h.broadcastExcept(s, marshalEvent("user_left", envelope{
		"user_id":      s.UserID,
		"display_name": s.DisplayName,
	}))
}

type RequestLockEvent struct {
	GameID  int64
	RoundID int64
	TeamID  int64
	Field   string
}

func (e *RequestLockEvent) fill(data map[string]any) error {
	var err error
	if e.GameID, err = checkAndAssertInt64FromMap(data, "game_id"); err != nil {
		return ErrEventParseFailed
	}
	if e.TeamID, err = checkAndAssertInt64FromMap(data, "team_id"); err != nil {
		return ErrEventParseFailed
	}
	if e.Field, err = checkAndAssertStringFromMap(data, "field"); err != nil {
		return ErrEventParseFailed
	}
	if e.RoundID, err = optionalInt64FromMap(data, "round_id"); err != nil {
		return ErrEventParseFailed
	}
	if e.Field == "" || e.TeamID < 1 {
		return ErrEventValidationFailed
	}
	return nil
}

func (e *RequestLockEvent) key(h *Hub, s *Session) LockKey {
	roundID := e.RoundID
	if roundID == 0 {
		roundID = s.RoundID
	}
	return LockKey{GameID: h.GameID, RoundID: roundID, TeamID: e.TeamID, Field: e.Field}
}

func (e *RequestLockEvent) execute(h *Hub, s *Session) {
	acquired, lockedBy := h.Locks.Acquire(e.key(h, s), s.UserID, s.DisplayName)
	if !acquired {
		h.toSession(s, marshalEvent("lock_denied", envelope{
			"team_id":   e.TeamID,
			"field":     e.Field,
			"locked_by": lockedBy,
		}))
		return
	}

	h.toSession(s, marshalEvent("lock_acquired", envelope{
		"game_id": h.GameID,
		"team_id": e.TeamID,
		"field":   e.Field,
	}))
	h.broadcastExcept(s, marshalEvent("field_locked", envelope{
		"team_id":      e.TeamID,
		"field":        e.Field,
		"user_id":      s.UserID,
		"display_name": s.DisplayName,
	}))
}

type ReleaseLockEvent struct {
	RequestLockEvent
	Score  *float64
	Points *float64
}

func (e *ReleaseLockEvent) execute(h *Hub, s *Session) {
	key := e.key(h, s)

	// Releasing a lock you do not hold must not unlock someone else's.
	if !h.Locks.Release(key, s.UserID) {
		return
	}

	if e.Score != nil && e.Points != nil {
		if err := h.persistScore(key.RoundID, e.TeamID, e.Score, int(*e.Points)); err != nil {
			h.logger.PrintError(err, map[string]string{
				"game_id": fmt.Sprintf("%d", h.GameID),
				"team_id": fmt.Sprintf("%d", e.TeamID),
			})
		}
	}

	// Broadcast to the whole room, holder included, so every client
	// converges on the committed value.
	h.broadcast(marshalEvent("field_unlocked", envelope{
		"team_id":    e.TeamID,
		"field":      e.Field,
		"score":      e.Score,
		"points":     e.Points,
		"updated_by": s.DisplayName,
	}))
}

type UpdateScoreEvent struct {
	GameID  int64
	RoundID int64
	TeamID  int64
	Score   *float64
	Points  *float64
}

func (e *UpdateScoreEvent) execute(h *Hub, s *Session) {
	if !inRange(e.Score, ScoreValueMin, ScoreValueMax) {
		h.rejectEvent(s, "score value out of range")
		return
	}
	if !inRange(e.Points, ScoreValueMin, ScoreValueMax) {
		h.rejectEvent(s, "points value out of range")
		return
	}

	roundID := e.RoundID
	if roundID == 0 {
		roundID = s.RoundID
	}

	points := 0
	if e.Points != nil {
		points = int(*e.Points)
	}
	if err := h.persistScore(roundID, e.TeamID, e.Score, points); err != nil {
		h.logger.PrintError(err, map[string]string{
			"game_id": fmt.Sprintf("%d", h.GameID),
			"team_id": fmt.Sprintf("%d", e.TeamID),
		})
		h.rejectEvent(s, "could not save score")
		return
	}

	payload := envelope{
		"team_id":    e.TeamID,
		"score":      e.Score,
		"points":     e.Points,
		"updated_by": s.DisplayName,
	}
	if roundID != 0 {
		payload["round_id"] = roundID
	}
	h.broadcast(marshalEvent("score_updated", payload))
}

type StartTimerEvent struct {
	GameID int64
	TeamID int64
}

func (e *StartTimerEvent) execute(h *Hub, s *Session) {
	h.Timers.StartTimer(h.GameID, e.TeamID, s.UserID, s.DisplayName)

	h.broadcast(marshalEvent("timer_started", envelope{
		"team_id":      e.TeamID,
		"user_id":      s.UserID,
		"display_name": s.DisplayName,
	}))
}

type StopTimerEvent struct {
	GameID    int64
	TeamID    int64
	TimeValue float64
}

func (e *StopTimerEvent) execute(h *Hub, s *Session) {
	if e.TimeValue < TimerValueMin || e.TimeValue > TimerValueMax {
		h.rejectEvent(s, "timer value out of range")
		return
	}

	if _, err := h.Timers.RecordTime(h.GameID, e.TeamID, s.UserID, s.DisplayName,
		e.TimeValue); err != nil {
		h.logger.PrintError(err, map[string]string{
			"game_id": fmt.Sprintf("%d", h.GameID),
			"team_id": fmt.Sprintf("%d", e.TeamID),
		})
		h.rejectEvent(s, "failed to record timer value")
		return
	}

	times, records, err := h.Timers.TeamTimes(h.GameID, e.TeamID)
	if err != nil {
		h.logger.PrintError(err, nil)
		times, records = []float64{e.TimeValue}, nil
	}

	average := e.TimeValue
	if len(times) > 0 {
		average = Average(times)
	}

	h.broadcast(marshalEvent("timer_stopped", envelope{
		"team_id":      e.TeamID,
		"user_id":      s.UserID,
		"display_name": s.DisplayName,
		"time":         e.TimeValue,
		"average":      average,
		"all_times":    times,
		"timer_count":  len(times),
		"timers":       records,
	}))
}

type ClearTimersEvent struct {
	GameID int64
	TeamID int64
}

func (e *ClearTimersEvent) execute(h *Hub, s *Session) {
	if !s.IsAdmin {
		h.rejectEvent(s, "only admins can clear timers")
		return
	}

	count, err := h.Timers.ClearTeam(h.GameID, e.TeamID)
	if err != nil {
		h.logger.PrintError(err, nil)
		h.rejectEvent(s, "failed to clear timers")
		return
	}

	h.broadcast(marshalEvent("timers_cleared", envelope{
		"team_id": e.TeamID,
		"count":   count,
	}))
}

// inRange accepts nil (nothing entered yet) and otherwise bounds-checks.
func inRange(v *float64, min, max float64) bool {
	if v == nil {
		return true
	}
	return *v >= min && *v <= max
}
