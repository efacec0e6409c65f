// Package realtime is the dial side of the live scoring channel: a client
// that mirrors the room's scores and lock indicators locally, debounces
// keystroke-rate score updates, and never applies a broadcast over a field
// it holds the edit lock for.
package realtime

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"GameNightApi/internal/jsonlog"
	"GameNightApi/internal/scoring"

	"github.com/gorilla/websocket"
)

// DefaultDebounceDelay is the window within which rapid score edits for the
// same field collapse to a single send.
const DefaultDebounceDelay = 300 * time.Millisecond

// FieldKey identifies one editable field in the local lock mirror.
type FieldKey struct {
	TeamID int64
	Field  string
}

// wireConn is the subset of *websocket.Conn the client needs, so tests can
// substitute a recording fake.
type wireConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client maintains a local mirror of one game room: authoritative scores,
// which fields other users hold, and which locks we hold ourselves. All
// outbound actions are guarded no-ops while disconnected; nothing is queued
// for replay.
type Client struct {
	logger      *jsonlog.Logger
	direction   scoring.Direction
	pointScheme int

	debounce *Debouncer

	// writeMu serializes outbound frames: debounced updates fire from timer
	// goroutines while Focus/Blur/JoinGame write from the caller's, and the
	// websocket connection tolerates only one writer at a time.
	writeMu sync.Mutex

	mu          sync.Mutex
	conn        wireConn
	connected   bool
	userID      string
	displayName string
	gameID      int64
	roundID     int64
	held        map[FieldKey]bool
	lockedBy    map[FieldKey]string
	scores      map[int64]*scoring.TeamScore
}

func NewClient(logger *jsonlog.Logger, direction scoring.Direction, pointScheme int) *Client {
	return &Client{
		logger:      logger,
		direction:   direction,
		pointScheme: pointScheme,
		debounce:    NewDebouncer(DefaultDebounceDelay),
		held:        make(map[FieldKey]bool),
		lockedBy:    make(map[FieldKey]string),
		scores:      make(map[int64]*scoring.TeamScore),
	}
}

// Connect dials the live endpoint and starts the read loop. An auth token,
// when present, identifies the client as an admin to the server.
func (c *Client) Connect(rawURL, authToken string) error {
	header := http.Header{}
	if authToken != "" {
		header.Set("Authorization", "Bearer "+authToken)
	}

	conn, _, err := websocket.DefaultDialer.Dial(rawURL, header)
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(conn)
	return nil
}

// Disconnect closes the channel and clears all local lock indicators so no
// stale "locked by someone" state survives into a reconnect.
func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.connected = false
	c.held = make(map[FieldKey]bool)
	c.lockedBy = make(map[FieldKey]string)
	c.mu.Unlock()

	c.debounce.CancelAll()

	if conn != nil {
		conn.Close()
	}
}

// Connected reports the channel state.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// JoinGame enters a game room, optionally scoped to a round.
func (c *Client) JoinGame(gameID, roundID int64) {
	c.mu.Lock()
	c.gameID = gameID
	c.roundID = roundID
	c.mu.Unlock()

	data := map[string]any{"game_id": gameID}
	if roundID != 0 {
		data["round_id"] = roundID
	}
	c.send("join_game", data)
}

// Focus requests the edit lock for a field. Re-focusing a field whose lock
// we already hold sends nothing.
func (c *Client) Focus(teamID int64, field string) {
	c.mu.Lock()
	gameID := c.gameID
	if !c.connected || c.held[FieldKey{teamID, field}] {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.send("request_edit_lock", map[string]any{
		"game_id": gameID,
		"team_id": teamID,
		"field":   field,
	})
}

// Blur commits the field's value and releases the lock in one message. A
// blur without the lock sends nothing.
func (c *Client) Blur(teamID int64, field string, score *float64, points int) {
	key := FieldKey{teamID, field}

	c.mu.Lock()
	gameID := c.gameID
	if !c.connected || !c.held[key] {
		c.mu.Unlock()
		return
	}
	delete(c.held, key)
	c.mu.Unlock()

	c.send("release_edit_lock", map[string]any{
		"game_id": gameID,
		"team_id": teamID,
		"field":   field,
		"score":   score,
		"points":  points,
	})
}

// UpdateScore broadcasts a live-typing preview, debounced so only the last
// value within the window goes out.
func (c *Client) UpdateScore(teamID int64, score *float64, points int) {
	c.mu.Lock()
	gameID := c.gameID
	connected := c.connected
	c.mu.Unlock()
	if !connected {
		return
	}

	key := fmt.Sprintf("%d_score", teamID)
	c.debounce.Call(key, func() {
		c.send("update_score", map[string]any{
			"game_id": gameID,
			"team_id": teamID,
			"score":   score,
			"points":  points,
		})
	})
}

// StartTimer begins a stopwatch for a team.
func (c *Client) StartTimer(teamID int64) {
	c.send("start_timer", map[string]any{
		"game_id": c.currentGameID(),
		"team_id": teamID,
	})
}

// StopTimer records a stopwatch value.
func (c *Client) StopTimer(teamID int64, timeValue float64) {
	c.send("stop_timer", map[string]any{
		"game_id":    c.currentGameID(),
		"team_id":    teamID,
		"time_value": timeValue,
	})
}

// ClearTimers asks the server to drop a team's recorded timers.
func (c *Client) ClearTimers(teamID int64) {
	c.send("clear_timers", map[string]any{
		"game_id": c.currentGameID(),
		"team_id": teamID,
	})
}

// Holding reports whether we hold the edit lock for a field.
func (c *Client) Holding(teamID int64, field string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.held[FieldKey{teamID, field}]
}

// LockedBy returns the display name holding a field, or "" when it is free
// or held by us.
func (c *Client) LockedBy(teamID int64, field string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lockedBy[FieldKey{teamID, field}]
}

// Scores returns a ranked snapshot of the local score mirror.
func (c *Client) Scores() []scoring.TeamScore {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]scoring.TeamScore, 0, len(c.scores))
	for _, ts := range c.scores {
		out = append(out, *ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out
}

func (c *Client) currentGameID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

// send is a guarded no-op while disconnected: never queued, never retried.
func (c *Client) send(event string, data map[string]any) {
	c.mu.Lock()
	conn := c.conn
	connected := c.connected
	c.mu.Unlock()
	if !connected || conn == nil {
		return
	}

	msg, err := json.Marshal(map[string]any{"event": event, "data": data})
	if err != nil {
		c.logger.PrintError(err, map[string]string{"event": event})
		return
	}
	c.writeMu.Lock()
	err = conn.WriteMessage(websocket.TextMessage, msg)
	c.writeMu.Unlock()
	if err != nil {
		c.logger.PrintError(err, map[string]string{"event": event})
		c.Disconnect()
	}
}

func (c *Client) readLoop(conn wireConn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			c.Disconnect()
			return
		}

		var inbound struct {
			Event string         `json:"event"`
			Data  map[string]any `json:"data"`
		}
		if err := json.Unmarshal(msg, &inbound); err != nil {
			c.logger.PrintError(err, nil)
			continue
		}
		c.handleEvent(inbound.Event, inbound.Data)
	}
}

// handleEvent applies one server broadcast to the local mirror.
func (c *Client) handleEvent(event string, data map[string]any) {
	switch event {
	case "connected":
		c.mu.Lock()
		c.userID, _ = data["user_id"].(string)
		c.displayName, _ = data["display_name"].(string)
		c.mu.Unlock()

	case "game_state":
		c.applyGameState(data)

	case "field_locked":
		teamID, ok := intField(data, "team_id")
		field, _ := data["field"].(string)
		if !ok || field == "" {
			return
		}
		userID, _ := data["user_id"].(string)

		c.mu.Lock()
		// Our own lock must never disable our own input.
		if userID != "" && userID == c.userID {
			c.mu.Unlock()
			return
		}
		name, _ := data["display_name"].(string)
		c.lockedBy[FieldKey{teamID, field}] = name
		c.mu.Unlock()

	case "lock_acquired":
		teamID, ok := intField(data, "team_id")
		field, _ := data["field"].(string)
		if !ok || field == "" {
			return
		}
		c.mu.Lock()
		c.held[FieldKey{teamID, field}] = true
		c.mu.Unlock()

	case "lock_denied":
		teamID, _ := intField(data, "team_id")
		name, _ := data["locked_by"].(string)
		c.mu.Lock()
		field, _ := data["field"].(string)
		if field != "" {
			c.lockedBy[FieldKey{teamID, field}] = name
		}
		c.mu.Unlock()

	case "field_unlocked":
		c.applyUnlock(data)

	case "score_updated":
		c.applyScoreUpdate(data)
	}
}

func (c *Client) applyGameState(data map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if scores, ok := data["scores"].(map[string]any); ok {
		c.scores = make(map[int64]*scoring.TeamScore, len(scores))
		for id, raw := range scores {
			var teamID int64
			if _, err := fmt.Sscanf(id, "%d", &teamID); err != nil {
				continue
			}
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			ts := &scoring.TeamScore{TeamID: teamID}
			if v, ok := entry["score_value"].(float64); ok {
				ts.BaseScore = v
			}
			if v, ok := entry["points"].(float64); ok {
				ts.Points = int(v)
			}
			ts.Recalc()
			c.scores[teamID] = ts
		}
	}

	c.lockedBy = make(map[FieldKey]string)
	if locks, ok := data["locks"].([]any); ok {
		for _, raw := range locks {
			entry, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			teamID, ok := intField(entry, "team_id")
			field, _ := entry["field"].(string)
			if !ok || field == "" {
				continue
			}
			if userID, _ := entry["user_id"].(string); userID == c.userID && userID != "" {
				continue
			}
			name, _ := entry["display_name"].(string)
			c.lockedBy[FieldKey{teamID, field}] = name
		}
	}
	c.rerankLocked()
}

func (c *Client) applyUnlock(data map[string]any) {
	teamID, ok := intField(data, "team_id")
	field, _ := data["field"].(string)
	if !ok || field == "" {
		return
	}
	key := FieldKey{teamID, field}

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.lockedBy, key)

	// Never clobber an edit in progress: if we hold this lock the local
	// value stays ours until we blur.
	if c.held[key] {
		return
	}

	score, scoreOK := numericField(data, "score")
	points, pointsOK := numericField(data, "points")
	if !scoreOK && !pointsOK {
		return
	}

	ts := c.teamScoreLocked(teamID)
	if scoreOK {
		ts.BaseScore = score
	}
	if pointsOK {
		ts.Points = int(points)
	}
	ts.Recalc()
	c.rerankLocked()
}

func (c *Client) applyScoreUpdate(data map[string]any) {
	teamID, ok := intField(data, "team_id")
	if !ok {
		return
	}

	score, scoreOK := numericField(data, "score")
	points, pointsOK := numericField(data, "points")
	if data["score"] != nil && !scoreOK {
		// Non-numeric payloads are dropped, never applied as NaN.
		c.logger.PrintError(fmt.Errorf("dropping non-numeric score for team %d", teamID), nil)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// A preview broadcast is never authoritative for a field we hold.
	if c.held[FieldKey{teamID, "score"}] {
		return
	}

	ts := c.teamScoreLocked(teamID)
	if scoreOK {
		ts.BaseScore = score
	}
	if pointsOK {
		ts.Points = int(points)
	}
	ts.Recalc()
	c.rerankLocked()
}

// teamScoreLocked returns the mirror entry for a team, creating it if the
// team was not in the initial game_state. Callers hold c.mu.
func (c *Client) teamScoreLocked(teamID int64) *scoring.TeamScore {
	ts, ok := c.scores[teamID]
	if !ok {
		ts = &scoring.TeamScore{TeamID: teamID}
		c.scores[teamID] = ts
	}
	return ts
}

// rerankLocked recomputes ranks and points over the mirror. Callers hold
// c.mu.
func (c *Client) rerankLocked() {
	list := make([]*scoring.TeamScore, 0, len(c.scores))
	for _, ts := range c.scores {
		list = append(list, ts)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TeamID < list[j].TeamID })
	scoring.RankAndScore(list, c.direction, c.pointScheme, len(list))
}

func intField(data map[string]any, key string) (int64, bool) {
	v, ok := data[key].(float64)
	if !ok {
		return 0, false
	}
	return int64(v), true
}

func numericField(data map[string]any, key string) (float64, bool) {
	v, ok := data[key].(float64)
	return v, ok
}
