package scorehub

import (
	"errors"
	"time"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 1 * time.Minute

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// Numeric bounds for values arriving over the channel. Anything outside is
// dropped with an error event rather than applied.
const (
	ScoreValueMin = -999999.99
	ScoreValueMax = 999999.99
	TimerValueMin = 0
	TimerValueMax = 999999
)

// DefaultLockTimeout is how long a held edit lock survives without a refresh
// before another session may take it over.
const DefaultLockTimeout = 5 * time.Minute

var (
	newline = []byte{'\n'}

	ErrEventParseFailed      = errors.New("could not parse hub event")
	ErrEventValidationFailed = errors.New("event validation failed")
)
