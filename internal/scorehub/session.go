package scorehub

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

// Session is one websocket connection in a game's room. Admins carry their
// account identity; anonymous viewers get a per-connection id so their locks
// die with the connection.
type Session struct {
	Hub         *Hub
	Conn        *websocket.Conn
	UserID      string
	DisplayName string
	IsAdmin     bool
	RoundID     int64
	Receive     chan []byte
	Close       chan error
}

func NewSession(hub *Hub, conn *websocket.Conn, userID, displayName string,
	isAdmin bool) *Session {
	return &Session{
		Hub:         hub,
		Conn:        conn,
		UserID:      userID,
		DisplayName: displayName,
		IsAdmin:     isAdmin,
		Receive:     make(chan []byte, 32),
		Close:       make(chan error),
	}
}

func (s *Session) ReadEvents() {
	defer func() {
		s.Hub.Leave <- s
		s.Conn.Close()
	}()
	s.Conn.SetReadLimit(maxMessageSize)
	s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		s.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, bytes, err := s.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				s.Hub.Errors <- err
			}
			return
		}

		var genericEvent GenericEvent
		if err := json.Unmarshal(bytes, &genericEvent); err != nil {
			s.Hub.Errors <- err
			continue
		}

		event, err := genericEvent.parseEvent()
		if err != nil {
			s.Hub.Errors <- err
			continue
		}

		s.Hub.Events <- SessionEvent{Session: s, Event: event}
	}
}

func (s *Session) WriteEvents() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Conn.Close()
	}()
	for {
		select {
		case msg, ok := <-s.Receive:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				s.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			writer, err := s.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			writer.Write(msg)

			// Flush anything queued behind this message.
			n := len(s.Receive)
			for i := 0; i < n; i++ {
				writer.Write(newline)
				writer.Write(<-s.Receive)
			}

			if err := writer.Close(); err != nil {
				return
			}

		case <-ticker.C:
			s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case closeErr := <-s.Close:
			closeMessage := websocket.FormatCloseMessage(websocket.CloseNormalClosure,
				closeErr.Error())
			writer, err := s.Conn.NextWriter(websocket.CloseMessage)
			if err != nil {
				return
			}
			writer.Write(closeMessage)
			writer.Close()
			return
		}
	}
}
