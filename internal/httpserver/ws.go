// internal/httpserver/ws.go
//
// WebSocket gateway: turns inbound socket messages into session calls and
// session events into outbound JSON frames. The gateway carries no game
// rules of its own: rejections, kicks, and broadcasts all originate in
// the session loop and arrive through the per-client outbox.
//
// Inbound message vocabulary:
//   join-room    {roomId, playerName}
//   rejoin-room  {roomId, playerName}
//   make-guess   {guess}
//   reset-game   {}
//   leave-room   {}
//   chat-message {message}
//   master-reset {}

package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"wordclash/internal/registry"
	"wordclash/internal/session"
)

type clientMessage struct {
	Type       string `json:"type"`
	RoomID     string `json:"roomId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`
	Guess      string `json:"guess,omitempty"`
	Message    string `json:"message,omitempty"`
}

const outboxSize = 16

func (s *Server) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if s.origin == "*" {
				return true
			}
			return r.Header.Get("Origin") == s.origin
		},
	}
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	up := s.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	outbox := make(chan session.Event, outboxSize)

	// Writer: drains the outbox until the session closes it.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range outbox {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
	}()

	// Query parameters may pre-select the room and name; explicit fields in
	// the join message win.
	defaultRoom := r.URL.Query().Get("room")
	defaultName := r.URL.Query().Get("name")

	var sess *session.Session
	joined := false

	// Reader loop: one message, one session call.
	for {
		var m clientMessage
		if err := conn.ReadJSON(&m); err != nil {
			break
		}

		switch m.Type {
		case "join-room", "rejoin-room":
			if joined {
				continue
			}
			roomID := m.RoomID
			if roomID == "" {
				roomID = defaultRoom
			}
			name := m.PlayerName
			if name == "" {
				name = defaultName
			}
			if roomID == "" || name == "" {
				continue
			}

			var target *session.Session
			if m.Type == "rejoin-room" {
				// A rejoin targets an existing room; it never creates one.
				reply := make(chan *session.Session, 1)
				s.reg.Inbox() <- registry.GetRoom{ID: roomID, Reply: reply}
				target = <-reply
				if target == nil {
					outbox <- session.Event{Type: session.EventRejoinFailed, Reason: "room not found"}
					continue
				}
			} else {
				reply := make(chan *session.Session, 1)
				s.reg.Inbox() <- registry.EnsureRoom{ID: roomID, Reply: reply}
				target = <-reply
			}

			var delivered bool
			if m.Type == "join-room" {
				delivered = target.Send(session.Join{ConnID: connID, Name: name, Outbox: outbox})
			} else {
				delivered = target.Send(session.Rejoin{ConnID: connID, Name: name, Outbox: outbox})
			}
			if !delivered {
				// The room was evicted between lookup and send; the outbox is
				// still ours and the client may retry.
				continue
			}
			sess = target
			joined = true

		case "make-guess":
			if sess == nil {
				continue
			}
			sess.Send(session.Guess{ConnID: connID, Word: m.Guess})

		case "reset-game":
			if sess == nil {
				continue
			}
			sess.Send(session.RequestRestart{ConnID: connID})

		case "leave-room":
			if sess == nil {
				continue
			}
			sess.Send(session.Leave{ConnID: connID})
			sess = nil

		case "chat-message":
			if sess == nil {
				continue
			}
			sess.Send(session.Chat{ConnID: connID, Text: m.Message})

		case "master-reset":
			reply := make(chan error, 1)
			s.reg.Inbox() <- registry.GlobalReset{Reply: reply}
			<-reply
			sess = nil

		default:
			// Unknown types are dropped; the protocol is append-only.
		}
	}

	// Transport loss: the record survives for a later rejoin.
	if sess != nil {
		sess.Send(session.Disconnect{ConnID: connID})
	}
	if !joined {
		// The outbox was never handed to a session; close it ourselves so
		// the writer exits.
		close(outbox)
	}
	<-done
}
