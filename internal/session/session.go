package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wordclash/internal/commentary"
	"wordclash/internal/game"
	"wordclash/internal/store"
)

const maxChatLen = 100

type Msg interface{ isSessionMsg() }

type Join struct {
	ConnID string
	Name   string
	Outbox chan Event
}

type Rejoin struct {
	ConnID string
	Name   string
	Outbox chan Event
}

type Guess struct {
	ConnID string
	Word   string
}

type RequestRestart struct{ ConnID string }

// Leave is a voluntary departure: the record is removed and the name freed.
type Leave struct{ ConnID string }

// Disconnect is unexpected transport loss: the record is retained for rejoin.
type Disconnect struct{ ConnID string }

type Chat struct {
	ConnID string
	Text   string
}

type GetView struct{ Reply chan View }

type GetSnapshot struct{ Reply chan store.RoomSnapshot }

// Sweep asks the session to drop stale disconnected records and report
// whether the room is evictable (empty and idle past the given window).
type Sweep struct {
	Now       time.Time
	IdleAfter time.Duration
	Reply     chan bool
}

// Shutdown stops the loop. When Notify is set, clients get a final
// master-reset event before their outboxes close.
type Shutdown struct{ Notify bool }

type commentaryReady struct{ msg commentary.Message }

func (Join) isSessionMsg()            {}
func (Rejoin) isSessionMsg()          {}
func (Guess) isSessionMsg()           {}
func (RequestRestart) isSessionMsg()  {}
func (Leave) isSessionMsg()           {}
func (Disconnect) isSessionMsg()      {}
func (Chat) isSessionMsg()            {}
func (GetView) isSessionMsg()         {}
func (GetSnapshot) isSessionMsg()     {}
func (Sweep) isSessionMsg()           {}
func (Shutdown) isSessionMsg()        {}
func (commentaryReady) isSessionMsg() {}

// View reflects internal state without data races (test and sweep support).
type View struct {
	Version    int
	NumClients int
	State      game.State
}

// Session owns one game.Room and serializes every operation against it
// through a single inbox, which is what gives the room its strict
// arrival-order guarantee. Client connections register an outbox channel;
// slow clients are dropped rather than allowed to stall the loop.
type Session struct {
	inbox   chan Msg
	room    *game.Room
	clients map[string]chan Event // keyed by ConnID
	version int

	grace       time.Duration // disconnected-record retention
	gen         *commentary.Generator
	requestSave func() // fire-and-forget dirty signal to the registry

	ctx    context.Context
	cancel context.CancelFunc
	log    zerolog.Logger

	mu     sync.Mutex
	closed bool // set under mu before the inbox is drained for the last time
}

// Options configures a Session.
type Options struct {
	DisconnectGrace time.Duration
	Commentary      *commentary.Generator
	RequestSave     func()
}

// New starts a session loop around the given room.
func New(parent context.Context, room *game.Room, opts Options) *Session {
	ctx, cancel := context.WithCancel(parent)
	if opts.DisconnectGrace <= 0 {
		opts.DisconnectGrace = 10 * time.Minute
	}
	if opts.RequestSave == nil {
		opts.RequestSave = func() {}
	}
	s := &Session{
		inbox:       make(chan Msg, 64),
		room:        room,
		clients:     make(map[string]chan Event),
		grace:       opts.DisconnectGrace,
		gen:         opts.Commentary,
		requestSave: opts.RequestSave,
		ctx:         ctx,
		cancel:      cancel,
		log:         log.With().Str("room", room.ID).Logger(),
	}
	go s.loop()
	return s
}

// Inbox exposes the message channel to the gateway, registry, and tests.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Send enqueues a message unless the session has stopped or its inbox is
// saturated, reporting delivery. A caller can hold a session pointer past
// the room's eviction (lookup and send are separate steps); writing to the
// raw inbox then would strand the message in a loop that no longer drains,
// so any sender that cannot rule that out must go through Send.
func (s *Session) Send(m Msg) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	select {
	case s.inbox <- m:
		return true
	default:
		return false
	}
}

func (s *Session) loop() {
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown(false)
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.handleJoin(msg)
			case Rejoin:
				s.handleRejoin(msg)
			case Guess:
				s.handleGuess(msg)
			case RequestRestart:
				s.handleRestart(msg)
			case Leave:
				s.handleLeave(msg)
			case Disconnect:
				s.handleDisconnect(msg)
			case Chat:
				s.handleChat(msg)
			case GetView:
				msg.Reply <- View{Version: s.version, NumClients: len(s.clients), State: s.room.Snapshot()}
			case GetSnapshot:
				msg.Reply <- store.SnapshotRoom(s.room)
			case Sweep:
				s.room.CleanupDisconnected(msg.Now, s.grace)
				idle := s.room.Empty() && len(s.clients) == 0 &&
					msg.Now.Sub(s.room.LastActivity) > msg.IdleAfter
				msg.Reply <- idle
			case commentaryReady:
				s.broadcast(Event{
					Type:       EventCommentary,
					Message:    msg.msg.Text,
					Style:      msg.msg.Style,
					PlayerName: msg.msg.PlayerName,
					Situation:  string(msg.msg.Situation),
				})
			case Shutdown:
				s.shutdown(msg.Notify)
				return
			}
		}
	}
}

func (s *Session) handleJoin(msg Join) {
	s.room.CleanupDisconnected(time.Now(), s.grace)

	out, err := s.room.Join(msg.ConnID, msg.Name)
	if err != nil {
		// Capacity rejections go to the would-be joiner only.
		msg.Outbox <- Event{Type: EventRoomFull, Reason: "room is full"}
		close(msg.Outbox)
		return
	}
	s.admit(msg.ConnID, msg.Name, msg.Outbox, out)
	s.send(msg.ConnID, s.stateEvent())
	s.afterAdmission(msg.Name)
}

func (s *Session) handleRejoin(msg Rejoin) {
	s.room.CleanupDisconnected(time.Now(), s.grace)

	out, err := s.room.Rejoin(msg.ConnID, msg.Name)
	if err != nil {
		msg.Outbox <- Event{Type: EventRoomFull, Reason: "room is full"}
		close(msg.Outbox)
		return
	}
	s.admit(msg.ConnID, msg.Name, msg.Outbox, out)
	s.send(msg.ConnID, Event{Type: EventRejoinSuccess, State: s.statePtr()})
	if out.Rejoined {
		s.log.Info().Str("player", msg.Name).Msg("player rejoined with restored state")
		s.broadcastState()
		s.requestSave()
		return
	}
	s.afterAdmission(msg.Name)
}

// admit registers the client outbox and handles a name-collision eviction.
func (s *Session) admit(connID, name string, outbox chan Event, out *game.JoinOutcome) {
	if out.Evicted != nil {
		if ch, ok := s.clients[out.Evicted.ConnID]; ok {
			select {
			case ch <- Event{
				Type:   EventKicked,
				Reason: fmt.Sprintf("another player joined with your name %q", name),
			}:
			default:
			}
			close(ch)
			delete(s.clients, out.Evicted.ConnID)
		}
		s.log.Info().Str("player", name).Msg("evicted prior connection over name collision")
	}
	s.clients[connID] = outbox
}

// afterAdmission broadcasts the join and auto-starts an idle round.
func (s *Session) afterAdmission(name string) {
	s.broadcast(Event{Type: EventPlayerJoined, PlayerName: name, PlayerCount: len(s.room.Players)})
	s.broadcastState()
	if s.room.AutoStart() {
		s.broadcast(Event{Type: EventRoundStarted, State: s.statePtr()})
	}
	s.requestSave()
}

func (s *Session) handleGuess(msg Guess) {
	out, err := s.room.Guess(msg.ConnID, msg.Word)
	if err != nil {
		s.send(msg.ConnID, Event{Type: EventGuessRejected, Reason: rejectionReason(err)})
		if errors.Is(err, game.ErrInvalidWord) {
			if p, ok := s.room.Players[msg.ConnID]; ok {
				s.spawnCommentary(commentary.SituationInvalidWord, commentary.GameContext{
					PlayerName: p.Name, Attempts: p.Row + 1, TotalPlayers: len(s.room.Players),
				})
			}
		}
		return
	}

	s.broadcastState()
	s.spawnCommentary(
		commentary.Classify(out.Player.Row, out.Won, out.Verdicts),
		commentary.GameContext{
			PlayerName:   out.Player.Name,
			Attempts:     out.Player.Row,
			Won:          out.Won,
			TotalPlayers: len(s.room.Players),
		},
	)
	s.requestSave()

	if out.RoundOver {
		s.broadcast(Event{Type: EventRoundEnded, Winner: out.Winner, Word: s.room.Secret})
	}
}

func (s *Session) handleRestart(msg RequestRestart) {
	p, err := s.room.RequestRestart(msg.ConnID)
	switch {
	case errors.Is(err, game.ErrDuplicateRestart):
		s.send(msg.ConnID, Event{Type: EventRestartLatched})
		return
	case err != nil:
		s.send(msg.ConnID, Event{Type: EventGuessRejected, Reason: rejectionReason(err)})
		return
	}
	s.broadcast(Event{Type: EventPlayAgain, PlayerName: p.Name})
	s.broadcast(Event{Type: EventRoundStarted, State: s.statePtr()})
	s.requestSave()
}

func (s *Session) handleLeave(msg Leave) {
	p, ok := s.room.Leave(msg.ConnID)
	if !ok {
		return
	}
	s.send(msg.ConnID, Event{Type: EventLeftRoom})
	if ch, ok := s.clients[msg.ConnID]; ok {
		close(ch)
		delete(s.clients, msg.ConnID)
	}
	s.broadcast(Event{Type: EventPlayerLeft, PlayerName: p.Name, PlayerCount: len(s.room.Players)})
	s.broadcastState()
	s.requestSave()
}

func (s *Session) handleDisconnect(msg Disconnect) {
	if ch, ok := s.clients[msg.ConnID]; ok {
		close(ch)
		delete(s.clients, msg.ConnID)
	}
	p, ok := s.room.Disconnect(msg.ConnID, time.Now())
	if !ok {
		return
	}
	s.broadcast(Event{Type: EventPlayerLeft, PlayerName: p.Name, PlayerCount: len(s.room.Players)})
	s.broadcastState()
	s.requestSave()
}

func (s *Session) handleChat(msg Chat) {
	p, ok := s.room.Players[msg.ConnID]
	if !ok || !p.Connected {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" || len(text) > maxChatLen {
		return
	}
	s.broadcast(Event{
		Type:       EventChat,
		Message:    text,
		PlayerName: p.Name,
		Timestamp:  time.Now().UnixMilli(),
	})
}

// spawnCommentary generates a line off the loop and re-enqueues the result.
// It never blocks or precedes the acknowledgment of the triggering guess.
func (s *Session) spawnCommentary(sit commentary.Situation, gc commentary.GameContext) {
	if s.gen == nil {
		return
	}
	go func() {
		m, ok := s.gen.Generate(s.ctx, sit, gc)
		if !ok {
			return
		}
		select {
		case s.inbox <- commentaryReady{msg: m}:
		case <-s.ctx.Done():
		}
	}()
}

func (s *Session) stateEvent() Event {
	return Event{Type: EventState, State: s.statePtr()}
}

func (s *Session) statePtr() *game.State {
	st := s.room.Snapshot()
	return &st
}

// broadcastState sends a fresh snapshot to everyone and bumps the version.
func (s *Session) broadcastState() {
	s.version++
	s.broadcast(s.stateEvent())
}

// send delivers an event to a single client, dropping it if slow.
func (s *Session) send(connID string, ev Event) {
	ch, ok := s.clients[connID]
	if !ok {
		return
	}
	select {
	case ch <- ev:
	default:
		close(ch)
		delete(s.clients, connID)
	}
}

func (s *Session) broadcast(ev Event) {
	for id, ch := range s.clients {
		select {
		case ch <- ev:
			// ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}

func (s *Session) shutdown(notify bool) {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()

	// Nothing enters the inbox once closed is set; bounce what was already
	// queued so no caller is left waiting on a reply or an unclosed outbox.
	for drained := false; !drained; {
		select {
		case m := <-s.inbox:
			s.bounce(m)
		default:
			drained = true
		}
	}

	for id, ch := range s.clients {
		if notify {
			select {
			case ch <- Event{Type: EventMasterReset}:
			default:
			}
		}
		close(ch)
		delete(s.clients, id)
	}
}

// bounce resolves a message stranded behind the shutdown: outboxes close so
// their writers exit, replies get zero values so the waiter unblocks, and a
// stopped room always reports itself evictable.
func (s *Session) bounce(m Msg) {
	switch msg := m.(type) {
	case Join:
		close(msg.Outbox)
	case Rejoin:
		close(msg.Outbox)
	case GetView:
		msg.Reply <- View{}
	case GetSnapshot:
		msg.Reply <- store.RoomSnapshot{}
	case Sweep:
		msg.Reply <- true
	}
}

// rejectionReason maps game errors to wire reasons for the caller.
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, game.ErrInvalidWord):
		return "invalid word"
	case errors.Is(err, game.ErrRoundInactive):
		return "round not active"
	case errors.Is(err, game.ErrNotFound):
		return "player not found"
	case errors.Is(err, game.ErrRoomFull):
		return "room is full"
	default:
		return err.Error()
	}
}
