package registry

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"wordclash/internal/commentary"
	"wordclash/internal/game"
	"wordclash/internal/session"
	"wordclash/internal/store"
)

type Msg interface{ isRegistryMsg() }

type EnsureRoom struct {
	ID    string
	Reply chan *session.Session
}

type GetRoom struct {
	ID    string
	Reply chan *session.Session // may be nil
}

type RemoveRoom struct{ ID string }

// GlobalReset discards every room and clears durable storage. Destructive
// and irreversible; distinct from a single room's restart.
type GlobalReset struct{ Reply chan error }

type ListRooms struct{ Reply chan []string }

type ShutdownRegistry struct{}

type collectSnapshots struct{ reply chan map[string]store.RoomSnapshot }

func (EnsureRoom) isRegistryMsg()       {}
func (GetRoom) isRegistryMsg()          {}
func (RemoveRoom) isRegistryMsg()       {}
func (GlobalReset) isRegistryMsg()      {}
func (ListRooms) isRegistryMsg()        {}
func (ShutdownRegistry) isRegistryMsg() {}
func (collectSnapshots) isRegistryMsg() {}

// Options tunes room lifecycle and side effects.
type Options struct {
	DisconnectGrace time.Duration // disconnected-record retention within a room
	IdleEviction    time.Duration // empty-room lifetime before removal
	SweepInterval   time.Duration
	Commentary      *commentary.Generator
}

// Registry owns the room map, process-wide. All mutation flows through its
// inbox; sessions never reach back except through the non-blocking dirty
// signal, so the loop cannot deadlock against its own rooms.
type Registry struct {
	inbox chan Msg
	rooms map[string]*session.Session
	st    store.Store
	opts  Options

	dirty  chan struct{} // coalesced save requests
	ctx    context.Context
	cancel context.CancelFunc
}

// New constructs a Registry, restores persisted rooms, and starts the loop
// and the background saver.
func New(parent context.Context, st store.Store, opts Options) (*Registry, error) {
	if opts.DisconnectGrace <= 0 {
		opts.DisconnectGrace = 10 * time.Minute
	}
	if opts.IdleEviction <= 0 {
		opts.IdleEviction = 30 * time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}

	ctx, cancel := context.WithCancel(parent)
	r := &Registry{
		inbox:  make(chan Msg, 64),
		rooms:  make(map[string]*session.Session),
		st:     st,
		opts:   opts,
		dirty:  make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}

	snaps, err := st.Load(ctx)
	if err != nil {
		cancel()
		return nil, err
	}
	now := time.Now()
	for id, snap := range snaps {
		r.rooms[id] = r.newSession(store.RestoreRoom(snap, now))
	}
	if len(snaps) > 0 {
		log.Info().Int("rooms", len(snaps)).Msg("restored rooms from snapshot")
	}

	go r.loop()
	go r.saver()
	return r, nil
}

func (r *Registry) Inbox() chan<- Msg { return r.inbox }

func (r *Registry) newSession(room *game.Room) *session.Session {
	return session.New(r.ctx, room, session.Options{
		DisconnectGrace: r.opts.DisconnectGrace,
		Commentary:      r.opts.Commentary,
		RequestSave:     r.markDirty,
	})
}

// markDirty requests a snapshot save without blocking the caller.
func (r *Registry) markDirty() {
	select {
	case r.dirty <- struct{}{}:
	default:
	}
}

func (r *Registry) loop() {
	sweep := time.NewTicker(r.opts.SweepInterval)
	defer sweep.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-sweep.C:
			r.sweep(time.Now())

		case m := <-r.inbox:
			switch msg := m.(type) {
			case EnsureRoom:
				if s := r.rooms[msg.ID]; s != nil {
					msg.Reply <- s
					break
				}
				s := r.newSession(game.NewRoom(msg.ID, ""))
				r.rooms[msg.ID] = s
				log.Info().Str("room", msg.ID).Msg("room created")
				msg.Reply <- s

			case GetRoom:
				msg.Reply <- r.rooms[msg.ID]

			case RemoveRoom:
				if s := r.rooms[msg.ID]; s != nil {
					s.Send(session.Shutdown{})
					delete(r.rooms, msg.ID)
					r.markDirty()
				}

			case ListRooms:
				ids := make([]string, 0, len(r.rooms))
				for id := range r.rooms {
					ids = append(ids, id)
				}
				msg.Reply <- ids

			case GlobalReset:
				for id, s := range r.rooms {
					s.Send(session.Shutdown{Notify: true})
					delete(r.rooms, id)
				}
				err := r.st.Clear(r.ctx)
				log.Info().Err(err).Msg("global reset: all rooms discarded")
				msg.Reply <- err

			case collectSnapshots:
				out := make(map[string]store.RoomSnapshot, len(r.rooms))
				for id, s := range r.rooms {
					reply := make(chan store.RoomSnapshot, 1)
					if !s.Send(session.GetSnapshot{Reply: reply}) {
						continue
					}
					out[id] = <-reply
				}
				msg.reply <- out

			case ShutdownRegistry:
				for id, s := range r.rooms {
					s.Send(session.Shutdown{})
					delete(r.rooms, id)
				}
				r.cancel()
				return
			}
		}
	}
}

// sweep drops stale disconnected records in every room and evicts rooms
// that have sat empty past the idle window.
func (r *Registry) sweep(now time.Time) {
	for id, s := range r.rooms {
		reply := make(chan bool, 1)
		if !s.Send(session.Sweep{Now: now, IdleAfter: r.opts.IdleEviction, Reply: reply}) {
			delete(r.rooms, id)
			continue
		}
		if <-reply {
			s.Send(session.Shutdown{})
			delete(r.rooms, id)
			log.Info().Str("room", id).Msg("evicted idle room")
			r.markDirty()
		}
	}
}

// saver flushes registry state whenever a dirty signal arrives. Failures
// are logged and never affect in-memory state, which stays authoritative.
func (r *Registry) saver() {
	for {
		select {
		case <-r.ctx.Done():
			return
		case <-r.dirty:
			reply := make(chan map[string]store.RoomSnapshot, 1)
			select {
			case r.inbox <- collectSnapshots{reply: reply}:
			case <-r.ctx.Done():
				return
			}
			var snaps map[string]store.RoomSnapshot
			select {
			case snaps = <-reply:
			case <-r.ctx.Done():
				return
			}
			ctx, cancel := context.WithTimeout(r.ctx, 10*time.Second)
			if err := r.st.Save(ctx, snaps); err != nil {
				log.Warn().Err(err).Msg("snapshot save failed")
			}
			cancel()
		}
	}
}
