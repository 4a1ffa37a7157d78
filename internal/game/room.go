// internal/game/room.go
//
// Room session state machine.
// Responsibilities:
//   - Own one secret word and the player records guessing against it.
//   - Arbitrate joins (capacity, name collisions) and rejoins.
//   - Validate and score guesses; detect win and full-room loss.
//   - Handle restarts (latched, once per round) and automatic round start.
//
// The Room is a pure state machine: no goroutines, no locks, no clock of
// its own (operations that need time take it as a parameter). Strict
// one-at-a-time ordering is the caller's responsibility; internal/session
// provides it by driving a Room from a single loop.

package game

import (
	"errors"
	"strings"
	"time"

	"wordclash/internal/words"
)

var (
	ErrRoomFull         = errors.New("room full")
	ErrInvalidWord      = errors.New("invalid word")
	ErrRoundInactive    = errors.New("round not active")
	ErrNotFound         = errors.New("player not found")
	ErrDuplicateRestart = errors.New("restart already requested")
)

// MaxPlayers is the cap on simultaneously connected players per room.
const MaxPlayers = 5

// Room owns one secret word and a set of player records.
//
// Invariants:
//   - At most one player holds Won=true per round: the round deactivates
//     the instant a winner is recorded, and inactive rounds reject guesses.
//   - Player names are unique among connected players.
type Room struct {
	ID      string
	Secret  string
	Players map[string]*Player // keyed by ConnID
	Active  bool
	Winner  string // name of the last round's winner, "" if none

	// RestartRequested latches once a restart has been honored; it clears
	// when the round it started ends, so each round admits one restart.
	RestartRequested bool

	// LastActivity is touched by every mutating operation; the registry
	// uses it to evict long-idle empty rooms.
	LastActivity time.Time
}

// NewRoom constructs an inactive room. If secret is empty a random target
// word is drawn; passing a fixed secret is useful for tests.
func NewRoom(id, secret string) *Room {
	if secret == "" {
		secret = words.RandomTarget()
	}
	return &Room{
		ID:           id,
		Secret:       strings.ToLower(secret),
		Players:      make(map[string]*Player),
		LastActivity: time.Now(),
	}
}

// JoinOutcome reports the effects of a Join or Rejoin.
type JoinOutcome struct {
	Player   *Player
	Evicted  *Player // prior connected player kicked over a name collision
	Rejoined bool    // an existing record was reattached (Rejoin path only)
}

// Join admits a new player under the given display name.
//
// Name is the uniqueness key, not transport identity: a *connected* player
// already holding the name is force-evicted (returned in the outcome so the
// caller can notify it) before the join proceeds. A *disconnected* record
// with the same name is discarded, not reattached; rejoining with history
// intact is Rejoin's job.
//
// Returns ErrRoomFull when the connected player count is already at capacity.
func (r *Room) Join(connID, name string) (*JoinOutcome, error) {
	out := &JoinOutcome{}

	for id, p := range r.Players {
		if p.Name != name {
			continue
		}
		if p.Connected {
			out.Evicted = p
		}
		delete(r.Players, id)
	}

	if r.ConnectedCount() >= MaxPlayers {
		return nil, ErrRoomFull
	}

	out.Player = newPlayer(connID, name)
	r.Players[connID] = out.Player
	r.touch()
	return out, nil
}

// Rejoin reattaches an existing record (connected or disconnected) by name,
// restoring full board history and win counter under the new transport
// handle. When no record holds the name, it falls back to ordinary Join
// semantics.
func (r *Room) Rejoin(connID, name string) (*JoinOutcome, error) {
	for id, p := range r.Players {
		if p.Name != name {
			continue
		}
		if id != connID {
			delete(r.Players, id)
		}
		p.reattach(connID)
		r.Players[connID] = p
		r.touch()
		return &JoinOutcome{Player: p, Rejoined: true}, nil
	}
	return r.Join(connID, name)
}

// GuessOutcome reports the effects of a scored guess.
type GuessOutcome struct {
	Player    *Player
	Verdicts  []Verdict
	Finished  bool
	Won       bool
	RoundOver bool   // this guess deactivated the round
	Winner    string // set when RoundOver and someone won; "" on full-room loss
}

// Guess validates, scores, and records a guess for the player behind connID.
//
// Rejections:
//   - ErrNotFound:      no record for this connection.
//   - ErrRoundInactive: no round running, or the player already finished.
//     Two near-simultaneous winning guesses resolve here: the first one
//     processed deactivates the round, the second is rejected.
//   - ErrInvalidWord:   wrong shape, or absent from the allowed dictionary.
func (r *Room) Guess(connID, raw string) (*GuessOutcome, error) {
	p, ok := r.Players[connID]
	if !ok {
		return nil, ErrNotFound
	}
	if !r.Active || p.Finished {
		return nil, ErrRoundInactive
	}

	guess := strings.ToLower(strings.TrimSpace(raw))
	if len(guess) != WordLength || !isAlpha(guess) {
		return nil, ErrInvalidWord
	}
	if !words.IsAllowed(guess) {
		return nil, ErrInvalidWord
	}

	vs := Score(guess, r.Secret)
	p.record(guess, vs)
	r.touch()

	out := &GuessOutcome{Player: p, Verdicts: vs, Finished: p.Finished, Won: p.Won}
	if p.Won {
		// First-win-wins: deactivating here makes any later guess, however
		// close behind, land on an inactive round.
		p.Wins++
		r.Winner = p.Name
		r.endRound()
		out.RoundOver = true
		out.Winner = p.Name
		return out, nil
	}

	if r.allConnectedFinished() {
		r.endRound()
		out.RoundOver = true
	}
	return out, nil
}

// allConnectedFinished reports a full-room loss: at least one connected
// player, all of them finished, none the winner.
func (r *Room) allConnectedFinished() bool {
	any := false
	for _, p := range r.Players {
		if !p.Connected {
			continue
		}
		any = true
		if !p.Finished {
			return false
		}
	}
	return any
}

// endRound deactivates the round and re-arms the restart latch.
func (r *Room) endRound() {
	r.Active = false
	r.RestartRequested = false
}

// Leave removes the player permanently, freeing the name immediately.
func (r *Room) Leave(connID string) (*Player, bool) {
	p, ok := r.Players[connID]
	if !ok {
		return nil, false
	}
	delete(r.Players, connID)
	r.touch()
	return p, true
}

// Disconnect marks the record disconnected-with-timestamp but retains it,
// enabling a later Rejoin. A disconnect is terminal for the connection,
// not for the player record.
func (r *Room) Disconnect(connID string, now time.Time) (*Player, bool) {
	p, ok := r.Players[connID]
	if !ok {
		return nil, false
	}
	p.markDisconnected(now)
	r.touch()
	return p, true
}

// RequestRestart starts a new round with a fresh secret word, clearing all
// boards while preserving cumulative win counters.
//
// Honored at most once per round: the latch stays set until the started
// round ends, so a second request (say, two players mashing "play again")
// gets ErrDuplicateRestart instead of burning another word.
func (r *Room) RequestRestart(connID string) (*Player, error) {
	p, ok := r.Players[connID]
	if !ok {
		return nil, ErrNotFound
	}
	if r.RestartRequested {
		return nil, ErrDuplicateRestart
	}
	r.RestartRequested = true
	r.reset(true)
	return p, nil
}

// AutoStart activates a round once at least one connected player is present
// and no round is running. The existing secret is kept if one is set; this
// is how a freshly created or restored room begins play without an explicit
// start action. Reports whether a round was started.
func (r *Room) AutoStart() bool {
	if r.Active || r.ConnectedCount() < 1 {
		return false
	}
	r.reset(false)
	return true
}

// reset begins a round: optionally draws a new secret, clears every
// player's board, and reactivates. Win counters are untouched.
func (r *Room) reset(newSecret bool) {
	if newSecret || r.Secret == "" {
		r.Secret = words.RandomTarget()
	}
	r.Active = true
	r.Winner = ""
	for _, p := range r.Players {
		p.resetBoard()
	}
	r.touch()
}

// CleanupDisconnected drops records that have been disconnected longer than
// grace, returning the names removed. Run before join/rejoin arbitration so
// stale records never contest a name.
func (r *Room) CleanupDisconnected(now time.Time, grace time.Duration) []string {
	var removed []string
	for id, p := range r.Players {
		if p.Connected {
			continue
		}
		if p.DisconnectedAt.IsZero() || now.Sub(p.DisconnectedAt) > grace {
			delete(r.Players, id)
			removed = append(removed, p.Name)
		}
	}
	return removed
}

// ConnectedCount returns the number of live players.
func (r *Room) ConnectedCount() int {
	n := 0
	for _, p := range r.Players {
		if p.Connected {
			n++
		}
	}
	return n
}

// Empty reports whether no player records remain at all.
func (r *Room) Empty() bool { return len(r.Players) == 0 }

func (r *Room) touch() { r.LastActivity = time.Now() }
