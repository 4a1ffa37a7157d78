// internal/game/player.go
//
// Per-participant state within a room: guess history, progress markers,
// cumulative win counter, and connection status. Players are keyed by
// display name for game purposes; the ConnID is only the current transport
// handle and is replaced on rejoin.

package game

import "time"

// Player holds one participant's board and lifecycle state for the
// current round, plus the win counter that survives rounds.
type Player struct {
	Name     string      // stable display name (uniqueness key in a room)
	ConnID   string      // transient transport handle
	Guesses  []string    // submitted guesses, lowercased, in order
	Verdicts [][]Verdict // verdict row per guess, same order
	Row      int         // current attempt index, 0..MaxAttempts
	Finished bool        // no further guesses accepted
	Won      bool        // latest guess was all-correct; implies Finished
	Wins     int         // cumulative across rounds

	Connected      bool
	DisconnectedAt time.Time // zero unless Connected is false
}

func newPlayer(connID, name string) *Player {
	return &Player{
		Name:      name,
		ConnID:    connID,
		Guesses:   []string{},
		Verdicts:  [][]Verdict{},
		Connected: true,
	}
}

// record appends a scored guess and advances the attempt index.
// Once finished, record is a no-op; the invariant Row <= MaxAttempts holds.
func (p *Player) record(guess string, vs []Verdict) {
	if p.Finished {
		return
	}
	p.Guesses = append(p.Guesses, guess)
	p.Verdicts = append(p.Verdicts, vs)
	p.Row++

	if allCorrect(vs) {
		p.Won = true
		p.Finished = true
	} else if p.Row >= MaxAttempts {
		p.Finished = true
	}
}

// markDisconnected flags the player as disconnected at the given time.
// Game history is retained for a later rejoin.
func (p *Player) markDisconnected(now time.Time) {
	p.Connected = false
	p.DisconnectedAt = now
}

// reattach re-associates a live transport handle with this record,
// preserving all game history.
func (p *Player) reattach(connID string) {
	p.ConnID = connID
	p.Connected = true
	p.DisconnectedAt = time.Time{}
}

// resetBoard clears round-scoped state while keeping identity, connection
// status, and the cumulative win counter.
func (p *Player) resetBoard() {
	p.Guesses = []string{}
	p.Verdicts = [][]Verdict{}
	p.Row = 0
	p.Finished = false
	p.Won = false
}
