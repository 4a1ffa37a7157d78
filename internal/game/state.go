// internal/game/state.go
//
// Outbound views of room state. The State snapshot is what gets broadcast
// to clients; it deliberately omits the secret word (the round-ended
// notification reveals it separately, once the round is over).

package game

// PlayerState is the per-player slice of a State snapshot.
type PlayerState struct {
	Name      string      `json:"name"`
	Guesses   []string    `json:"guesses"`
	Verdicts  [][]Verdict `json:"verdicts"`
	Row       int         `json:"row"`
	Finished  bool        `json:"finished"`
	Won       bool        `json:"won"`
	Wins      int         `json:"wins"`
	Connected bool        `json:"connected"`
}

// State is the full-state snapshot of a room, keyed by display name.
type State struct {
	RoomID      string                 `json:"roomId"`
	Players     map[string]PlayerState `json:"players"`
	Active      bool                   `json:"active"`
	Winner      string                 `json:"winner,omitempty"`
	PlayerCount int                    `json:"playerCount"`
}

// Snapshot captures the room's current broadcastable state.
func (r *Room) Snapshot() State {
	players := make(map[string]PlayerState, len(r.Players))
	for _, p := range r.Players {
		players[p.Name] = PlayerState{
			Name:      p.Name,
			Guesses:   append([]string{}, p.Guesses...),
			Verdicts:  append([][]Verdict{}, p.Verdicts...),
			Row:       p.Row,
			Finished:  p.Finished,
			Won:       p.Won,
			Wins:      p.Wins,
			Connected: p.Connected,
		}
	}
	return State{
		RoomID:      r.ID,
		Players:     players,
		Active:      r.Active,
		Winner:      r.Winner,
		PlayerCount: len(r.Players),
	}
}
