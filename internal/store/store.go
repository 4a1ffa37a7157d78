// internal/store/store.go
//
// Durable snapshot layer for room state.
// Responsibilities:
//   - Define the snapshot document layout (everything needed to restart a
//     room after a crash: secret, round flag, winner, full player boards).
//   - Define the Store interface; implementations are file-backed (JSON
//     document) and SQLite-backed.
//   - Convert between live game.Room state and snapshot rows.
//
// The in-memory registry is always authoritative; snapshots are best-effort
// and restored player records start marked disconnected.

package store

import (
	"context"
	"time"

	"wordclash/internal/game"
)

// PlayerSnapshot is the persisted form of one player record.
type PlayerSnapshot struct {
	Name     string           `json:"name"`
	Guesses  []string         `json:"guesses"`
	Verdicts [][]game.Verdict `json:"verdicts"`
	Row      int              `json:"row"`
	Finished bool             `json:"finished"`
	Won      bool             `json:"won"`
	Wins     int              `json:"wins"`
}

// RoomSnapshot is the persisted form of one room.
type RoomSnapshot struct {
	ID      string           `json:"roomId"`
	Secret  string           `json:"secret"`
	Active  bool             `json:"active"`
	Winner  string           `json:"winner,omitempty"`
	Players []PlayerSnapshot `json:"players"`
}

// Store persists the registry's rooms for restart recovery.
// Implementations may be backed by a flat file (this package's FileStore),
// SQLite (SQLiteStore), or memory (tests).
type Store interface {
	// Save replaces the durable state with the given rooms.
	Save(ctx context.Context, rooms map[string]RoomSnapshot) error

	// Load retrieves all persisted rooms. A missing backing file/table is
	// not an error; it yields an empty map.
	Load(ctx context.Context) (map[string]RoomSnapshot, error)

	// Clear discards all durable state.
	Clear(ctx context.Context) error
}

// SnapshotRoom captures a live room into its persisted form.
func SnapshotRoom(r *game.Room) RoomSnapshot {
	snap := RoomSnapshot{
		ID:      r.ID,
		Secret:  r.Secret,
		Active:  r.Active,
		Winner:  r.Winner,
		Players: make([]PlayerSnapshot, 0, len(r.Players)),
	}
	for _, p := range r.Players {
		snap.Players = append(snap.Players, PlayerSnapshot{
			Name:     p.Name,
			Guesses:  append([]string{}, p.Guesses...),
			Verdicts: append([][]game.Verdict{}, p.Verdicts...),
			Row:      p.Row,
			Finished: p.Finished,
			Won:      p.Won,
			Wins:     p.Wins,
		})
	}
	return snap
}

// RestoreRoom rebuilds a live room from a snapshot. Every restored player
// starts disconnected as of now, keyed provisionally by name until a
// rejoin attaches a real connection handle.
func RestoreRoom(snap RoomSnapshot, now time.Time) *game.Room {
	r := game.NewRoom(snap.ID, snap.Secret)
	r.Active = snap.Active
	r.Winner = snap.Winner
	for _, ps := range snap.Players {
		p := &game.Player{
			Name:     ps.Name,
			ConnID:   ps.Name,
			Guesses:  append([]string{}, ps.Guesses...),
			Verdicts: append([][]game.Verdict{}, ps.Verdicts...),
			Row:      ps.Row,
			Finished: ps.Finished,
			Won:      ps.Won,
			Wins:     ps.Wins,
		}
		p.Connected = false
		p.DisconnectedAt = now
		r.Players[p.ConnID] = p
	}
	return r
}
