package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wordclash/internal/game"
	"wordclash/internal/words"
)

func TestMain(m *testing.M) {
	if err := words.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// sampleRooms builds a couple of snapshots with realistic board state.
func sampleRooms(t *testing.T) map[string]RoomSnapshot {
	t.Helper()

	r := game.NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	_, err = r.Join("conn-b", "bob")
	require.NoError(t, err)
	r.AutoStart()
	_, err = r.Guess("conn-a", "trace")
	require.NoError(t, err)

	empty := game.NewRoom("room-2", "slate")

	return map[string]RoomSnapshot{
		"room-1": SnapshotRoom(r),
		"room-2": SnapshotRoom(empty),
	}
}

func verifyRoundTrip(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	rooms := sampleRooms(t)
	require.NoError(t, st.Save(ctx, rooms))

	loaded, err := st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	snap := loaded["room-1"]
	require.Equal(t, "crane", snap.Secret)
	require.True(t, snap.Active)
	require.Len(t, snap.Players, 2)

	byName := map[string]PlayerSnapshot{}
	for _, p := range snap.Players {
		byName[p.Name] = p
	}
	require.Equal(t, []string{"trace"}, byName["alice"].Guesses)
	require.Equal(t, 1, byName["alice"].Row)
	require.Empty(t, byName["bob"].Guesses)

	// Save replaces, never merges.
	require.NoError(t, st.Save(ctx, map[string]RoomSnapshot{"room-2": rooms["room-2"]}))
	loaded, err = st.Load(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	require.NoError(t, st.Clear(ctx))
	loaded, err = st.Load(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestFileStoreRoundTrip(t *testing.T) {
	st, err := NewFileStore(filepath.Join(t.TempDir(), "rooms.json"))
	require.NoError(t, err)
	verifyRoundTrip(t, st)
}

func TestFileStoreMissingFileLoadsEmpty(t *testing.T) {
	st, err := NewFileStore(filepath.Join(t.TempDir(), "nope", "rooms.json"))
	require.NoError(t, err)

	loaded, err := st.Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, loaded)

	// Clearing a store that never saved is not an error either.
	require.NoError(t, st.Clear(context.Background()))
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	st, err := NewSQLiteStore(filepath.Join(t.TempDir(), "rooms.db"))
	require.NoError(t, err)
	defer st.Close()
	verifyRoundTrip(t, st)
}

func TestRestoreRoomMarksPlayersDisconnected(t *testing.T) {
	rooms := sampleRooms(t)
	now := time.Now()

	r := RestoreRoom(rooms["room-1"], now)
	require.Equal(t, "room-1", r.ID)
	require.Equal(t, "crane", r.Secret)
	require.True(t, r.Active)
	require.Len(t, r.Players, 2)
	require.Zero(t, r.ConnectedCount())

	for _, p := range r.Players {
		require.False(t, p.Connected)
		require.Equal(t, now, p.DisconnectedAt)
	}

	// A rejoin by name picks the board back up under a real connection id.
	out, err := r.Rejoin("conn-new", "alice")
	require.NoError(t, err)
	require.True(t, out.Rejoined)
	require.Equal(t, []string{"trace"}, out.Player.Guesses)
	require.Equal(t, 1, r.ConnectedCount())
}
