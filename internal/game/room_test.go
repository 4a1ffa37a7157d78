package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"wordclash/internal/words"
)

func TestMain(m *testing.M) {
	if err := words.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestJoinCapacity(t *testing.T) {
	r := NewRoom("room-1", "crane")
	for i := 0; i < MaxPlayers; i++ {
		_, err := r.Join(fmt.Sprintf("conn-%d", i), fmt.Sprintf("player-%d", i))
		require.NoError(t, err)
	}
	require.Equal(t, MaxPlayers, r.ConnectedCount())

	_, err := r.Join("conn-extra", "latecomer")
	require.ErrorIs(t, err, ErrRoomFull)
}

func TestJoinEvictsConnectedNamesake(t *testing.T) {
	r := NewRoom("room-1", "crane")
	out1, err := r.Join("conn-a", "alice")
	require.NoError(t, err)

	out2, err := r.Join("conn-b", "alice")
	require.NoError(t, err)
	require.NotNil(t, out2.Evicted)
	require.Same(t, out1.Player, out2.Evicted)

	// The evicted record is gone entirely; only the new connection remains.
	require.Len(t, r.Players, 1)
	require.Equal(t, "conn-b", r.Players["conn-b"].ConnID)
}

func TestJoinDiscardsDisconnectedNamesake(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	r.AutoStart()
	_, err = r.Guess("conn-a", "trace")
	require.NoError(t, err)
	r.Disconnect("conn-a", time.Now())

	// A fresh Join under the same name starts from scratch: the old board
	// is discarded, not reattached.
	out, err := r.Join("conn-b", "alice")
	require.NoError(t, err)
	require.Nil(t, out.Evicted)
	require.False(t, out.Rejoined)
	require.Empty(t, out.Player.Guesses)
}

func TestRejoinReattachesHistory(t *testing.T) {
	r := NewRoom("room-1", "crane")
	out, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	r.AutoStart()
	_, err = r.Guess("conn-a", "trace")
	require.NoError(t, err)
	out.Player.Wins = 3
	r.Disconnect("conn-a", time.Now())

	re, err := r.Rejoin("conn-b", "alice")
	require.NoError(t, err)
	require.True(t, re.Rejoined)
	require.Same(t, out.Player, re.Player)
	require.Equal(t, "conn-b", re.Player.ConnID)
	require.True(t, re.Player.Connected)
	require.Equal(t, []string{"trace"}, re.Player.Guesses)
	require.Equal(t, 3, re.Player.Wins)

	// Old transport key no longer resolves.
	_, ok := r.Players["conn-a"]
	require.False(t, ok)
}

func TestRejoinUnknownNameFallsBackToJoin(t *testing.T) {
	r := NewRoom("room-1", "crane")
	out, err := r.Rejoin("conn-a", "alice")
	require.NoError(t, err)
	require.False(t, out.Rejoined)
	require.Empty(t, out.Player.Guesses)
}

func TestGuessValidation(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)

	// No round running yet.
	_, err = r.Guess("conn-a", "trace")
	require.ErrorIs(t, err, ErrRoundInactive)

	require.True(t, r.AutoStart())

	_, err = r.Guess("conn-ghost", "trace")
	require.ErrorIs(t, err, ErrNotFound)

	for _, bad := range []string{"cat", "toolong", "tr4ce", "zzzzz", ""} {
		_, err = r.Guess("conn-a", bad)
		require.ErrorIs(t, err, ErrInvalidWord, "guess %q", bad)
	}

	// Valid guesses are normalized before scoring and recording.
	out, err := r.Guess("conn-a", "  TRACE ")
	require.NoError(t, err)
	require.Equal(t, []string{"trace"}, out.Player.Guesses)
}

func TestGuessWinEndsRound(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	_, err = r.Join("conn-b", "bob")
	require.NoError(t, err)
	r.AutoStart()

	out, err := r.Guess("conn-a", "crane")
	require.NoError(t, err)
	require.True(t, out.Won)
	require.True(t, out.RoundOver)
	require.Equal(t, "alice", out.Winner)
	require.Equal(t, 1, out.Player.Wins)
	require.False(t, r.Active)

	// First-win-wins: a guess racing in behind the winner finds the round
	// already deactivated.
	_, err = r.Guess("conn-b", "crane")
	require.ErrorIs(t, err, ErrRoundInactive)
}

func TestGuessAttemptBound(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	r.AutoStart()

	misses := []string{"trace", "about", "other", "house", "plant", "sound"}
	require.Len(t, misses, MaxAttempts)
	for i, w := range misses {
		out, err := r.Guess("conn-a", w)
		require.NoError(t, err)
		require.Equal(t, i+1, out.Player.Row)
	}

	p := r.Players["conn-a"]
	require.True(t, p.Finished)
	require.False(t, p.Won)
	require.Equal(t, MaxAttempts, p.Row)

	_, err = r.Guess("conn-a", "water")
	require.ErrorIs(t, err, ErrRoundInactive)
}

func TestFullRoomLoss(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	_, err = r.Join("conn-b", "bob")
	require.NoError(t, err)
	r.AutoStart()

	misses := []string{"trace", "about", "other", "house", "plant", "sound"}
	for _, w := range misses {
		_, err := r.Guess("conn-a", w)
		require.NoError(t, err)
	}
	require.True(t, r.Active, "round stays live while bob can still guess")

	var last *GuessOutcome
	for _, w := range misses {
		last, err = r.Guess("conn-b", w)
		require.NoError(t, err)
	}
	require.True(t, last.RoundOver)
	require.Empty(t, last.Winner)
	require.False(t, r.Active)
	require.Empty(t, r.Winner)
}

func TestFullRoomLossIgnoresDisconnected(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	_, err = r.Join("conn-b", "bob")
	require.NoError(t, err)
	r.AutoStart()
	r.Disconnect("conn-b", time.Now())

	// Only connected boards count toward the loss condition: alice busting
	// out alone ends the round even though bob's board is untouched.
	for _, w := range []string{"trace", "about", "other", "house", "plant", "sound"} {
		_, err := r.Guess("conn-a", w)
		require.NoError(t, err)
	}
	require.False(t, r.Active)
}

func TestRestartLatch(t *testing.T) {
	r := NewRoom("room-1", "crane")
	out, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	r.AutoStart()
	_, err = r.Guess("conn-a", "crane")
	require.NoError(t, err)
	require.Equal(t, 1, out.Player.Wins)

	_, err = r.RequestRestart("conn-a")
	require.NoError(t, err)
	require.True(t, r.Active)
	require.Empty(t, r.Winner)
	require.Empty(t, out.Player.Guesses)
	require.False(t, out.Player.Finished)
	require.Equal(t, 1, out.Player.Wins, "win counter survives restarts")

	// The latch holds for the round the restart started.
	_, err = r.RequestRestart("conn-a")
	require.ErrorIs(t, err, ErrDuplicateRestart)

	// It re-arms once that round ends.
	_, err = r.Guess("conn-a", r.Secret)
	require.NoError(t, err)
	_, err = r.RequestRestart("conn-a")
	require.NoError(t, err)
}

func TestRestartUnknownPlayer(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.RequestRestart("conn-ghost")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestAutoStart(t *testing.T) {
	r := NewRoom("room-1", "crane")
	require.False(t, r.AutoStart(), "no connected players yet")

	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	require.True(t, r.AutoStart())
	require.Equal(t, "crane", r.Secret, "autostart keeps an existing secret")
	require.False(t, r.AutoStart(), "already active")
}

func TestLeaveFreesName(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)

	p, ok := r.Leave("conn-a")
	require.True(t, ok)
	require.Equal(t, "alice", p.Name)
	require.True(t, r.Empty())

	_, ok = r.Leave("conn-a")
	require.False(t, ok)
}

func TestCleanupDisconnected(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	_, err = r.Join("conn-b", "bob")
	require.NoError(t, err)
	_, err = r.Join("conn-c", "carol")
	require.NoError(t, err)

	now := time.Now()
	r.Disconnect("conn-a", now.Add(-15*time.Minute))
	r.Disconnect("conn-b", now.Add(-1*time.Minute))

	removed := r.CleanupDisconnected(now, 10*time.Minute)
	require.Equal(t, []string{"alice"}, removed)
	require.Len(t, r.Players, 2)

	// bob is inside the grace window; a rejoin still finds the record.
	re, err := r.Rejoin("conn-b2", "bob")
	require.NoError(t, err)
	require.True(t, re.Rejoined)
}

func TestStateSnapshotOmitsSecret(t *testing.T) {
	r := NewRoom("room-1", "crane")
	_, err := r.Join("conn-a", "alice")
	require.NoError(t, err)
	r.AutoStart()
	_, err = r.Guess("conn-a", "trace")
	require.NoError(t, err)

	st := r.Snapshot()
	require.Equal(t, "room-1", st.RoomID)
	require.True(t, st.Active)
	ps, ok := st.Players["alice"]
	require.True(t, ok)
	require.Equal(t, []string{"trace"}, ps.Guesses)
	require.Len(t, ps.Verdicts, 1)
}
