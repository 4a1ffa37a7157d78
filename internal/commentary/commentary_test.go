package commentary

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"wordclash/internal/game"
)

func row(vs ...game.Verdict) []game.Verdict { return vs }

func TestClassify(t *testing.T) {
	g, y, x := game.VerdictCorrect, game.VerdictPresent, game.VerdictAbsent

	cases := []struct {
		name string
		row  int
		won  bool
		vs   []game.Verdict
		want Situation
	}{
		{"win trumps everything", 3, true, row(g, g, g, g, g), SituationGameWon},
		{"sixth miss is a loss", 6, false, row(x, x, x, x, x), SituationGameLost},
		{"fifth miss sets up the finale", 5, false, row(g, g, x, x, x), SituationLastAttempt},
		{"all gray", 2, false, row(x, x, x, x, x), SituationNoProgress},
		{"first green on opening guess", 1, false, row(g, x, x, x, x), SituationFirstCorrect},
		{"single green later on", 2, false, row(g, x, x, x, x), SituationCloseGuess},
		{"two greens", 2, false, row(g, g, x, x, x), SituationMultipleCorrect},
		{"green plus two yellows", 3, false, row(g, y, y, x, x), SituationMultipleCorrect},
		{"yellows only", 2, false, row(y, y, x, x, x), SituationCloseGuess},
		{"single yellow", 2, false, row(y, x, x, x, x), SituationNoProgress},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Classify(tc.row, tc.won, tc.vs))
		})
	}
}

func TestCannedLineCoversEverySituation(t *testing.T) {
	for s := range pool {
		l, ok := cannedLine(s)
		require.True(t, ok, "situation %s has no lines", s)
		require.NotEmpty(t, l.text)
		require.NotEmpty(t, l.style)
	}
}

func TestGenerateDisabled(t *testing.T) {
	g := New(Config{Enabled: false})
	_, ok := g.Generate(context.Background(), SituationGameWon, GameContext{PlayerName: "alice"})
	require.False(t, ok)
}

func TestGenerateRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)

		json.NewEncoder(w).Encode(chatResponse{
			Choices: []struct {
				Message chatMessage `json:"message"`
			}{{Message: chatMessage{Role: "assistant", Content: "  What a guess!  "}}},
		})
	}))
	defer srv.Close()

	g := New(Config{
		Enabled:   true,
		AIEnabled: true,
		AIChance:  1.0,
		APIKey:    "test-key",
		BaseURL:   srv.URL,
	})
	msg, ok := g.Generate(context.Background(), SituationGameWon, GameContext{PlayerName: "alice", Attempts: 3})
	require.True(t, ok)
	require.Equal(t, "What a guess!", msg.Text)
	require.Equal(t, "ai", msg.Style)
}

func TestGenerateRemoteFailureFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := New(Config{Enabled: true, AIEnabled: true, AIChance: 1.0, APIKey: "k", BaseURL: srv.URL})
	msg, ok := g.Generate(context.Background(), SituationGameLost, GameContext{PlayerName: "bob"})
	require.True(t, ok, "canned pool must cover a remote failure")
	require.NotEqual(t, "ai", msg.Style)
}

func TestGenerateCannedFallback(t *testing.T) {
	// AI disabled: every call must resolve locally and instantly.
	g := New(Config{Enabled: true, AIEnabled: false})
	msg, ok := g.Generate(context.Background(), SituationCloseGuess, GameContext{PlayerName: "alice"})
	require.True(t, ok)
	require.NotEmpty(t, msg.Text)
	require.Equal(t, "alice", msg.PlayerName)
	require.Equal(t, SituationCloseGuess, msg.Situation)
}
