package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name   string
		guess  string
		secret string
		want   []Verdict
	}{
		{
			name:   "exact match",
			guess:  "crane",
			secret: "crane",
			want:   []Verdict{"green", "green", "green", "green", "green"},
		},
		{
			name:   "shared letters shifted",
			guess:  "trace",
			secret: "crane",
			want:   []Verdict{"gray", "green", "green", "yellow", "green"},
		},
		{
			name:   "no letters shared",
			guess:  "light",
			secret: "crane",
			want:   []Verdict{"gray", "gray", "gray", "gray", "gray"},
		},
		{
			// Secret has one L; the guess's second L must come up gray even
			// though an L remains "visible" at another position.
			name:   "duplicate guess letter single secret occurrence",
			guess:  "allow",
			secret: "lager",
			want:   []Verdict{"yellow", "yellow", "gray", "gray", "gray"},
		},
		{
			// Both l's in the guess land on the secret's two l's; the y gets
			// nothing.
			name:   "duplicate letters both consumed",
			guess:  "loyal",
			secret: "allow",
			want:   []Verdict{"yellow", "yellow", "gray", "yellow", "yellow"},
		},
		{
			// Green tiles consume secret occurrences before yellows are
			// handed out: both e's in the secret are taken by greens, so the
			// stray guess e comes up gray.
			name:   "green consumes before yellow",
			guess:  "geese",
			secret: "theme",
			want:   []Verdict{"gray", "gray", "green", "gray", "green"},
		},
		{
			name:   "uppercase input normalized",
			guess:  "TRACE",
			secret: "Crane",
			want:   []Verdict{"gray", "green", "green", "yellow", "green"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, Score(tc.guess, tc.secret))
		})
	}
}

// A letter must never be marked green or yellow more times than it occurs
// in the secret.
func TestScoreNeverOvercounts(t *testing.T) {
	pairs := [][2]string{
		{"allow", "loyal"},
		{"loyal", "allow"},
		{"eerie", "theme"},
		{"mamma", "madam"},
		{"sassy", "brass"},
	}
	for _, pair := range pairs {
		guess, secret := pair[0], pair[1]
		vs := Score(guess, secret)

		var secretCounts, markedCounts [26]int
		for _, r := range secret {
			secretCounts[idx(r)]++
		}
		for i, r := range guess {
			if vs[i] != VerdictAbsent {
				markedCounts[idx(r)]++
			}
		}
		for j := 0; j < 26; j++ {
			require.LessOrEqualf(t, markedCounts[j], secretCounts[j],
				"score(%q, %q): letter %c marked %d times but occurs %d times",
				guess, secret, 'a'+j, markedCounts[j], secretCounts[j])
		}
	}
}

func TestAllCorrect(t *testing.T) {
	require.True(t, allCorrect(Score("crane", "crane")))
	require.False(t, allCorrect(Score("trace", "crane")))
}
