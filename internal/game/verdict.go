// internal/game/verdict.go
//
// Per-letter verdicts and the guess scorer.
// Defines:
//   - Verdict: evaluation result for a single letter of a guess.
//   - Score:   the classic two-pass scoring algorithm.

package game

import "strings"

// Verdict represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "green":  letter is correct and in the correct position.
//   - "yellow": letter exists in the secret but in a different position.
//   - "gray":   letter does not occur in the secret (after accounting for
//     occurrences already consumed by green/yellow tiles).
type Verdict string

const (
	VerdictCorrect Verdict = "green"
	VerdictPresent Verdict = "yellow"
	VerdictAbsent  Verdict = "gray"
)

const (
	// WordLength is the fixed length of secrets and guesses.
	WordLength = 5
	// MaxAttempts is the number of guess rows per player per round.
	MaxAttempts = 6
)

// Score implements the standard two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches as Correct.
//   - Count remaining (non-correct) secret letters by letter index.
//
// Pass 2:
//   - For each non-correct guess letter: if there is remaining count for that
//     letter, mark Present and decrement the count; otherwise mark Absent.
//
// This ensures correct behavior with repeated letters in both secret and
// guess: a letter is never reported more often than it occurs in the secret.
// Inputs are normalized to lowercase; Score is pure and deterministic.
func Score(guess, secret string) []Verdict {
	guess = strings.ToLower(guess)
	secret = strings.ToLower(secret)

	n := len(guess)
	res := make([]Verdict, n)
	secretRunes := []rune(secret)
	guessRunes := []rune(guess)

	// Letter frequency for the non-correct positions (a–z).
	var counts [26]int

	// First pass: mark correct tiles and collect counts for remaining letters.
	for i := 0; i < n; i++ {
		if guessRunes[i] == secretRunes[i] {
			res[i] = VerdictCorrect
		} else {
			counts[idx(secretRunes[i])]++
		}
	}

	// Second pass: resolve present/absent for the remaining tiles.
	for i := 0; i < n; i++ {
		if res[i] == VerdictCorrect {
			continue
		}
		j := idx(guessRunes[i])
		if j >= 0 && j < 26 && counts[j] > 0 {
			res[i] = VerdictPresent
			counts[j]--
		} else {
			res[i] = VerdictAbsent
		}
	}
	return res
}

// idx maps a lowercase ASCII letter rune to 0..25.
// Assumes inputs are validated to a–z elsewhere.
func idx(r rune) int { return int(r - 'a') }

// isAlpha checks that a string consists only of lowercase a–z.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// allCorrect returns true if every verdict is VerdictCorrect.
func allCorrect(vs []Verdict) bool {
	for _, v := range vs {
		if v != VerdictCorrect {
			return false
		}
	}
	return true
}
