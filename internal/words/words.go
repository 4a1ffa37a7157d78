// internal/words/words.go
//
// Word list management for the room game.
//
// Responsibilities:
//   - Load target and allowed-guess lists from environment-provided files
//     or fall back to embedded defaults.
//   - Maintain sets for quick lookups (targets only, targets∪guesses).
//   - Supply utility functions like RandomTarget, IsAllowed, IsTarget, Stats.
//
// Word Lists:
//   - "targets": words a round's secret may be drawn from (exactly 5 lowercase letters).
//   - "allowed": words a player may submit as a guess (always includes targets).
//
// Initialization behavior (Init):
//   1. If WORDS_TARGETS_FILE and WORDS_ALLOWED_FILE are both set,
//      load targets from the first and allowed guesses from the second.
//   2. If only WORDS_ALLOWED_FILE is set,
//      load that file and use it for both targets and allowed guesses.
//   3. If neither is set, fall back to the embedded defaults from
//      `targets.txt` and `allowed_extra.txt`.
//
// Constraints:
//   • Words must be 5 alphabetic letters (a–z).
//   • Lists are normalized to lowercase.
//   • Initialization is run once (sync.Once).

package words

import (
	"bufio"
	"crypto/rand"
	_ "embed"
	"errors"
	"math/big"
	"os"
	"strings"
	"sync"
)

// --- embedded defaults (ensures the server runs even if no files configured) ---

//go:embed targets.txt
var embeddedTargets string

//go:embed allowed_extra.txt
var embeddedAllowed string

var (
	initOnce   sync.Once
	targets    []string            // words a secret may be drawn from
	allowedSet map[string]struct{} // targets ∪ guesses
	targetsSet map[string]struct{} // targets only
	initialErr error
)

// Init loads word lists exactly once.
// Returns an error if the targets list ends up empty.
func Init() error {
	initOnce.Do(func() {
		var tgtList, allowList []string

		targetsPath := os.Getenv("WORDS_TARGETS_FILE")
		allowedPath := os.Getenv("WORDS_ALLOWED_FILE")

		switch {
		// Case 1: both lists provided
		case targetsPath != "" && allowedPath != "":
			var err error
			tgtList, err = readWordFile(targetsPath)
			if err != nil {
				initialErr = err
				return
			}
			allowList, err = readWordFile(allowedPath)
			if err != nil {
				initialErr = err
				return
			}

		// Case 2: only allowed file provided → use for both
		case targetsPath == "" && allowedPath != "":
			var err error
			allowList, err = readWordFile(allowedPath)
			if err != nil {
				initialErr = err
				return
			}
			tgtList = allowList

		// Case 3: fallback to embedded defaults
		default:
			tgtList = normalizeLines(embeddedTargets)
			allowList = normalizeLines(embeddedAllowed)
		}

		targets = tgtList
		targetsSet = toSet(tgtList)

		// Ensure all targets are also guessable
		allowedSet = toSet(tgtList)
		for _, w := range allowList {
			allowedSet[w] = struct{}{}
		}

		if len(targets) == 0 {
			initialErr = errors.New("words: targets list is empty")
		}
	})
	return initialErr
}

// readWordFile loads one word per line from a file,
// lowercases, trims, and keeps only valid 5-letter alphabetic words.
func readWordFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		w := strings.TrimSpace(strings.ToLower(sc.Text()))
		if len(w) == 5 && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out, sc.Err()
}

// normalizeLines processes an embedded multiline string
// into a slice of valid lowercase 5-letter words.
func normalizeLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		w := strings.TrimSpace(strings.ToLower(line))
		if len(w) == 5 && isAlpha(w) {
			out = append(out, w)
		}
	}
	return out
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// isAlpha reports whether s is all lowercase ASCII letters.
func isAlpha(s string) bool {
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// RandomTarget returns a cryptographically random secret from the targets list.
// If targets are not loaded yet or empty, falls back to "crane".
func RandomTarget() string {
	if len(targets) == 0 {
		return "crane"
	}
	nBig, _ := rand.Int(rand.Reader, big.NewInt(int64(len(targets))))
	return targets[nBig.Int64()]
}

// IsAllowed reports whether w is a valid guess (targets ∪ guesses).
func IsAllowed(w string) bool {
	_, ok := allowedSet[strings.ToLower(w)]
	return ok
}

// IsTarget reports whether w is a possible secret word.
func IsTarget(w string) bool {
	_, ok := targetsSet[strings.ToLower(w)]
	return ok
}

// Stats returns counts of loaded words: (targets, allowed).
func Stats() (targetCount int, allowedCount int) {
	return len(targets), len(allowedSet)
}
