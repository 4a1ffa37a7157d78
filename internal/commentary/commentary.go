// internal/commentary/commentary.go
//
// Flavor-text commentary for game events.
// Responsibilities:
//   - Classify a scored guess into a commentary situation.
//   - Pick a canned line from the pre-generated pool, or (with a
//     configurable probability) ask a remote model for a fresh one.
//
// Generation is always fire-and-forget from the caller's point of view:
// the session spawns it off its loop and re-enqueues the result, so a slow
// or failing remote call never delays a game operation.

package commentary

import (
	"math/rand"
	"sync"

	"wordclash/internal/game"
)

// Situation labels what just happened, for line selection and prompting.
type Situation string

const (
	SituationInvalidWord     Situation = "invalidWord"
	SituationCloseGuess      Situation = "closeGuess"
	SituationFirstCorrect    Situation = "firstCorrect"
	SituationGameWon         Situation = "gameWon"
	SituationLastAttempt     Situation = "lastAttempt"
	SituationGameLost        Situation = "gameLost"
	SituationMultipleCorrect Situation = "multipleCorrect"
	SituationNoProgress      Situation = "noProgress"
)

// Classify maps a recorded guess to a situation. row is the player's
// attempt index after the guess was recorded.
func Classify(row int, won bool, vs []game.Verdict) Situation {
	if won {
		return SituationGameWon
	}
	if row >= game.MaxAttempts {
		return SituationGameLost
	}
	if row == game.MaxAttempts-1 {
		return SituationLastAttempt
	}

	greens, yellows := 0, 0
	for _, v := range vs {
		switch v {
		case game.VerdictCorrect:
			greens++
		case game.VerdictPresent:
			yellows++
		}
	}

	switch {
	case greens == 0 && yellows == 0:
		return SituationNoProgress
	case greens == 1 && row == 1:
		return SituationFirstCorrect
	case greens >= 2 || (greens >= 1 && yellows >= 2):
		return SituationMultipleCorrect
	case greens >= 1 || yellows >= 2:
		return SituationCloseGuess
	default:
		return SituationNoProgress
	}
}

// Message is a commentary line ready for broadcast.
type Message struct {
	Text       string    `json:"message"`
	Style      string    `json:"style"`
	PlayerName string    `json:"playerName"`
	Situation  Situation `json:"situation"`
}

// line couples a canned commentary text with its delivery style.
type line struct {
	text  string
	style string
}

var pool = map[Situation][]line{
	SituationInvalidWord: {
		{"Creative spelling! Did you invent a new language?", "sarcastic"},
		{"That's not a word... unless you're from another dimension", "sarcastic"},
		{"Bold move! Too bad the English language disagrees", "sarcastic"},
		{"Close! But let's stick to real words this time", "encouraging"},
		{"The word gods have rejected your offering!", "dramatic"},
	},
	SituationCloseGuess: {
		{"SO CLOSE! You're practically breathing on the answer!", "encouraging"},
		{"One letter away from glory! Don't give up now!", "encouraging"},
		{"Oh, just ONE letter off. No big deal, right?", "sarcastic"},
		{"Close enough for horseshoes... but not for this game", "sarcastic"},
	},
	SituationFirstCorrect: {
		{"There we go! First green letter unlocked!", "encouraging"},
		{"Green means go! You're on the right track!", "encouraging"},
		{"BREAKTHROUGH! The fortress wall has been breached!", "dramatic"},
	},
	SituationGameWon: {
		{"BOOM! Victory dance time!", "celebration"},
		{"And we have a winner! Take a bow!", "celebration"},
		{"Nailed it! The word never stood a chance", "celebration"},
		{"Winner winner, word dinner!", "celebration"},
	},
	SituationLastAttempt: {
		{"Final attempt... no pressure or anything", "dramatic"},
		{"Last chance! Make this one count", "dramatic"},
		{"The suspense is killing us... choose wisely", "sarcastic"},
	},
	SituationGameLost: {
		{"The word wins this round... rematch?", "encouraging"},
		{"Six valiant attempts, one stubborn word", "sarcastic"},
		{"Even the best stumble sometimes. Shake it off!", "encouraging"},
	},
	SituationMultipleCorrect: {
		{"Look at all that green! Someone's on fire", "encouraging"},
		{"The word is crumbling under your assault!", "dramatic"},
		{"Multiple hits! Your keyboard thanks you", "sarcastic"},
	},
	SituationNoProgress: {
		{"Everyone's scratching their heads... this is a tough one!", "observational"},
		{"All gray... bold exploration of the alphabet", "sarcastic"},
		{"Process of elimination counts as strategy, right?", "sarcastic"},
	},
}

var poolMu sync.Mutex
var poolRand = rand.New(rand.NewSource(rand.Int63()))

// cannedLine picks a random line for the situation from the pool.
func cannedLine(s Situation) (line, bool) {
	lines := pool[s]
	if len(lines) == 0 {
		return line{}, false
	}
	poolMu.Lock()
	defer poolMu.Unlock()
	return lines[poolRand.Intn(len(lines))], true
}
