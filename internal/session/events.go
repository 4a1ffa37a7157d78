package session

import "wordclash/internal/game"

// Event types broadcast to clients. The vocabulary follows the game's wire
// protocol: state snapshots go to everyone, rejections only to the caller.
const (
	EventState          = "game-state"
	EventPlayerJoined   = "player-joined"
	EventPlayerLeft     = "player-left"
	EventRoundStarted   = "game-started"
	EventRoundEnded     = "game-ended"
	EventGuessRejected  = "invalid-guess"
	EventKicked         = "player-kicked"
	EventRoomFull       = "room-full"
	EventRejoinSuccess  = "rejoin-success"
	EventRejoinFailed   = "rejoin-failed"
	EventLeftRoom       = "left-room"
	EventPlayAgain      = "play-again-triggered"
	EventRestartLatched = "restart-already-requested"
	EventChat           = "chat-message"
	EventCommentary     = "commentary"
	EventMasterReset    = "master-reset-complete"
)

// Event is the envelope written to client outboxes. Only the fields
// relevant to the Type are populated.
type Event struct {
	Type        string      `json:"type"`
	State       *game.State `json:"state,omitempty"`
	PlayerName  string      `json:"playerName,omitempty"`
	PlayerCount int         `json:"playerCount,omitempty"`
	Winner      string      `json:"winner,omitempty"`
	Word        string      `json:"word,omitempty"`
	Reason      string      `json:"reason,omitempty"`
	Message     string      `json:"message,omitempty"`
	Style       string      `json:"style,omitempty"`
	Situation   string      `json:"situation,omitempty"`
	Timestamp   int64       `json:"timestamp,omitempty"`
}
