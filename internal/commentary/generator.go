// internal/commentary/generator.go
//
// Commentary generation: canned pool by default, remote model with a
// configurable probability. The remote call speaks the OpenAI-style chat
// completions wire format with a hard 5-second timeout; on any failure the
// generator silently falls back to the pool.

package commentary

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const requestTimeout = 5 * time.Second

// Config controls commentary generation.
type Config struct {
	Enabled   bool    // master switch; when false, Generate never produces output
	AIEnabled bool    // allow remote generation at all
	AIChance  float64 // probability a given line is remote-generated (0..1)
	APIKey    string
	Model     string
	BaseURL   string // e.g. https://api.moonshot.cn/v1
}

// GameContext carries the details the prompt builder needs.
type GameContext struct {
	PlayerName   string
	Attempts     int
	Won          bool
	TotalPlayers int
}

// Generator produces commentary messages.
type Generator struct {
	cfg    Config
	client *http.Client
}

// New constructs a Generator.
func New(cfg Config) *Generator {
	if cfg.Model == "" {
		cfg.Model = "moonshot-v1-8k"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.moonshot.cn/v1"
	}
	return &Generator{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
	}
}

// Generate produces one commentary message for the situation, or ok=false
// when commentary is disabled or no line is available. Safe to call from
// any goroutine.
func (g *Generator) Generate(ctx context.Context, s Situation, gc GameContext) (Message, bool) {
	if !g.cfg.Enabled {
		return Message{}, false
	}

	if g.useAI() {
		if text, err := g.remoteLine(ctx, s, gc); err == nil && text != "" {
			return Message{Text: text, Style: "ai", PlayerName: gc.PlayerName, Situation: s}, true
		}
	}

	ln, ok := cannedLine(s)
	if !ok {
		return Message{}, false
	}
	return Message{Text: ln.text, Style: ln.style, PlayerName: gc.PlayerName, Situation: s}, true
}

func (g *Generator) useAI() bool {
	if !g.cfg.AIEnabled || g.cfg.APIKey == "" {
		return false
	}
	poolMu.Lock()
	defer poolMu.Unlock()
	return poolRand.Float64() < g.cfg.AIChance
}

// prompt builds the per-situation user prompt.
func prompt(s Situation, gc GameContext) string {
	switch s {
	case SituationInvalidWord:
		return fmt.Sprintf("Player %s tried an invalid word on attempt %d. Make a witty comment about their spelling creativity.", gc.PlayerName, gc.Attempts)
	case SituationCloseGuess:
		return fmt.Sprintf("Player %s made a close guess with some correct letters on attempt %d. Comment on their progress.", gc.PlayerName, gc.Attempts)
	case SituationFirstCorrect:
		return fmt.Sprintf("Player %s got their first letter in the right position on attempt %d. Celebrate this milestone.", gc.PlayerName, gc.Attempts)
	case SituationGameWon:
		return fmt.Sprintf("Player %s won the game in %d attempts out of %d players. Make a victory comment.", gc.PlayerName, gc.Attempts, gc.TotalPlayers)
	case SituationLastAttempt:
		return fmt.Sprintf("Player %s is on their final attempt (%d/6). Create tension without giving hints.", gc.PlayerName, gc.Attempts)
	case SituationGameLost:
		return fmt.Sprintf("Player %s failed to guess the word in 6 attempts. Console them humorously.", gc.PlayerName)
	case SituationMultipleCorrect:
		return fmt.Sprintf("Player %s got multiple letters right on attempt %d. Comment on their improving skills.", gc.PlayerName, gc.Attempts)
	default:
		return fmt.Sprintf("Comment on player %s's gameplay on attempt %d.", gc.PlayerName, gc.Attempts)
	}
}

const systemPrompt = "You are a witty, cheeky game commentator for a multiplayer word-guessing game. " +
	"Provide short, entertaining commentary (max 15 words) without revealing the answer or giving hints. " +
	"Be playful and engaging."

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// remoteLine asks the configured model for one commentary line.
func (g *Generator) remoteLine(ctx context.Context, s Situation, gc GameContext) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt(s, gc)},
		},
		Temperature: 0.8,
		MaxTokens:   50,
	})
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(g.cfg.BaseURL, "/")+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("commentary: unexpected status %d", resp.StatusCode)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("commentary: empty response")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
