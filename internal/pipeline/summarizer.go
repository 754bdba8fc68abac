package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/anuvgupta/soccer-news-infra/internal/llm"
)

// Summarizer turns the enriched run result into a short notification text.
type Summarizer interface {
	Summarize(ctx context.Context, window DateWindow, matches []Match, standings []Standing) (string, error)
}

// Per-item caps keeping the summarization prompt inside the model's context.
const (
	maxReportChars    = 1500
	maxStandingsChars = 4000
)

// ChatSummarizer produces the notification via one language-model call.
type ChatSummarizer struct {
	Client      llm.ChatClient
	Model       string
	Temperature float64
	MaxTokens   int
	Logger      *zap.Logger
}

// Summarize asks the model for a "[headline]\n\n\n[description]" text block
// followed by a short standings section. The reply is plain text; only
// trimming is applied locally.
func (s *ChatSummarizer) Summarize(ctx context.Context, window DateWindow, matches []Match, standings []Standing) (string, error) {
	if s.Client == nil || s.Model == "" {
		return "", fmt.Errorf("summarizer misconfigured")
	}

	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	prompt, err := buildSummaryPrompt(window, matches, standings)
	if err != nil {
		return "", err
	}

	logger.Info("requesting notification summary",
		zap.Int("matches", len(matches)),
		zap.Int("standings", len(standings)),
	)

	resp, err := s.Client.ChatCompletion(ctx, llm.ChatCompletionRequest{
		Model: s.Model,
		Messages: []llm.Message{
			{Role: "system", Content: "You are a soccer news writer composing short SMS notifications."},
			{Role: "user", Content: prompt},
		},
		Temperature: s.Temperature,
		MaxTokens:   s.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("summary call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("summary reply has no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildSummaryPrompt(window DateWindow, matches []Match, standings []Standing) (string, error) {
	type summaryMatch struct {
		League string `json:"league"`
		Team1  string `json:"team1"`
		Team2  string `json:"team2"`
		Score  string `json:"score"`
		Winner string `json:"winner"`
		Report string `json:"report,omitempty"`
	}
	type summaryStanding struct {
		Competition string `json:"competition"`
		HTML        string `json:"standings_html,omitempty"`
	}

	payload := struct {
		Matches   []summaryMatch    `json:"matches"`
		Standings []summaryStanding `json:"standings"`
	}{
		Matches:   make([]summaryMatch, 0, len(matches)),
		Standings: make([]summaryStanding, 0, len(standings)),
	}

	for _, m := range matches {
		payload.Matches = append(payload.Matches, summaryMatch{
			League: m.League,
			Team1:  m.Team1,
			Team2:  m.Team2,
			Score:  m.Score,
			Winner: m.Winner,
			Report: clip(m.Report, maxReportChars),
		})
	}
	for _, st := range standings {
		payload.Standings = append(payload.Standings, summaryStanding{
			Competition: st.Competition,
			HTML:        clip(st.HTML, maxStandingsChars),
		})
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("summary prompt marshal: %w", err)
	}

	return fmt.Sprintf(`Write a short soccer news notification covering %s and %s.

Output format, exactly:
- Line 1: a catchy one-line headline.
- Then a blank line, then another blank line (so the headline is separated by two empty lines).
- Then 2-4 sentences describing the most notable results, drawing on the match reports where available. Mention upcoming fixtures briefly if there are any.
- Then a short "Standings:" section with one line per competition summarizing the top of its table.

Plain text only, no markdown, no JSON.

Match and standings data:
%s`, window.PreviousLabel, window.ReferenceLabel, string(data)), nil
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
