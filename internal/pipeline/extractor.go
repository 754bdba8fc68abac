package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/anuvgupta/soccer-news-infra/internal/llm"
)

// ScheduleMarker is the CSS-class fragment that begins the schedule-table
// region on the source pages. It doubles as the server-side extraction
// keyword and the local truncation marker.
const ScheduleMarker = "ResponsiveTable"

const defaultMaxHTMLChars = 50000

// ExtractionError marks a model reply that could not be parsed as the
// required JSON shape. It is fatal: the caller must not attempt partial
// recovery from a malformed extraction.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// MatchExtractor turns one day's schedule HTML into structured match records.
type MatchExtractor interface {
	Extract(ctx context.Context, html, dateLabel string, allowlist []string, standingsURLs map[string]string) (Extraction, error)
}

// Extractor delegates structured extraction to a language-model call and
// validates the reply as an untrusted external payload.
type Extractor struct {
	Client       llm.ChatClient
	Model        string
	Temperature  float64
	MaxTokens    int
	MaxHTMLChars int
	Logger       *zap.Logger
}

// Extract sends trimmed schedule HTML to the model and returns the matches it
// found plus, when a standings map was supplied, the competitions whose
// standings should be fetched. Every returned match has its winner recomputed
// locally; whatever the model claims about winners is discarded.
func (e *Extractor) Extract(ctx context.Context, html, dateLabel string, allowlist []string, standingsURLs map[string]string) (Extraction, error) {
	if e.Client == nil || e.Model == "" {
		return Extraction{}, &ExtractionError{Err: fmt.Errorf("extractor misconfigured")}
	}

	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	trimmed := e.trimHTML(html)
	logger.Info("requesting match extraction",
		zap.String("date", dateLabel),
		zap.Int("html_chars", len(trimmed)),
		zap.Int("allowlist", len(allowlist)),
	)

	req := llm.ChatCompletionRequest{
		Model: e.Model,
		Messages: []llm.Message{
			{Role: "system", Content: "You are a soccer schedule analyst. Respond STRICTLY with valid JSON."},
			{Role: "user", Content: buildExtractionPrompt(trimmed, dateLabel, allowlist, standingsURLs)},
		},
		Temperature:    e.Temperature,
		MaxTokens:      e.MaxTokens,
		ResponseFormat: &llm.ResponseFormat{Type: "json_object"},
	}

	resp, err := e.Client.ChatCompletion(ctx, req)
	if err != nil {
		return Extraction{}, fmt.Errorf("extraction call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Extraction{}, &ExtractionError{Err: fmt.Errorf("reply has no choices")}
	}

	extraction, err := parseExtractionReply(resp.Choices[0].Message.Content, standingsURLs)
	if err != nil {
		return Extraction{}, err
	}

	logger.Info("extraction parsed",
		zap.String("date", dateLabel),
		zap.Int("matches", len(extraction.Matches)),
		zap.Int("standings_urls", len(extraction.StandingsURLs)),
	)
	return extraction, nil
}

func buildExtractionPrompt(html, dateLabel string, allowlist []string, standingsURLs map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are analyzing a soccer schedule page for %s.\n\n", dateLabel)
	b.WriteString("Extract every match shown on the page, both completed and upcoming, but ONLY for these competitions (drop all others):\n")
	for _, competition := range allowlist {
		fmt.Fprintf(&b, "- %s\n", competition)
	}

	b.WriteString(`
For each match provide:
1. The competition name exactly as listed above ("league").
2. Both team names ("team1" home, "team2" away).
3. The final score as "<int>-<int>" for finished matches, or the literal string "upcoming" for matches that have not started ("score").
4. The full match page URL with its gameId ("match_url"), or "" if none is shown.
`)

	if len(standingsURLs) > 0 {
		competitions := make([]string, 0, len(standingsURLs))
		for name := range standingsURLs {
			competitions = append(competitions, name)
		}
		sort.Strings(competitions)
		b.WriteString("\nAlso report which of the following competitions had at least one match on this page, under \"standings_urls\":\n")
		for _, name := range competitions {
			fmt.Fprintf(&b, "- %s: %s\n", name, standingsURLs[name])
		}
	}

	b.WriteString(`
Respond with JSON using this schema:
{
  "matches": [
    {"league": "...", "team1": "...", "team2": "...", "score": "2-1", "match_url": "https://..."}
  ],
  "standings_urls": [
    {"competition": "...", "url": "https://..."}
  ]
}

Here is the HTML content:

`)
	b.WriteString(html)
	return b.String()
}

// parseExtractionReply treats the model reply as untrusted input: the JSON
// shape is validated, records missing both team names are dropped, winners
// are recomputed, and standings competitions are resolved against the static
// map rather than whatever URL the model echoed back.
func parseExtractionReply(content string, standingsURLs map[string]string) (Extraction, error) {
	payload := extractJSON(content)
	if payload == "" {
		return Extraction{}, &ExtractionError{Err: fmt.Errorf("reply missing json payload")}
	}

	var decoded struct {
		Matches []struct {
			League   string `json:"league"`
			Team1    string `json:"team1"`
			Team2    string `json:"team2"`
			Score    string `json:"score"`
			MatchURL string `json:"match_url"`
		} `json:"matches"`
		StandingsURLs []struct {
			Competition string `json:"competition"`
			URL         string `json:"url"`
		} `json:"standings_urls"`
	}
	if err := json.Unmarshal([]byte(payload), &decoded); err != nil {
		return Extraction{}, &ExtractionError{Err: fmt.Errorf("reply decode: %w", err)}
	}

	extraction := Extraction{Matches: make([]Match, 0, len(decoded.Matches))}
	for _, m := range decoded.Matches {
		team1 := strings.TrimSpace(m.Team1)
		team2 := strings.TrimSpace(m.Team2)
		if team1 == "" || team2 == "" {
			continue
		}
		score := strings.TrimSpace(m.Score)
		extraction.Matches = append(extraction.Matches, Match{
			League:   strings.TrimSpace(m.League),
			Team1:    team1,
			Team2:    team2,
			Score:    score,
			MatchURL: strings.TrimSpace(m.MatchURL),
			Winner:   DeriveWinner(score, team1, team2),
		})
	}

	for _, s := range decoded.StandingsURLs {
		name := strings.TrimSpace(s.Competition)
		url, ok := standingsURLs[name]
		if !ok {
			continue
		}
		extraction.StandingsURLs = append(extraction.StandingsURLs, StandingsRequest{
			Competition: name,
			URL:         url,
		})
	}

	return extraction, nil
}

// trimHTML bounds the HTML handed to the model. It first tries to isolate the
// schedule-table region with a CSS-class selector; failing that it discards
// everything before the first marker occurrence, then takes a prefix.
func (e *Extractor) trimHTML(html string) string {
	maxChars := e.MaxHTMLChars
	if maxChars <= 0 {
		maxChars = defaultMaxHTMLChars
	}
	if len(html) <= maxChars {
		return html
	}

	if region := scheduleRegion(html); region != "" {
		html = region
	} else if idx := strings.Index(html, ScheduleMarker); idx >= 0 {
		html = html[idx:]
	}

	if len(html) > maxChars {
		html = html[:maxChars]
	}
	return html
}

func scheduleRegion(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var b strings.Builder
	doc.Find(fmt.Sprintf("[class*=%q]", ScheduleMarker)).Each(func(_ int, sel *goquery.Selection) {
		if fragment, err := goquery.OuterHtml(sel); err == nil {
			b.WriteString(fragment)
			b.WriteString("\n")
		}
	})
	return b.String()
}

func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return ""
	}
	return content[start : end+1]
}
