package pipeline

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestChatSummarizerReturnsTrimmedText(t *testing.T) {
	fake := &fakeChatClient{response: "\nGunners On Fire\n\n\nArsenal beat Aston Villa 4-1.\n"}
	summarizer := &ChatSummarizer{Client: fake, Model: "gpt-4o"}

	window := newWindow(mustParseDate(t, "20241231"))
	matches := []Match{{
		League: "English Premier League",
		Team1:  "Arsenal", Team2: "Aston Villa",
		Score: "4-1", Winner: "Arsenal",
		Report: strings.Repeat("r", maxReportChars+500),
	}}
	standings := []Standing{{
		Competition: "English Premier League",
		HTML:        strings.Repeat("s", maxStandingsChars+500),
	}}

	got, err := summarizer.Summarize(context.Background(), window, matches, standings)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if !strings.HasPrefix(got, "Gunners On Fire") {
		t.Errorf("summary = %q", got)
	}

	prompt := fake.requests[0].Messages[len(fake.requests[0].Messages)-1].Content
	if !strings.Contains(prompt, "Arsenal") {
		t.Errorf("prompt missing match data")
	}
	if !strings.Contains(prompt, "December 30, 2024") || !strings.Contains(prompt, "December 31, 2024") {
		t.Errorf("prompt missing date labels")
	}
	// Oversized report/standings content must be clipped before the call.
	if strings.Contains(prompt, strings.Repeat("r", maxReportChars+1)) {
		t.Errorf("report not clipped in prompt")
	}
	if strings.Contains(prompt, strings.Repeat("s", maxStandingsChars+1)) {
		t.Errorf("standings not clipped in prompt")
	}
}

func TestChatSummarizerRequiresClient(t *testing.T) {
	summarizer := &ChatSummarizer{}
	if _, err := summarizer.Summarize(context.Background(), DateWindow{}, nil, nil); err == nil {
		t.Fatalf("expected configuration error")
	}
}

func mustParseDate(t *testing.T, compact string) time.Time {
	t.Helper()
	ref, err := time.ParseInLocation(compactDateLayout, compact, time.UTC)
	if err != nil {
		t.Fatalf("parse %s: %v", compact, err)
	}
	return ref
}
