package pipeline

import (
	"context"
	"testing"

	"github.com/anuvgupta/soccer-news-infra/internal/browser"
)

func TestDedupeStandingsKeepsFirstSeen(t *testing.T) {
	day1 := []StandingsRequest{
		{Competition: "A", URL: "u1"},
		{Competition: "B", URL: "u2"},
	}
	day2 := []StandingsRequest{
		{Competition: "A", URL: "u1-prime"},
		{Competition: "C", URL: "u3"},
	}

	merged := DedupeStandings(day1, day2)
	if len(merged) != 3 {
		t.Fatalf("expected 3 unique competitions, got %d", len(merged))
	}
	if merged[0].Competition != "A" || merged[0].URL != "u1" {
		t.Errorf("first-seen URL for A should win, got %+v", merged[0])
	}
	if merged[1].Competition != "B" || merged[2].Competition != "C" {
		t.Errorf("merged order unexpected: %+v", merged)
	}
}

func TestEnrichStandingsIsolatesFailure(t *testing.T) {
	requests := []StandingsRequest{
		{Competition: "English Premier League", URL: "https://example.com/epl"},
		{Competition: "MLS", URL: "https://example.com/mls"},
		{Competition: "Spanish LALIGA", URL: "https://example.com/laliga"},
	}

	fetcher := &fakeFetcher{respond: func(req browser.Request) (string, error) {
		if req.URL == "https://example.com/mls" {
			return "", &browser.FetchError{URL: req.URL, Reason: "worker crashed"}
		}
		return "<table>" + req.URL + "</table>", nil
	}}

	enricher := &StandingsEnricher{Fetcher: fetcher}
	standings := enricher.EnrichStandings(context.Background(), requests)

	if len(standings) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(standings))
	}
	for _, st := range standings {
		switch st.Competition {
		case "MLS":
			if st.HTML != "" {
				t.Errorf("failed fetch should leave empty HTML, got %q", st.HTML)
			}
		default:
			if st.HTML == "" {
				t.Errorf("%s should have standings HTML", st.Competition)
			}
		}
	}
}

func TestEnrichStandingsPreservesRequestOrder(t *testing.T) {
	requests := []StandingsRequest{
		{Competition: "B", URL: "https://example.com/b"},
		{Competition: "A", URL: "https://example.com/a"},
	}

	fetcher := &fakeFetcher{respond: func(req browser.Request) (string, error) {
		return "html", nil
	}}

	enricher := &StandingsEnricher{Fetcher: fetcher}
	standings := enricher.EnrichStandings(context.Background(), requests)

	if standings[0].Competition != "B" || standings[1].Competition != "A" {
		t.Errorf("result order should match request order: %+v", standings)
	}
}

func TestEnrichStandingsEmptyInput(t *testing.T) {
	enricher := &StandingsEnricher{Fetcher: &fakeFetcher{}}
	standings := enricher.EnrichStandings(context.Background(), nil)
	if len(standings) != 0 {
		t.Fatalf("expected no standings, got %d", len(standings))
	}
}
