package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anuvgupta/soccer-news-infra/internal/browser"
)

const scheduleURLFormat = "https://www.espn.com/soccer/schedule/_/date/%s"

// Pipeline orchestrates the full run: resolve the date window, fetch and
// extract both days' schedules, enrich reports and standings, summarize.
type Pipeline struct {
	Fetcher       PageFetcher
	Extractor     MatchExtractor
	Reports       *ReportEnricher
	Standings     *StandingsEnricher
	Summarizer    Summarizer
	Allowlist     []string
	StandingsURLs map[string]string
	Location      *time.Location
	Logger        *zap.Logger
}

// New validates the orchestrator's collaborators.
func New(p Pipeline) (*Pipeline, error) {
	if p.Fetcher == nil {
		return nil, errors.New("pipeline requires a page fetcher")
	}
	if p.Extractor == nil {
		return nil, errors.New("pipeline requires a match extractor")
	}
	if p.Reports == nil || p.Standings == nil {
		return nil, errors.New("pipeline requires both enrichers")
	}
	if p.Summarizer == nil {
		return nil, errors.New("pipeline requires a summarizer")
	}
	if len(p.Allowlist) == 0 {
		return nil, errors.New("pipeline requires a competition allow-list")
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &p, nil
}

// Run executes one end-to-end pipeline invocation. A fetch or extraction
// failure for either date aborts the whole run; failures inside the
// enrichment stages are isolated per item and never abort.
func (p *Pipeline) Run(ctx context.Context, timestamp string) (*Result, error) {
	runID := uuid.NewString()
	logger := p.Logger.With(zap.String("run_id", runID))

	window, err := ResolveWindow(timestamp, p.Location)
	if err != nil {
		return nil, err
	}
	logger.Info("pipeline starting",
		zap.String("reference_date", window.ReferenceCompact),
		zap.String("previous_date", window.PreviousCompact),
	)

	// Both dates fetch+extract in parallel; the first error cancels the run.
	days := []struct {
		compact string
		label   string
	}{
		{window.ReferenceCompact, window.ReferenceLabel},
		{window.PreviousCompact, window.PreviousLabel},
	}
	extractions := make([]Extraction, len(days))

	g, gctx := errgroup.WithContext(ctx)
	for i, day := range days {
		i, day := i, day
		g.Go(func() error {
			html, err := p.Fetcher.Fetch(gctx, browser.Request{
				URL:       fmt.Sprintf(scheduleURLFormat, day.compact),
				Operation: "extract",
				Keyword:   ScheduleMarker,
			})
			if err != nil {
				return fmt.Errorf("schedule fetch for %s: %w", day.compact, err)
			}

			extraction, err := p.Extractor.Extract(gctx, html, day.label, p.Allowlist, p.StandingsURLs)
			if err != nil {
				return fmt.Errorf("schedule extraction for %s: %w", day.compact, err)
			}
			extractions[i] = extraction
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Matches from both days are concatenated as-is. A match straddling the
	// two dates can appear twice; that timezone-boundary overlap is accepted.
	matches := append(extractions[0].Matches, extractions[1].Matches...)
	standingsRequests := DedupeStandings(extractions[0].StandingsURLs, extractions[1].StandingsURLs)

	logger.Info("schedules extracted",
		zap.Int("matches", len(matches)),
		zap.Int("standings_requests", len(standingsRequests)),
	)

	matches = p.Reports.EnrichReports(ctx, matches)
	standings := p.Standings.EnrichStandings(ctx, standingsRequests)

	notification, err := p.Summarizer.Summarize(ctx, window, matches, standings)
	if err != nil {
		return nil, fmt.Errorf("summarize run: %w", err)
	}

	logger.Info("pipeline complete",
		zap.Int("matches", len(matches)),
		zap.Int("standings", len(standings)),
		zap.Int("notification_chars", len(notification)),
	)

	return &Result{
		RunID:        runID,
		Window:       window,
		Matches:      matches,
		Standings:    standings,
		Notification: notification,
	}, nil
}
