package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anuvgupta/soccer-news-infra/internal/browser"
)

// PageFetcher obtains rendered HTML for a URL through the rendering worker.
type PageFetcher interface {
	Fetch(ctx context.Context, req browser.Request) (string, error)
}

const (
	defaultReportConcurrency = 10
	reportURLFormat          = "https://www.espn.com/soccer/report/_/gameId/%s"
)

// ReportEnricher attaches narrative match reports to completed matches.
type ReportEnricher struct {
	Fetcher     PageFetcher
	Concurrency int
	// MaxRetries is the number of extra fetch attempts per report before the
	// failure is downgraded to an empty report.
	MaxRetries uint64
	Logger     *zap.Logger
}

// EnrichReports fetches the report page for every completed match. Upcoming
// and unknown-score matches pass through untouched, as do matches that
// already carry a report. Fetches run concurrently under a shared limit, each
// worker writing only to its own slot, so the output always contains exactly
// one entry per input match regardless of completion order. A single failed
// fetch logs its cause and leaves that match's report empty; it never affects
// sibling fetches.
func (e *ReportEnricher) EnrichReports(ctx context.Context, matches []Match) []Match {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	concurrency := e.Concurrency
	if concurrency <= 0 {
		concurrency = defaultReportConcurrency
	}

	out := make([]Match, len(matches))
	copy(out, matches)

	var g errgroup.Group
	g.SetLimit(concurrency)

	var eligible int
	for i := range out {
		if !out[i].Completed() || out[i].Report != "" {
			continue
		}
		eligible++
		i := i
		g.Go(func() error {
			report, err := e.fetchReport(ctx, out[i])
			if err != nil {
				logger.Warn("report fetch failed",
					zap.String("match_url", out[i].MatchURL),
					zap.String("team1", out[i].Team1),
					zap.String("team2", out[i].Team2),
					zap.Error(err),
				)
				out[i].Report = ""
				return nil
			}
			out[i].Report = report
			return nil
		})
	}
	_ = g.Wait()

	logger.Info("report enrichment complete",
		zap.Int("matches", len(out)),
		zap.Int("eligible", eligible),
	)
	return out
}

func (e *ReportEnricher) fetchReport(ctx context.Context, m Match) (string, error) {
	url, err := reportURL(m.MatchURL)
	if err != nil {
		return "", err
	}

	operation := func() (string, error) {
		return e.Fetcher.Fetch(ctx, browser.Request{URL: url})
	}
	return backoff.RetryWithData(operation, backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.MaxRetries), ctx))
}

// reportURL derives the report-page URL from the trailing numeric gameId
// segment of the match URL.
func reportURL(matchURL string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(matchURL), "/")
	if trimmed == "" {
		return "", fmt.Errorf("match URL is empty")
	}

	id := trimmed[strings.LastIndex(trimmed, "/")+1:]
	if !isDigits(id) {
		return "", fmt.Errorf("match URL %q has no numeric gameId segment", matchURL)
	}
	return fmt.Sprintf(reportURLFormat, id), nil
}
