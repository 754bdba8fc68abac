package pipeline

import (
	"context"
	"sync"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/anuvgupta/soccer-news-infra/internal/browser"
)

// StandingsEnricher fetches the standings page for each requested competition.
type StandingsEnricher struct {
	Fetcher PageFetcher
	// MaxRetries is the number of extra fetch attempts per competition before
	// the failure is downgraded to an empty standings page.
	MaxRetries uint64
	Logger     *zap.Logger
}

// EnrichStandings runs one fetch per competition, fully in parallel. A failed
// fetch yields an empty HTML field for that competition only; the result
// always contains one entry per request, in request order.
func (e *StandingsEnricher) EnrichStandings(ctx context.Context, requests []StandingsRequest) []Standing {
	logger := e.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	standings := make([]Standing, len(requests))
	var wg sync.WaitGroup
	for i, req := range requests {
		standings[i] = Standing{Competition: req.Competition, URL: req.URL}

		wg.Add(1)
		go func(i int, req StandingsRequest) {
			defer wg.Done()

			operation := func() (string, error) {
				return e.Fetcher.Fetch(ctx, browser.Request{
					URL:       req.URL,
					Operation: "extract",
					Keyword:   "Table",
				})
			}
			html, err := backoff.RetryWithData(operation, backoff.WithContext(
				backoff.WithMaxRetries(backoff.NewExponentialBackOff(), e.MaxRetries), ctx))
			if err != nil {
				logger.Warn("standings fetch failed",
					zap.String("competition", req.Competition),
					zap.String("url", req.URL),
					zap.Error(err),
				)
				return
			}
			standings[i].HTML = html
		}(i, req)
	}
	wg.Wait()

	logger.Info("standings enrichment complete", zap.Int("competitions", len(standings)))
	return standings
}

// DedupeStandings merges standings-request lists, keeping the first
// occurrence of each competition name.
func DedupeStandings(lists ...[]StandingsRequest) []StandingsRequest {
	seen := make(map[string]struct{})
	var merged []StandingsRequest
	for _, list := range lists {
		for _, req := range list {
			if _, ok := seen[req.Competition]; ok {
				continue
			}
			seen[req.Competition] = struct{}{}
			merged = append(merged, req)
		}
	}
	return merged
}
