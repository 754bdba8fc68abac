package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	lambdasvc "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"

	"github.com/anuvgupta/soccer-news-infra/internal/browser"
	"github.com/anuvgupta/soccer-news-infra/internal/config"
	"github.com/anuvgupta/soccer-news-infra/internal/llm"
	"github.com/anuvgupta/soccer-news-infra/internal/notify"
	"github.com/anuvgupta/soccer-news-infra/internal/pipeline"
)

// Request is the scheduler event. Timestamp optionally overrides "now" and
// accepts an 8-digit date, an ISO date/datetime, or epoch seconds.
type Request struct {
	Timestamp string `json:"timestamp,omitempty"`
}

// Response mirrors the Lambda proxy result shape.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

type handlerFunc func(ctx context.Context, req Request) (Response, error)

func newHandler(ctx context.Context, logger *zap.Logger) (handlerFunc, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}

	allowlist, err := config.LoadCompetitions(cfg.CompetitionsPath)
	if err != nil {
		return nil, err
	}
	standingsURLs, err := config.LoadStandingsURLs(cfg.StandingsPath)
	if err != nil {
		return nil, err
	}
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	fetcher, err := browser.NewClient(lambdasvc.NewFromConfig(awsCfg), cfg.BrowserLambdaARN, logger.Named("browser"))
	if err != nil {
		return nil, err
	}

	chat := llm.NewClient(cfg.OpenAIAPIKey)

	pipe, err := pipeline.New(pipeline.Pipeline{
		Fetcher: fetcher,
		Extractor: &pipeline.Extractor{
			Client:       chat,
			Model:        cfg.OpenAIModel,
			Temperature:  cfg.LLMTemperature,
			MaxTokens:    cfg.LLMMaxTokens,
			MaxHTMLChars: cfg.MaxHTMLChars,
			Logger:       logger.Named("extractor"),
		},
		Reports: &pipeline.ReportEnricher{
			Fetcher:     fetcher,
			Concurrency: cfg.ReportConcurrency,
			MaxRetries:  2,
			Logger:      logger.Named("reports"),
		},
		Standings: &pipeline.StandingsEnricher{
			Fetcher:    fetcher,
			MaxRetries: 2,
			Logger:     logger.Named("standings"),
		},
		Summarizer: &pipeline.ChatSummarizer{
			Client:      chat,
			Model:       cfg.OpenAIModel,
			Temperature: 0.7,
			MaxTokens:   cfg.LLMMaxTokens,
			Logger:      logger.Named("summarizer"),
		},
		Allowlist:     allowlist,
		StandingsURLs: standingsURLs,
		Location:      loc,
		Logger:        logger.Named("pipeline"),
	})
	if err != nil {
		return nil, err
	}

	publisher, err := notify.NewPublisher(sns.NewFromConfig(awsCfg), cfg.SNSTopicARN, logger.Named("notify"))
	if err != nil {
		return nil, err
	}

	var webhook *notify.Webhook
	if cfg.WebhookURL != "" {
		webhook = notify.NewWebhook(cfg.WebhookURL, logger.Named("webhook"))
	}

	return func(ctx context.Context, req Request) (Response, error) {
		result, err := pipe.Run(ctx, req.Timestamp)
		if err != nil {
			logger.Error("pipeline run failed", zap.Error(err))
			publisher.PublishError(ctx, err)
			return Response{}, err
		}

		messageID, err := publisher.Publish(ctx, result.Notification)
		if err != nil {
			logger.Error("notification publish failed", zap.Error(err))
			return Response{}, err
		}

		if webhook != nil {
			if err := webhook.Send(ctx, result.Notification); err != nil {
				// Webhook delivery is best-effort: logged, never retried.
				logger.Warn("webhook delivery failed", zap.Error(err))
			}
		}

		body, err := json.Marshal(map[string]any{
			"message":         "Notification sent successfully",
			"run_id":          result.RunID,
			"reference_date":  result.Window.ReferenceLabel,
			"previous_date":   result.Window.PreviousLabel,
			"match_count":     len(result.Matches),
			"standings_count": len(result.Standings),
			"message_id":      messageID,
		})
		if err != nil {
			return Response{}, fmt.Errorf("marshal response body: %w", err)
		}
		return Response{StatusCode: 200, Body: string(body)}, nil
	}, nil
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	handler, err := newHandler(context.Background(), logger)
	if err != nil {
		logger.Fatal("job init failed", zap.Error(err))
	}

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		awslambda.Start(handler)
		return
	}

	// Local run for development.
	timestamp := flag.String("timestamp", "", "reference timestamp (YYYYMMDD, ISO date/datetime, or epoch seconds)")
	flag.Parse()

	resp, err := handler(context.Background(), Request{Timestamp: *timestamp})
	if err != nil {
		logger.Fatal("job run failed", zap.Error(err))
	}
	fmt.Println(resp.Body)
}
