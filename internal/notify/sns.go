package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"go.uber.org/zap"
)

const (
	maxSubjectChars = 100
	fallbackSubject = "Soccer News Update"
	errorSubject    = "Soccer News Error"
)

// SNSAPI is the subset of the SNS client the publisher needs.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// Publisher delivers notification text to an SNS topic.
type Publisher struct {
	client   SNSAPI
	topicARN string
	logger   *zap.Logger
}

// NewPublisher constructs an SNS publisher for the given topic.
func NewPublisher(client SNSAPI, topicARN string, logger *zap.Logger) (*Publisher, error) {
	if client == nil {
		return nil, errors.New("notify: sns client is required")
	}
	if topicARN == "" {
		return nil, errors.New("notify: topic ARN is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{client: client, topicARN: topicARN, logger: logger}, nil
}

// Publish sends the notification with a subject derived from its headline.
// It returns the SNS message ID.
func (p *Publisher) Publish(ctx context.Context, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", errors.New("notify: message is empty")
	}

	out, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(message),
		Subject:  aws.String(Subject(message)),
	})
	if err != nil {
		return "", fmt.Errorf("notify: sns publish: %w", err)
	}

	messageID := aws.ToString(out.MessageId)
	p.logger.Info("published notification", zap.String("message_id", messageID))
	return messageID, nil
}

// PublishError sends a best-effort failure notice. Delivery problems are
// logged and swallowed so they never mask the original run error.
func (p *Publisher) PublishError(ctx context.Context, runErr error) {
	_, err := p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(fmt.Sprintf("Error processing soccer news: %v", runErr)),
		Subject:  aws.String(errorSubject),
	})
	if err != nil {
		p.logger.Warn("error notification failed", zap.Error(err))
	}
}

// Subject derives the SNS subject line from a notification message: the text
// before the first triple newline (or the first line, when there is none),
// newline-sanitized and capped at the SNS subject limit. An empty derivation
// falls back to a fixed subject.
func Subject(message string) string {
	headline := message
	if before, _, ok := strings.Cut(message, "\n\n\n"); ok {
		headline = before
	} else if before, _, ok := strings.Cut(message, "\n"); ok {
		headline = before
	}

	headline = strings.Join(strings.Fields(headline), " ")
	if headline == "" {
		return fallbackSubject
	}

	runes := []rune(headline)
	if len(runes) > maxSubjectChars {
		headline = string(runes[:maxSubjectChars])
	}
	return headline
}
