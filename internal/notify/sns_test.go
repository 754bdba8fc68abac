package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSNS struct {
	inputs []*sns.PublishInput
	err    error
}

func (f *fakeSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.inputs = append(f.inputs, params)
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestSubjectDerivation(t *testing.T) {
	cases := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "triple newline split",
			message: "Big Win For Arsenal\n\n\nArsenal beat Villa 4-1.",
			want:    "Big Win For Arsenal",
		},
		{
			name:    "first line fallback",
			message: "Headline only split by one newline\nrest of the body",
			want:    "Headline only split by one newline",
		},
		{
			name:    "single line",
			message: "Just a headline",
			want:    "Just a headline",
		},
		{
			name:    "embedded newlines sanitized",
			message: "A  messy \t headline\n\n\nbody",
			want:    "A messy headline",
		},
		{
			name:    "empty falls back",
			message: "\n\n\nbody only",
			want:    fallbackSubject,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Subject(tc.message))
		})
	}
}

func TestSubjectTruncation(t *testing.T) {
	long := strings.Repeat("a", 150)
	got := Subject(long + "\n\n\nbody")
	assert.Len(t, got, maxSubjectChars)
}

func TestPublishSendsSubjectAndMessage(t *testing.T) {
	client := &fakeSNS{}
	publisher, err := NewPublisher(client, "arn:aws:sns:us-west-2:123:soccer-news", nil)
	require.NoError(t, err)

	messageID, err := publisher.Publish(context.Background(), "Big Win\n\n\nDetails here.")
	require.NoError(t, err)
	assert.Equal(t, "msg-123", messageID)

	require.Len(t, client.inputs, 1)
	input := client.inputs[0]
	assert.Equal(t, "arn:aws:sns:us-west-2:123:soccer-news", aws.ToString(input.TopicArn))
	assert.Equal(t, "Big Win\n\n\nDetails here.", aws.ToString(input.Message))
	assert.Equal(t, "Big Win", aws.ToString(input.Subject))
}

func TestPublishRejectsEmptyMessage(t *testing.T) {
	publisher, err := NewPublisher(&fakeSNS{}, "topic-arn", nil)
	require.NoError(t, err)

	_, err = publisher.Publish(context.Background(), "   \n ")
	assert.Error(t, err)
}

func TestPublishErrorIsBestEffort(t *testing.T) {
	client := &fakeSNS{err: errors.New("topic gone")}
	publisher, err := NewPublisher(client, "topic-arn", nil)
	require.NoError(t, err)

	// Must not panic or return anything; the original run error wins.
	publisher.PublishError(context.Background(), errors.New("pipeline exploded"))

	require.Len(t, client.inputs, 1)
	assert.Equal(t, errorSubject, aws.ToString(client.inputs[0].Subject))
	assert.Contains(t, aws.ToString(client.inputs[0].Message), "pipeline exploded")
}

func TestNewPublisherValidation(t *testing.T) {
	_, err := NewPublisher(nil, "topic", nil)
	assert.Error(t, err)

	_, err = NewPublisher(&fakeSNS{}, "", nil)
	assert.Error(t, err)
}
