package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awslambda "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"go.uber.org/zap"
)

// Default navigation timeout and post-load settle delay, in milliseconds.
// The rendering worker enforces both; this layer just forwards them.
const (
	DefaultTimeout = 60000
	DefaultDelay   = 5000
)

// Request describes a single page fetch through the rendering worker.
// Operation and Keyword are optional server-side extraction hints, e.g.
// "return only the subtree whose CSS class contains Keyword".
type Request struct {
	URL       string
	Operation string
	Keyword   string
	Timeout   int
	Delay     int
}

// FetchError reports a failed rendering-worker fetch: either the worker
// was unreachable or it returned a non-200 status with an error string.
type FetchError struct {
	URL    string
	Reason string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("browser: fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("browser: fetch %s: %s", e.URL, e.Reason)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Invoker is the subset of the Lambda API the client needs.
type Invoker interface {
	Invoke(ctx context.Context, params *awslambda.InvokeInput, optFns ...func(*awslambda.Options)) (*awslambda.InvokeOutput, error)
}

// Client fetches rendered HTML by synchronously invoking the browser worker.
// It keeps no state between calls and never retries; callers decide recovery.
type Client struct {
	invoker      Invoker
	functionName string
	logger       *zap.Logger
}

// NewClient constructs a rendering-worker client.
func NewClient(invoker Invoker, functionName string, logger *zap.Logger) (*Client, error) {
	if invoker == nil {
		return nil, errors.New("browser: invoker is required")
	}
	if functionName == "" {
		return nil, errors.New("browser: function name is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{invoker: invoker, functionName: functionName, logger: logger}, nil
}

type workerPayload struct {
	URL       string `json:"url"`
	WaitUntil string `json:"waitUntil"`
	Timeout   int    `json:"timeout"`
	Delay     int    `json:"delay"`
	Operation string `json:"operation,omitempty"`
	Keyword   string `json:"keyword,omitempty"`
}

type workerResponse struct {
	StatusCode int `json:"statusCode"`
	Body       struct {
		HTML  string `json:"html"`
		URL   string `json:"url"`
		Error string `json:"error"`
	} `json:"body"`
}

// Fetch obtains rendered HTML for the requested URL.
func (c *Client) Fetch(ctx context.Context, req Request) (string, error) {
	if req.URL == "" {
		return "", &FetchError{URL: req.URL, Reason: "empty URL"}
	}
	if req.Timeout <= 0 {
		req.Timeout = DefaultTimeout
	}
	if req.Delay <= 0 {
		req.Delay = DefaultDelay
	}

	payload, err := json.Marshal(workerPayload{
		URL:       req.URL,
		WaitUntil: "networkidle0",
		Timeout:   req.Timeout,
		Delay:     req.Delay,
		Operation: req.Operation,
		Keyword:   req.Keyword,
	})
	if err != nil {
		return "", &FetchError{URL: req.URL, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	c.logger.Debug("invoking browser worker",
		zap.String("url", req.URL),
		zap.String("operation", req.Operation),
		zap.String("keyword", req.Keyword),
	)

	out, err := c.invoker.Invoke(ctx, &awslambda.InvokeInput{
		FunctionName:   aws.String(c.functionName),
		InvocationType: types.InvocationTypeRequestResponse,
		Payload:        payload,
	})
	if err != nil {
		return "", &FetchError{URL: req.URL, Err: err}
	}
	if out.FunctionError != nil {
		return "", &FetchError{URL: req.URL, Reason: fmt.Sprintf("worker error: %s", aws.ToString(out.FunctionError))}
	}

	var resp workerResponse
	if err := json.Unmarshal(out.Payload, &resp); err != nil {
		return "", &FetchError{URL: req.URL, Err: fmt.Errorf("decode worker response: %w", err)}
	}

	if resp.StatusCode != 200 {
		reason := resp.Body.Error
		if reason == "" {
			reason = fmt.Sprintf("worker returned status %d", resp.StatusCode)
		}
		return "", &FetchError{URL: req.URL, Reason: reason}
	}

	c.logger.Debug("fetched rendered page",
		zap.String("url", req.URL),
		zap.Int("html_chars", len(resp.Body.HTML)),
	)

	return resp.Body.HTML, nil
}
