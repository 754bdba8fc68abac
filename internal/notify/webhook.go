package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Webhook posts notification text to a chat webhook endpoint as a JSON body
// of the form {"content": "..."}. Failures are reported to the caller but
// never retried here.
type Webhook struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhook constructs a webhook sender; a nil logger is replaced with a nop.
func NewWebhook(url string, logger *zap.Logger) *Webhook {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Webhook{
		url:        url,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

// Send delivers the message. HTTP 200 and 204 count as success; any other
// status is an error.
func (w *Webhook) Send(ctx context.Context, message string) error {
	body, err := json.Marshal(map[string]string{"content": message})
	if err != nil {
		return fmt.Errorf("notify: marshal webhook body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("notify: create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notify: webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("notify: webhook returned %d: %s", resp.StatusCode, string(data))
	}

	w.logger.Info("webhook notification delivered", zap.Int("status", resp.StatusCode))
	return nil
}
