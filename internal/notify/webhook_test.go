package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSendPostsContent(t *testing.T) {
	var body map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(data, &body))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	webhook := NewWebhook(server.URL, nil)
	err := webhook.Send(context.Background(), "Big Win\n\n\nDetails.")
	require.NoError(t, err)
	assert.Equal(t, "Big Win\n\n\nDetails.", body["content"])
}

func TestWebhookSendAcceptsOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := NewWebhook(server.URL, nil)
	assert.NoError(t, webhook.Send(context.Background(), "hello"))
}

func TestWebhookSendRejectsOtherStatuses(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	webhook := NewWebhook(server.URL, nil)
	err := webhook.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestWebhookSendTransportFailure(t *testing.T) {
	webhook := NewWebhook("http://127.0.0.1:0/nope", nil)
	assert.Error(t, webhook.Send(context.Background(), "hello"))
}
