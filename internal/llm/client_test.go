package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.Equal(t, 200, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 0.0001)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "hello", req.Messages[0].Content)

		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Order: buy"}}]}`))
	}))
	defer server.Close()

	c := NewClient(Config{
		BaseURL:     server.URL + "/",
		APIKey:      "secret",
		Model:       "gpt-4o-mini",
		MaxTokens:   200,
		Temperature: 0.7,
		Timeout:     5 * time.Second,
	})

	text, err := c.Complete(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Order: buy", text)
}

func TestComplete_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "k", Timeout: time.Second})
	_, err := c.Complete(context.Background(), "hello")

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Status)
}

func TestComplete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	c := NewClient(Config{BaseURL: server.URL, APIKey: "k", Timeout: time.Second})
	_, err := c.Complete(context.Background(), "hello")
	assert.Error(t, err)
}
