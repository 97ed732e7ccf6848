package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicProvider_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"))
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_01", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "text", "text": "{\"ats_score\": 71}"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 6}
		}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", "claude-test", option.WithBaseURL(srv.URL))
	out, err := p.Generate(context.Background(), "analyze", GenerateOptions{Temperature: 0.2, MaxTokens: 500})
	require.NoError(t, err)

	assert.Equal(t, `{"ats_score": 71}`, out)
	assert.Equal(t, "claude-test", body["model"])
	assert.EqualValues(t, 500, body["max_tokens"])
	assert.EqualValues(t, 0.2, body["temperature"])
}

func TestAnthropicProvider_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"overloaded"}}`))
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", "claude-test", option.WithBaseURL(srv.URL))
	_, err := p.Generate(context.Background(), "analyze", GenerateOptions{MaxTokens: 10})
	assert.Error(t, err)
}
