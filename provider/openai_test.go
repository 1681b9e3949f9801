package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model     string `json:"model"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role string `json:"role"`
	} `json:"messages"`
}

const completionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "gpt-3.5-turbo",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "generated text"}
	}]
}`

func TestNewOpenAIBackend_MissingKey(t *testing.T) {
	_, err := NewOpenAIBackend(Settings{})
	assert.ErrorIs(t, err, ErrMissingCredential)
}

func TestOpenAIBackend_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody)
	}))
	defer srv.Close()

	b, err := NewOpenAIBackend(Settings{OpenAIKey: "sk-test", OpenAIBaseURL: srv.URL})
	require.NoError(t, err)

	text, err := b.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "system"},
		{Role: RoleUser, Content: "user"},
	}, 800)
	require.NoError(t, err)

	assert.Equal(t, "generated text", text)
	assert.Equal(t, defaultOpenAIModel, got.Model)
	assert.Equal(t, 800, got.MaxTokens)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, RoleSystem, got.Messages[0].Role)
	assert.Equal(t, RoleUser, got.Messages[1].Role)
}

func TestOpenAIBackend_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer srv.Close()

	b, err := NewOpenAIBackend(Settings{OpenAIKey: "sk-test", OpenAIBaseURL: srv.URL})
	require.NoError(t, err)

	_, err = b.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	assert.ErrorIs(t, err, ErrEmptyResponse)
	assert.Equal(t, FailureEmpty, Classify(err))
}

func TestOpenAIBackend_RateLimitedIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
	}))
	defer srv.Close()

	b, err := NewOpenAIBackend(Settings{OpenAIKey: "sk-test", OpenAIBaseURL: srv.URL})
	require.NoError(t, err)

	_, err = b.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 0)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, FailureQuota, Classify(err))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailureClass
	}{
		{name: "nil", err: nil, want: ""},
		{name: "missing credential", err: ErrMissingCredential, want: FailureAuth},
		{name: "quota message", err: errors.New("googleapi: RESOURCE_EXHAUSTED"), want: FailureQuota},
		{name: "net error", err: &net.OpError{Op: "dial", Err: errors.New("refused")}, want: FailureConnection},
		{name: "connection message", err: errors.New("dial tcp 127.0.0.1:1: connection refused"), want: FailureConnection},
		{name: "anything else", err: errors.New("bad json"), want: FailureOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
