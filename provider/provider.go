// Package provider resolves which language model backend serves chat
// completions and exposes it behind a single Gateway.
package provider

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Backend is a concrete chat model. Implementations must be safe for
// concurrent use.
type Backend interface {
	Complete(ctx context.Context, msgs []Message, maxTokens int) (string, error)
}

// Kind tags the backend a Gateway resolved to.
type Kind string

const (
	KindGemini Kind = "gemini"
	KindOpenAI Kind = "openai"
	KindMock   Kind = "mock"
)

// Settings carries the credentials and model names read at startup.
type Settings struct {
	Provider      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	// ForceMock skips every real backend.
	ForceMock bool
}

const (
	defaultOpenAIModel = "gpt-3.5-turbo"
	defaultGeminiModel = "gemini-1.5-flash"
)
