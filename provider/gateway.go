package provider

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Gateway is the resolved backend plus the mock-mode flag. It is built once
// by Resolve and never mutated, so it can be shared freely.
type Gateway struct {
	backend Backend
	kind    Kind
	mock    bool
}

// NewGateway wraps an already built backend. Resolve is the usual way in.
func NewGateway(kind Kind, backend Backend, mock bool) *Gateway {
	return &Gateway{backend: backend, kind: kind, mock: mock}
}

// CompleteChat returns the text of the first completion choice. Errors are
// returned untouched; the gateway never retries.
func (g *Gateway) CompleteChat(ctx context.Context, msgs []Message, maxTokens int) (string, error) {
	if g == nil || g.backend == nil {
		return "", ErrNoBackend
	}
	return g.backend.Complete(ctx, msgs, maxTokens)
}

// IsMock reports whether generation should use synthetic content.
func (g *Gateway) IsMock() bool { return g.mock }

// Kind reports which backend serves CompleteChat.
func (g *Gateway) Kind() Kind { return g.kind }

// Close releases the backend's client, if it holds one.
func (g *Gateway) Close() error {
	if c, ok := g.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type factories struct {
	gemini func(ctx context.Context, s Settings) (Backend, error)
	openai func(s Settings) (Backend, error)
}

var defaultFactories = factories{
	gemini: func(ctx context.Context, s Settings) (Backend, error) {
		b, err := NewGeminiBackend(ctx, s)
		if err != nil {
			return nil, err
		}
		return b, nil
	},
	openai: func(s Settings) (Backend, error) {
		b, err := NewOpenAIBackend(s)
		if err != nil {
			return nil, err
		}
		return b, nil
	},
}

// Resolve picks the backend for this process:
//   - selector "gemini" tries Gemini first and falls back to the
//     OpenAI-compatible backend when Gemini cannot be initialised;
//   - any other selector uses the OpenAI-compatible backend;
//   - mock mode is on whenever the OpenAI-compatible backend has no usable
//     credential (or ForceMock is set), independently of the selection.
//
// Resolve never fails; the worst outcome is a mock gateway.
func Resolve(ctx context.Context, s Settings) *Gateway {
	return resolve(ctx, s, defaultFactories)
}

func resolve(ctx context.Context, s Settings, f factories) *Gateway {
	if s.ForceMock {
		slog.Info("[provider] Mock mode forced by configuration")
		return NewGateway(KindMock, MockBackend{}, true)
	}

	selector := normalizeSelector(s.Provider)
	slog.Info("[provider] Resolving LLM backend", "selector", selector)

	openaiBackend, openaiErr := f.openai(s)
	mock := openaiErr != nil
	if mock {
		slog.Info("[provider] OpenAI backend unavailable, mock mode enabled", "error", openaiErr)
	}

	if selector == KindGemini {
		geminiBackend, err := f.gemini(ctx, s)
		if err == nil {
			slog.Info("[provider] Gemini backend initialized", "mock", mock)
			return NewGateway(KindGemini, geminiBackend, mock)
		}
		slog.Error("[provider] Gemini backend failed to initialize, falling back to OpenAI", "error", err)
	}

	if openaiErr != nil {
		return NewGateway(KindMock, MockBackend{}, true)
	}
	slog.Info("[provider] OpenAI backend initialized")
	return NewGateway(KindOpenAI, openaiBackend, false)
}

func normalizeSelector(raw string) Kind {
	switch v := strings.ToLower(strings.TrimSpace(raw)); v {
	case string(KindGemini):
		return KindGemini
	case string(KindOpenAI), "":
		return KindOpenAI
	default:
		slog.Warn("[provider] Unknown LLM provider, defaulting to openai", "provider", v)
		return KindOpenAI
	}
}
