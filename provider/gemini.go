package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiBackend implements Backend on Google's Gemini API.
type GeminiBackend struct {
	Client *genai.Client
	Model  string
}

func NewGeminiBackend(ctx context.Context, s Settings) (*GeminiBackend, error) {
	if s.GeminiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingCredential)
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(s.GeminiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := s.GeminiModel
	if model == "" {
		model = defaultGeminiModel
	}
	return &GeminiBackend{Client: client, Model: model}, nil
}

// Complete folds system messages into the model's system instruction and
// sends the remaining turns as text parts of one request.
func (g *GeminiBackend) Complete(ctx context.Context, msgs []Message, maxTokens int) (string, error) {
	model := g.Client.GenerativeModel(g.Model)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}

	var system []string
	var parts []genai.Part
	for _, m := range msgs {
		if m.Role == RoleSystem {
			system = append(system, m.Content)
			continue
		}
		parts = append(parts, genai.Text(m.Content))
	}
	if len(system) > 0 {
		model.SystemInstruction = genai.NewUserContent(genai.Text(strings.Join(system, "\n\n")))
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini: no user content to send")
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String(), nil
}

func (g *GeminiBackend) Close() error {
	return g.Client.Close()
}
