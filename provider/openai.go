package provider

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIBackend implements Backend using the official openai-go SDK (chat
// completions). Any OpenAI-compatible endpoint works through BaseURL.
type OpenAIBackend struct {
	Model  string
	client openai.Client
}

// NewOpenAIBackend fails with ErrMissingCredential when no API key is set.
// The SDK's own retries are disabled; a failed call is reported as is.
func NewOpenAIBackend(s Settings) (*OpenAIBackend, error) {
	if s.OpenAIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrMissingCredential)
	}
	model := s.OpenAIModel
	if model == "" {
		model = defaultOpenAIModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(s.OpenAIKey),
		option.WithMaxRetries(0),
	}
	if s.OpenAIBaseURL != "" {
		opts = append(opts, option.WithBaseURL(s.OpenAIBaseURL))
	}
	return &OpenAIBackend{Model: model, client: openai.NewClient(opts...)}, nil
}

func (o *OpenAIBackend) Complete(ctx context.Context, msgs []Message, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(o.Model),
		Messages: toOpenAIMessages(msgs),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: %w", ErrEmptyResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
