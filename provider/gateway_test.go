package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	name string
}

func (s stubBackend) Complete(context.Context, []Message, int) (string, error) {
	return s.name, nil
}

func stubFactories(geminiErr, openaiErr error) factories {
	return factories{
		gemini: func(context.Context, Settings) (Backend, error) {
			if geminiErr != nil {
				return nil, geminiErr
			}
			return stubBackend{name: "gemini"}, nil
		},
		openai: func(Settings) (Backend, error) {
			if openaiErr != nil {
				return nil, openaiErr
			}
			return stubBackend{name: "openai"}, nil
		},
	}
}

func TestResolve(t *testing.T) {
	initErr := errors.New("init failed")

	tests := []struct {
		name      string
		settings  Settings
		geminiErr error
		openaiErr error
		wantKind  Kind
		wantMock  bool
		wantReply string
	}{
		{
			name:      "openai selected with credential",
			settings:  Settings{Provider: "openai"},
			wantKind:  KindOpenAI,
			wantReply: "openai",
		},
		{
			name:      "empty selector defaults to openai",
			settings:  Settings{},
			wantKind:  KindOpenAI,
			wantReply: "openai",
		},
		{
			name:      "unknown selector defaults to openai",
			settings:  Settings{Provider: "claude"},
			wantKind:  KindOpenAI,
			wantReply: "openai",
		},
		{
			name:      "selector is case insensitive",
			settings:  Settings{Provider: " Gemini "},
			wantKind:  KindGemini,
			wantReply: "gemini",
		},
		{
			name:      "gemini failure falls back to openai",
			settings:  Settings{Provider: "gemini"},
			geminiErr: initErr,
			wantKind:  KindOpenAI,
			wantReply: "openai",
		},
		{
			name:      "gemini without openai credential is gemini in mock mode",
			settings:  Settings{Provider: "gemini"},
			openaiErr: ErrMissingCredential,
			wantKind:  KindGemini,
			wantMock:  true,
			wantReply: "gemini",
		},
		{
			name:      "no backend at all resolves to mock",
			settings:  Settings{Provider: "gemini"},
			geminiErr: initErr,
			openaiErr: ErrMissingCredential,
			wantKind:  KindMock,
			wantMock:  true,
		},
		{
			name:      "openai without credential resolves to mock",
			settings:  Settings{Provider: "openai"},
			openaiErr: ErrMissingCredential,
			wantKind:  KindMock,
			wantMock:  true,
		},
		{
			name:      "force mock wins over credentials",
			settings:  Settings{Provider: "openai", ForceMock: true},
			wantKind:  KindMock,
			wantMock:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := resolve(context.Background(), tt.settings, stubFactories(tt.geminiErr, tt.openaiErr))

			assert.Equal(t, tt.wantKind, gw.Kind())
			assert.Equal(t, tt.wantMock, gw.IsMock())

			reply, err := gw.CompleteChat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, 10)
			require.NoError(t, err)
			if tt.wantReply != "" {
				assert.Equal(t, tt.wantReply, reply)
			} else {
				assert.NotEmpty(t, reply)
			}
		})
	}
}

func TestResolve_RealFactoriesWithoutCredentials(t *testing.T) {
	gw := Resolve(context.Background(), Settings{Provider: "gemini"})

	assert.Equal(t, KindMock, gw.Kind())
	assert.True(t, gw.IsMock())
	assert.NoError(t, gw.Close())
}

func TestGateway_NilBackend(t *testing.T) {
	var gw *Gateway
	_, err := gw.CompleteChat(context.Background(), nil, 0)
	assert.ErrorIs(t, err, ErrNoBackend)

	_, err = NewGateway(KindOpenAI, nil, false).CompleteChat(context.Background(), nil, 0)
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestMockBackend(t *testing.T) {
	ctx := context.Background()

	tags, err := MockBackend{}.Complete(ctx, []Message{
		{Role: RoleSystem, Content: "You generate relevant hashtags for LinkedIn content."},
		{Role: RoleUser, Content: "Content: something"},
	}, 150)
	require.NoError(t, err)
	assert.Equal(t, `["#Innovation", "#Leadership", "#Industry"]`, tags)

	post, err := MockBackend{}.Complete(ctx, []Message{
		{Role: RoleSystem, Content: "You are an expert content creator."},
		{Role: RoleUser, Content: "Create a post.\nTitle: AI Breakthrough\nSource: Wire"},
	}, 800)
	require.NoError(t, err)
	assert.Contains(t, post, "AI Breakthrough")
	assert.Contains(t, post, "?")
}
