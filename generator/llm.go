package generator

import (
	"context"

	"github.com/polarbaker/LinkedOut-AiPostBot/provider"
)

// Gateway abstracts the language model so it can be replaced or mocked.
// *provider.Gateway is the production implementation.
type Gateway interface {
	CompleteChat(ctx context.Context, msgs []provider.Message, maxTokens int) (string, error)
	IsMock() bool
}
