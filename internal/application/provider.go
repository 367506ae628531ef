package application

import (
	"context"

	"home-ai/internal/domain"
)

// ModelProvider is the contract with the language model. Complete takes the
// full message history plus the tool catalog and returns the normalized
// text-or-tool-calls union; adapters hide their native response shapes.
//
// The call is a network round trip and the single suspension point of a
// conversation. It must respect ctx and must not be invoked while holding any
// device lock.
type ModelProvider interface {
	Complete(ctx context.Context, messages []domain.Message, tools []domain.ToolSpec) (*domain.ModelResponse, error)
}
