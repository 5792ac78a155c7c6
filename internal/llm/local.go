package llm

import (
	"context"

	"github.com/Veraticus/penny/internal/local"
)

// LocalEngine is the part of local.Engine the local completer uses.
type LocalEngine interface {
	Complete(ctx context.Context, c local.Completion) (string, error)
}

// LocalCompleter implements Completer on top of the on-device engine.
// It returns common.ErrModelNotLoaded when the engine holds no model.
type LocalCompleter struct {
	engine LocalEngine
}

// NewLocalCompleter creates a completer backed by engine.
func NewLocalCompleter(engine LocalEngine) *LocalCompleter {
	return &LocalCompleter{engine: engine}
}

// Complete runs the request on the loaded model. Provider config is ignored.
func (c *LocalCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return c.engine.Complete(ctx, local.Completion{
		Messages:  req.Messages,
		Stop:      req.Stop,
		MaxTokens: req.MaxTokens,
	})
}
