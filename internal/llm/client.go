package llm

import (
	"context"
	"net/http"

	"github.com/Veraticus/penny/internal/model"
)

// ConfigAPIKey is the provider config key that carries the API credential.
const ConfigAPIKey = "apiKey"

// Completer defines the interface for text-completion backends.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest carries everything a completer needs for one call.
// Config is the persisted provider configuration; remote completers read their
// credential from it.
type CompletionRequest struct {
	Config    map[string]string
	Messages  []model.Message
	Stop      []string
	MaxTokens int
}

// Config holds settings shared by the remote completers.
type Config struct {
	HTTPClient        *http.Client
	Model             string
	BaseURL           string
	RequestsPerMinute int
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req CompletionRequest) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return f(ctx, req)
}

func apiKey(cfg map[string]string) string {
	if cfg == nil {
		return ""
	}
	return cfg[ConfigAPIKey]
}
