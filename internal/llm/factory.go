package llm

import (
	"fmt"
	"strings"

	"github.com/Veraticus/penny/internal/common"
)

// Provider ids understood by NewRemoteCompleter.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// NewRemoteCompleter creates the hosted completer for a provider id.
func NewRemoteCompleter(provider string, cfg Config) (Completer, error) {
	switch strings.ToLower(provider) {
	case ProviderGemini:
		return NewGeminiCompleter(cfg), nil
	case ProviderOpenAI:
		return NewOpenAICompleter(cfg), nil
	default:
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedProvider, provider)
	}
}
