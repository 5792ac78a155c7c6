package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/model"
)

// DefaultGeminiModel is used when no model is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiCompleter implements Completer against the Gemini generateContent API.
type GeminiCompleter struct {
	cfg     Config
	limiter *rateLimiter
}

// NewGeminiCompleter creates a Gemini completer. The API key is read from each
// request's provider config.
func NewGeminiCompleter(cfg Config) *GeminiCompleter {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	return &GeminiCompleter{
		cfg:     cfg,
		limiter: newRateLimiter(cfg.RequestsPerMinute),
	}
}

// Complete sends the messages to Gemini and returns the reply text.
func (c *GeminiCompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	key := apiKey(req.Config)
	if key == "" {
		return "", fmt.Errorf("%w: gemini requires an API key", common.ErrMissingCredential)
	}

	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      key,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  c.cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.cfg.BaseURL},
	})
	if err != nil {
		return "", fmt.Errorf("%w: create gemini client: %w", common.ErrTransport, err)
	}

	contents, system := geminiContents(req.Messages)
	config := &genai.GenerateContentConfig{
		SystemInstruction: system,
		StopSequences:     req.Stop,
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}

	slog.Debug("Sending gemini request", "model", c.cfg.Model, "messages", len(contents))

	resp, err := client.Models.GenerateContent(ctx, c.cfg.Model, contents, config)
	if err != nil {
		return "", fmt.Errorf("%w: gemini generate content: %w", common.ErrTransport, err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("%w: empty response from gemini", common.ErrUnparseableResponse)
	}
	return text, nil
}

// geminiContents maps chat messages onto Gemini contents. System messages are
// joined into the system instruction; assistant turns use the "model" role.
func geminiContents(messages []model.Message) ([]*genai.Content, *genai.Content) {
	var system []string
	contents := make([]*genai.Content, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			system = append(system, msg.Content)
		case model.RoleAssistant:
			contents = append(contents, textContent(msg.Content, "model"))
		default:
			contents = append(contents, textContent(msg.Content, "user"))
		}
	}

	if len(system) == 0 {
		return contents, nil
	}
	return contents, textContent(strings.Join(system, "\n\n"), "user")
}

func textContent(text, role string) *genai.Content {
	return &genai.Content{
		Role:  role,
		Parts: []*genai.Part{{Text: text}},
	}
}
