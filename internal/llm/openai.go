package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Veraticus/penny/internal/common"
)

// OpenAI defaults used when the config leaves them unset.
const (
	DefaultOpenAIModel   = "gpt-4o-mini"
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
)

// OpenAICompleter implements Completer against a chat-completions endpoint.
type OpenAICompleter struct {
	httpClient *http.Client
	limiter    *rateLimiter
	model      string
	baseURL    string
}

// NewOpenAICompleter creates an OpenAI completer. The API key is read from each
// request's provider config.
func NewOpenAICompleter(cfg Config) *OpenAICompleter {
	model := cfg.Model
	if model == "" {
		model = DefaultOpenAIModel
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return &OpenAICompleter{
		httpClient: httpClient,
		limiter:    newRateLimiter(cfg.RequestsPerMinute),
		model:      model,
		baseURL:    baseURL,
	}
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	Stop      []string        `json:"stop,omitempty"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

// openAIResponse represents the chat-completions response structure.
type openAIResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      openAIMessage `json:"message"`
		FinishReason string        `json:"finish_reason"`
		Index        int           `json:"index"`
	} `json:"choices"`
}

// Complete sends the messages to the chat-completions endpoint.
func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	key := apiKey(req.Config)
	if key == "" {
		return "", fmt.Errorf("%w: openai requires an API key", common.ErrMissingCredential)
	}

	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}

	return chatCompletion(ctx, c.httpClient, c.baseURL+"/chat/completions", key, openAIRequest{
		Model:     c.model,
		Messages:  toOpenAIMessages(req),
		Stop:      req.Stop,
		MaxTokens: req.MaxTokens,
	})
}

func toOpenAIMessages(req CompletionRequest) []openAIMessage {
	messages := make([]openAIMessage, 0, len(req.Messages))
	for _, msg := range req.Messages {
		messages = append(messages, openAIMessage{Role: string(msg.Role), Content: msg.Content})
	}
	return messages
}

// chatCompletion posts one chat-completions request. An empty key sends no
// Authorization header.
func chatCompletion(ctx context.Context, client *http.Client, url, key string, body openAIRequest) (string, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+key)
	}

	slog.Debug("Sending chat completion request", "url", url, "model", body.Model, "messages", len(body.Messages))

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: request failed: %w", common.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", common.ErrTransport, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: API error (status %d): %s", common.ErrTransport, resp.StatusCode, string(respBody))
	}

	var response openAIResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", common.ErrUnparseableResponse, err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", common.ErrUnparseableResponse)
	}

	return response.Choices[0].Message.Content, nil
}
