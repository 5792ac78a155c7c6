package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/Veraticus/penny/internal/common"
)

// DefaultServerPath is the llama-server binary looked up on PATH.
const DefaultServerPath = "llama-server"

const healthPollInterval = 250 * time.Millisecond

// ServerRuntime loads models by starting a llama-server child process and
// talking to its OpenAI-compatible HTTP API on a loopback port.
type ServerRuntime struct {
	httpClient *http.Client
	binary     string
	stderr     io.Writer
}

// NewServerRuntime creates a runtime that runs binary. Server output goes to stderr
// when it is non-nil.
func NewServerRuntime(binary string, stderr io.Writer) *ServerRuntime {
	if binary == "" {
		binary = DefaultServerPath
	}
	return &ServerRuntime{
		binary:     binary,
		stderr:     stderr,
		httpClient: &http.Client{},
	}
}

// Args returns the llama-server command line for params listening on port.
func Args(params Params, port int) []string {
	args := []string{
		"-m", params.ModelPath,
		"-c", strconv.Itoa(params.ContextSize),
		"-ngl", strconv.Itoa(params.GPULayers),
		"-b", strconv.Itoa(params.BatchSize),
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(port),
	}
	if params.UseMlock {
		args = append(args, "--mlock")
	}
	return args
}

// Load starts the server and waits until it reports healthy or ctx ends.
func (r *ServerRuntime) Load(ctx context.Context, params Params) (Model, error) {
	if _, err := os.Stat(params.ModelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	binary, err := exec.LookPath(r.binary)
	if err != nil {
		return nil, fmt.Errorf("llama-server not found at %s: %w", r.binary, err)
	}

	port, err := freePort()
	if err != nil {
		return nil, err
	}

	// The server outlives the load call, so it is not bound to ctx.
	cmd := exec.Command(binary, Args(params, port)...)
	if r.stderr != nil {
		cmd.Stdout = r.stderr
		cmd.Stderr = r.stderr
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start llama-server: %w", err)
	}

	m := &serverModel{
		httpClient: r.httpClient,
		baseURL:    fmt.Sprintf("http://127.0.0.1:%d", port),
		cmd:        cmd,
		exited:     make(chan struct{}),
	}
	go func() {
		m.waitErr = cmd.Wait()
		close(m.exited)
	}()

	if err := m.waitHealthy(ctx); err != nil {
		_ = m.Close()
		return nil, err
	}

	slog.Info("Local model ready", "path", params.ModelPath, "port", port)
	return m, nil
}

func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, fmt.Errorf("failed to reserve a port: %w", err)
	}
	defer func() { _ = l.Close() }()

	addr, ok := l.Addr().(*net.TCPAddr)
	if !ok {
		return 0, errors.New("unexpected listener address")
	}
	return addr.Port, nil
}

// serverModel is a model served by a running llama-server.
type serverModel struct {
	httpClient *http.Client
	cmd        *exec.Cmd
	waitErr    error
	exited     chan struct{}
	baseURL    string
}

func (m *serverModel) waitHealthy(ctx context.Context) error {
	ticker := time.NewTicker(healthPollInterval)
	defer ticker.Stop()

	for {
		if m.healthy(ctx) {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for llama-server: %w", ctx.Err())
		case <-m.exited:
			return fmt.Errorf("llama-server exited during load: %v", m.waitErr)
		case <-ticker.C:
		}
	}
}

func (m *serverModel) healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	_ = resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type serverMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type serverRequest struct {
	Messages  []serverMessage `json:"messages"`
	Stop      []string        `json:"stop,omitempty"`
	MaxTokens int             `json:"max_tokens,omitempty"`
}

type serverResponse struct {
	Choices []struct {
		Message serverMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends a chat completion to the server. The server applies the
// model's chat template.
func (m *serverModel) Complete(ctx context.Context, c Completion) (string, error) {
	body := serverRequest{Stop: c.Stop, MaxTokens: c.MaxTokens}
	for _, msg := range c.Messages {
		body.Messages = append(body.Messages, serverMessage{Role: string(msg.Role), Content: msg.Content})
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: local completion: %w", common.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: failed to read response: %w", common.ErrTransport, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: llama-server error (status %d): %s", common.ErrTransport, resp.StatusCode, string(respBody))
	}

	var parsed serverResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("%w: failed to parse response: %w", common.ErrUnparseableResponse, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no completion choices returned", common.ErrUnparseableResponse)
	}
	return parsed.Choices[0].Message.Content, nil
}

// Close stops the server process.
func (m *serverModel) Close() error {
	if m.cmd == nil || m.cmd.Process == nil || m.exited == nil {
		return nil
	}
	if err := m.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("failed to stop llama-server: %w", err)
	}
	select {
	case <-m.exited:
	case <-time.After(5 * time.Second):
		slog.Warn("llama-server did not exit after kill")
	}
	return nil
}
