// Package local manages the on-device language model.
//
// An Engine owns at most one loaded model at a time. Loading goes through a
// Runtime, which knows how to turn a model file into something that can answer
// completions. The default runtime runs llama.cpp's llama-server as a child
// process.
package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/Veraticus/penny/internal/common"
	"github.com/Veraticus/penny/internal/model"
)

// Default runtime parameters.
const (
	DefaultContextSize = 1024
	DefaultBatchSize   = 128
)

// Params configures how a model file is loaded.
type Params struct {
	ModelPath   string
	ContextSize int
	GPULayers   int
	BatchSize   int
	UseMlock    bool
}

// DefaultGPULayers offloads everything on Apple silicon and a single layer elsewhere.
func DefaultGPULayers() int {
	if runtime.GOOS == "darwin" {
		return 99
	}
	return 1
}

// DefaultParams returns the parameters used when config leaves them unset.
func DefaultParams() Params {
	return Params{
		ContextSize: DefaultContextSize,
		GPULayers:   DefaultGPULayers(),
		BatchSize:   DefaultBatchSize,
		UseMlock:    true,
	}
}

// Completion is a single request against a loaded model.
type Completion struct {
	Messages  []model.Message
	Stop      []string
	MaxTokens int
}

// Model is a loaded model.
type Model interface {
	Complete(ctx context.Context, c Completion) (string, error)
	Close() error
}

// Runtime loads model files.
type Runtime interface {
	Load(ctx context.Context, params Params) (Model, error)
}

// Status is a snapshot of the engine state.
type Status struct {
	LastError error
	ModelPath string
	Loaded    bool
	Loading   bool
}

// Engine holds the currently loaded model. It is safe for concurrent use.
type Engine struct {
	runtime   Runtime
	model     Model
	lastErr   error
	params    Params
	modelPath string
	loading   bool
	mu        sync.RWMutex
}

// NewEngine creates an engine that loads models through rt with the given
// parameters. Params.ModelPath is ignored; Load supplies it.
func NewEngine(rt Runtime, params Params) *Engine {
	return &Engine{runtime: rt, params: params}
}

// Load replaces the current model with the one at path.
func (e *Engine) Load(ctx context.Context, path string) error {
	if path == "" {
		return fmt.Errorf("%w: model path is required", common.ErrInvalidConfig)
	}

	e.mu.Lock()
	if e.loading {
		e.mu.Unlock()
		return errors.New("a model is already loading")
	}
	e.loading = true
	previous := e.model
	e.model = nil
	e.modelPath = ""
	e.mu.Unlock()

	if previous != nil {
		if err := previous.Close(); err != nil {
			slog.Warn("Failed to release previous model", "error", err)
		}
	}

	params := e.params
	params.ModelPath = path

	slog.Info("Loading local model", "path", path, "context_size", params.ContextSize, "gpu_layers", params.GPULayers)
	loaded, err := e.runtime.Load(ctx, params)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.loading = false
	if err != nil {
		e.lastErr = err
		return fmt.Errorf("failed to load model %s: %w", path, err)
	}

	e.model = loaded
	e.modelPath = path
	e.lastErr = nil
	return nil
}

// Model returns the loaded model, or ErrModelNotLoaded.
func (e *Engine) Model() (Model, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.model == nil {
		return nil, common.ErrModelNotLoaded
	}
	return e.model, nil
}

// Complete runs a completion on the loaded model.
func (e *Engine) Complete(ctx context.Context, c Completion) (string, error) {
	m, err := e.Model()
	if err != nil {
		return "", err
	}
	return m.Complete(ctx, c)
}

// Unload releases the loaded model, if any.
func (e *Engine) Unload() error {
	e.mu.Lock()
	m := e.model
	e.model = nil
	e.modelPath = ""
	e.mu.Unlock()

	if m == nil {
		return nil
	}
	if err := m.Close(); err != nil {
		return fmt.Errorf("failed to release model: %w", err)
	}
	return nil
}

// Status returns a snapshot of the engine state.
func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Status{
		Loaded:    e.model != nil,
		Loading:   e.loading,
		ModelPath: e.modelPath,
		LastError: e.lastErr,
	}
}

// Close unloads the model.
func (e *Engine) Close() error {
	return e.Unload()
}
