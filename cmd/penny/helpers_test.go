package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/penny/internal/local"
	"github.com/Veraticus/penny/internal/model"
)

type stubModel struct{}

func (stubModel) Complete(context.Context, local.Completion) (string, error) { return "ok", nil }
func (stubModel) Close() error { return nil }

type stubRuntime struct {
	err   error
	paths []string
}

func (r *stubRuntime) Load(_ context.Context, params local.Params) (local.Model, error) {
	r.paths = append(r.paths, params.ModelPath)
	if r.err != nil {
		return nil, r.err
	}
	return stubModel{}, nil
}

// memoryStatus is an in-memory status store.
type memoryStatus struct {
	status model.ModelStatus
	sets   int
}

func (m *memoryStatus) GetModelStatus(context.Context) (model.ModelStatus, error) {
	return m.status, nil
}

func (m *memoryStatus) SetModelStatus(_ context.Context, provider string, cfg map[string]string, isLoaded bool, modelPath *string) error {
	m.sets++
	m.status = model.ModelStatus{Provider: provider, ProviderConfig: cfg, IsLoaded: isLoaded, ModelPath: modelPath}
	return nil
}

func (m *memoryStatus) DeleteModelStatus(context.Context) error {
	m.status = model.DefaultModelStatus()
	return nil
}

func TestMaskKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{key: "", want: "(not set)"},
		{key: "abc", want: "***"},
		{key: "abcd", want: "****"},
		{key: "abcdefgh", want: "****efgh"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, maskKey(tt.key))
		})
	}
}

func TestRestoreLocalModel(t *testing.T) {
	ctx := context.Background()
	path := "/models/model.gguf"

	tests := []struct {
		runtimeErr   error
		status       model.ModelStatus
		name         string
		wantPaths    []string
		wantLoaded   bool
		wantEngine   bool
		wantStatusOp bool
	}{
		{
			name:   "remote provider skips loading",
			status: model.ModelStatus{Provider: "gemini", ModelPath: &path},
		},
		{
			name:   "no recorded model",
			status: model.DefaultModelStatus(),
		},
		{
			name:         "loads recorded model and marks it loaded",
			status:       model.ModelStatus{Provider: "local", ModelPath: &path},
			wantPaths:    []string{path},
			wantLoaded:   true,
			wantEngine:   true,
			wantStatusOp: true,
		},
		{
			name:       "already marked loaded",
			status:     model.ModelStatus{Provider: "local", ModelPath: &path, IsLoaded: true},
			wantPaths:  []string{path},
			wantLoaded: true,
			wantEngine: true,
		},
		{
			name:         "failed load is recorded",
			status:       model.ModelStatus{Provider: "local", ModelPath: &path, IsLoaded: true},
			runtimeErr:   errors.New("bad model file"),
			wantPaths:    []string{path},
			wantStatusOp: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rt := &stubRuntime{err: tt.runtimeErr}
			engine := local.NewEngine(rt, local.DefaultParams())
			store := &memoryStatus{status: tt.status}

			require.NoError(t, restoreLocalModel(ctx, store, engine))

			assert.Equal(t, tt.wantPaths, rt.paths)
			assert.Equal(t, tt.wantEngine, engine.Status().Loaded)
			assert.Equal(t, tt.wantStatusOp, store.sets > 0)
			if tt.wantStatusOp {
				assert.Equal(t, tt.wantLoaded, store.status.IsLoaded)
			}
		})
	}
}
