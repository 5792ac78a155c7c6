package local

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStageModel(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "tiny-llama.gguf")
	payload := bytes.Repeat([]byte("gguf"), 4096)
	require.NoError(t, os.WriteFile(src, payload, 0o600))

	modelsDir := filepath.Join(t.TempDir(), "models")
	var progress bytes.Buffer

	dest, err := StageModel(src, modelsDir, &progress)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(modelsDir, "model.gguf"), dest)

	staged, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, payload, staged)
	assert.Contains(t, progress.String(), "Copying model")

	_, err = os.Stat(dest + ".partial")
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, RemoveStaged(modelsDir))
	_, err = os.Stat(dest)
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, RemoveStaged(modelsDir), "removing twice is fine")
}

func TestStageModelErrors(t *testing.T) {
	_, err := StageModel(filepath.Join(t.TempDir(), "missing.gguf"), t.TempDir(), nil)
	require.Error(t, err)

	_, err = StageModel(t.TempDir(), t.TempDir(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is a directory")
}
