package local

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
)

// StagedFileName is the name a chosen model file is copied to.
const StagedFileName = "model.gguf"

// StagedPath returns where a model is staged inside dir.
func StagedPath(dir string) string {
	return filepath.Join(dir, StagedFileName)
}

// StageModel copies src into dir as model.gguf, drawing a progress bar on w.
// A nil w copies silently. The staged path is returned.
func StageModel(src, dir string, w io.Writer) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open model file: %w", err)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat model file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("model path %s is a directory", src)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create models directory: %w", err)
	}

	dest := StagedPath(dir)
	tmp := dest + ".partial"
	out, err := os.Create(tmp) //nolint:gosec // path is built from the configured models dir
	if err != nil {
		return "", fmt.Errorf("failed to create staged file: %w", err)
	}

	var sink io.Writer = out
	if w != nil {
		bar := progressbar.NewOptions64(info.Size(),
			progressbar.OptionSetWriter(w),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]Copying model...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprintln(w); err != nil {
					slog.Warn("Failed to write newline after progress bar", "error", err)
				}
			}),
		)
		sink = io.MultiWriter(out, bar)
	}

	if _, err := io.Copy(sink, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to copy model file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to close staged file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to move staged file into place: %w", err)
	}

	slog.Info("Staged model", "source", src, "path", dest, "bytes", info.Size())
	return dest, nil
}

// RemoveStaged deletes the staged model in dir. A missing file is not an error.
func RemoveStaged(dir string) error {
	if err := os.Remove(StagedPath(dir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove staged model: %w", err)
	}
	return nil
}
