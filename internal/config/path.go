// Package config provides configuration utilities for the application.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Default locations used when the config file leaves them unset.
const (
	DefaultDatabasePath = "$HOME/.local/share/penny/penny.db"
	DefaultModelsDir    = "$HOME/.local/share/penny/models"
	DefaultConfigDir    = "$HOME/.config/penny"
)

// ExpandPath resolves a leading ~ to the home directory and expands $VAR
// references. When the home directory is unknown the ~ is left in place.
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return os.ExpandEnv(path)
}

// PathOrDefault expands path, falling back to def when path is empty.
func PathOrDefault(path, def string) string {
	if strings.TrimSpace(path) == "" {
		path = def
	}
	return ExpandPath(path)
}
