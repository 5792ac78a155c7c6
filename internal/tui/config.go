package tui

import (
	"context"

	"github.com/Veraticus/penny/internal/assistant"
	"github.com/Veraticus/penny/internal/local"
)

// EngineStatus reports the on-device model state.
type EngineStatus interface {
	Status() local.Status
}

// Config holds chat screen configuration.
type Config struct {
	Context   context.Context //nolint:containedctx // turns run as tea commands without a caller context
	States    <-chan assistant.State
	Engine    EngineStatus
	Theme     Theme
	Provider  string
	Width     int
	Height    int
	AltScreen bool
}

// Option is a functional option for configuring the chat screen.
type Option func(*Config)

func defaultConfig() Config {
	return Config{
		Context:   context.Background(),
		Theme:     DefaultTheme,
		Width:     80,
		Height:    24,
		AltScreen: true,
	}
}

// WithContext sets the context passed to every turn.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.Context = ctx
	}
}

// WithStates feeds router state changes to the status line.
func WithStates(states <-chan assistant.State) Option {
	return func(c *Config) {
		c.States = states
	}
}

// WithTheme sets the visual theme.
func WithTheme(theme Theme) Option {
	return func(c *Config) {
		c.Theme = theme
	}
}

// WithProvider sets the provider name shown in the header.
func WithProvider(name string) Option {
	return func(c *Config) {
		c.Provider = name
	}
}

// WithEngine shows the local model state in the header.
func WithEngine(engine EngineStatus) Option {
	return func(c *Config) {
		c.Engine = engine
	}
}

// WithSize sets the initial terminal size.
func WithSize(width, height int) Option {
	return func(c *Config) {
		c.Width = width
		c.Height = height
	}
}

// WithAltScreen toggles the alternate screen buffer.
func WithAltScreen(enabled bool) Option {
	return func(c *Config) {
		c.AltScreen = enabled
	}
}
