package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run shows the chat screen until the user quits or ctx is canceled.
func Run(ctx context.Context, session Session, opts ...Option) error {
	if session == nil {
		return fmt.Errorf("session is required")
	}

	opts = append([]Option{WithContext(ctx)}, opts...)
	m := New(session, opts...)

	programOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if m.altScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}

	if _, err := tea.NewProgram(m, programOpts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("chat screen failed: %w", err)
	}
	return nil
}
