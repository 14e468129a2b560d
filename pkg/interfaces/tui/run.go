package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
)

// NewProgram creates the full-screen program for a model. The program
// stops when ctx is done.
func NewProgram(ctx context.Context, m Model) *tea.Program {
	return tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
}

// Run starts the program and blocks until the user quits or ctx is done
func Run(p *tea.Program) error {
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
