package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/statementkit/colgrid/internal/model"
	"github.com/statementkit/colgrid/internal/session"
)

// Run starts the editor over a seeded session and blocks until the user
// quits or confirms. Returns the pipeline identifiers on confirmation and
// nil when the user quit without confirming.
func Run(ctx context.Context, sess *session.Session) (*model.ConfirmResult, error) {
	p := tea.NewProgram(New(sess),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("editor failed: %w", err)
	}

	m, ok := final.(Model)
	if !ok {
		return nil, fmt.Errorf("editor returned unexpected model type %T", final)
	}
	return m.Confirmed(), nil
}
