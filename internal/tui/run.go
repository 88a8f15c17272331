package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/oakmere/auditflow/internal/service"
)

// Run starts the history browser and blocks until the user quits or ctx
// is canceled.
func Run(ctx context.Context, assessor service.Assessor, limit int) error {
	if assessor == nil {
		return fmt.Errorf("assessor is required")
	}
	if limit <= 0 {
		limit = 50
	}

	p := tea.NewProgram(
		newModel(ctx, assessor, limit),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running history browser: %w", err)
	}
	return nil
}
