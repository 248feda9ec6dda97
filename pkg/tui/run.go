package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the home screen and blocks until the user quits or ctx is
// canceled. The controller is always unmounted on return, which cancels any
// seam call still in flight.
func Run(ctx context.Context, opts Options) error {
	m := NewModel(opts)
	defer m.ctrl.Unmount()

	progOpts := []tea.ProgramOption{
		tea.WithMouseCellMotion(),
	}
	if opts.AltScreen {
		progOpts = append(progOpts, tea.WithAltScreen())
	}
	if ctx != nil {
		progOpts = append(progOpts, tea.WithContext(ctx))
	}

	_, err := tea.NewProgram(m, progOpts...).Run()
	return err
}
