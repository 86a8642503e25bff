package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mcdev12/workshop/go/internal/render"
	"github.com/mcdev12/workshop/go/internal/session/reconcile"
)

// App wraps the Bubbletea program
type App struct {
	program *tea.Program
	surface *Surface
	actions *boundActions
	ready   chan struct{}
}

// boundActions lets the controller be attached after the program is built,
// since the controller itself needs the program's Surface.
type boundActions struct {
	Actions
}

// New creates the terminal UI. Bind the controller before calling Run.
func New(role reconcile.Role, joinURL string) *App {
	ready := make(chan struct{})
	actions := &boundActions{}
	program := tea.NewProgram(
		NewModel(actions, role, joinURL, ready),
		tea.WithAltScreen(),
	)
	return &App{
		program: program,
		surface: NewSurface(program.Send),
		actions: actions,
		ready:   ready,
	}
}

// Bind attaches the actions keypresses are sent to.
func (a *App) Bind(actions Actions) {
	a.actions.Actions = actions
}

// Surface returns the render surface backed by the program.
func (a *App) Surface() render.Surface {
	return a.surface
}

// Ready is closed once the program has started.
func (a *App) Ready() <-chan struct{} {
	return a.ready
}

// Run starts the TUI application and blocks until the user quits or ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			a.program.Quit()
		case <-done:
		}
	}()

	_, err := a.program.Run()
	return err
}
