// ABOUTME: TUI initialization and control
// ABOUTME: Wraps the bubbletea program for the player UI
package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// TUI runs the player interface in the alternate screen
type TUI struct {
	program *tea.Program
}

// New creates the program without starting it
func New(ctrl Controller, info Info) *TUI {
	return &TUI{program: tea.NewProgram(NewModel(ctrl, info), tea.WithAltScreen())}
}

// Run blocks until the user quits or Quit is called
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Send delivers a status message. Safe to call from any goroutine.
func (t *TUI) Send(msg StatusMsg) {
	t.program.Send(msg)
}

// Quit stops the program
func (t *TUI) Quit() {
	t.program.Quit()
}
