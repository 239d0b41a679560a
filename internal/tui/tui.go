package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Program is an alias for tea.Program, exposed so callers don't need to
// import bubbletea directly.
type Program = tea.Program

// NewProgram creates the dashboard program on the alternate screen buffer.
// Callers hold the reference so a store watcher can Send MsgChanged into it.
func NewProgram(loader Loader, opts ...tea.ProgramOption) *Program {
	allOpts := []tea.ProgramOption{tea.WithAltScreen()}
	allOpts = append(allOpts, opts...)
	return tea.NewProgram(NewModel(loader), allOpts...)
}
