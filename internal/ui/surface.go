package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Surface is the presentation target whose lifetime the orchestrator
// controls. Sizes are logical surface units; each method returns the command
// that applies the change, or nil.
type Surface interface {
	Create(id uint64, width, height int) tea.Cmd
	Destroy(id uint64) tea.Cmd
	Resize(id uint64, width, height int) tea.Cmd
}

// TerminalSurface presents the launcher on the terminal's alternate screen.
// Creating a surface enters the alternate screen; destroying it leaves.
type TerminalSurface struct {
	live   bool
	width  int
	height int
}

func NewTerminalSurface() *TerminalSurface {
	return &TerminalSurface{}
}

func (s *TerminalSurface) Create(id uint64, width, height int) tea.Cmd {
	s.width, s.height = width, height
	if s.live {
		return nil
	}
	s.live = true
	return tea.EnterAltScreen
}

func (s *TerminalSurface) Destroy(id uint64) tea.Cmd {
	if !s.live {
		return nil
	}
	s.live = false
	return tea.ExitAltScreen
}

// Resize records the logical size. The terminal itself is sized by the
// emulator, so no command is needed.
func (s *TerminalSurface) Resize(id uint64, width, height int) tea.Cmd {
	s.width, s.height = width, height
	return nil
}

// Size returns the last logical size applied.
func (s *TerminalSurface) Size() (int, int) {
	return s.width, s.height
}
