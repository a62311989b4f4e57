package ui

import (
	"strings"

	"github.com/atomicstack/popup-launcher/internal/logging/events"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	key := keyMsg.String()
	if key == "ctrl+c" {
		events.App.Stop("interrupt")
		m.quitting = true
		return tea.Quit
	}
	if !m.surf.Visible {
		return nil
	}
	if digit, ok := shortcutDigit(key); ok {
		return m.handleShortcutMsg(ShortcutMsg{Digit: digit})
	}
	switch key {
	case "esc":
		return m.handleHideMsg(HideMsg{})
	case "enter":
		return m.handleActivateMsg(ActivateMsg{Index: -1})
	case "tab":
		return m.handleCompleteMsg(CompleteMsg{})
	case "ctrl+l":
		return m.handleClearMsg(ClearMsg{})
	case "up", "ctrl+p":
		m.moveSelection(m.results.MoveCursorUp)
		return nil
	case "down", "ctrl+n":
		m.moveSelection(m.results.MoveCursorDown)
		return nil
	case "home":
		m.moveSelection(m.results.MoveCursorHome)
		return nil
	case "end":
		m.moveSelection(m.results.MoveCursorEnd)
		return nil
	}
	return m.updateInput(keyMsg)
}

func (m *Model) moveSelection(move func() bool) {
	if move() {
		m.results.EnsureCursorVisible(m.maxVisibleItems())
		events.Query.Select(m.results.Cursor)
	}
}

// updateInput feeds a key to the query field and reports a change as an
// InputChangedMsg.
func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		if changed := m.handleInputChangedMsg(InputChangedMsg{Value: after}); changed != nil {
			return tea.Batch(cmd, changed)
		}
	}
	return cmd
}

// shortcutDigit recognises ctrl+N and alt+N.
func shortcutDigit(key string) (int, bool) {
	for _, prefix := range []string{"ctrl+", "alt+"} {
		rest, ok := strings.CutPrefix(key, prefix)
		if !ok || len(rest) != 1 {
			continue
		}
		if c := rest[0]; c >= '0' && c <= '9' {
			return int(c - '0'), true
		}
	}
	return 0, false
}
