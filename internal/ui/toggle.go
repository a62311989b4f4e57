package ui

import (
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/toggle"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForToggleEvent(ch <-chan toggle.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return toggleDoneMsg{}
		}
		return toggleEventMsg{event: evt}
	}
}

type toggleEventMsg struct {
	event toggle.Event
}

type toggleDoneMsg struct{}

func (m *Model) handleToggleEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(toggleEventMsg)
	if !ok {
		return nil
	}
	var cmd tea.Cmd
	if eventMsg.event.Kind == toggle.EventToggle {
		cmd = m.handleToggleMsg(toggleMsg{})
	}
	if m.toggles == nil {
		return cmd
	}
	waitCmd := waitForToggleEvent(m.toggles)
	if cmd != nil {
		return tea.Batch(cmd, waitCmd)
	}
	return waitCmd
}

func (m *Model) handleToggleDoneMsg(msg tea.Msg) tea.Cmd {
	m.toggles = nil
	events.Toggle.Finished("listener closed")
	return nil
}
