package ui

import (
	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
)

func waitForBackendEvent(ch <-chan backend.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return backendDoneMsg{}
		}
		return backendEventMsg{event: evt}
	}
}

type backendEventMsg struct {
	event backend.Event
}

type backendDoneMsg struct{}

func (m *Model) handleBackendEventMsg(msg tea.Msg) tea.Cmd {
	eventMsg, ok := msg.(backendEventMsg)
	if !ok {
		return nil
	}
	cmd := m.applyBackendEvent(eventMsg.event)
	if m.events != nil {
		waitCmd := waitForBackendEvent(m.events)
		if cmd != nil {
			return tea.Batch(cmd, waitCmd)
		}
		return waitCmd
	}
	return cmd
}

func (m *Model) handleBackendDoneMsg(msg tea.Msg) tea.Cmd {
	m.events = nil
	m.detach()
	return nil
}

func (m *Model) applyBackendEvent(evt backend.Event) tea.Cmd {
	switch evt.Kind {
	case backend.EventStarted:
		if evt.Session == nil {
			return nil
		}
		m.bus.Attach(evt.Session)
		events.Session.Started(evt.Session.ID())
		m.search()
		return nil
	case backend.EventResponse:
		if evt.Response == nil {
			return nil
		}
		return protocol.Visit[tea.Cmd](evt.Response, responseHandler{m: m, seq: evt.Seq})
	case backend.EventError:
		m.detach()
		err := evt.Err
		if err == nil {
			err = backend.ErrBackendExited
		}
		m.recordError(err)
	}
	return nil
}

// detach forgets the session so later requests fail fast.
func (m *Model) detach() {
	m.bus.Detach()
}

// responseHandler applies one backend response to the model.
type responseHandler struct {
	m   *Model
	seq uint64
}

func (h responseHandler) Update(u protocol.Update) tea.Cmd {
	m := h.m
	if h.seq != 0 && h.seq < m.latestSeq {
		events.Session.Stale(h.seq, m.latestSeq)
		return nil
	}
	m.results.Replace(u.Items)
	return m.resize()
}

func (h responseHandler) Fill(f protocol.Fill) tea.Cmd {
	events.Query.Fill(f.Text)
	h.m.setQuery(f.Text)
	return nil
}

func (h responseHandler) Close(protocol.Close) tea.Cmd {
	events.App.Stop("backend close")
	h.m.quitting = true
	return tea.Quit
}

func (h responseHandler) Context(c protocol.Context) tea.Cmd {
	events.Session.Ignored("context")
	return nil
}

func (h responseHandler) DesktopEntry(d protocol.DesktopEntry) tea.Cmd {
	if h.m.launcher == nil {
		logging.Warn("no launcher for "+d.Path, nil)
		return nil
	}
	return launchCmd(h.m.launcher, d)
}

func (h responseHandler) Unknown(u protocol.Unknown) tea.Cmd {
	events.Session.Ignored(u.Tag)
	return nil
}
