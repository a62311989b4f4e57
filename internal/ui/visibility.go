package ui

import (
	"context"
	"time"

	"github.com/atomicstack/popup-launcher/internal/logging"
	"github.com/atomicstack/popup-launcher/internal/logging/events"
	"github.com/atomicstack/popup-launcher/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

const hostHideTimeout = 2 * time.Second

func (m *Model) handleToggleMsg(msg tea.Msg) tea.Cmd {
	if m.surf.Visible {
		return m.hide("toggle")
	}
	return m.show()
}

// show allocates a new surface id, resets the query and probes the backend
// with an empty search before creating the surface.
func (m *Model) show() tea.Cmd {
	m.nextID++
	m.surf.ID = m.nextID
	m.surf.Visible = true
	m.setQuery("")
	m.search()
	focus := m.input.Focus()
	events.Surface.Create(m.surf.ID, m.width, m.height)
	return tea.Batch(m.surface.Create(m.surf.ID, m.width, m.height), focus)
}

func (m *Model) hide(reason string) tea.Cmd {
	if !m.surf.Visible {
		return nil
	}
	m.surf.Visible = false
	m.input.Blur()
	events.Surface.Destroy(m.surf.ID, reason)
	return m.surface.Destroy(m.surf.ID)
}

func (m *Model) handleHideMsg(msg tea.Msg) tea.Cmd {
	return m.hide("hide")
}

func (m *Model) handleBlurMsg(msg tea.Msg) tea.Cmd {
	if !m.surf.Visible {
		return nil
	}
	cmd := m.hide("blur")
	if !m.hostHide || m.host == nil {
		return cmd
	}
	return tea.Batch(cmd, hideHostCmd(m.host))
}

func hideHostCmd(host HostHider) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), hostHideTimeout)
		defer cancel()
		return hostHiddenMsg{err: host.HideHost(ctx)}
	}
}

func (m *Model) handleHostHiddenMsg(msg tea.Msg) tea.Cmd {
	hidden, ok := msg.(hostHiddenMsg)
	if !ok {
		return nil
	}
	events.Toggle.HostHide(hidden.err)
	if hidden.err != nil {
		logging.Warn("hide applet host", hidden.err)
	}
	return nil
}

func (m *Model) handleSurfaceDestroyedMsg(msg tea.Msg) tea.Cmd {
	destroyed, ok := msg.(SurfaceDestroyedMsg)
	if !ok {
		return nil
	}
	if !m.surf.Current(destroyed.ID) {
		events.Surface.Stale(destroyed.ID, m.surf.ID)
		return nil
	}
	m.surf.Visible = false
	m.input.Blur()
	events.Surface.Destroy(destroyed.ID, "external")
	m.setQuery("")
	m.search()
	return nil
}

func (m *Model) handleInputChangedMsg(msg tea.Msg) tea.Cmd {
	changed, ok := msg.(InputChangedMsg)
	if !ok || !m.surf.Visible {
		return nil
	}
	m.setQuery(changed.Value)
	m.results.Clamp()
	events.Query.Changed(m.query)
	m.search()
	return nil
}

func (m *Model) handleClearMsg(msg tea.Msg) tea.Cmd {
	if !m.surf.Visible {
		return nil
	}
	m.setQuery("")
	m.results.Clear()
	events.Query.Cleared()
	m.search()
	return nil
}

func (m *Model) handleSelectMsg(msg tea.Msg) tea.Cmd {
	sel, ok := msg.(SelectMsg)
	if !ok || !m.surf.Visible {
		return nil
	}
	m.results.Select(sel.Index)
	events.Query.Select(m.results.Cursor)
	return nil
}

func (m *Model) handleShortcutMsg(msg tea.Msg) tea.Cmd {
	shortcut, ok := msg.(ShortcutMsg)
	if !ok || !m.surf.Visible {
		return nil
	}
	index := shortcut.Index()
	if _, ok := m.results.At(index); !ok {
		return nil
	}
	return m.activate(index)
}

func (m *Model) handleActivateMsg(msg tea.Msg) tea.Cmd {
	act, ok := msg.(ActivateMsg)
	if !ok || !m.surf.Visible {
		return nil
	}
	index := act.Index
	if index < 0 {
		target, ok := m.results.Target()
		if !ok {
			return nil
		}
		index = target
	}
	return m.activate(index)
}

// activate sends Activate for the row at index and hides once the request
// has been queued.
func (m *Model) activate(index int) tea.Cmd {
	item, ok := m.results.At(index)
	if !ok {
		return nil
	}
	events.Action.Activate(index, item.ID, item.Name)
	if err := m.bus.Send(protocol.Activate{ID: item.ID}); err != nil {
		m.recordError(err)
		return nil
	}
	return m.hide("activate")
}

func (m *Model) handleCompleteMsg(msg tea.Msg) tea.Cmd {
	if !m.surf.Visible {
		return nil
	}
	item, ok := m.results.Selected()
	if !ok {
		index, ok := m.results.Target()
		if !ok {
			return nil
		}
		item, _ = m.results.At(index)
	}
	if err := m.bus.Send(protocol.Complete{ID: item.ID}); err != nil {
		m.recordError(err)
	}
	return nil
}

// search issues a Search for the current query tagged with a fresh sequence
// number.
func (m *Model) search() {
	m.searchSeq++
	seq := m.searchSeq
	if err := m.bus.Send(protocol.Search{Query: m.query, Seq: seq}); err != nil {
		m.recordError(err)
		return
	}
	m.latestSeq = seq
}

func (m *Model) setQuery(q string) {
	m.query = q
	if m.input.Value() != q {
		m.input.SetValue(q)
		m.input.CursorEnd()
	}
}

// sizeFor computes the surface height for n result rows.
func (m *Model) sizeFor(n int) int {
	return m.baseHeight + m.unitHeight*n
}

// resize recomputes the surface size and resizes a live surface.
func (m *Model) resize() tea.Cmd {
	m.height = m.sizeFor(m.results.Len())
	if !m.surf.Visible {
		return nil
	}
	events.Surface.Resize(m.surf.ID, m.width, m.height)
	return m.surface.Resize(m.surf.ID, m.width, m.height)
}

func (m *Model) handleErrorMsg(msg tea.Msg) tea.Cmd {
	errMsg, ok := msg.(errorMsg)
	if !ok {
		return nil
	}
	m.recordError(errMsg.err)
	return nil
}

// recordError is the single sink for orchestrator failures.
func (m *Model) recordError(err error) {
	if err == nil {
		return
	}
	logging.Error(err)
	m.lastErr = ansi.Strip(err.Error())
	m.errCount++
}

func launchCmd(l Launcher, entry protocol.DesktopEntry) tea.Cmd {
	return func() tea.Msg {
		return launchResultMsg{path: entry.Path, gpu: entry.GpuPreference, err: l.Launch(entry.Path, entry.GpuPreference)}
	}
}

func (m *Model) handleLaunchResultMsg(msg tea.Msg) tea.Cmd {
	result, ok := msg.(launchResultMsg)
	if !ok {
		return nil
	}
	if result.err != nil {
		events.Action.Error(result.err)
		logging.Warn("launch "+result.path, result.err)
		return nil
	}
	events.Action.Success(result.path)
	return m.hide("launched")
}
