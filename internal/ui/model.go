package ui

import (
	"context"
	"reflect"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/protocol"
	"github.com/atomicstack/popup-launcher/internal/theme"
	"github.com/atomicstack/popup-launcher/internal/toggle"
	"github.com/atomicstack/popup-launcher/internal/ui/command"
	uistate "github.com/atomicstack/popup-launcher/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Default surface geometry.
const (
	DefaultWidth      = 600
	DefaultBaseHeight = 100
	DefaultUnitHeight = 48
)

const (
	inputPlaceholder  = "Type something..."
	defaultInputWidth = 48
)

// ErrNoSession is reported when a request is issued while no backend session
// is live.
var ErrNoSession = command.ErrNoSession

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

// Launcher starts the program described by a desktop entry.
type Launcher interface {
	Launch(path string, gpu protocol.GpuPreference) error
}

// IconResolver maps an icon reference to a file on disk.
type IconResolver interface {
	Resolve(src *protocol.IconSource, theme string) (string, bool)
}

// HostHider asks the panel hosting the launcher to hide it.
type HostHider interface {
	HideHost(ctx context.Context) error
}

// Options wires the orchestrator to its collaborators. Nil channels and
// collaborators are allowed; the corresponding features stay inert.
type Options struct {
	Events  <-chan backend.Event
	Toggles <-chan toggle.Event

	Surface   Surface
	Launcher  Launcher
	Icons     IconResolver
	IconTheme string
	Host      HostHider
	HostHide  bool

	Width      int
	BaseHeight int
	UnitHeight int
}

// Model implements the Bubble Tea model for the launcher. It owns the query,
// the result set, the selection and the surface state.
type Model struct {
	events  <-chan backend.Event
	toggles <-chan toggle.Event

	surface   Surface
	launcher  Launcher
	icons     IconResolver
	iconTheme string
	host      HostHider
	hostHide  bool

	bus *command.Bus

	input   textinput.Model
	query   string
	results *uistate.Results
	surf    uistate.Surface
	nextID  uint64

	searchSeq uint64
	latestSeq uint64

	width      int
	baseHeight int
	unitHeight int
	height     int

	termWidth  int
	termHeight int

	lastErr  string
	errCount int
	quitting bool

	handlers map[reflect.Type]msgHandler
}

// NewModel builds a hidden launcher model.
func NewModel(opts Options) *Model {
	m := &Model{
		events:     opts.Events,
		toggles:    opts.Toggles,
		surface:    opts.Surface,
		launcher:   opts.Launcher,
		icons:      opts.Icons,
		iconTheme:  opts.IconTheme,
		host:       opts.Host,
		hostHide:   opts.HostHide,
		bus:        command.New(),
		results:    uistate.NewResults(),
		width:      positiveOr(opts.Width, DefaultWidth),
		baseHeight: positiveOr(opts.BaseHeight, DefaultBaseHeight),
		unitHeight: positiveOr(opts.UnitHeight, DefaultUnitHeight),
	}
	if m.surface == nil {
		m.surface = NewTerminalSurface()
	}
	m.height = m.sizeFor(0)

	in := textinput.New()
	in.Placeholder = inputPlaceholder
	in.Prompt = "> "
	in.Width = defaultInputWidth
	in.Cursor.SetMode(cursor.CursorStatic)
	if styles.FilterPrompt != nil {
		in.PromptStyle = *styles.FilterPrompt
	}
	if styles.Filter != nil {
		in.TextStyle = *styles.Filter
	}
	if styles.FilterPlaceholder != nil {
		in.PlaceholderStyle = *styles.FilterPlaceholder
	}
	if styles.Cursor != nil {
		in.Cursor.Style = *styles.Cursor
	}
	m.input = in
	m.registerHandlers()
	return m
}

func positiveOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{}
	if m.events != nil {
		cmds = append(cmds, waitForBackendEvent(m.events))
	}
	if m.toggles != nil {
		cmds = append(cmds, waitForToggleEvent(m.toggles))
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):          m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}):   m.handleWindowSizeMsg,
		reflect.TypeOf(tea.BlurMsg{}):         m.handleBlurMsg,
		reflect.TypeOf(toggleMsg{}):           m.handleToggleMsg,
		reflect.TypeOf(HideMsg{}):             m.handleHideMsg,
		reflect.TypeOf(ShortcutMsg{}):         m.handleShortcutMsg,
		reflect.TypeOf(InputChangedMsg{}):     m.handleInputChangedMsg,
		reflect.TypeOf(ActivateMsg{}):         m.handleActivateMsg,
		reflect.TypeOf(ClearMsg{}):            m.handleClearMsg,
		reflect.TypeOf(SelectMsg{}):           m.handleSelectMsg,
		reflect.TypeOf(CompleteMsg{}):         m.handleCompleteMsg,
		reflect.TypeOf(SurfaceDestroyedMsg{}): m.handleSurfaceDestroyedMsg,
		reflect.TypeOf(errorMsg{}):            m.handleErrorMsg,
		reflect.TypeOf(launchResultMsg{}):     m.handleLaunchResultMsg,
		reflect.TypeOf(hostHiddenMsg{}):       m.handleHostHiddenMsg,
		reflect.TypeOf(backendEventMsg{}):     m.handleBackendEventMsg,
		reflect.TypeOf(backendDoneMsg{}):      m.handleBackendDoneMsg,
		reflect.TypeOf(toggleEventMsg{}):      m.handleToggleEventMsg,
		reflect.TypeOf(toggleDoneMsg{}):       m.handleToggleDoneMsg,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

// Visible reports whether the launcher surface currently exists.
func (m *Model) Visible() bool {
	return m.surf.Visible
}

// SurfaceID returns the id of the most recently created surface.
func (m *Model) SurfaceID() uint64 {
	return m.surf.ID
}

// Query returns the current query text.
func (m *Model) Query() string {
	return m.query
}

// Results exposes the current result set.
func (m *Model) Results() *uistate.Results {
	return m.results
}

// Size reports the surface size derived from the current result set.
func (m *Model) Size() (width, height int) {
	return m.width, m.height
}

// LastError returns the most recent error message and the number of errors
// seen so far.
func (m *Model) LastError() (string, int) {
	return m.lastErr, m.errCount
}

// HasSession reports whether a live backend session is attached.
func (m *Model) HasSession() bool {
	return m.bus.Live()
}

// Toggle returns the message a toggle request is delivered as.
func Toggle() tea.Msg {
	return toggleMsg{}
}
