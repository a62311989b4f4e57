package ui

import (
	"context"
	"testing"

	"github.com/atomicstack/popup-launcher/internal/backend"
	"github.com/atomicstack/popup-launcher/internal/protocol"
	"github.com/atomicstack/popup-launcher/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
)

type surfaceCall struct {
	op     string
	id     uint64
	width  int
	height int
}

type recordingSurface struct {
	calls []surfaceCall
	live  int
	peak  int
}

func (s *recordingSurface) Create(id uint64, width, height int) tea.Cmd {
	s.calls = append(s.calls, surfaceCall{op: "create", id: id, width: width, height: height})
	s.live++
	if s.live > s.peak {
		s.peak = s.live
	}
	return nil
}

func (s *recordingSurface) Destroy(id uint64) tea.Cmd {
	s.calls = append(s.calls, surfaceCall{op: "destroy", id: id})
	s.live--
	return nil
}

func (s *recordingSurface) Resize(id uint64, width, height int) tea.Cmd {
	s.calls = append(s.calls, surfaceCall{op: "resize", id: id, width: width, height: height})
	return nil
}

func (s *recordingSurface) last() surfaceCall {
	if len(s.calls) == 0 {
		return surfaceCall{}
	}
	return s.calls[len(s.calls)-1]
}

func (s *recordingSurface) count(op string) int {
	n := 0
	for _, c := range s.calls {
		if c.op == op {
			n++
		}
	}
	return n
}

type launch struct {
	path string
	gpu  protocol.GpuPreference
}

type fakeLauncher struct {
	launches []launch
	err      error
}

func (l *fakeLauncher) Launch(path string, gpu protocol.GpuPreference) error {
	l.launches = append(l.launches, launch{path: path, gpu: gpu})
	return l.err
}

type fakeHost struct {
	calls int
	err   error
}

func (h *fakeHost) HideHost(ctx context.Context) error {
	h.calls++
	return h.err
}

type fakeIcons map[string]bool

func (f fakeIcons) Resolve(src *protocol.IconSource, theme string) (string, bool) {
	if src == nil {
		return "", false
	}
	if f[src.Name] {
		return "/icons/" + src.Name + ".svg", true
	}
	return "", false
}

type fixture struct {
	h        *Harness
	surface  *recordingSurface
	session  *testutil.RecordingSession
	launcher *fakeLauncher
	host     *fakeHost
}

// newFixture returns a hidden launcher attached to a recording session. The
// empty search issued on session start is discarded.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		surface:  &recordingSurface{},
		session:  testutil.NewRecordingSession("test"),
		launcher: &fakeLauncher{},
		host:     &fakeHost{},
	}
	m := NewModel(Options{
		Surface:  f.surface,
		Launcher: f.launcher,
		Host:     f.host,
		HostHide: true,
		Icons:    fakeIcons{"firefox": true},
	})
	f.h = NewHarness(m)
	f.h.Send(backendEventMsg{event: backend.Event{Kind: backend.EventStarted, Session: f.session}})
	f.session.Reset()
	return f
}

func (f *fixture) model() *Model {
	return f.h.Model()
}

func (f *fixture) respond(seq uint64, resp protocol.Response) {
	f.h.Send(backendEventMsg{event: backend.Event{Kind: backend.EventResponse, Response: resp, Seq: seq}})
}

// update answers the most recent search with items.
func (f *fixture) update(items ...protocol.SearchResult) {
	f.respond(f.model().latestSeq, protocol.Update{Items: items})
}

func (f *fixture) searches() []string {
	var out []string
	for _, s := range f.session.Searches() {
		out = append(out, s.Query)
	}
	return out
}

func results(names ...string) []protocol.SearchResult {
	items := make([]protocol.SearchResult, len(names))
	for i, name := range names {
		items[i] = protocol.SearchResult{ID: uint32(i + 1), Name: name}
	}
	return items
}
