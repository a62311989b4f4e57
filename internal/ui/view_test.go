package ui

import (
	"errors"
	"strings"
	"testing"

	"github.com/atomicstack/popup-launcher/internal/protocol"
	"github.com/atomicstack/popup-launcher/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
)

func visibleFixture(t *testing.T, items ...protocol.SearchResult) *fixture {
	t.Helper()
	f := newFixture(t)
	f.h.Send(tea.WindowSizeMsg{Width: 80, Height: 20})
	f.h.Send(Toggle())
	f.update(items...)
	return f
}

func TestViewHiddenIsEmpty(t *testing.T) {
	f := newFixture(t)
	f.respond(0, protocol.Update{Items: results("a")})
	if v := f.h.View(); v != "" {
		t.Fatalf("expected empty view while hidden, got %q", v)
	}
}

func TestViewRendersRowsWithShortcuts(t *testing.T) {
	f := visibleFixture(t,
		protocol.SearchResult{ID: 1, Name: "Files", Description: "File Manager"},
		protocol.SearchResult{ID: 2, Name: "Firefox", Description: "Web Browser", Icon: protocol.NamedIcon("firefox")},
	)
	view := ansi.Strip(f.h.View())
	lines := strings.Split(view, "\n")
	if !strings.Contains(lines[0], inputPlaceholder) {
		t.Fatalf("expected placeholder on the prompt line, got %q", lines[0])
	}
	var files, firefox string
	for _, line := range lines {
		switch {
		case strings.Contains(line, "Files"):
			files = line
		case strings.Contains(line, "Firefox"):
			firefox = line
		}
	}
	if !strings.HasPrefix(files, "▌ 1") || !strings.Contains(files, "File Manager") {
		t.Fatalf("unexpected Files row %q", files)
	}
	if !strings.HasPrefix(firefox, "▌ 2  "+iconMarker) {
		t.Fatalf("expected icon marker on Firefox row, got %q", firefox)
	}
	if !strings.Contains(view, footerHint) {
		t.Fatalf("expected footer hint in view:\n%s", view)
	}
}

func TestViewLimitsRowsToTerminalHeight(t *testing.T) {
	names := make([]string, 12)
	for i := range names {
		names[i] = "app" + string(rune('a'+i))
	}
	f := visibleFixture(t, results(names...)...)
	f.h.Send(tea.WindowSizeMsg{Width: 80, Height: 8})
	f.h.Key("end")
	view := ansi.Strip(f.h.View())
	if got := len(strings.Split(view, "\n")); got != 8 {
		t.Fatalf("expected 8 lines, got %d:\n%s", got, view)
	}
	if !strings.Contains(view, "appl") || strings.Contains(view, "appa") {
		t.Fatalf("expected viewport to follow the selection:\n%s", view)
	}
}

func TestViewShowsNoMatches(t *testing.T) {
	f := visibleFixture(t)
	f.h.Type("zz")
	f.update()
	if view := ansi.Strip(f.h.View()); !strings.Contains(view, `No matches for "zz"`) {
		t.Fatalf("expected no-match notice:\n%s", view)
	}
}

func TestViewShowsLatestError(t *testing.T) {
	f := visibleFixture(t)
	f.h.Send(errorMsg{err: errors.New("\x1b[31mbackend crashed\x1b[0m")})
	view := ansi.Strip(f.h.View())
	if !strings.Contains(view, "Error: backend crashed") {
		t.Fatalf("expected error in footer:\n%s", view)
	}
}

func TestViewWithoutSession(t *testing.T) {
	m := NewModel(Options{Surface: &recordingSurface{}})
	h := NewHarness(m)
	h.Send(Toggle())
	m.lastErr = ""
	if view := ansi.Strip(h.View()); !strings.Contains(view, "backend unavailable") {
		t.Fatalf("expected backend notice:\n%s", view)
	}
}

func TestDescribeTruncatesLongDescriptions(t *testing.T) {
	short := strings.Repeat("a", 40)
	if describe(short) != short {
		t.Fatalf("40 cells should be kept")
	}
	long := strings.Repeat("b", 60)
	if got := describe(long); got != strings.Repeat("b", 45)+"..." {
		t.Fatalf("unexpected truncation %q", got)
	}
}

func TestMatchPositionsHighlightName(t *testing.T) {
	got := matchPositions("ff", "Firefox", 8)
	if !got[8] || !got[12] || len(got) != 2 {
		t.Fatalf("unexpected match positions %v", got)
	}
	if matchPositions("", "Firefox", 0) != nil {
		t.Fatalf("empty query should not highlight")
	}
	if matchPositions("zz", "Firefox", 0) != nil {
		t.Fatalf("non-matching query should not highlight")
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("launcher", 5); got != "laun…" {
		t.Fatalf("unexpected truncation %q", got)
	}
	if got := truncateText("launcher", 0); got != "launcher" {
		t.Fatalf("width 0 should not truncate, got %q", got)
	}
}

func TestViewGolden(t *testing.T) {
	f := visibleFixture(t,
		protocol.SearchResult{ID: 1, Name: "Files", Description: "Access and organize files"},
		protocol.SearchResult{ID: 2, Name: "Firefox", Description: "Browse the World Wide Web with a long description attached", Icon: protocol.NamedIcon("firefox")},
		protocol.SearchResult{ID: 3, Name: "Terminal"},
	)
	f.h.Key("down")
	testutil.AssertGolden(t, "launcher_view.golden", ansi.Strip(f.h.View()))
}
