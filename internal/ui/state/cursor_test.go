package state

import (
	"testing"

	"github.com/atomicstack/popup-launcher/internal/protocol"
)

func newTestResults(names ...string) *Results {
	items := make([]protocol.SearchResult, len(names))
	for i, name := range names {
		items[i] = protocol.SearchResult{ID: uint32(i), Name: name}
	}
	r := NewResults()
	r.Replace(items)
	return r
}

func TestMoveCursorHome(t *testing.T) {
	r := newTestResults("a", "b", "c")
	r.Cursor = 2
	if !r.MoveCursorHome() {
		t.Fatalf("expected move when items exist")
	}
	if r.Cursor != 0 {
		t.Fatalf("expected cursor 0, got %d", r.Cursor)
	}

	empty := newTestResults()
	empty.Cursor = 5
	if empty.MoveCursorHome() {
		t.Fatalf("expected no movement for empty results")
	}
	if empty.Cursor != -1 {
		t.Fatalf("expected no selection, got %d", empty.Cursor)
	}
}

func TestMoveCursorEnd(t *testing.T) {
	r := newTestResults("a", "b", "c")
	if !r.MoveCursorEnd() {
		t.Fatalf("expected movement to end")
	}
	if r.Cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", r.Cursor)
	}
	if r.MoveCursorEnd() {
		t.Fatalf("expected no movement when already at end")
	}
}

func TestMoveCursorUpDown(t *testing.T) {
	r := newTestResults("a", "b", "c")
	if !r.MoveCursorDown() || r.Cursor != 0 {
		t.Fatalf("expected first down to select row 0, got %d", r.Cursor)
	}
	r.MoveCursorDown()
	r.MoveCursorDown()
	if r.MoveCursorDown() {
		t.Fatalf("expected no movement past the last row")
	}
	if r.Cursor != 2 {
		t.Fatalf("expected cursor 2, got %d", r.Cursor)
	}
	r.MoveCursorUp()
	if r.Cursor != 1 {
		t.Fatalf("expected cursor 1, got %d", r.Cursor)
	}
	r.Cursor = -1
	if !r.MoveCursorUp() || r.Cursor != 0 {
		t.Fatalf("expected up with no selection to select row 0, got %d", r.Cursor)
	}
}

func TestEnsureCursorVisibleAdjustsViewport(t *testing.T) {
	r := newTestResults("a", "b", "c", "d", "e")
	r.Cursor = 4
	r.EnsureCursorVisible(2)
	if r.ViewportOffset != 3 {
		t.Fatalf("expected offset 3, got %d", r.ViewportOffset)
	}

	r.ViewportOffset = 4
	r.EnsureCursorVisible(0)
	if r.ViewportOffset != 0 {
		t.Fatalf("expected offset reset when maxVisible <= 0, got %d", r.ViewportOffset)
	}

	r.ViewportOffset = 4
	r.Cursor = 1
	r.EnsureCursorVisible(3)
	if r.ViewportOffset != 1 {
		t.Fatalf("expected offset aligned with cursor, got %d", r.ViewportOffset)
	}
}
