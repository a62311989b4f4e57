package state

import (
	"testing"

	"github.com/atomicstack/popup-launcher/internal/protocol"
)

func TestReplaceClampsSelection(t *testing.T) {
	r := newTestResults("a", "b", "c", "d")
	r.Select(3)
	r.Replace(newTestResults("x", "y").Items)
	if r.Cursor != 1 {
		t.Fatalf("expected selection clamped to 1, got %d", r.Cursor)
	}
	r.Replace(nil)
	if r.Cursor != -1 {
		t.Fatalf("expected no selection for empty set, got %d", r.Cursor)
	}
}

func TestReplaceKeepsNoSelection(t *testing.T) {
	r := newTestResults("a")
	r.Replace(newTestResults("x", "y", "z").Items)
	if r.Cursor != -1 {
		t.Fatalf("expected no selection, got %d", r.Cursor)
	}
}

func TestReplaceCopiesItems(t *testing.T) {
	items := []protocol.SearchResult{{ID: 1, Name: "a"}}
	r := NewResults()
	r.Replace(items)
	items[0].Name = "changed"
	if r.Items[0].Name != "a" {
		t.Fatalf("expected results to own their items")
	}
}

func TestSelectInvalidClears(t *testing.T) {
	r := newTestResults("a", "b")
	if !r.Select(1) {
		t.Fatalf("expected valid select")
	}
	if r.Select(5) {
		t.Fatalf("expected invalid select to report false")
	}
	if r.Cursor != -1 {
		t.Fatalf("expected selection cleared, got %d", r.Cursor)
	}
	if _, ok := r.Selected(); ok {
		t.Fatalf("expected no selected item")
	}
}

func TestTargetDefaultsToFirstRow(t *testing.T) {
	r := newTestResults("a", "b")
	if idx, ok := r.Target(); !ok || idx != 0 {
		t.Fatalf("expected target 0, got %d %v", idx, ok)
	}
	r.Select(1)
	if idx, ok := r.Target(); !ok || idx != 1 {
		t.Fatalf("expected target 1, got %d %v", idx, ok)
	}
	if _, ok := NewResults().Target(); ok {
		t.Fatalf("expected no target for empty results")
	}
}

func TestClearResets(t *testing.T) {
	r := newTestResults("a", "b")
	r.Select(1)
	r.ViewportOffset = 1
	r.Clear()
	if r.Len() != 0 || r.Cursor != -1 || r.ViewportOffset != 0 {
		t.Fatalf("expected cleared results, got %+v", r)
	}
}

func TestSurfaceCurrent(t *testing.T) {
	s := Surface{Visible: true, ID: 3}
	if !s.Current(3) || s.Current(2) {
		t.Fatalf("unexpected Current result for %+v", s)
	}
	if (Surface{ID: 3}).Current(3) {
		t.Fatalf("hidden surface should never be current")
	}
}
