package state

import "github.com/atomicstack/popup-launcher/internal/protocol"

// Results holds the ordered result set shown under the query field together
// with the selection and the first visible row.
type Results struct {
	Items          []protocol.SearchResult
	Cursor         int
	ViewportOffset int
}

// NewResults returns an empty result set with no selection.
func NewResults() *Results {
	return &Results{Cursor: -1}
}

// Len reports the number of items.
func (r *Results) Len() int {
	return len(r.Items)
}

// Replace swaps in a new result set and re-validates the selection.
func (r *Results) Replace(items []protocol.SearchResult) {
	r.Items = append([]protocol.SearchResult(nil), items...)
	r.Clamp()
	if r.ViewportOffset > len(r.Items)-1 {
		r.ViewportOffset = 0
	}
}

// Clear empties the result set.
func (r *Results) Clear() {
	r.Items = nil
	r.Cursor = -1
	r.ViewportOffset = 0
}

// Clamp keeps the selection inside the result set. A selection past the end
// moves to the last row; an empty set has no selection.
func (r *Results) Clamp() {
	n := len(r.Items)
	switch {
	case n == 0:
		r.Cursor = -1
	case r.Cursor >= n:
		r.Cursor = n - 1
	case r.Cursor < -1:
		r.Cursor = -1
	}
}

// Select sets the selection. Indexes outside the result set clear it.
func (r *Results) Select(index int) bool {
	if index < 0 || index >= len(r.Items) {
		r.Cursor = -1
		return false
	}
	r.Cursor = index
	return true
}

// Selected returns the selected item, if any.
func (r *Results) Selected() (protocol.SearchResult, bool) {
	if r.Cursor < 0 || r.Cursor >= len(r.Items) {
		return protocol.SearchResult{}, false
	}
	return r.Items[r.Cursor], true
}

// Target resolves the row an activation applies to: the selection, or the
// first row when nothing is selected.
func (r *Results) Target() (int, bool) {
	if len(r.Items) == 0 {
		return -1, false
	}
	if r.Cursor < 0 {
		return 0, true
	}
	return r.Cursor, true
}

// At returns the item at index.
func (r *Results) At(index int) (protocol.SearchResult, bool) {
	if index < 0 || index >= len(r.Items) {
		return protocol.SearchResult{}, false
	}
	return r.Items[index], true
}
