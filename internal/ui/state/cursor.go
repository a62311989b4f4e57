package state

// MoveCursorUp moves the selection one row up, stopping at the first row.
func (r *Results) MoveCursorUp() bool {
	if r.Cursor < 0 {
		return r.MoveCursorHome()
	}
	return r.moveCursorBy(-1)
}

// MoveCursorDown moves the selection one row down. With no selection it
// selects the first row.
func (r *Results) MoveCursorDown() bool {
	if r.Cursor < 0 {
		return r.MoveCursorHome()
	}
	return r.moveCursorBy(1)
}

// MoveCursorHome moves the cursor to the first item.
func (r *Results) MoveCursorHome() bool {
	if len(r.Items) == 0 {
		r.Cursor = -1
		return false
	}
	old := r.Cursor
	r.Cursor = 0
	return old != r.Cursor
}

// MoveCursorEnd moves the cursor to the last item.
func (r *Results) MoveCursorEnd() bool {
	n := len(r.Items)
	if n == 0 {
		r.Cursor = -1
		return false
	}
	old := r.Cursor
	r.Cursor = n - 1
	return old != r.Cursor
}

func (r *Results) moveCursorBy(delta int) bool {
	if len(r.Items) == 0 {
		r.Cursor = -1
		return false
	}
	old := r.Cursor
	r.Cursor += delta
	if r.Cursor < 0 {
		r.Cursor = 0
	}
	if r.Cursor >= len(r.Items) {
		r.Cursor = len(r.Items) - 1
	}
	return r.Cursor != old
}

// EnsureCursorVisible adjusts the viewport offset so the cursor stays visible.
func (r *Results) EnsureCursorVisible(maxVisible int) {
	if len(r.Items) == 0 || maxVisible <= 0 {
		r.ViewportOffset = 0
		return
	}
	maxOffset := len(r.Items) - maxVisible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if r.ViewportOffset > maxOffset {
		r.ViewportOffset = maxOffset
	}
	if r.ViewportOffset < 0 {
		r.ViewportOffset = 0
	}
	if r.Cursor < 0 {
		return
	}
	if r.Cursor < r.ViewportOffset {
		r.ViewportOffset = r.Cursor
	}
	if upper := r.ViewportOffset + maxVisible - 1; r.Cursor > upper {
		r.ViewportOffset = r.Cursor - maxVisible + 1
	}
}
