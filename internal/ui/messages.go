package ui

import "github.com/atomicstack/popup-launcher/internal/protocol"

// toggleMsg asks the orchestrator to show a hidden launcher or hide a
// visible one.
type toggleMsg struct{}

// HideMsg is an explicit hide intent such as escape or a click outside the
// surface.
type HideMsg struct{}

// ShortcutMsg activates the row bound to a digit key. Digits 1-9 address rows
// 0-8 and 0 addresses row 9.
type ShortcutMsg struct {
	Digit int
}

// Index returns the row the digit addresses.
func (s ShortcutMsg) Index() int {
	if s.Digit == 0 {
		return 9
	}
	return s.Digit - 1
}

// InputChangedMsg carries the new contents of the query field.
type InputChangedMsg struct {
	Value string
}

// ActivateMsg launches a row. A negative Index activates the selection, or
// the first row when nothing is selected.
type ActivateMsg struct {
	Index int
}

// ClearMsg empties the query and the result set.
type ClearMsg struct{}

// SelectMsg moves the selection. Indexes outside the result set clear it.
type SelectMsg struct {
	Index int
}

// CompleteMsg asks the backend to complete the selected row into the query.
type CompleteMsg struct{}

// SurfaceDestroyedMsg reports that the presentation layer tore down a
// surface on its own.
type SurfaceDestroyedMsg struct {
	ID uint64
}

type errorMsg struct {
	err error
}

type launchResultMsg struct {
	path string
	gpu  protocol.GpuPreference
	err  error
}

type hostHiddenMsg struct {
	err error
}
