// Package ui contains the Bubble Tea program that drives the launcher. The
// Model owns the query, the result set, the selection and the surface state,
// and is the only writer of all four.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages, which are routed
//     through a typed handler registry so each tea.Msg is handled by a focused
//     function.
//   - Key presses are translated into intents (HideMsg, ActivateMsg,
//     ShortcutMsg, CompleteMsg, ClearMsg, selection moves) or fed to the query
//     field, whose edits become InputChangedMsg.
//   - The backend driver and the toggle listener each deliver one event per
//     wait command (waitForBackendEvent, waitForToggleEvent); the handler
//     re-arms the wait after applying the event.
//
// Requests:
//   - Requests go through the internal/ui/command bus, a non-blocking enqueue
//     onto the live session performed inside Update so they stay in issue
//     order. Every Search carries a sequence number; Updates answering an
//     older Search are discarded.
//   - Backend responses are dispatched with protocol.Visit, so a new response
//     kind does not compile until responseHandler handles it.
//
// Surface:
//   - Showing allocates a new surface id, clears the query, issues an empty
//     Search and creates the surface at the size implied by the current
//     result set (base height plus one unit per row). Hiding destroys it; the
//     result set is kept so the next show is instant.
//   - Destroy notifications carrying an old id are ignored.
//
// Failures from sends, the backend and launches are funnelled into
// recordError, which logs them and shows the latest one in the footer.
package ui
