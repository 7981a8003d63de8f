// Package ui contains the Bubble Tea program that drives the recording
// service. The Model type focuses on message orchestration, while dedicated
// helpers own navigation, input, rendering, and command dispatch.
//
// Message flow:
//   - Bubble Tea invokes Model.Update with incoming messages.
//   - Key presses go to the open prompt or confirmation form first. When no
//     form is active, every tea.Msg is routed through a typed handler
//     registry so each message is handled by a focused function.
//   - Operator actions are looked up in the action registry by key binding,
//     validated locally, then run through the command bus. The bus wraps the
//     reply in command.Completed so Update can drop responses whose slot was
//     superseded in the meantime.
//
// State ownership:
//   - The confirmed recording state lives in session.Controller and only
//     changes on a confirmed reply or a status poll.
//   - The catalog lives in internal/state; the browsable view of it (search,
//     category, selection, viewport) lives in internal/ui/state.List.
//
// Backend interactions:
//   - A backend.Watcher streams status polls (and optional catalog polls).
//     applyBackendEvent hands them to the dispatcher. A poll releases any
//     outstanding lifecycle request, and a poll that shows a session ending
//     schedules one catalog refresh.
//   - Catalog refreshes share a single slot; requests that arrive while one
//     is in flight are coalesced into one follow-up fetch.
package ui
