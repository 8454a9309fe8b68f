// Package command implements reversible operator actions and the dispatcher
// that executes them with undo/redo history.
//
// # Commands
//
// A Command captures whatever "before" data it needs inside itself during
// Execute, so Undo is self-contained and the lifetime of undo data is tied to
// the command record, not to the dispatcher. Each command defines its own
// compensating action: overlay writes are not invertible from state alone
// (restoring a scene means switching to it again).
//
// # Local state first
//
// Every command mutates the Tournament before writing to the overlay. If the
// overlay write fails the command returns a failed Result and is not recorded
// in history, but the local change stands: local state is authoritative and
// the next successful apply (retry, Undo of an earlier command, or an
// explicit resync) brings the overlay back in line. The dispatcher logs a
// divergence warning whenever this happens.
//
// # History
//
// The dispatcher keeps an arena of command records and two index stacks.
// History is strict LIFO with no coalescing: two score bumps are two undo
// steps. Meta-commands that only replay history (UndoLast, RedoLast) are
// never recorded.
//
// The dispatcher is not safe for concurrent submission. Callers await each
// call before issuing the next.
package command
