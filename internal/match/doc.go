// Package match holds the value types describing what the overlay shows.
//
// PlayerInfo and MatchState are immutable by convention: every helper that
// changes something returns a modified copy and leaves the receiver alone.
// This makes snapshotting for undo a plain assignment.
//
// # Ownership
//
// Tournament owns exactly one current MatchState, the Queue of upcoming
// matches and the name of the active scene. It is mutated only through
// SetCurrent and SetScene and is not safe for unsynchronized concurrent
// writers. Callers (the command dispatcher) serialize submission.
//
// Queue is the one exception: it is safe for concurrent use because
// upcoming matches may be enqueued from a different goroutine (a bracket
// poller, the UI) than the one executing commands.
package match
