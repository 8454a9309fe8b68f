package command

import (
	"context"
	"log/slog"

	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/result"
)

// Action labels a dispatch in logs and the journal.
type Action string

const (
	ActionDo   Action = "DO"
	ActionUndo Action = "UNDO"
	ActionRedo Action = "REDO"
)

// Entry is one dispatch outcome handed to the Journal.
type Entry struct {
	ID      string // history record id; empty for unrecorded dispatches
	Action  Action
	Command string
	Result  result.Result
	Match   match.MatchState // current match after the dispatch
}

// Journal receives one Entry per dispatch. It is an audit trail only.
type Journal interface {
	Record(ctx context.Context, e Entry) error
}

// record is one arena slot: a command and the id it was recorded under.
// The command owns its captured "before" data.
type record struct {
	id  string
	cmd Command
}

// Dispatcher executes commands and maintains undo/redo history.
//
// Thread-safety: none. One logical stream of intents drives it; each call
// must return before the next is issued.
type Dispatcher struct {
	env     *Env
	ids     IDGenerator
	journal Journal
	limit   int
	logger  *slog.Logger

	arena []record
	undo  []int // arena indices, oldest first
	redo  []int // arena indices, most recently undone last
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithIDGenerator sets the record id source. Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) DispatcherOption {
	return func(d *Dispatcher) {
		d.ids = g
	}
}

// WithJournal appends every dispatch outcome to j.
func WithJournal(j Journal) DispatcherOption {
	return func(d *Dispatcher) {
		d.journal = j
	}
}

// WithHistoryLimit bounds the undo stack; the oldest records are dropped
// first. Zero means unbounded.
func WithHistoryLimit(n int) DispatcherOption {
	return func(d *Dispatcher) {
		d.limit = n
	}
}

// NewDispatcher creates a dispatcher running commands against env.
func NewDispatcher(env *Env, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		env:    env,
		ids:    UUIDv7Generator{},
		logger: env.Logger,
	}
	if d.logger == nil {
		d.logger = slog.Default()
	}
	if env.Logger == nil {
		env.Logger = d.logger
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Env returns the execution context.
func (d *Dispatcher) Env() *Env {
	return d.env
}

// Execute runs cmd. On success of a recorded command it is pushed onto the
// undo stack and the redo stack is cleared.
//
// Meta-commands (UndoLast, RedoLast) are passed straight through; the
// Undo or Redo they trigger does its own reporting.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) result.Result {
	if _, ok := cmd.(meta); ok {
		return cmd.Execute(ctx, d.env)
	}

	before := d.env.Tournament.Current()
	defer d.reportPanic(ctx, ActionDo, "", cmd, before)

	res := cmd.Execute(ctx, d.env)

	id := ""
	if res.OK && cmd.RecordInHistory() {
		id = d.ids.Generate()
		d.arena = append(d.arena, record{id: id, cmd: cmd})
		d.undo = append(d.undo, len(d.arena)-1)
		d.redo = d.redo[:0]
		d.trim()
	}

	d.warnDivergence(cmd, res, before)
	d.report(ctx, ActionDo, id, cmd, res)
	return res
}

// Undo reverts the most recent command. A failed undo leaves the command on
// the undo stack.
func (d *Dispatcher) Undo(ctx context.Context) result.Result {
	if len(d.undo) == 0 {
		res := result.Fail(result.CodeNone, "Nothing to undo", nil)
		d.logger.Info("command dispatched", "action", ActionUndo, "ok", false, "message", res.Message)
		return res
	}

	idx := d.undo[len(d.undo)-1]
	d.undo = d.undo[:len(d.undo)-1]
	rec := d.arena[idx]

	// Strict-mode gateway panics unwind through here; the record goes back
	// where it was.
	settled := false
	defer func() {
		if !settled {
			d.undo = append(d.undo, idx)
		}
	}()
	defer d.reportPanic(ctx, ActionUndo, rec.id, rec.cmd, d.env.Tournament.Current())

	res := rec.cmd.Undo(ctx, d.env)
	if res.OK {
		d.redo = append(d.redo, idx)
	} else {
		d.undo = append(d.undo, idx)
	}
	settled = true

	d.report(ctx, ActionUndo, rec.id, rec.cmd, res)
	return res
}

// Redo re-executes the most recently undone command. A failed redo leaves it
// on the redo stack.
func (d *Dispatcher) Redo(ctx context.Context) result.Result {
	if len(d.redo) == 0 {
		res := result.Fail(result.CodeNone, "Nothing to redo", nil)
		d.logger.Info("command dispatched", "action", ActionRedo, "ok", false, "message", res.Message)
		return res
	}

	idx := d.redo[len(d.redo)-1]
	d.redo = d.redo[:len(d.redo)-1]
	rec := d.arena[idx]

	settled := false
	defer func() {
		if !settled {
			d.redo = append(d.redo, idx)
		}
	}()
	defer d.reportPanic(ctx, ActionRedo, rec.id, rec.cmd, d.env.Tournament.Current())

	res := rec.cmd.Execute(ctx, d.env)
	if res.OK {
		d.undo = append(d.undo, idx)
	} else {
		d.redo = append(d.redo, idx)
	}
	settled = true

	d.report(ctx, ActionRedo, rec.id, rec.cmd, res)
	return res
}

// CanUndo reports whether the undo stack is non-empty.
func (d *Dispatcher) CanUndo() bool { return len(d.undo) > 0 }

// CanRedo reports whether the redo stack is non-empty.
func (d *Dispatcher) CanRedo() bool { return len(d.redo) > 0 }

// UndoDepth returns the number of undoable commands.
func (d *Dispatcher) UndoDepth() int { return len(d.undo) }

// RedoDepth returns the number of redoable commands.
func (d *Dispatcher) RedoDepth() int { return len(d.redo) }

// History returns the names of undoable commands, oldest first.
func (d *Dispatcher) History() []string {
	return d.names(d.undo)
}

// RedoHistory returns the names of redoable commands, next redo last.
func (d *Dispatcher) RedoHistory() []string {
	return d.names(d.redo)
}

func (d *Dispatcher) names(stack []int) []string {
	out := make([]string, len(stack))
	for i, idx := range stack {
		out[i] = d.arena[idx].cmd.Name()
	}
	return out
}

// trim enforces the history limit and compacts the arena. It runs only
// from Execute, after the redo stack was cleared, so every live record is
// on the undo stack.
func (d *Dispatcher) trim() {
	live := d.undo
	if d.limit > 0 && len(live) > d.limit {
		live = live[len(live)-d.limit:]
	}
	if len(live) == len(d.arena) {
		return
	}
	arena := make([]record, len(live))
	undo := make([]int, len(live))
	for i, idx := range live {
		arena[i] = d.arena[idx]
		undo[i] = i
	}
	d.arena = arena
	d.undo = undo
}

// warnDivergence logs when a failed dispatch still changed local state.
func (d *Dispatcher) warnDivergence(cmd Command, res result.Result, before match.MatchState) {
	if res.OK || before.Equal(d.env.Tournament.Current()) {
		return
	}
	d.logger.Warn("local match state diverged from overlay",
		"command", cmd.Name(),
		"code", res.Code,
	)
}

// reportPanic reports a dispatch cut short by a strict-mode gateway panic,
// then re-panics so the caller's gateway.Recover still sees it. It must be
// deferred directly.
func (d *Dispatcher) reportPanic(ctx context.Context, action Action, id string, cmd Command, before match.MatchState) {
	r := recover()
	if r == nil {
		return
	}
	err, ok := r.(error)
	if !ok {
		panic(r)
	}
	res := result.FromError(cmd.Name(), err)
	d.warnDivergence(cmd, res, before)
	d.report(ctx, action, id, cmd, res)
	panic(r)
}

// report logs the dispatch and appends it to the journal.
func (d *Dispatcher) report(ctx context.Context, action Action, id string, cmd Command, res result.Result) {
	attrs := []any{
		"action", action,
		"command", cmd.Name(),
		"ok", res.OK,
	}
	if id != "" {
		attrs = append(attrs, "id", id)
	}

	switch {
	case res.OK:
		d.logger.Info("command dispatched", attrs...)
	case res.Code == result.Timeout || res.Code == result.ObsError:
		d.logger.Error("command dispatched", append(attrs, "code", res.Code, "message", res.Message)...)
	default:
		d.logger.Warn("command dispatched", append(attrs, "code", res.Code, "message", res.Message)...)
	}

	if d.journal == nil {
		return
	}
	entry := Entry{
		ID:      id,
		Action:  action,
		Command: cmd.Name(),
		Result:  res,
		Match:   d.env.Tournament.Current(),
	}
	if err := d.journal.Record(ctx, entry); err != nil {
		d.logger.Warn("journal write failed", "command", cmd.Name(), "error", err)
	}
}
