package command

import (
	"context"

	"github.com/roach88/scorebridge/internal/result"
)

// meta marks commands that only replay history.
type meta interface {
	replaysHistory()
}

// UndoLast triggers Dispatcher.Undo. It is never recorded in history.
type UndoLast struct {
	Dispatcher *Dispatcher
}

// Name implements Command.
func (c *UndoLast) Name() string { return "undo" }

// RecordInHistory implements Command.
func (c *UndoLast) RecordInHistory() bool { return false }

// Execute implements Command.
func (c *UndoLast) Execute(ctx context.Context, _ *Env) result.Result {
	return c.Dispatcher.Undo(ctx)
}

func (*UndoLast) replaysHistory() {}

// Undo implements Command.
func (c *UndoLast) Undo(context.Context, *Env) result.Result {
	return result.Fail(result.CodeNone, "undo trigger is not reversible", nil)
}

// RedoLast triggers Dispatcher.Redo. It is never recorded in history.
type RedoLast struct {
	Dispatcher *Dispatcher
}

// Name implements Command.
func (c *RedoLast) Name() string { return "redo" }

// RecordInHistory implements Command.
func (c *RedoLast) RecordInHistory() bool { return false }

// Execute implements Command.
func (c *RedoLast) Execute(ctx context.Context, _ *Env) result.Result {
	return c.Dispatcher.Redo(ctx)
}

func (*RedoLast) replaysHistory() {}

// Undo implements Command.
func (c *RedoLast) Undo(context.Context, *Env) result.Result {
	return result.Fail(result.CodeNone, "redo trigger is not reversible", nil)
}
