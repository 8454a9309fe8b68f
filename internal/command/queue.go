package command

import (
	"context"

	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/result"
)

// LoadNext replaces the current match with the head of the queue.
//
// Undo restores the previous match and puts the loaded match back at the
// front of the queue, so Undo followed by Redo loads the same match again.
type LoadNext struct {
	snapshot
	loaded *match.MatchState
}

// Name implements Command.
func (c *LoadNext) Name() string { return "load-next" }

// RecordInHistory implements Command.
func (c *LoadNext) RecordInHistory() bool { return true }

// Execute implements Command.
func (c *LoadNext) Execute(ctx context.Context, env *Env) result.Result {
	next, ok := env.Tournament.Queue().TryDequeue()
	if !ok {
		return result.Fail(result.CodeNone, "no queued match to load", nil)
	}
	c.capture(env.Tournament)
	c.loaded = &next
	env.Tournament.SetCurrent(next)

	if err := env.Overlay.ApplyFullMatch(ctx, next); err != nil {
		return result.FromError("apply next match", err)
	}
	return result.Okf("loaded %s: %s vs %s", next.RoundLabel, next.Player1.Name, next.Player2.Name)
}

// Undo implements Command.
func (c *LoadNext) Undo(ctx context.Context, env *Env) result.Result {
	if !c.captured {
		return notExecuted(c.Name())
	}
	env.Tournament.SetCurrent(c.before)
	if c.loaded != nil {
		env.Tournament.Queue().PushFront(*c.loaded)
		c.loaded = nil
	}
	if err := env.Overlay.ApplyFullMatch(ctx, c.before); err != nil {
		return result.FromError("restore previous match", err)
	}
	return result.Okf("restored %s", c.before.RoundLabel)
}
