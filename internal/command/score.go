package command

import (
	"context"
	"fmt"

	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/result"
)

// AdjustScore adds Delta to one player's score, clamped into
// [ScoreMin, WinsRequired].
type AdjustScore struct {
	Side  match.Side
	Delta int

	snapshot
}

// Name implements Command.
func (c *AdjustScore) Name() string { return "adjust-score" }

// RecordInHistory implements Command.
func (c *AdjustScore) RecordInHistory() bool { return true }

// Execute implements Command.
func (c *AdjustScore) Execute(ctx context.Context, env *Env) result.Result {
	if !c.Side.Valid() {
		return invalidSide(c.Name(), c.Side)
	}
	cur := c.capture(env.Tournament)
	p := cur.Player(c.Side)
	score := match.AddScore(p.Score, c.Delta, env.Settings.ScoreMin, env.Settings.ScoreMax, cur.Format)
	next := cur.WithPlayer(c.Side, p.WithScore(score))
	env.Tournament.SetCurrent(next)

	if err := env.Overlay.ApplyScores(ctx, next); err != nil {
		return result.FromError(fmt.Sprintf("%s score %+d", c.Side, c.Delta), err)
	}
	return result.Okf("%s score %d -> %d", c.Side, p.Score, score)
}

// Undo implements Command.
func (c *AdjustScore) Undo(ctx context.Context, env *Env) result.Result {
	if !c.captured {
		return notExecuted(c.Name())
	}
	env.Tournament.SetCurrent(c.before)
	if err := env.Overlay.ApplyScores(ctx, c.before); err != nil {
		return result.FromError("restore scores", err)
	}
	return result.Okf("%s score restored to %d", c.Side, c.before.Player(c.Side).Score)
}

// ResetMatch zeroes both scores (clamped to ScoreMin).
type ResetMatch struct {
	snapshot
}

// Name implements Command.
func (c *ResetMatch) Name() string { return "reset-match" }

// RecordInHistory implements Command.
func (c *ResetMatch) RecordInHistory() bool { return true }

// Execute implements Command.
func (c *ResetMatch) Execute(ctx context.Context, env *Env) result.Result {
	cur := c.capture(env.Tournament)
	zero := match.ClampScore(0, env.Settings.ScoreMin, env.Settings.ScoreMax, cur.Format)
	next := cur.WithScores(zero, zero)
	env.Tournament.SetCurrent(next)

	if err := env.Overlay.ApplyScores(ctx, next); err != nil {
		return result.FromError("reset scores", err)
	}
	return result.Ok("scores reset")
}

// Undo implements Command.
func (c *ResetMatch) Undo(ctx context.Context, env *Env) result.Result {
	if !c.captured {
		return notExecuted(c.Name())
	}
	env.Tournament.SetCurrent(c.before)
	if err := env.Overlay.ApplyScores(ctx, c.before); err != nil {
		return result.FromError("restore scores", err)
	}
	return result.Okf("scores restored to %d-%d", c.before.Player1.Score, c.before.Player2.Score)
}
