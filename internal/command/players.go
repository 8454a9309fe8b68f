package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/result"
)

// SwapPlayers exchanges Player1 and Player2.
//
// With Settings.ReadBackOnSwap the current overlay texts are read first so
// edits made directly on the control surface survive the swap; if any read
// is missing the local state is used instead.
type SwapPlayers struct {
	snapshot
}

// Name implements Command.
func (c *SwapPlayers) Name() string { return "swap-players" }

// RecordInHistory implements Command.
func (c *SwapPlayers) RecordInHistory() bool { return true }

// Execute implements Command.
func (c *SwapPlayers) Execute(ctx context.Context, env *Env) result.Result {
	cur := c.capture(env.Tournament)

	base := cur
	if env.Settings.ReadBackOnSwap {
		p1, p2, ok := env.Overlay.ReadPlayers(ctx, cur)
		if ok {
			base = cur.WithPlayer(match.P1, p1).WithPlayer(match.P2, p2)
		} else {
			env.Logger.Debug("overlay read-back incomplete, swapping local state")
		}
	}

	next := base.Swapped()
	env.Tournament.SetCurrent(next)

	if err := errors.Join(env.Overlay.ApplyPlayers(ctx, next), env.Overlay.ApplyScores(ctx, next)); err != nil {
		return result.FromError("swap players", err)
	}
	return result.Okf("swapped: %s vs %s", next.Player1.Name, next.Player2.Name)
}

// Undo implements Command.
func (c *SwapPlayers) Undo(ctx context.Context, env *Env) result.Result {
	if !c.captured {
		return notExecuted(c.Name())
	}
	env.Tournament.SetCurrent(c.before)
	if err := errors.Join(env.Overlay.ApplyPlayers(ctx, c.before), env.Overlay.ApplyScores(ctx, c.before)); err != nil {
		return result.FromError("restore players", err)
	}
	return result.Ok("swap reverted")
}

// SetPlayer replaces one player's identity (name, team, country,
// characters) and keeps that player's current score.
type SetPlayer struct {
	Side match.Side
	Info match.PlayerInfo

	snapshot
}

// Name implements Command.
func (c *SetPlayer) Name() string { return "set-player" }

// RecordInHistory implements Command.
func (c *SetPlayer) RecordInHistory() bool { return true }

// Execute implements Command.
func (c *SetPlayer) Execute(ctx context.Context, env *Env) result.Result {
	if !c.Side.Valid() {
		return invalidSide(c.Name(), c.Side)
	}
	if c.Info.Name == "" {
		return result.Fail(result.InvalidArgument, "set-player: player name is empty", nil)
	}
	cur := c.capture(env.Tournament)
	p := cur.Player(c.Side).WithIdentity(c.Info)
	next := cur.WithPlayer(c.Side, p)
	env.Tournament.SetCurrent(next)

	if err := env.Overlay.ApplyPlayers(ctx, next); err != nil {
		return result.FromError(fmt.Sprintf("set %s", c.Side), err)
	}
	return result.Okf("%s is now %s", c.Side, p.Name)
}

// Undo implements Command.
func (c *SetPlayer) Undo(ctx context.Context, env *Env) result.Result {
	if !c.captured {
		return notExecuted(c.Name())
	}
	env.Tournament.SetCurrent(c.before)
	if err := env.Overlay.ApplyPlayers(ctx, c.before); err != nil {
		return result.FromError("restore players", err)
	}
	return result.Okf("%s restored to %s", c.Side, c.before.Player(c.Side).Name)
}

// ApplyProfile loads a stored profile and assigns it to one side the way
// SetPlayer does.
type ApplyProfile struct {
	Side      match.Side
	ProfileID string

	set *SetPlayer
}

// Name implements Command.
func (c *ApplyProfile) Name() string { return "apply-profile" }

// RecordInHistory implements Command.
func (c *ApplyProfile) RecordInHistory() bool { return true }

// Execute implements Command.
func (c *ApplyProfile) Execute(ctx context.Context, env *Env) result.Result {
	if c.ProfileID == "" {
		return result.Fail(result.InvalidArgument, "apply-profile: profile id is empty", nil)
	}
	if env.Profiles == nil {
		return result.Fail(result.CodeNone, "apply-profile: no profile directory configured", nil)
	}
	info, found, err := env.Profiles.Profile(ctx, c.ProfileID)
	if err != nil {
		return result.Fail(result.CodeNone, fmt.Sprintf("load profile %q: %v", c.ProfileID, err), err)
	}
	if !found {
		return result.Fail(result.CodeNone, fmt.Sprintf("profile %q not found", c.ProfileID), nil)
	}

	c.set = &SetPlayer{Side: c.Side, Info: info}
	return c.set.Execute(ctx, env)
}

// Undo implements Command.
func (c *ApplyProfile) Undo(ctx context.Context, env *Env) result.Result {
	if c.set == nil {
		return notExecuted(c.Name())
	}
	return c.set.Undo(ctx, env)
}
