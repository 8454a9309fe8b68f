package command

import (
	"context"

	"github.com/roach88/scorebridge/internal/result"
)

// SwitchScene switches the program output to Scene.
type SwitchScene struct {
	Scene string

	prev     string
	captured bool
}

// Name implements Command.
func (c *SwitchScene) Name() string { return "switch-scene" }

// RecordInHistory implements Command.
func (c *SwitchScene) RecordInHistory() bool { return true }

// Execute implements Command.
func (c *SwitchScene) Execute(ctx context.Context, env *Env) result.Result {
	if c.Scene == "" {
		return result.Fail(result.InvalidArgument, "switch-scene: scene name is empty", nil)
	}
	c.prev = env.Tournament.Scene()
	c.captured = true
	env.Tournament.SetScene(c.Scene)

	if err := env.Gateway.SwitchScene(ctx, c.Scene); err != nil {
		return result.FromError("switch to "+c.Scene, err)
	}
	return result.Okf("switched to %s", c.Scene)
}

// Undo implements Command. An unknown previous scene is restored locally
// only; there is nothing to switch back to.
func (c *SwitchScene) Undo(ctx context.Context, env *Env) result.Result {
	if !c.captured {
		return notExecuted(c.Name())
	}
	env.Tournament.SetScene(c.prev)
	if c.prev == "" {
		return result.Ok("scene cleared")
	}
	if err := env.Gateway.SwitchScene(ctx, c.prev); err != nil {
		return result.FromError("switch back to "+c.prev, err)
	}
	return result.Okf("switched back to %s", c.prev)
}
