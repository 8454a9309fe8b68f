package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/scorebridge/internal/gateway"
	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/overlay"
	"github.com/roach88/scorebridge/internal/result"
)

// Command is a named, possibly reversible unit of operator intent.
type Command interface {
	// Name identifies the command in logs and the journal.
	Name() string

	// Execute performs the action, capturing undo data first.
	Execute(ctx context.Context, env *Env) result.Result

	// Undo reverts the action from the captured data. It fails without
	// touching state if nothing was captured.
	Undo(ctx context.Context, env *Env) result.Result

	// RecordInHistory reports whether a successful Execute is pushed onto
	// the undo stack.
	RecordInHistory() bool
}

// ProfileSource resolves stored player profiles. found is false for an
// unknown id.
type ProfileSource interface {
	Profile(ctx context.Context, id string) (info match.PlayerInfo, found bool, err error)
}

// Settings is the static configuration commands consult.
type Settings struct {
	ScoreMin       int
	ScoreMax       int  // extra cap below WinsRequired; <= 0 disables it
	ReadBackOnSwap bool // re-read player fields from the overlay before swapping
}

// Env is the shared execution context of every command.
type Env struct {
	Tournament *match.Tournament
	Gateway    *gateway.Gateway
	Overlay    *overlay.Sync
	Profiles   ProfileSource
	Logger     *slog.Logger
	Settings   Settings
}

// snapshot holds the match state captured before a command mutated it.
type snapshot struct {
	before   match.MatchState
	captured bool
}

func (s *snapshot) capture(t *match.Tournament) match.MatchState {
	s.before = t.Current()
	s.captured = true
	return s.before
}

// notExecuted is the Undo result of a command that never captured state.
func notExecuted(name string) result.Result {
	return result.Fail(result.CodeNone, fmt.Sprintf("%s: nothing captured, command was never executed", name), nil)
}

func invalidSide(name string, side match.Side) result.Result {
	return result.Fail(result.InvalidArgument, fmt.Sprintf("%s: invalid side %v", name, side), nil)
}
