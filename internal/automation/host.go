package automation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/scorebridge/internal/command"
	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/gateway"
	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/overlay"
	"github.com/roach88/scorebridge/internal/remote"
	"github.com/roach88/scorebridge/internal/result"
)

// Host exposes intent-level operations over one session.
type Host struct {
	cfg        config.Config
	logger     *slog.Logger
	tournament *match.Tournament
	gateway    *gateway.Gateway
	sync       *overlay.Sync
	dispatcher *command.Dispatcher
}

type hostOptions struct {
	logger   *slog.Logger
	journal  command.Journal
	profiles command.ProfileSource
	ids      command.IDGenerator
}

// Option configures a Host.
type Option func(*hostOptions)

// WithLogger sets the logger shared by every layer. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *hostOptions) {
		o.logger = l
	}
}

// WithJournal records every dispatch in j.
func WithJournal(j command.Journal) Option {
	return func(o *hostOptions) {
		o.journal = j
	}
}

// WithProfiles replaces the profile directory. Default: the profiles table
// of the configuration.
func WithProfiles(p command.ProfileSource) Option {
	return func(o *hostOptions) {
		o.profiles = p
	}
}

// WithIDGenerator sets the history record id source.
func WithIDGenerator(g command.IDGenerator) Option {
	return func(o *hostOptions) {
		o.ids = g
	}
}

// New builds a session from cfg against the control surface r.
// The initial match and queue come from cfg; nothing is written to the
// surface until the first intent.
func New(cfg config.Config, r remote.Capability, opts ...Option) *Host {
	o := hostOptions{logger: slog.Default(), profiles: cfg}
	for _, opt := range opts {
		opt(&o)
	}

	gw := gateway.New(r,
		gateway.WithLogger(o.logger),
		gateway.WithStrict(cfg.Strict),
		gateway.WithDefaultTimeout(cfg.DefaultTimeout),
		gateway.WithConnectTimeout(cfg.ConnectTimeout),
	)
	tournament := match.NewTournament(cfg.Match, match.NewQueue(cfg.Queue...))
	sync := overlay.New(gw, cfg.FieldNames.Overlay(), cfg.OverlayCountries(), o.logger)

	env := &command.Env{
		Tournament: tournament,
		Gateway:    gw,
		Overlay:    sync,
		Profiles:   o.profiles,
		Logger:     o.logger,
		Settings: command.Settings{
			ScoreMin:       cfg.ScoreMin,
			ScoreMax:       cfg.ScoreMax,
			ReadBackOnSwap: cfg.ReadBackOnSwap,
		},
	}

	dopts := []command.DispatcherOption{command.WithHistoryLimit(cfg.HistoryLimit)}
	if o.journal != nil {
		dopts = append(dopts, command.WithJournal(o.journal))
	}
	if o.ids != nil {
		dopts = append(dopts, command.WithIDGenerator(o.ids))
	}

	return &Host{
		cfg:        cfg,
		logger:     o.logger,
		tournament: tournament,
		gateway:    gw,
		sync:       sync,
		dispatcher: command.NewDispatcher(env, dopts...),
	}
}

// Dispatcher returns the command dispatcher, for history inspection.
func (h *Host) Dispatcher() *command.Dispatcher {
	return h.dispatcher
}

// Gateway returns the session's gateway.
func (h *Host) Gateway() *gateway.Gateway {
	return h.gateway
}

// Current returns a copy of the current match.
func (h *Host) Current() match.MatchState {
	return h.tournament.Current()
}

// Scene returns the last scene switched to, or "" if none.
func (h *Host) Scene() string {
	return h.tournament.Scene()
}

// Queued returns the queued matches, head first.
func (h *Host) Queued() []match.MatchState {
	return h.tournament.Queue().Snapshot()
}

// Connect opens the session with the configured URL and credential and
// warms the field cache.
func (h *Host) Connect(ctx context.Context) result.Result {
	return h.guard(func() result.Result {
		c := h.cfg.Connection
		if err := h.gateway.Connect(ctx, c.URL, c.Password, h.cfg.ConnectTimeout); err != nil {
			return result.FromError("connect", err)
		}
		n, err := h.gateway.Refresh(ctx)
		if err != nil {
			return result.FromError("connected, field refresh failed", err)
		}
		return result.Okf("connected to %s, %d fields", c.URL, n)
	})
}

// Disconnect closes the session.
func (h *Host) Disconnect(ctx context.Context) result.Result {
	return h.guard(func() result.Result {
		return result.FromError("disconnected", h.gateway.Disconnect(ctx))
	})
}

// SwitchScene switches to the scene mapped from key in scene_names, or to
// key itself if it has no mapping.
func (h *Host) SwitchScene(ctx context.Context, key string) result.Result {
	name := h.cfg.Scene(key)
	if name == "" {
		return invalid("scene name is empty")
	}
	return h.execute(ctx, &command.SwitchScene{Scene: name})
}

// AdjustScore adds delta to one player's score.
func (h *Host) AdjustScore(ctx context.Context, side match.Side, delta int) result.Result {
	if !side.Valid() {
		return invalid(fmt.Sprintf("invalid side %v", side))
	}
	return h.execute(ctx, &command.AdjustScore{Side: side, Delta: delta})
}

// SwapPlayers exchanges the two players.
func (h *Host) SwapPlayers(ctx context.Context) result.Result {
	return h.execute(ctx, &command.SwapPlayers{})
}

// ResetMatch zeroes both scores.
func (h *Host) ResetMatch(ctx context.Context) result.Result {
	return h.execute(ctx, &command.ResetMatch{})
}

// LoadNext replaces the current match with the head of the queue.
func (h *Host) LoadNext(ctx context.Context) result.Result {
	return h.execute(ctx, &command.LoadNext{})
}

// Undo reverts the most recent command.
func (h *Host) Undo(ctx context.Context) result.Result {
	return h.execute(ctx, &command.UndoLast{Dispatcher: h.dispatcher})
}

// Redo re-applies the most recently undone command.
func (h *Host) Redo(ctx context.Context) result.Result {
	return h.execute(ctx, &command.RedoLast{Dispatcher: h.dispatcher})
}

// SetPlayer replaces one player's identity, keeping the score.
func (h *Host) SetPlayer(ctx context.Context, side match.Side, info match.PlayerInfo) result.Result {
	if !side.Valid() {
		return invalid(fmt.Sprintf("invalid side %v", side))
	}
	if info.Name == "" {
		return invalid("player name is empty")
	}
	return h.execute(ctx, &command.SetPlayer{Side: side, Info: info})
}

// ApplyProfile assigns a stored profile to one side.
func (h *Host) ApplyProfile(ctx context.Context, side match.Side, id string) result.Result {
	if !side.Valid() {
		return invalid(fmt.Sprintf("invalid side %v", side))
	}
	if id == "" {
		return invalid("profile id is empty")
	}
	return h.execute(ctx, &command.ApplyProfile{Side: side, ProfileID: id})
}

// Enqueue appends a match to the queue. It is not an undoable command.
func (h *Host) Enqueue(m match.MatchState) result.Result {
	if !m.Format.Valid() {
		return invalid("queued match needs a format")
	}
	h.tournament.Queue().Enqueue(m)
	h.logger.Info("match queued", "round", m.RoundLabel, "queued", h.tournament.Queue().Len())
	return result.Okf("queued %s (%d waiting)", m.RoundLabel, h.tournament.Queue().Len())
}

// Sync pushes the whole current match to the overlay again, for example
// after the operator fixed a field by hand or after a failed write.
func (h *Host) Sync(ctx context.Context) result.Result {
	return h.guard(func() result.Result {
		return result.FromError("overlay synced", h.sync.ApplyFullMatch(ctx, h.tournament.Current()))
	})
}

func (h *Host) execute(ctx context.Context, cmd command.Command) result.Result {
	return h.guard(func() result.Result {
		return h.dispatcher.Execute(ctx, cmd)
	})
}

// guard turns a strict-mode gateway panic into a failed Result. The gateway
// has already logged the fault.
func (h *Host) guard(fn func() result.Result) (res result.Result) {
	var err error
	func() {
		defer gateway.Recover(&err)
		res = fn()
	}()
	if err != nil {
		return result.FromError("aborted", err)
	}
	return res
}

func invalid(msg string) result.Result {
	return result.Fail(result.InvalidArgument, msg, nil)
}
