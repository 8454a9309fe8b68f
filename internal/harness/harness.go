package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/roach88/scorebridge/internal/automation"
	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/remote"
	"github.com/roach88/scorebridge/internal/result"
	"github.com/roach88/scorebridge/internal/store"
	"github.com/roach88/scorebridge/internal/testutil"
)

// DefaultURL is the connection URL used when a scenario's config has none.
const DefaultURL = "mem://scenario"

// Harness is the test execution engine.
// It runs scenarios with deterministic record ids and journal timestamps.
type Harness struct {
	surface *remote.Memory
	store   *store.Store
	host    *automation.Host
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh control surface and a fresh in-memory
// database for isolation.
//
// Execution flow:
// 1. Build the control surface from scenario.Remote
// 2. Open an in-memory store, seed it with the configured profiles
// 3. Start an automation host journaling into the store
// 4. Execute steps, recording each step's writes and checking expectations
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenario.configFor()
	if err != nil {
		return nil, fmt.Errorf("scenario config: %w", err)
	}
	if cfg.Connection.URL == "" {
		cfg.Connection.URL = DefaultURL
	}

	st, err := store.Open(":memory:", store.WithClock(testutil.NewDeterministicClock()))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := seedProfiles(ctx, st, cfg); err != nil {
		return nil, err
	}

	surface, err := buildSurface(scenario.Remote)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		surface: surface,
		store:   st,
		logger:  logger,
		host: automation.New(cfg, surface,
			automation.WithLogger(logger),
			automation.WithJournal(st),
			automation.WithProfiles(st),
			automation.WithIDGenerator(testutil.NewSequenceGenerator("")),
		),
	}

	res := NewResult()
	h.executeSteps(ctx, scenario.Steps, res)

	actx := &AssertionContext{
		Ctx:     ctx,
		Host:    h.host,
		Surface: surface,
		Store:   st,
	}
	for _, msg := range EvaluateAssertions(res, scenario.Assertions, actx) {
		res.AddError(msg)
	}

	return res, nil
}

// seedProfiles copies the configured profiles into the store, in id order.
func seedProfiles(ctx context.Context, st *store.Store, cfg config.Config) error {
	ids := make([]string, 0, len(cfg.Profiles))
	for id := range cfg.Profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := st.UpsertProfile(ctx, id, cfg.Profiles[id]); err != nil {
			return fmt.Errorf("seed profiles: %w", err)
		}
	}
	return nil
}

func buildSurface(setup RemoteSetup) (*remote.Memory, error) {
	surface := remote.NewMemory()
	if setup.Scoreboard {
		surface = testutil.NewScoreboard()
	}
	for _, f := range setup.Fields {
		surface.AddField(f.Name, f.Kind, remote.Settings(f.Settings))
	}
	for _, s := range setup.Scenes {
		items := make([]remote.SceneItem, len(s.Items))
		for i, it := range s.Items {
			items[i] = remote.SceneItem{ID: it.ID, Name: it.Name, Enabled: it.Enabled}
		}
		surface.AddScene(s.Name, items...)
	}
	injectFailures(surface, setup.Failures)
	surface.SuppressReadiness(setup.SuppressReadiness)
	return surface, nil
}

func injectFailures(surface *remote.Memory, failures []Failure) {
	for _, f := range failures {
		surface.Fail(f.Op, f.Target, errors.New(f.Error))
	}
}

// executeSteps runs all steps and validates expect clauses.
//
// Each step:
// 1. Applies the surface changes it declares (faults, dropped session)
// 2. Clears the surface's write log
// 3. Executes the intent through the host
// 4. Records the Result and the writes it caused in the trace
// 5. Validates the expect clause
func (h *Harness) executeSteps(ctx context.Context, steps []Step, res *Result) {
	for i, step := range steps {
		if step.ClearFailures {
			h.surface.ClearFailures()
		}
		injectFailures(h.surface, step.Fail)
		if step.DropConnection {
			h.surface.DropConnection()
		}
		h.surface.ResetWrites()

		out := h.host.Exec(ctx, step.Intent)

		res.AddStep(strings.TrimSpace(step.Intent), out.OK, string(out.Code), h.surface.Writes())
		res.Messages = append(res.Messages, out.Message)

		if msg := checkExpect(step, out); msg != "" {
			res.AddError(fmt.Sprintf("steps[%d] %q: %s", i, step.Intent, msg))
		}

		h.logger.Info("step completed",
			"step", i,
			"intent", step.Intent,
			"ok", out.OK,
			"code", out.Code,
		)
	}
}

// checkExpect compares a step's Result with its expect clause and returns
// a description of the mismatch, or "".
func checkExpect(step Step, out result.Result) string {
	want := ExpectClause{OK: true}
	if step.Expect != nil {
		want = *step.Expect
	}

	var problems []string
	if out.OK != want.OK {
		problems = append(problems, fmt.Sprintf("ok = %t, want %t (%s)", out.OK, want.OK, out.String()))
	}
	if !want.OK && string(out.Code) != want.Code {
		problems = append(problems, fmt.Sprintf("code = %q, want %q", out.Code, want.Code))
	}
	if want.MessageContains != "" && !strings.Contains(out.Message, want.MessageContains) {
		problems = append(problems, fmt.Sprintf("message %q does not contain %q", out.Message, want.MessageContains))
	}
	return strings.Join(problems, "; ")
}
