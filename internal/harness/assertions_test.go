package harness

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebridge/internal/automation"
	"github.com/roach88/scorebridge/internal/command"
	"github.com/roach88/scorebridge/internal/config"
	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/remote"
	"github.com/roach88/scorebridge/internal/result"
	"github.com/roach88/scorebridge/internal/store"
	"github.com/roach88/scorebridge/internal/testutil"
)

// newAssertionContext connects a host to a fresh scoreboard and scores
// p1 once.
func newAssertionContext(t *testing.T) (*AssertionContext, *Result) {
	t.Helper()
	ctx := context.Background()

	st, err := store.Open(":memory:", store.WithClock(testutil.NewDeterministicClock()))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.Default()
	cfg.Connection.URL = DefaultURL
	cfg.Match = match.MatchState{
		RoundLabel: "Top 8",
		Format:     match.BestOf5,
		Player1:    match.PlayerInfo{Name: "Alice", Country: "fr"},
		Player2:    match.PlayerInfo{Name: "Bob"},
	}
	surface := testutil.NewScoreboard()
	host := automation.New(cfg, surface,
		automation.WithLogger(testutil.QuietLogger()),
		automation.WithJournal(st),
	)

	res := NewResult()
	for _, intent := range []string{"connect", "score p1 +1", "scene Break"} {
		surface.ResetWrites()
		out := host.Exec(ctx, intent)
		require.True(t, out.OK, out.String())
		res.AddStep(intent, out.OK, string(out.Code), surface.Writes())
	}

	return &AssertionContext{Ctx: ctx, Host: host, Surface: surface, Store: st}, res
}

func TestEvaluateAssertions_AllPass(t *testing.T) {
	actx, res := newAssertionContext(t)

	failures := EvaluateAssertions(res, []Assertion{
		{Type: AssertMatch, Expect: map[string]any{
			"round_label": "Top 8",
			"format":      "best-of-5",
			"scene":       "Break",
			"queue_len":   0,
			"p1_name":     "Alice",
			"p1_country":  "fr",
			"p1_score":    1,
			"p2_score":    0,
			"p2_team":     nil,
		}},
		{Type: AssertField, Field: "p1_score", Text: "1"},
		{Type: AssertScene, Scene: "Break"},
		{Type: AssertHistory, Undo: intPtr(2), Redo: intPtr(0)},
		{Type: AssertWriteCount, Op: remote.OpSetSettings, Target: "p2_score", Count: 1},
		{Type: AssertWriteCount, Op: remote.OpSwitchScene, Count: 1},
		{Type: AssertJournal, Count: 2, Command: "switch-scene"},
	}, actx)

	assert.Empty(t, failures)
}

func TestEvaluateAssertions_SomeFail(t *testing.T) {
	actx, res := newAssertionContext(t)

	failures := EvaluateAssertions(res, []Assertion{
		{Type: AssertMatch, Expect: map[string]any{"p1_score": 2, "p2_name": "Bob"}},
		{Type: AssertField, Field: "p1_score", Text: "1"},
		{Type: AssertField, Field: "timer", Text: "0:00"},
		{Type: AssertScene, Scene: "In Game"},
		{Type: AssertHistory, Redo: intPtr(1)},
		{Type: AssertWriteCount, Op: remote.OpSetSettings, Count: 99},
		{Type: AssertJournal, Count: 2, Command: "adjust-score"},
	}, actx)

	require.Len(t, failures, 6)
	assert.Contains(t, failures[0], "assertions[0]")
	assert.Contains(t, failures[0], `p1_score="1" (want "2")`)
	assert.Contains(t, failures[1], "assertions[2]")
	assert.Contains(t, failures[1], "field not found")
	assert.Contains(t, failures[2], `scene "Break"`)
	assert.Contains(t, failures[3], "redo=1")
	assert.Contains(t, failures[4], "written 2 times")
	assert.Contains(t, failures[5], `last journal command "adjust-score"`)
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	actx, res := newAssertionContext(t)

	failures := EvaluateAssertions(res, []Assertion{{Type: "trace_order"}}, actx)

	require.Len(t, failures, 1)
	assert.Contains(t, failures[0], `unknown assertion type "trace_order"`)
}

func TestAssertWriteCount_AnyTarget(t *testing.T) {
	trace := []TraceEvent{
		{Step: 1, Writes: []remote.Write{
			{Op: remote.OpSetSettings, Target: "p1_score", Key: "text", Value: "1"},
			{Op: remote.OpSetSettings, Target: "p2_score", Key: "text", Value: "0"},
		}},
		{Step: 2, Writes: []remote.Write{
			{Op: remote.OpSwitchScene, Target: "Break"},
		}},
	}

	assert.NoError(t, assertWriteCount(trace, Assertion{Op: remote.OpSetSettings, Count: 2}))
	assert.NoError(t, assertWriteCount(trace, Assertion{Op: remote.OpSetSettings, Target: "p1_score", Count: 1}))
	assert.NoError(t, assertWriteCount(trace, Assertion{Op: remote.OpSetItemEnabled, Count: 0}))
	assert.Error(t, assertWriteCount(trace, Assertion{Op: remote.OpSwitchScene, Count: 0}))
}

func TestExpectedValue(t *testing.T) {
	assert.Equal(t, "3", expectedValue("p1_score", 3))
	assert.Equal(t, "", expectedValue("p1_team", nil))
	assert.Equal(t, "FT3", expectedValue("format", "first-to-3"))
	assert.Equal(t, "BO7", expectedValue("format", "bo7"))
	assert.Equal(t, "weird", expectedValue("format", "weird"))
}

func TestCheckExpect(t *testing.T) {
	failed := result.Fail(result.NotFound, `profile "x" not found`, nil)

	assert.Empty(t, checkExpect(Step{}, result.Ok("fine")))
	assert.Contains(t, checkExpect(Step{}, failed), "ok = false, want true")
	assert.Empty(t, checkExpect(Step{Expect: &ExpectClause{OK: false, Code: "NOT_FOUND", MessageContains: "not found"}}, failed))
	assert.Contains(t, checkExpect(Step{Expect: &ExpectClause{OK: false}}, failed), `code = "NOT_FOUND", want ""`)
	assert.Contains(t, checkExpect(Step{Expect: &ExpectClause{OK: false}}, result.Ok("fine")), "ok = true, want false")
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertWriteCount,
		Expected: "set_settings on p1_score written 1 times",
		Actual:   "written 0 times",
		Trace: []TraceEvent{
			{Step: 1, Intent: "connect", OK: true},
			{Step: 2, Intent: "score p1 +1", OK: false, Code: string(result.ObsError),
				Writes: []remote.Write{{Op: remote.OpSetSettings, Target: "p2_score", Key: "text", Value: "0"}}},
		},
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: write_count")
	assert.Contains(t, msg, "Expected: set_settings on p1_score written 1 times")
	assert.Contains(t, msg, "Actual: written 0 times")
	assert.Contains(t, msg, "[1] connect (ok, 0 writes)")
	assert.Contains(t, msg, "[2] score p1 +1 (failed OBS_ERROR, 1 writes)")
}

func TestStateValues_QueueLength(t *testing.T) {
	cfg := config.Default()
	cfg.Queue = []match.MatchState{
		{RoundLabel: "Losers Final", Format: match.FirstTo3},
	}
	host := automation.New(cfg, testutil.NewScoreboard(), automation.WithLogger(testutil.QuietLogger()))

	values := stateValues(host)
	assert.Equal(t, "1", values["queue_len"])
	assert.Equal(t, "Player 1", values["p1_name"])
	assert.Equal(t, "FT2", values["format"])
	assert.Equal(t, "", values["scene"])

	for key := range knownStateKeys {
		_, ok := values[key]
		assert.True(t, ok, "state key %s has no value", key)
	}
}

var _ command.Journal = (*store.Store)(nil)
