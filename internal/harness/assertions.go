package harness

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/scorebridge/internal/automation"
	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/remote"
	"github.com/roach88/scorebridge/internal/store"
)

// knownStateKeys are the flat keys a match assertion may check.
var knownStateKeys = map[string]bool{
	"round_label": true,
	"format":      true,
	"scene":       true,
	"queue_len":   true,
	"p1_name":     true,
	"p1_team":     true,
	"p1_country":  true,
	"p1_score":    true,
	"p2_name":     true,
	"p2_team":     true,
	"p2_country":  true,
	"p2_score":    true,
}

// AssertionContext is everything an assertion may inspect after the last step.
type AssertionContext struct {
	Ctx     context.Context
	Host    *automation.Host
	Surface *remote.Memory
	Store   *store.Store
}

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  %s\n", event.Summary())
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per failure.
func EvaluateAssertions(res *Result, assertions []Assertion, actx *AssertionContext) []string {
	var failures []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertMatch:
			err = assertMatch(res.Trace, a, actx)
		case AssertField:
			err = assertField(res.Trace, a, actx)
		case AssertScene:
			err = assertScene(res.Trace, a, actx)
		case AssertHistory:
			err = assertHistory(res.Trace, a, actx)
		case AssertWriteCount:
			err = assertWriteCount(res.Trace, a)
		case AssertJournal:
			err = assertJournal(res.Trace, a, actx)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			failures = append(failures, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return failures
}

// stateValues flattens the host's current state into knownStateKeys form.
func stateValues(h *automation.Host) map[string]string {
	m := h.Current()
	values := map[string]string{
		"round_label": m.RoundLabel,
		"format":      m.Format.Label(),
		"scene":       h.Scene(),
		"queue_len":   fmt.Sprint(len(h.Queued())),
	}
	for _, side := range []match.Side{match.P1, match.P2} {
		p := m.Player(side)
		prefix := side.String() + "_"
		values[prefix+"name"] = p.Name
		values[prefix+"team"] = p.Team
		values[prefix+"country"] = p.Country
		values[prefix+"score"] = fmt.Sprint(p.Score)
	}
	return values
}

// expectedValue renders a YAML scalar the way stateValues renders state.
// Formats are normalized to their overlay label.
func expectedValue(key string, v any) string {
	s := fmt.Sprint(v)
	if v == nil {
		s = ""
	}
	if key == "format" {
		if f, err := match.ParseFormat(s); err == nil {
			return f.Label()
		}
	}
	return s
}

func assertMatch(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	actual := stateValues(actx.Host)

	keys := make([]string, 0, len(a.Expect))
	for k := range a.Expect {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var mismatches []string
	for _, k := range keys {
		want := expectedValue(k, a.Expect[k])
		if got := actual[k]; got != want {
			mismatches = append(mismatches, fmt.Sprintf("%s=%q (want %q)", k, got, want))
		}
	}
	if len(mismatches) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertMatch,
		Expected: fmt.Sprintf("%v", a.Expect),
		Actual:   strings.Join(mismatches, ", "),
		Trace:    trace,
	}
}

func assertField(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	got, ok := actx.Surface.Text(a.Field)
	if !ok {
		return &AssertionError{
			Type:     AssertField,
			Expected: fmt.Sprintf("field %s showing %q", a.Field, a.Text),
			Actual:   "field not found or has no text",
			Trace:    trace,
		}
	}
	if got != a.Text {
		return &AssertionError{
			Type:     AssertField,
			Expected: fmt.Sprintf("field %s showing %q", a.Field, a.Text),
			Actual:   fmt.Sprintf("%q", got),
			Trace:    trace,
		}
	}
	return nil
}

func assertScene(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	if got := actx.Surface.CurrentScene(); got != a.Scene {
		return &AssertionError{
			Type:     AssertScene,
			Expected: fmt.Sprintf("scene %q", a.Scene),
			Actual:   fmt.Sprintf("scene %q", got),
			Trace:    trace,
		}
	}
	return nil
}

func assertHistory(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	d := actx.Host.Dispatcher()
	undo, redo := d.UndoDepth(), d.RedoDepth()
	if (a.Undo != nil && *a.Undo != undo) || (a.Redo != nil && *a.Redo != redo) {
		return &AssertionError{
			Type:     AssertHistory,
			Expected: fmt.Sprintf("undo=%s redo=%s", optInt(a.Undo), optInt(a.Redo)),
			Actual:   fmt.Sprintf("undo=%d redo=%d (%v)", undo, redo, d.History()),
			Trace:    trace,
		}
	}
	return nil
}

func optInt(p *int) string {
	if p == nil {
		return "any"
	}
	return fmt.Sprint(*p)
}

// assertWriteCount counts writes of Op against Target over the whole trace.
// An empty Target counts every target.
func assertWriteCount(trace []TraceEvent, a Assertion) error {
	count := 0
	for _, event := range trace {
		for _, w := range event.Writes {
			if w.Op == a.Op && (a.Target == "" || w.Target == a.Target) {
				count++
			}
		}
	}
	if count != a.Count {
		target := a.Target
		if target == "" {
			target = "*"
		}
		return &AssertionError{
			Type:     AssertWriteCount,
			Expected: fmt.Sprintf("%s on %s written %d times", a.Op, target, a.Count),
			Actual:   fmt.Sprintf("written %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

func assertJournal(trace []TraceEvent, a Assertion, actx *AssertionContext) error {
	rows, err := actx.Store.ReadJournal(actx.Ctx, 0)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	if len(rows) != a.Count {
		return &AssertionError{
			Type:     AssertJournal,
			Expected: fmt.Sprintf("%d journal rows", a.Count),
			Actual:   fmt.Sprintf("%d journal rows", len(rows)),
			Trace:    trace,
		}
	}
	if a.Command != "" {
		last := ""
		if len(rows) > 0 {
			last = rows[len(rows)-1].Command
		}
		if last != a.Command {
			return &AssertionError{
				Type:     AssertJournal,
				Expected: fmt.Sprintf("last journal command %q", a.Command),
				Actual:   fmt.Sprintf("%q", last),
				Trace:    trace,
			}
		}
	}
	return nil
}
