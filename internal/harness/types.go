package harness

import (
	"fmt"

	"github.com/roach88/scorebridge/internal/remote"
)

// TraceEvent is the outcome of one step: the intent, its Result and the
// remote writes it caused, in order.
type TraceEvent struct {
	Step   int            `json:"step"`
	Intent string         `json:"intent"`
	OK     bool           `json:"ok"`
	Code   string         `json:"code,omitempty"`
	Writes []remote.Write `json:"writes"`
}

// Summary renders the event on one line: "[step] intent (status, n writes)".
func (e TraceEvent) Summary() string {
	status := "ok"
	if !e.OK {
		status = "failed " + e.Code
	}
	return fmt.Sprintf("[%d] %s (%s, %d writes)", e.Step, e.Intent, status, len(e.Writes))
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step matched its expectation and every assertion held.
	Pass bool `json:"pass"`

	// Trace contains one event per step, in order.
	// Used for write_count assertions and golden comparison.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Messages holds each step's Result message, for diagnostics only.
	Messages []string `json:"messages,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep appends a step outcome to the trace.
func (r *Result) AddStep(intent string, ok bool, code string, writes []remote.Write) {
	if writes == nil {
		writes = []remote.Write{}
	}
	r.Trace = append(r.Trace, TraceEvent{
		Step:   len(r.Trace) + 1,
		Intent: intent,
		OK:     ok,
		Code:   code,
		Writes: writes,
	})
}
