package harness

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot captures the complete trace for a scenario execution.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// marshal renders the snapshot as indented JSON with a trailing newline.
// Field order is fixed by the struct definitions, so output is deterministic.
func (s *TraceSnapshot) marshal() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// SnapshotJSON renders a result's trace in golden file form.
func SnapshotJSON(scenarioName string, result *Result) ([]byte, error) {
	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        result.Trace,
	}
	return snapshot.marshal()
}

// GoldenStatus is the outcome of CheckGoldenFile.
type GoldenStatus string

const (
	GoldenAbsent   GoldenStatus = "absent"
	GoldenMatch    GoldenStatus = "match"
	GoldenMismatch GoldenStatus = "mismatch"
	GoldenUpdated  GoldenStatus = "updated"
)

// CheckGoldenFile compares the trace snapshot of result with the golden file
// at path, or rewrites the file when update is set. A missing file reports
// GoldenAbsent.
//
// This is the non-testing counterpart of AssertGolden, for callers that have
// no *testing.T.
func CheckGoldenFile(path, scenarioName string, result *Result, update bool) (GoldenStatus, error) {
	got, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return "", fmt.Errorf("marshal trace: %w", err)
	}

	if update {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return "", fmt.Errorf("create golden directory: %w", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			return "", fmt.Errorf("write golden file: %w", err)
		}
		return GoldenUpdated, nil
	}

	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return GoldenAbsent, nil
	}
	if err != nil {
		return "", fmt.Errorf("read golden file: %w", err)
	}
	if !bytes.Equal(want, got) {
		return GoldenMismatch, nil
	}
	return GoldenMatch, nil
}

// RunWithGolden executes a scenario and compares the trace against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if trace doesn't match golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result's trace against a golden file.
// This is useful when you've already run a scenario and want to compare
// the result against a golden file without re-running.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	traceJSON, err := SnapshotJSON(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, traceJSON)

	return nil
}
