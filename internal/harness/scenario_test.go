package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebridge/internal/match"
)

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Test scenario for validation"
config:
  match:
    format: FT3
    player1: {name: Alice}
    player2: {name: Bob}
remote:
  scoreboard: true
  failures:
    - op: set_settings
      target: p1_score
      error: locked
steps:
  - intent: connect
  - intent: score p1 +1
    expect: {ok: false, code: OBS_ERROR}
assertions:
  - type: match
    expect: {p1_score: 1}
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "Test scenario for validation", scenario.Description)
	assert.True(t, scenario.Remote.Scoreboard)
	require.Len(t, scenario.Remote.Failures, 1)
	assert.Equal(t, "p1_score", scenario.Remote.Failures[0].Target)
	require.Len(t, scenario.Steps, 2)
	assert.Nil(t, scenario.Steps[0].Expect)
	require.NotNil(t, scenario.Steps[1].Expect)
	assert.Equal(t, "OBS_ERROR", scenario.Steps[1].Expect.Code)

	cfg, err := scenario.configFor()
	require.NoError(t, err)
	assert.Equal(t, match.FirstTo3, cfg.Match.Format)
	assert.Equal(t, "Alice", cfg.Match.Player1.Name)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_NoConfigUsesDefaults(t *testing.T) {
	scenario, err := ParseScenario([]byte(`
name: defaults
description: "No config block"
steps:
  - intent: connect
assertions:
  - type: history
    undo: 0
`))
	require.NoError(t, err)

	cfg, err := scenario.configFor()
	require.NoError(t, err)
	assert.Equal(t, "Player 1", cfg.Match.Player1.Name)
	assert.Equal(t, match.FirstTo2, cfg.Match.Format)
}

func TestLoadScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing name",
			content: `
description: "x"
steps: [{intent: connect}]
assertions: [{type: scene}]
`,
			wantErr: "name is required",
		},
		{
			name: "missing description",
			content: `
name: x
steps: [{intent: connect}]
assertions: [{type: scene}]
`,
			wantErr: "description is required",
		},
		{
			name: "missing steps",
			content: `
name: x
description: "x"
assertions: [{type: scene}]
`,
			wantErr: "steps list is required",
		},
		{
			name: "missing assertions",
			content: `
name: x
description: "x"
steps: [{intent: connect}]
`,
			wantErr: "assertions list is required",
		},
		{
			name: "malformed intent",
			content: `
name: x
description: "x"
steps: [{intent: "score p3 +1"}]
assertions: [{type: scene}]
`,
			wantErr: "steps[0]",
		},
		{
			name: "unknown intent",
			content: `
name: x
description: "x"
steps: [{intent: "teleport"}]
assertions: [{type: scene}]
`,
			wantErr: "unknown intent",
		},
		{
			name: "failure without error",
			content: `
name: x
description: "x"
steps:
  - intent: connect
    fail: [{op: connect}]
assertions: [{type: scene}]
`,
			wantErr: "steps[0].fail[0]: error is required",
		},
		{
			name: "remote field without kind",
			content: `
name: x
description: "x"
remote:
  fields: [{name: timer}]
steps: [{intent: connect}]
assertions: [{type: scene}]
`,
			wantErr: "remote.fields[0]",
		},
		{
			name: "config rejected by schema",
			content: `
name: x
description: "x"
config:
  score_min: -1
steps: [{intent: connect}]
assertions: [{type: scene}]
`,
			wantErr: "config",
		},
		{
			name: "unknown state key",
			content: `
name: x
description: "x"
steps: [{intent: connect}]
assertions:
  - type: match
    expect: {p3_score: 1}
`,
			wantErr: `unknown state key "p3_score"`,
		},
		{
			name: "history without depths",
			content: `
name: x
description: "x"
steps: [{intent: connect}]
assertions: [{type: history}]
`,
			wantErr: "undo or redo is required",
		},
		{
			name: "write_count without op",
			content: `
name: x
description: "x"
steps: [{intent: connect}]
assertions: [{type: write_count, count: 1}]
`,
			wantErr: "op is required for write_count",
		},
		{
			name: "negative write_count",
			content: `
name: x
description: "x"
steps: [{intent: connect}]
assertions: [{type: write_count, op: set_settings, count: -1}]
`,
			wantErr: "count must be non-negative",
		},
		{
			name: "unknown assertion type",
			content: `
name: x
description: "x"
steps: [{intent: connect}]
assertions: [{type: trace_contains}]
`,
			wantErr: `unknown assertion type "trace_contains"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	_, err := ParseScenario([]byte("name: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_UnknownFieldsRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "typo at top level",
			content: `
name: x
description: "x"
steps: [{intent: connect}]
assertion: [{type: scene}]
`,
		},
		{
			name: "typo in step",
			content: `
name: x
description: "x"
steps: [{intnet: connect}]
assertions: [{type: scene}]
`,
		},
		{
			name: "typo in expect",
			content: `
name: x
description: "x"
steps: [{intent: connect, expect: {okay: true}}]
assertions: [{type: scene}]
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.content))
			require.Error(t, err)
		})
	}
}

func TestLoadScenario_WriteCountZeroAllowed(t *testing.T) {
	_, err := ParseScenario([]byte(`
name: x
description: "x"
steps: [{intent: connect}]
assertions: [{type: write_count, op: switch_scene, count: 0}]
`))
	require.NoError(t, err)
}

func TestAssertionConstants(t *testing.T) {
	assert.Equal(t, "match", AssertMatch)
	assert.Equal(t, "field", AssertField)
	assert.Equal(t, "scene", AssertScene)
	assert.Equal(t, "history", AssertHistory)
	assert.Equal(t, "write_count", AssertWriteCount)
	assert.Equal(t, "journal", AssertJournal)
}

// TestLoadExampleScenarios validates the scenario files in testdata/scenarios.
// These serve as documentation and regression tests.
func TestLoadExampleScenarios(t *testing.T) {
	tests := []struct {
		file           string
		wantSteps      int
		wantAssertions int
	}{
		{file: "score_and_undo.yaml", wantSteps: 8, wantAssertions: 5},
		{file: "scene_switch.yaml", wantSteps: 6, wantAssertions: 3},
		{file: "failed_write_keeps_local_state.yaml", wantSteps: 3, wantAssertions: 5},
		{file: "next_match.yaml", wantSteps: 4, wantAssertions: 4},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			scenario, err := LoadScenario(filepath.Join("testdata", "scenarios", tt.file))
			require.NoError(t, err)

			assert.Len(t, scenario.Steps, tt.wantSteps)
			assert.Len(t, scenario.Assertions, tt.wantAssertions)
		})
	}
}
