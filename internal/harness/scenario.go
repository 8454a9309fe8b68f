package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/scorebridge/internal/automation"
	"github.com/roach88/scorebridge/internal/config"
)

// Scenario defines an overlay automation test.
// A scenario builds a control surface, starts a session from an inline
// configuration, feeds it intent lines and asserts on the final state and
// the remote writes each intent produced.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is an inline configuration document, same schema as a
	// configuration file. Omitted keys take their defaults.
	Config yaml.Node `yaml:"config,omitempty"`

	// Remote describes the in-memory control surface.
	Remote RemoteSetup `yaml:"remote"`

	// Steps are executed in order, one intent each.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final state and the trace.
	// Supported types: match, field, scene, history, write_count, journal
	Assertions []Assertion `yaml:"assertions"`
}

// RemoteSetup describes the control surface a scenario runs against.
type RemoteSetup struct {
	// Scoreboard starts from the standard layout: one text field per overlay
	// slot, two flag images and the scenes Standby, In Game and Break.
	Scoreboard bool `yaml:"scoreboard,omitempty"`

	// Fields are added (or replace scoreboard fields of the same name).
	Fields []FieldSetup `yaml:"fields,omitempty"`

	// Scenes are added after the scoreboard scenes.
	Scenes []SceneSetup `yaml:"scenes,omitempty"`

	// Failures are injected before the first step.
	Failures []Failure `yaml:"failures,omitempty"`

	// SuppressReadiness makes connect hang until its timeout.
	SuppressReadiness bool `yaml:"suppress_readiness,omitempty"`
}

// FieldSetup is one remote field.
type FieldSetup struct {
	Name     string         `yaml:"name"`
	Kind     string         `yaml:"kind"`
	Settings map[string]any `yaml:"settings"`
}

// SceneSetup is one remote scene.
type SceneSetup struct {
	Name  string      `yaml:"name"`
	Items []ItemSetup `yaml:"items,omitempty"`
}

// ItemSetup is one scene item.
type ItemSetup struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Enabled bool   `yaml:"enabled"`
}

// Failure makes every call of Op against Target fail with Error.
// An empty Target matches any target.
type Failure struct {
	Op     string `yaml:"op"`
	Target string `yaml:"target,omitempty"`
	Error  string `yaml:"error"`
}

// Step is one intent plus the surface changes made just before it.
type Step struct {
	// Intent is an intent line, for example "score p1 +1".
	Intent string `yaml:"intent"`

	// ClearFailures removes every injected fault before the intent.
	ClearFailures bool `yaml:"clear_failures,omitempty"`

	// Fail injects faults before the intent (after ClearFailures).
	Fail []Failure `yaml:"fail,omitempty"`

	// DropConnection makes the surface close the session before the intent.
	DropConnection bool `yaml:"drop_connection,omitempty"`

	// Expect checks the intent's Result. If nil, the intent must succeed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected Result of a step.
type ExpectClause struct {
	// OK is the expected outcome.
	OK bool `yaml:"ok"`

	// Code is the expected failure code; empty matches only CodeNone.
	Code string `yaml:"code,omitempty"`

	// MessageContains must be a substring of the Result message.
	MessageContains string `yaml:"message_contains,omitempty"`
}

// Assertion validates final state or the trace.
type Assertion struct {
	// Type specifies the assertion type:
	// - "match": current match state matches Expect (flat keys)
	// - "field": remote field Field shows Text
	// - "scene": the surface's current scene is Scene
	// - "history": undo/redo depths equal Undo/Redo
	// - "write_count": Op against Target was written Count times
	// - "journal": the journal holds Count rows, the last for Command
	Type string `yaml:"type"`

	// Expect maps state keys to values (used by match). Keys: round_label,
	// format, scene, queue_len and p1_/p2_ name, team, country, score.
	Expect map[string]any `yaml:"expect,omitempty"`

	// Field and Text are used by field.
	Field string `yaml:"field,omitempty"`
	Text  string `yaml:"text,omitempty"`

	// Scene is used by scene.
	Scene string `yaml:"scene,omitempty"`

	// Undo and Redo are used by history.
	Undo *int `yaml:"undo,omitempty"`
	Redo *int `yaml:"redo,omitempty"`

	// Op and Target are used by write_count (empty Target: any).
	Op     string `yaml:"op,omitempty"`
	Target string `yaml:"target,omitempty"`

	// Count is used by write_count and journal.
	Count int `yaml:"count,omitempty"`

	// Command is used by journal (last row's command; optional).
	Command string `yaml:"command,omitempty"`
}

// Assertion type constants.
const (
	AssertMatch      = "match"
	AssertField      = "field"
	AssertScene      = "scene"
	AssertHistory    = "history"
	AssertWriteCount = "write_count"
	AssertJournal    = "journal"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates a scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// configFor decodes the inline configuration through the regular config
// loader, so scenarios get the same schema checks as files.
func (s *Scenario) configFor() (config.Config, error) {
	if s.Config.Kind == 0 {
		return config.Default(), nil
	}
	data, err := yaml.Marshal(&s.Config)
	if err != nil {
		return config.Config{}, fmt.Errorf("encode config: %w", err)
	}
	return config.Parse(data)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	if _, err := s.configFor(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	for i, f := range s.Remote.Fields {
		if f.Name == "" || f.Kind == "" {
			return fmt.Errorf("remote.fields[%d]: name and kind are required", i)
		}
	}
	for i, f := range s.Remote.Failures {
		if err := validateFailure(f); err != nil {
			return fmt.Errorf("remote.failures[%d]: %w", i, err)
		}
	}

	for i, step := range s.Steps {
		if _, err := automation.ParseIntent(step.Intent); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		for j, f := range step.Fail {
			if err := validateFailure(f); err != nil {
				return fmt.Errorf("steps[%d].fail[%d]: %w", i, j, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateFailure(f Failure) error {
	if f.Op == "" {
		return fmt.Errorf("op is required")
	}
	if f.Error == "" {
		return fmt.Errorf("error is required")
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertMatch:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for match", index)
		}
		for key := range a.Expect {
			if !knownStateKeys[key] {
				return fmt.Errorf("assertions[%d]: unknown state key %q", index, key)
			}
		}
	case AssertField:
		if a.Field == "" {
			return fmt.Errorf("assertions[%d]: field is required for field", index)
		}
	case AssertScene:
		// An empty scene asserts that no scene was ever switched to.
	case AssertHistory:
		if a.Undo == nil && a.Redo == nil {
			return fmt.Errorf("assertions[%d]: undo or redo is required for history", index)
		}
	case AssertWriteCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for write_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for write_count", index)
		}
	case AssertJournal:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for journal", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
