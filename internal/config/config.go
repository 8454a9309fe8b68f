// Package config loads the scorebridge configuration.
//
// A configuration is a YAML file decoded strictly (unknown keys are errors),
// checked against an embedded CUE schema, and finally overridden by
// SCOREBRIDGE_* environment variables so credentials can stay out of the
// file.
package config

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/roach88/scorebridge/internal/gateway"
	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/overlay"
)

//go:embed schema.cue
var schemaCUE string

// Connection addresses the control surface.
type Connection struct {
	URL      string `yaml:"url" json:"url" env:"SCOREBRIDGE_URL"`
	Password string `yaml:"password" json:"-" env:"SCOREBRIDGE_PASSWORD"`
}

// Country is the display data of a country identifier.
type Country struct {
	Acronym string `yaml:"acronym" json:"acronym,omitempty"`
	Flag    string `yaml:"flag" json:"flag,omitempty"`
}

// Config is the full configuration of an automation session.
type Config struct {
	Connection     Connection                  `yaml:"connection" json:"connection"`
	Strict         bool                        `yaml:"strict" json:"strict" env:"SCOREBRIDGE_STRICT"`
	ScoreMin       int                         `yaml:"score_min" json:"score_min"`
	ScoreMax       int                         `yaml:"score_max" json:"score_max"`
	DefaultTimeout time.Duration               `yaml:"default_timeout" json:"default_timeout"`
	ConnectTimeout time.Duration               `yaml:"connect_timeout" json:"connect_timeout"`
	ReadBackOnSwap bool                        `yaml:"read_back_on_swap" json:"read_back_on_swap"`
	HistoryLimit   int                         `yaml:"history_limit" json:"history_limit"`
	Journal        string                      `yaml:"journal" json:"journal,omitempty" env:"SCOREBRIDGE_JOURNAL"`
	SceneNames     map[string]string           `yaml:"scene_names" json:"scene_names,omitempty"`
	FieldNames     FieldMap                    `yaml:"field_names" json:"field_names"`
	Countries      map[string]Country          `yaml:"countries" json:"countries,omitempty"`
	Match          match.MatchState            `yaml:"match" json:"match"`
	Queue          []match.MatchState          `yaml:"queue" json:"queue,omitempty"`
	Profiles       map[string]match.PlayerInfo `yaml:"profiles" json:"profiles,omitempty"`
}

// FieldMap names the remote field behind each overlay slot.
type FieldMap struct {
	P1Name    string `yaml:"p1_name" json:"p1_name,omitempty"`
	P1Team    string `yaml:"p1_team" json:"p1_team,omitempty"`
	P1Country string `yaml:"p1_country" json:"p1_country,omitempty"`
	P1Flag    string `yaml:"p1_flag" json:"p1_flag,omitempty"`
	P1Score   string `yaml:"p1_score" json:"p1_score,omitempty"`
	P2Name    string `yaml:"p2_name" json:"p2_name,omitempty"`
	P2Team    string `yaml:"p2_team" json:"p2_team,omitempty"`
	P2Country string `yaml:"p2_country" json:"p2_country,omitempty"`
	P2Flag    string `yaml:"p2_flag" json:"p2_flag,omitempty"`
	P2Score   string `yaml:"p2_score" json:"p2_score,omitempty"`
	Round     string `yaml:"round" json:"round,omitempty"`
	Format    string `yaml:"format" json:"format,omitempty"`
}

// Default returns the configuration used for every key a file leaves out.
func Default() Config {
	return Config{
		DefaultTimeout: gateway.DefaultTimeout,
		ConnectTimeout: gateway.DefaultConnectTimeout,
		FieldNames: FieldMap{
			P1Name: "p1_name", P1Team: "p1_team", P1Country: "p1_country", P1Flag: "p1_flag", P1Score: "p1_score",
			P2Name: "p2_name", P2Team: "p2_team", P2Country: "p2_country", P2Flag: "p2_flag", P2Score: "p2_score",
			Round: "round", Format: "format",
		},
		Match: match.MatchState{
			Format:  match.FirstTo2,
			Player1: match.PlayerInfo{Name: "Player 1"},
			Player2: match.PlayerInfo{Name: "Player 2"},
		},
	}
}

// Overlay converts the field map to the overlay's slot table.
func (f FieldMap) Overlay() overlay.FieldNames {
	return overlay.FieldNames{
		P1Name: f.P1Name, P1Team: f.P1Team, P1Country: f.P1Country, P1Flag: f.P1Flag, P1Score: f.P1Score,
		P2Name: f.P2Name, P2Team: f.P2Team, P2Country: f.P2Country, P2Flag: f.P2Flag, P2Score: f.P2Score,
		Round: f.Round, Format: f.Format,
	}
}

// OverlayCountries converts the country table for the overlay.
func (c Config) OverlayCountries() overlay.Countries {
	out := make(overlay.Countries, len(c.Countries))
	for id, country := range c.Countries {
		out[id] = overlay.Country{Acronym: country.Acronym, Flag: country.Flag}
	}
	return out
}

// Scene resolves a logical scene key through SceneNames. Keys without a
// mapping are returned unchanged, so raw scene names work too.
func (c Config) Scene(key string) string {
	if name, ok := c.SceneNames[key]; ok {
		return name
	}
	return key
}

// Profile implements command.ProfileSource over the profiles table of the
// file.
func (c Config) Profile(_ context.Context, id string) (match.PlayerInfo, bool, error) {
	info, ok := c.Profiles[id]
	return info, ok, nil
}

// Validate checks cross-field rules the schema cannot express.
func (c Config) Validate() error {
	var errs []error
	if c.ScoreMax > 0 && c.ScoreMax < c.ScoreMin {
		errs = append(errs, fmt.Errorf("score_max %d is below score_min %d", c.ScoreMax, c.ScoreMin))
	}
	errs = append(errs, c.checkMatch("match", c.Match)...)
	for i, m := range c.Queue {
		errs = append(errs, c.checkMatch(fmt.Sprintf("queue[%d]", i), m)...)
	}
	if c.DefaultTimeout < 0 || c.ConnectTimeout < 0 {
		errs = append(errs, errors.New("timeouts must not be negative"))
	}
	return errors.Join(errs...)
}

func (c Config) checkMatch(where string, m match.MatchState) []error {
	if !m.Format.Valid() {
		return []error{fmt.Errorf("%s: format is required", where)}
	}
	upper := match.ClampScore(math.MaxInt32, c.ScoreMin, c.ScoreMax, m.Format)
	var errs []error
	for _, side := range []match.Side{match.P1, match.P2} {
		score := m.Player(side).Score
		if score < c.ScoreMin || score > upper {
			errs = append(errs, fmt.Errorf("%s: %s score %d is outside [%d, %d]", where, side, score, c.ScoreMin, upper))
		}
	}
	return errs
}

// Load reads and validates the configuration file at path, then applies
// environment overrides.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes, schema-checks and validates a configuration document, then
// applies environment overrides. An empty document yields Default().
func Parse(data []byte) (Config, error) {
	if err := checkSchema(data); err != nil {
		return Config{}, err
	}

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// checkSchema unifies the raw document with #Config.
func checkSchema(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode config: %w", err)
	}
	if raw == nil {
		return nil
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Config"))

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := def.Unify(doc).Validate(cue.Concrete(true)); err != nil {
		return &SchemaError{Details: cueerrors.Details(err, nil)}
	}
	return nil
}

// SchemaError reports a document that does not satisfy the schema.
type SchemaError struct {
	Details string
}

func (e *SchemaError) Error() string {
	return "config schema: " + e.Details
}
