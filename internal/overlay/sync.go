// Package overlay translates match state into field writes on the control
// surface.
//
// Writes are grouped into batches (round label, players, scores). Every write
// in a batch is attempted even after an earlier one failed; the batch fails
// if any write failed, and the joined error keeps each write's code.
package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/scorebridge/internal/gateway"
	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/remote"
)

// FieldNames maps overlay slots to remote field names.
// An empty name leaves that slot unwired and it is skipped.
type FieldNames struct {
	P1Name    string
	P1Team    string
	P1Country string
	P1Flag    string
	P1Score   string
	P2Name    string
	P2Team    string
	P2Country string
	P2Flag    string
	P2Score   string
	Round     string
	Format    string
}

type slot struct {
	name, team, country, flag, score string
}

func (f FieldNames) slot(side match.Side) slot {
	if side == match.P2 {
		return slot{f.P2Name, f.P2Team, f.P2Country, f.P2Flag, f.P2Score}
	}
	return slot{f.P1Name, f.P1Team, f.P1Country, f.P1Flag, f.P1Score}
}

// Country is the display data of one country identifier.
type Country struct {
	Acronym string
	Flag    string // image path; empty means no flag is shown
}

// Countries resolves country identifiers.
type Countries map[string]Country

// Lookup returns the country for id. Unknown ids display the id itself
// and no flag.
func (c Countries) Lookup(id string) Country {
	if country, ok := c[id]; ok {
		if country.Acronym == "" {
			country.Acronym = id
		}
		return country
	}
	return Country{Acronym: id}
}

// Writer is the subset of the gateway the protocol needs.
type Writer interface {
	SetText(ctx context.Context, name, value string, opts ...gateway.CallOption) error
	SetImageFile(ctx context.Context, name, path string, opts ...gateway.CallOption) error
	FieldSettings(ctx context.Context, name string, opts ...gateway.CallOption) (remote.Settings, error)
}

// Sync composes gateway writes into apply operations.
type Sync struct {
	w         Writer
	fields    FieldNames
	countries Countries
	logger    *slog.Logger
}

// New creates a Sync writing through w.
func New(w Writer, fields FieldNames, countries Countries, logger *slog.Logger) *Sync {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sync{w: w, fields: fields, countries: countries, logger: logger}
}

// Fields returns the configured field names.
func (s *Sync) Fields() FieldNames {
	return s.fields
}

// ApplyFullMatch pushes the round label, both players and both scores.
// All three batches run even if an earlier one failed.
func (s *Sync) ApplyFullMatch(ctx context.Context, m match.MatchState) error {
	return errors.Join(
		s.ApplyRoundLabel(ctx, m),
		s.ApplyPlayers(ctx, m),
		s.ApplyScores(ctx, m),
	)
}

// ApplyRoundLabel writes the round label and the format label.
func (s *Sync) ApplyRoundLabel(ctx context.Context, m match.MatchState) error {
	b := s.batch(ctx, "round")
	b.text(s.fields.Round, m.RoundLabel)
	b.text(s.fields.Format, m.Format.Label())
	return b.done()
}

// ApplyPlayers writes name, team, country acronym and flag for both players.
func (s *Sync) ApplyPlayers(ctx context.Context, m match.MatchState) error {
	b := s.batch(ctx, "players")
	for _, side := range []match.Side{match.P1, match.P2} {
		p := m.Player(side)
		sl := s.fields.slot(side)
		country := s.countries.Lookup(p.Country)

		b.text(sl.name, p.Name)
		b.text(sl.team, p.Team)
		b.text(sl.country, cases.Upper(language.Und).String(country.Acronym))
		if country.Flag != "" {
			b.image(sl.flag, country.Flag)
		}
	}
	return b.done()
}

// ApplyScores writes both scores.
func (s *Sync) ApplyScores(ctx context.Context, m match.MatchState) error {
	b := s.batch(ctx, "scores")
	b.text(s.fields.P1Score, strconv.Itoa(m.Player1.Score))
	b.text(s.fields.P2Score, strconv.Itoa(m.Player2.Score))
	return b.done()
}

// ReadPlayers reads both players' name, team and score back from the
// overlay. Country and characters are taken from current. ok is false if
// a required slot is unwired or any read fails or does not parse; callers
// then fall back to local state.
func (s *Sync) ReadPlayers(ctx context.Context, current match.MatchState) (p1, p2 match.PlayerInfo, ok bool) {
	p1, ok1 := s.readPlayer(ctx, match.P1, current.Player1)
	p2, ok2 := s.readPlayer(ctx, match.P2, current.Player2)
	return p1, p2, ok1 && ok2
}

func (s *Sync) readPlayer(ctx context.Context, side match.Side, local match.PlayerInfo) (match.PlayerInfo, bool) {
	sl := s.fields.slot(side)
	if sl.name == "" || sl.score == "" {
		return local, false
	}

	name, ok := s.readText(ctx, sl.name)
	if !ok {
		return local, false
	}
	scoreText, ok := s.readText(ctx, sl.score)
	if !ok {
		return local, false
	}
	score, err := strconv.Atoi(strings.TrimSpace(scoreText))
	if err != nil {
		s.logger.Warn("overlay score is not a number", "field", sl.score, "text", scoreText)
		return local, false
	}

	team := local.Team
	if sl.team != "" {
		if team, ok = s.readText(ctx, sl.team); !ok {
			return local, false
		}
	}

	out := local.WithScore(score)
	out.Name = name
	out.Team = team
	return out, true
}

func (s *Sync) readText(ctx context.Context, field string) (string, bool) {
	settings, err := s.w.FieldSettings(ctx, field, gateway.Lenient())
	if err != nil {
		return "", false
	}
	text, ok := settings["text"].(string)
	if !ok {
		return "", false
	}
	return norm.NFC.String(text), true
}

// batch collects the outcome of independent writes.
type batch struct {
	s         *Sync
	ctx       context.Context
	name      string
	attempted int
	errs      []error
}

func (s *Sync) batch(ctx context.Context, name string) *batch {
	return &batch{s: s, ctx: ctx, name: name}
}

func (b *batch) text(field, value string) {
	if field == "" {
		return
	}
	b.attempted++
	if err := b.s.w.SetText(b.ctx, field, norm.NFC.String(value)); err != nil {
		b.errs = append(b.errs, err)
	}
}

func (b *batch) image(field, path string) {
	if field == "" {
		return
	}
	b.attempted++
	if err := b.s.w.SetImageFile(b.ctx, field, path); err != nil {
		b.errs = append(b.errs, err)
	}
}

func (b *batch) done() error {
	if len(b.errs) == 0 {
		b.s.logger.Debug("overlay batch applied", "batch", b.name, "writes", b.attempted)
		return nil
	}
	b.s.logger.Warn("overlay batch incomplete",
		"batch", b.name,
		"failed", len(b.errs),
		"attempted", b.attempted,
	)
	return fmt.Errorf("apply %s: %d of %d writes failed: %w", b.name, len(b.errs), b.attempted, errors.Join(b.errs...))
}
