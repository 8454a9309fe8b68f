package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebridge/internal/gateway"
	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/overlay"
	"github.com/roach88/scorebridge/internal/remote"
	"github.com/roach88/scorebridge/internal/testutil"
)

var fields = overlay.FieldNames{
	P1Name: "p1_name", P1Team: "p1_team", P1Country: "p1_country", P1Flag: "p1_flag", P1Score: "p1_score",
	P2Name: "p2_name", P2Team: "p2_team", P2Country: "p2_country", P2Flag: "p2_flag", P2Score: "p2_score",
	Round: "round", Format: "format",
}

func grandFinal() match.MatchState {
	return match.MatchState{
		RoundLabel: "Grand Final",
		Format:     match.BestOf5,
		Player1:    match.PlayerInfo{Name: "Alice", Team: "RED", Country: "fr", Score: 1},
		Player2:    match.PlayerInfo{Name: "Bob", Team: "BLU", Country: "jp", Score: 2},
	}
}

func losersFinal() match.MatchState {
	return match.MatchState{
		RoundLabel: "Losers Final",
		Format:     match.FirstTo3,
		Player1:    match.PlayerInfo{Name: "Carol"},
		Player2:    match.PlayerInfo{Name: "Dave"},
	}
}

type fixture struct {
	surface *remote.Memory
	env     *Env
	d       *Dispatcher
}

type profiles map[string]match.PlayerInfo

func (p profiles) Profile(_ context.Context, id string) (match.PlayerInfo, bool, error) {
	info, ok := p[id]
	return info, ok, nil
}

func newFixture(t *testing.T, gwOpts ...gateway.Option) *fixture {
	t.Helper()
	logger := testutil.QuietLogger()
	surface := testutil.NewScoreboard()
	gw := gateway.New(surface, append([]gateway.Option{gateway.WithLogger(logger)}, gwOpts...)...)
	require.NoError(t, gw.Connect(context.Background(), "ws://localhost:4455", "", time.Second))

	env := &Env{
		Tournament: match.NewTournament(grandFinal(), match.NewQueue(losersFinal())),
		Gateway:    gw,
		Overlay:    overlay.New(gw, fields, overlay.Countries{"fr": {Acronym: "FRA"}}, logger),
		Profiles: profiles{
			"daigo": {Name: "Daigo", Team: "BST", Country: "jp", Characters: []string{"Ryu"}},
		},
		Logger: logger,
	}
	d := NewDispatcher(env, WithIDGenerator(testutil.NewSequenceGenerator("cmd")))
	return &fixture{surface: surface, env: env, d: d}
}

func (f *fixture) text(t *testing.T, field string) string {
	t.Helper()
	v, ok := f.surface.Text(field)
	require.True(t, ok, field)
	return v
}

type memJournal struct {
	entries []Entry
}

func (j *memJournal) Record(_ context.Context, e Entry) error {
	j.entries = append(j.entries, e)
	return nil
}
