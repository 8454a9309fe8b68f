package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebridge/internal/gateway"
	"github.com/roach88/scorebridge/internal/match"
	"github.com/roach88/scorebridge/internal/remote"
	"github.com/roach88/scorebridge/internal/result"
)

func TestSwapPlayers_SwapsAndUndoes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.d.Execute(ctx, &SwapPlayers{}).OK)
	cur := f.env.Tournament.Current()
	assert.Equal(t, "Bob", cur.Player1.Name)
	assert.Equal(t, 2, cur.Player1.Score)
	assert.Equal(t, "Bob", f.text(t, "p1_name"))
	assert.Equal(t, "Alice", f.text(t, "p2_name"))
	assert.Equal(t, "FRA", f.text(t, "p2_country"))

	require.True(t, f.d.Undo(ctx).OK)
	assert.True(t, grandFinal().Equal(f.env.Tournament.Current()))
	assert.Equal(t, "Alice", f.text(t, "p1_name"))
}

func TestSwapPlayers_ReadBackPicksUpSurfaceEdits(t *testing.T) {
	f := newFixture(t)
	f.env.Settings.ReadBackOnSwap = true
	ctx := context.Background()

	require.NoError(t, f.env.Overlay.ApplyFullMatch(ctx, grandFinal()))
	// Edited directly on the control surface.
	require.NoError(t, f.surface.SetFieldSettings(ctx, "p1_name", remote.Settings{"text": "Alicia"}, true))

	require.True(t, f.d.Execute(ctx, &SwapPlayers{}).OK)

	cur := f.env.Tournament.Current()
	assert.Equal(t, "Alicia", cur.Player2.Name)
	assert.Equal(t, "fr", cur.Player2.Country, "country is kept from local state")
	assert.Equal(t, "Alicia", f.text(t, "p2_name"))
}

func TestSwapPlayers_ReadBackFallsBackToLocalState(t *testing.T) {
	f := newFixture(t)
	f.env.Settings.ReadBackOnSwap = true

	// Score fields are still empty, so the read-back does not parse.
	require.True(t, f.d.Execute(context.Background(), &SwapPlayers{}).OK)
	assert.True(t, grandFinal().Swapped().Equal(f.env.Tournament.Current()))
}

func TestSwapPlayers_StrictReadBackFailureFallsBack(t *testing.T) {
	f := newFixture(t, gateway.WithStrict(true))
	f.env.Settings.ReadBackOnSwap = true
	ctx := context.Background()
	require.NoError(t, f.env.Overlay.ApplyFullMatch(ctx, grandFinal()))
	f.surface.Fail(remote.OpGetSettings, "p1_name", errors.New("busy"))

	var res result.Result
	require.NotPanics(t, func() { res = f.d.Execute(ctx, &SwapPlayers{}) })
	require.True(t, res.OK, res.String())
	assert.True(t, grandFinal().Swapped().Equal(f.env.Tournament.Current()))
}

func TestSwapPlayers_Involution(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.True(t, f.d.Execute(ctx, &SwapPlayers{}).OK)
	require.True(t, f.d.Execute(ctx, &SwapPlayers{}).OK)
	assert.True(t, grandFinal().Equal(f.env.Tournament.Current()))
	assert.Equal(t, 2, f.d.UndoDepth())
}

func TestSetPlayer_KeepsScore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.d.Execute(ctx, &SetPlayer{Side: match.P2, Info: match.PlayerInfo{Name: "Eve", Team: "GRN", Score: 99}})
	require.True(t, res.OK, res.String())

	p2 := f.env.Tournament.Current().Player2
	assert.Equal(t, "Eve", p2.Name)
	assert.Equal(t, 2, p2.Score)
	assert.Equal(t, "GRN", f.text(t, "p2_team"))

	require.True(t, f.d.Undo(ctx).OK)
	assert.Equal(t, "Bob", f.env.Tournament.Current().Player2.Name)
	assert.Equal(t, "Bob", f.text(t, "p2_name"))
}

func TestSetPlayer_EmptyName(t *testing.T) {
	f := newFixture(t)

	res := f.d.Execute(context.Background(), &SetPlayer{Side: match.P1})
	assert.Equal(t, result.InvalidArgument, res.Code)
	assert.Empty(t, f.surface.Writes())
}

func TestApplyProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res := f.d.Execute(ctx, &ApplyProfile{Side: match.P1, ProfileID: "daigo"})
	require.True(t, res.OK, res.String())

	p1 := f.env.Tournament.Current().Player1
	assert.Equal(t, "Daigo", p1.Name)
	assert.Equal(t, []string{"Ryu"}, p1.Characters)
	assert.Equal(t, 1, p1.Score)
	assert.Equal(t, "Daigo", f.text(t, "p1_name"))
	assert.Equal(t, "JP", f.text(t, "p1_country"), "unknown country shows the upper-cased id")

	require.True(t, f.d.Undo(ctx).OK)
	assert.True(t, grandFinal().Equal(f.env.Tournament.Current()))
}

func TestApplyProfile_Failures(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		profiles ProfileSource
		code     result.Code
	}{
		{"empty id", "", profiles{}, result.InvalidArgument},
		{"unknown id", "nobody", profiles{}, result.CodeNone},
		{"no directory", "daigo", nil, result.CodeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.env.Profiles = tt.profiles

			res := f.d.Execute(context.Background(), &ApplyProfile{Side: match.P1, ProfileID: tt.id})
			assert.False(t, res.OK)
			assert.Equal(t, tt.code, res.Code)
			assert.Equal(t, 0, f.d.UndoDepth())
			assert.True(t, grandFinal().Equal(f.env.Tournament.Current()))
		})
	}
}
