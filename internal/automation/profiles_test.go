package automation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebridge/internal/match"
)

type staticProfiles map[string]match.PlayerInfo

func (s staticProfiles) Profile(_ context.Context, id string) (match.PlayerInfo, bool, error) {
	info, ok := s[id]
	return info, ok, nil
}

type brokenProfiles struct{}

func (brokenProfiles) Profile(context.Context, string) (match.PlayerInfo, bool, error) {
	return match.PlayerInfo{}, false, errors.New("database is locked")
}

func TestProfileChain_FirstHitWins(t *testing.T) {
	chain := ProfileChain{
		staticProfiles{"daigo": {Name: "Daigo (db)"}},
		nil,
		staticProfiles{"daigo": {Name: "Daigo"}, "tokido": {Name: "Tokido"}},
	}
	ctx := context.Background()

	info, found, err := chain.Profile(ctx, "daigo")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Daigo (db)", info.Name)

	info, found, err = chain.Profile(ctx, "tokido")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Tokido", info.Name)

	_, found, err = chain.Profile(ctx, "nobody")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProfileChain_ErrorStopsLookup(t *testing.T) {
	chain := ProfileChain{brokenProfiles{}, staticProfiles{"daigo": {Name: "Daigo"}}}

	_, found, err := chain.Profile(context.Background(), "daigo")
	require.Error(t, err)
	assert.False(t, found)
}
