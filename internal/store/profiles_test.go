package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebridge/internal/command"
	"github.com/roach88/scorebridge/internal/match"
)

var _ command.ProfileSource = (*Store)(nil)
var _ command.Journal = (*Store)(nil)

func TestProfile_UpsertAndLoad(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	info := match.PlayerInfo{Name: "Daigo", Team: "BST", Country: "jp", Characters: []string{"Ryu", "Ken"}, Score: 3}
	require.NoError(t, s.UpsertProfile(ctx, "daigo", info))

	got, found, err := s.Profile(ctx, "daigo")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Daigo", got.Name)
	assert.Equal(t, []string{"Ryu", "Ken"}, got.Characters)
	assert.Equal(t, 0, got.Score, "scores are not stored")
}

func TestProfile_UpsertReplaces(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.UpsertProfile(ctx, "p", match.PlayerInfo{Name: "Old", Characters: []string{"A"}}))
	require.NoError(t, s.UpsertProfile(ctx, "p", match.PlayerInfo{Name: "New"}))

	got, found, err := s.Profile(ctx, "p")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "New", got.Name)
	assert.Nil(t, got.Characters)

	all, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProfile_Unknown(t *testing.T) {
	s := createTestStore(t)

	_, found, err := s.Profile(context.Background(), "ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestProfile_Validation(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	assert.Error(t, s.UpsertProfile(ctx, "", match.PlayerInfo{Name: "x"}))
	assert.Error(t, s.UpsertProfile(ctx, "x", match.PlayerInfo{}))
}

func TestListProfiles_OrderedByID(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"zed", "amy", "Mia"} {
		require.NoError(t, s.UpsertProfile(ctx, id, match.PlayerInfo{Name: id}))
	}

	all, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	ids := make([]string, len(all))
	for i, p := range all {
		ids[i] = p.ID
	}
	assert.Equal(t, []string{"Mia", "amy", "zed"}, ids)
}

func TestDeleteProfile(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.UpsertProfile(ctx, "p", match.PlayerInfo{Name: "P"}))

	deleted, err := s.DeleteProfile(ctx, "p")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteProfile(ctx, "p")
	require.NoError(t, err)
	assert.False(t, deleted)
}
