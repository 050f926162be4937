package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaderboardOrdersByScoreDescending(t *testing.T) {
	f := newFixture()
	activeTournamentWithPlayers(f, "t1", "alice", "bob", "carol")

	_, err := f.scores.AddScore(context.Background(), "t1", "bob", 50)
	require.NoError(t, err)
	_, err = f.scores.AddScore(context.Background(), "t1", "alice", 30)
	require.NoError(t, err)
	_, err = f.scores.AddScore(context.Background(), "t1", "carol", 70)
	require.NoError(t, err)

	entries, err := f.leaderboard.GetLeaderboard(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "carol", entries[0].UserID)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, int64(70), entries[0].Score)
	assert.Equal(t, "bob", entries[1].UserID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.Equal(t, "alice", entries[2].UserID)
	assert.Equal(t, 3, entries[2].Rank)
	assert.Equal(t, "player carol", entries[0].DisplayName)
}

func TestLeaderboardTieBrokenByJoinOrder(t *testing.T) {
	f := newFixture()
	activeTournamentWithPlayers(f, "t1", "alice", "bob")

	_, err := f.scores.AddScore(context.Background(), "t1", "bob", 40)
	require.NoError(t, err)
	_, err = f.scores.AddScore(context.Background(), "t1", "alice", 40)
	require.NoError(t, err)

	entries, err := f.leaderboard.GetLeaderboard(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// alice joined first, so she holds the higher rank on equal score.
	assert.Equal(t, "alice", entries[0].UserID)
	assert.Equal(t, "bob", entries[1].UserID)
}

func TestLeaderboardBeforeStartListsZeroScores(t *testing.T) {
	f := newFixture()
	f.addTournament(registeringTournament("t1", 0, 10))
	f.addUser("alice", 0)
	_, err := f.entries.Join(context.Background(), "t1", "alice")
	require.NoError(t, err)

	entries, err := f.leaderboard.GetLeaderboard(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(0), entries[0].Score)
}

func TestLeaderboardEmptyTournament(t *testing.T) {
	f := newFixture()
	f.addTournament(registeringTournament("t1", 0, 10))

	entries, err := f.leaderboard.GetLeaderboard(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLeaderboardUnknownTournament(t *testing.T) {
	f := newFixture()

	_, err := f.leaderboard.GetLeaderboard(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
