package services

import (
	"context"
	"testing"

	"github.com/bingoo-app/tournament-engine/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// finishedTournament builds a COMPLETED tournament where the given
// users joined in order and hold the given scores.
func finishedTournament(f *fixture, id string, entryFee int64, scores map[string]int64, order ...string) *models.Tournament {
	tournament := registeringTournament(id, entryFee, 10)
	f.addTournament(tournament)
	for _, userID := range order {
		f.addUser(userID, entryFee)
		if _, err := f.entries.Join(context.Background(), id, userID); err != nil {
			panic(err)
		}
	}
	tournament.Status = models.StatusInProgress
	for _, userID := range order {
		if delta := scores[userID]; delta > 0 {
			if _, err := f.scores.AddScore(context.Background(), id, userID, delta); err != nil {
				panic(err)
			}
		}
	}
	tournament.Status = models.StatusCompleted
	return tournament
}

func TestDistributePrizesCreditsWinners(t *testing.T) {
	f := newFixture()
	tournament := finishedTournament(f, "t1", 0,
		map[string]int64{"alice": 30, "bob": 70, "carol": 50},
		"alice", "bob", "carol")

	err := f.rewards.Settle(context.Background(), tournament)
	require.NoError(t, err)

	// bob ranked first, carol second; alice third gets nothing.
	assert.Equal(t, int64(500), f.userPoints("bob"))
	assert.Equal(t, int64(200), f.userPoints("carol"))
	assert.Equal(t, int64(0), f.userPoints("alice"))
	require.NotNil(t, tournament.PayoutCompletedAt)

	records, err := f.rewards.ListPayouts(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, models.PayoutKindPrize, rec.Kind)
	}
}

func TestDistributePrizesSecondRunCreditsNothing(t *testing.T) {
	f := newFixture()
	tournament := finishedTournament(f, "t1", 0,
		map[string]int64{"alice": 30, "bob": 70},
		"alice", "bob")

	require.NoError(t, f.rewards.Settle(context.Background(), tournament))
	require.NoError(t, f.rewards.Settle(context.Background(), tournament))

	assert.Equal(t, int64(500), f.userPoints("bob"))
	assert.Equal(t, int64(200), f.userPoints("alice"))

	records, err := f.rewards.ListPayouts(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDistributePrizesSkipsUnoccupiedTiers(t *testing.T) {
	f := newFixture()
	tournament := finishedTournament(f, "t1", 0,
		map[string]int64{"alice": 10},
		"alice")
	tournament.Prizes = []models.PrizeTier{
		{Rank: 1, Points: 500},
		{Rank: 2, Points: 200},
		{Rank: 3, Points: 100},
	}

	err := f.rewards.Settle(context.Background(), tournament)
	require.NoError(t, err)

	assert.Equal(t, int64(500), f.userPoints("alice"))
	records, err := f.rewards.ListPayouts(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
	require.NotNil(t, tournament.PayoutCompletedAt)
}

func TestDistributePrizesPartialFailureLeavesMarkerUnset(t *testing.T) {
	f := newFixture()
	tournament := finishedTournament(f, "t1", 0,
		map[string]int64{"alice": 30, "bob": 70},
		"alice", "bob")
	f.users.adjustErr["bob"] = assert.AnError

	err := f.rewards.Settle(context.Background(), tournament)
	require.Error(t, err)

	// The failing credit must not block the other winner, and the
	// settlement marker stays unset so the next sweep retries.
	assert.Equal(t, int64(200), f.userPoints("alice"))
	assert.Equal(t, int64(0), f.userPoints("bob"))
	assert.Nil(t, tournament.PayoutCompletedAt)
}

func TestRefundEntriesOnCancellation(t *testing.T) {
	f := newFixture()
	tournament := registeringTournament("t1", 100, 10)
	f.addTournament(tournament)
	for _, userID := range []string{"alice", "bob"} {
		f.addUser(userID, 100)
		_, err := f.entries.Join(context.Background(), "t1", userID)
		require.NoError(t, err)
	}
	tournament.Status = models.StatusCancelled

	err := f.rewards.Settle(context.Background(), tournament)
	require.NoError(t, err)

	assert.Equal(t, int64(100), f.userPoints("alice"))
	assert.Equal(t, int64(100), f.userPoints("bob"))
	require.NotNil(t, tournament.PayoutCompletedAt)

	records, err := f.rewards.ListPayouts(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, models.PayoutKindRefund, rec.Kind)
		assert.Equal(t, 0, rec.Rank)
		assert.Equal(t, int64(100), rec.Points)
	}
}

func TestRefundEntriesSecondRunCreditsNothing(t *testing.T) {
	f := newFixture()
	tournament := registeringTournament("t1", 100, 10)
	f.addTournament(tournament)
	f.addUser("alice", 100)
	_, err := f.entries.Join(context.Background(), "t1", "alice")
	require.NoError(t, err)
	tournament.Status = models.StatusCancelled

	require.NoError(t, f.rewards.Settle(context.Background(), tournament))
	require.NoError(t, f.rewards.Settle(context.Background(), tournament))

	assert.Equal(t, int64(100), f.userPoints("alice"))
	records, err := f.rewards.ListPayouts(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRefundFreeTournamentOnlyStampsMarker(t *testing.T) {
	f := newFixture()
	tournament := registeringTournament("t1", 0, 10)
	f.addTournament(tournament)
	f.addUser("alice", 0)
	_, err := f.entries.Join(context.Background(), "t1", "alice")
	require.NoError(t, err)
	tournament.Status = models.StatusCancelled

	require.NoError(t, f.rewards.Settle(context.Background(), tournament))

	records, err := f.rewards.ListPayouts(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, records)
	require.NotNil(t, tournament.PayoutCompletedAt)
}

func TestSettleRejectsNonTerminalTournament(t *testing.T) {
	f := newFixture()
	tournament := registeringTournament("t1", 0, 10)
	f.addTournament(tournament)

	err := f.rewards.Settle(context.Background(), tournament)
	assert.Error(t, err)
}

func TestListPayoutsUnknownTournament(t *testing.T) {
	f := newFixture()

	_, err := f.rewards.ListPayouts(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}
