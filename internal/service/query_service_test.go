package service

import (
	"context"
	"testing"
	"time"

	"github.com/bm-streak/internal/errors"
	"github.com/bm-streak/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStreak(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.query.GetStreak(ctx, "0xnobody")
	require.NoError(t, err)
	assert.Equal(t, 0, user.Streak)
	assert.Nil(t, user.LastCheckIn)

	f.seed(t, "0xa", 3, 1)
	user, err = f.query.GetStreak(ctx, "0xA")
	require.NoError(t, err)
	assert.Equal(t, 3, user.Streak)
	require.NotNil(t, user.LastCheckIn)

	_, err = f.query.GetStreak(ctx, "")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))

	// Reads never create records
	assert.False(t, f.mr.Exists("bm:streak:0xnobody"))
}

func TestListActiveToday(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "0xtoday", 2, 0)
	f.seed(t, "0xyesterday", 9, 1)
	f.seed(t, "0xold", 1, 40)

	active, err := f.query.ListActiveToday(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "0xtoday", active[0].Address)
	assert.Equal(t, 2, active[0].Streak)
}

func TestGetLeaderboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "0xa", 2, 0)
	f.seed(t, "0xb", 9, 0)
	f.seed(t, "0xc", 5, 1)
	_, err := f.mr.ZAdd("bm:leaderboard", 0, "0xzero")
	require.NoError(t, err)
	_, err = f.mr.ZAdd("bm:leaderboard", -3, "0xneg")
	require.NoError(t, err)

	board, err := f.query.GetLeaderboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, []types.LeaderboardEntry{
		{Address: "0xb", Streak: 9},
		{Address: "0xc", Streak: 5},
		{Address: "0xa", Streak: 2},
	}, board)
}

func TestGetLeaderboard_TiesAreUnordered(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "0xa", 4, 0)
	f.seed(t, "0xb", 4, 0)
	f.seed(t, "0xc", 7, 0)

	board, err := f.query.GetLeaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "0xc", board[0].Address)
	assert.ElementsMatch(t, []string{"0xa", "0xb"}, []string{board[1].Address, board[2].Address})
}

func TestGetSendLimitStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.query.GetSendLimitStatus(ctx, "0xa")
	require.NoError(t, err)
	assert.Equal(t, types.SendLimitStatus{LimitReached: false, Count: 0, Limit: 1}, *status)

	require.NoError(t, f.sendLimits.Save(ctx, "0xa", 1, f.clock.Now()))
	status, err = f.query.GetSendLimitStatus(ctx, "0xa")
	require.NoError(t, err)
	assert.Equal(t, types.SendLimitStatus{LimitReached: true, Count: 1, Limit: 1}, *status)

	// A large count from a previous day reads as zero
	require.NoError(t, f.sendLimits.Save(ctx, "0xa", 7, f.clock.Now().Add(-24*time.Hour)))
	status, err = f.query.GetSendLimitStatus(ctx, "0xa")
	require.NoError(t, err)
	assert.Equal(t, types.SendLimitStatus{LimitReached: false, Count: 0, Limit: 1}, *status)
}

func TestListReceived(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, f.receipts.Prepend(ctx, "0xr", types.Receipt{Sender: "0xs", Timestamp: f.clock.Now()}))
	}

	received, err := f.query.ListReceived(ctx, "0xR", 0)
	require.NoError(t, err)
	assert.Len(t, received, 3)

	received, err = f.query.ListReceived(ctx, "0xr", 2)
	require.NoError(t, err)
	assert.Len(t, received, 2)

	received, err = f.query.ListReceived(ctx, "0xr", 10_000)
	require.NoError(t, err)
	assert.Len(t, received, 3)

	_, err = f.query.ListReceived(ctx, " ", 5)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
