package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bm-streak/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	// Midday keeps day arithmetic clear of DST transitions
	return &testClock{t: time.Date(2024, 6, 12, 12, 0, 0, 0, time.Local)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) AdvanceDays(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.AddDate(0, 0, n)
}

type sentNotification struct {
	identity, title, body string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(identity, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{identity, title, body})
}

func (n *recordingNotifier) All() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

type fixture struct {
	mr          *miniredis.Miniredis
	clock       *testClock
	notifier    *recordingNotifier
	streaks     *storage.StreakRepository
	sendLimits  *storage.SendLimitRepository
	leaderboard *storage.LeaderboardRepository
	milestones  *storage.MilestoneRepository
	receipts    *storage.ReceiptRepository

	checkIn *CheckInService
	send    *SendService
	query   *QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	store := storage.NewRedisStoreWithClient(client, "bm")

	f := &fixture{
		mr:          mr,
		clock:       newTestClock(),
		notifier:    &recordingNotifier{},
		streaks:     storage.NewStreakRepository(store),
		sendLimits:  storage.NewSendLimitRepository(store),
		leaderboard: storage.NewLeaderboardRepository(store),
		milestones:  storage.NewMilestoneRepository(store),
		receipts:    storage.NewReceiptRepository(store),
	}

	f.checkIn = NewCheckInService(f.streaks, f.leaderboard, f.milestones, f.notifier, f.clock.Now)
	f.send = NewSendService(f.streaks, f.sendLimits, f.leaderboard, f.receipts, f.notifier, f.clock.Now)
	f.query = NewQueryService(f.streaks, f.sendLimits, f.leaderboard, f.receipts, f.clock.Now)
	return f
}

// seed stores a streak record as if the last check-in happened daysAgo days before now
func (f *fixture) seed(t *testing.T, identity string, streak, daysAgo int) {
	t.Helper()
	at := f.clock.Now().AddDate(0, 0, -daysAgo)
	require.NoError(t, f.streaks.Save(context.Background(), identity, streak, at))
	require.NoError(t, f.leaderboard.Upsert(context.Background(), identity, streak))
}

func (f *fixture) streakOf(t *testing.T, identity string) int {
	t.Helper()
	user, err := f.streaks.Get(context.Background(), identity)
	require.NoError(t, err)
	return user.Streak
}

func (f *fixture) leaderboardMembers(t *testing.T) []string {
	t.Helper()
	members, err := f.mr.ZMembers("bm:leaderboard")
	if err != nil {
		return nil
	}
	return members
}
