package service

import (
	"context"
	"time"

	"github.com/bm-streak/internal/types"
)

// StreakStore persists per-identity streak records
type StreakStore interface {
	Get(ctx context.Context, identity string) (*types.UserStreak, error)
	Save(ctx context.Context, identity string, streak int, lastCheckIn time.Time) error
	SetStreak(ctx context.Context, identity string, streak int) error
	ListAll(ctx context.Context) ([]*types.UserStreak, error)
}

// SendLimitStore persists per-sender daily send counters
type SendLimitStore interface {
	Get(ctx context.Context, identity string) (*types.SendLimit, error)
	Save(ctx context.Context, identity string, count int, lastSent time.Time) error
}

// LeaderboardStore maintains the global ranking. Upsert replaces the entry for
// identity and drops any stale spellings in a single step.
type LeaderboardStore interface {
	Upsert(ctx context.Context, identity string, score int, stale ...string) error
	Ranked(ctx context.Context) ([]types.LeaderboardEntry, error)
}

// MilestoneStore records milestone occurrences
type MilestoneStore interface {
	Record(ctx context.Context, identity string, milestone int, at time.Time) error
}

// ReceiptStore keeps inbound send history
type ReceiptStore interface {
	Prepend(ctx context.Context, recipient string, receipt types.Receipt) error
	List(ctx context.Context, recipient string, limit int) ([]types.Receipt, error)
}

// Notifier delivers best-effort notifications. Notify must not block.
type Notifier interface {
	Notify(identity, title, body string)
}

// Clock returns the current time
type Clock func() time.Time

type noopNotifier struct{}

func (noopNotifier) Notify(string, string, string) {}
