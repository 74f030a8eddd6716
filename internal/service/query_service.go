package service

import (
	"context"
	"time"

	"github.com/bm-streak/internal/calendar"
	"github.com/bm-streak/internal/errors"
	"github.com/bm-streak/internal/types"
)

const (
	// DefaultReceivedLimit is the page size for received history
	DefaultReceivedLimit = 50
	// MaxReceivedLimit caps the received history page size
	MaxReceivedLimit = 500
)

// QueryService serves read-only projections of the store. Nothing here mutates.
type QueryService struct {
	streaks     StreakStore
	sendLimits  SendLimitStore
	leaderboard LeaderboardStore
	receipts    ReceiptStore
	now         Clock
}

// NewQueryService creates a new query service
func NewQueryService(
	streaks StreakStore,
	sendLimits SendLimitStore,
	leaderboard LeaderboardStore,
	receipts ReceiptStore,
	now Clock,
) *QueryService {
	if now == nil {
		now = time.Now
	}
	return &QueryService{
		streaks:     streaks,
		sendLimits:  sendLimits,
		leaderboard: leaderboard,
		receipts:    receipts,
		now:         now,
	}
}

// GetStreak returns the stored streak. Unknown identities yield a zero streak.
func (s *QueryService) GetStreak(ctx context.Context, identity string) (*types.UserStreak, error) {
	if types.IsBlankIdentity(identity) {
		return nil, errors.NewInvalidInputError("Address is required")
	}

	user, err := s.streaks.Get(ctx, types.NormalizeIdentity(identity))
	if err != nil {
		return nil, errors.NewStoreError("read streak", err)
	}
	return user, nil
}

// ListActiveToday returns every identity whose last check-in is today
func (s *QueryService) ListActiveToday(ctx context.Context) ([]*types.UserStreak, error) {
	users, err := s.streaks.ListAll(ctx)
	if err != nil {
		return nil, errors.NewStoreError("list streaks", err)
	}

	now := s.now()
	active := make([]*types.UserStreak, 0, len(users))
	for _, u := range users {
		if calendar.IsToday(u.LastCheckIn, now) {
			active = append(active, u)
		}
	}
	return active, nil
}

// GetLeaderboard returns identities with a positive streak, highest first.
// Equal streaks are returned in no particular order.
func (s *QueryService) GetLeaderboard(ctx context.Context) ([]types.LeaderboardEntry, error) {
	entries, err := s.leaderboard.Ranked(ctx)
	if err != nil {
		return nil, errors.NewStoreError("read leaderboard", err)
	}

	ranked := make([]types.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if e.Streak > 0 {
			ranked = append(ranked, e)
		}
	}
	return ranked, nil
}

// GetSendLimitStatus returns the sender's quota for today. A count stored on
// a previous day reads as zero.
func (s *QueryService) GetSendLimitStatus(ctx context.Context, identity string) (*types.SendLimitStatus, error) {
	if types.IsBlankIdentity(identity) {
		return nil, errors.NewInvalidInputError("Address is required")
	}

	limit, err := s.sendLimits.Get(ctx, types.NormalizeIdentity(identity))
	if err != nil {
		return nil, errors.NewStoreError("read send limit", err)
	}

	status := &types.SendLimitStatus{Limit: types.DailySendLimit}
	if calendar.IsToday(limit.LastSent, s.now()) {
		status.Count = limit.Count
		status.LimitReached = limit.Count >= types.DailySendLimit
	}
	return status, nil
}

// ListReceived returns the most recent receipts for identity.
// A non-positive limit means DefaultReceivedLimit; larger values are capped at MaxReceivedLimit.
func (s *QueryService) ListReceived(ctx context.Context, identity string, limit int) ([]types.Receipt, error) {
	if types.IsBlankIdentity(identity) {
		return nil, errors.NewInvalidInputError("Address is required")
	}

	switch {
	case limit <= 0:
		limit = DefaultReceivedLimit
	case limit > MaxReceivedLimit:
		limit = MaxReceivedLimit
	}

	receipts, err := s.receipts.List(ctx, types.NormalizeIdentity(identity), limit)
	if err != nil {
		return nil, errors.NewStoreError("read receipts", err)
	}
	return receipts, nil
}
