package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bm-streak/internal/calendar"
	"github.com/bm-streak/internal/errors"
	"github.com/bm-streak/internal/logging"
	"github.com/bm-streak/internal/metrics"
	"github.com/bm-streak/internal/types"
)

// CheckInResult is the outcome of a check-in
type CheckInResult struct {
	Streak           int       `json:"streak"`
	LastCheckIn      time.Time `json:"lastCheckIn"`
	Milestone        bool      `json:"milestone"`
	AlreadyCheckedIn bool      `json:"alreadyCheckedIn,omitempty"`
}

// CheckInService applies the daily streak transition for one identity
type CheckInService struct {
	streaks     StreakStore
	leaderboard LeaderboardStore
	milestones  MilestoneStore
	notifier    Notifier
	now         Clock
}

// NewCheckInService creates a new check-in service.
// A nil notifier disables milestone notifications; a nil clock uses time.Now.
func NewCheckInService(
	streaks StreakStore,
	leaderboard LeaderboardStore,
	milestones MilestoneStore,
	notifier Notifier,
	now Clock,
) *CheckInService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if now == nil {
		now = time.Now
	}
	return &CheckInService{
		streaks:     streaks,
		leaderboard: leaderboard,
		milestones:  milestones,
		notifier:    notifier,
		now:         now,
	}
}

// CheckIn records today's check-in for identity.
//
// A second call on the same calendar day is a no-op that returns the stored
// streak with AlreadyCheckedIn set. A call on the next calendar day extends
// the streak by one; any larger gap resets it to 1.
func (s *CheckInService) CheckIn(ctx context.Context, identity string) (*CheckInResult, error) {
	if types.IsBlankIdentity(identity) {
		return nil, errors.NewInvalidInputError("Address is required")
	}

	key := types.NormalizeIdentity(identity)
	now := s.now()
	logger := logging.FromContext(ctx).WithField("identity", key)

	current, err := s.streaks.Get(ctx, key)
	if err != nil {
		return nil, errors.NewStoreError("read streak", err)
	}

	var (
		newStreak int
		outcome   string
	)
	if current.LastCheckIn == nil {
		newStreak = 1
		outcome = metrics.CheckInFirst
	} else {
		switch calendar.Relate(*current.LastCheckIn, now) {
		case calendar.SameDay:
			metrics.RecordCheckIn(metrics.CheckInSameDay)
			return &CheckInResult{
				Streak:           current.Streak,
				LastCheckIn:      *current.LastCheckIn,
				AlreadyCheckedIn: true,
			}, nil
		case calendar.NextDay:
			newStreak = current.Streak + 1
			outcome = metrics.CheckInConsecutive
		default:
			newStreak = 1
			outcome = metrics.CheckInReset
		}
	}

	milestone := types.IsMilestone(newStreak)

	if err := s.leaderboard.Upsert(ctx, key, newStreak, staleSpelling(identity, key)...); err != nil {
		return nil, errors.NewStoreError("update leaderboard", err)
	}
	if err := s.streaks.Save(ctx, key, newStreak, now); err != nil {
		return nil, errors.NewStoreError("save streak", err)
	}
	if milestone {
		if err := s.milestones.Record(ctx, key, newStreak, now); err != nil {
			return nil, errors.NewStoreError("record milestone", err)
		}
		metrics.RecordMilestone(newStreak)
		s.notifier.Notify(key, "Streak milestone!", fmt.Sprintf("You reached a %d-day streak.", newStreak))
	}

	metrics.RecordCheckIn(outcome)
	logger.WithFields(map[string]interface{}{
		"streak":    newStreak,
		"outcome":   outcome,
		"milestone": milestone,
	}).Debug("Check-in recorded")

	return &CheckInResult{
		Streak:      newStreak,
		LastCheckIn: now,
		Milestone:   milestone,
	}, nil
}

// staleSpelling returns the raw identity when it differs from its storage key,
// so an entry written under the un-normalized spelling is removed.
func staleSpelling(raw, key string) []string {
	if raw == key {
		return nil
	}
	return []string{raw}
}
