package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bm-streak/internal/types"
)

// MilestoneRepository writes the milestone audit record.
// Each occurrence overwrites the previous one for the identity.
type MilestoneRepository struct {
	store *RedisStore
}

// NewMilestoneRepository creates a new milestone repository
func NewMilestoneRepository(store *RedisStore) *MilestoneRepository {
	return &MilestoneRepository{store: store}
}

// Record stores the milestone value and when it was reached
func (r *MilestoneRepository) Record(ctx context.Context, identity string, milestone int, at time.Time) error {
	err := r.store.client.HSet(ctx, r.store.Key(KeyMilestone, identity),
		"milestone", strconv.Itoa(milestone),
		"timestamp", types.FormatTime(at),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to record milestone for %s: %w", identity, err)
	}
	return nil
}

// Latest returns the most recent milestone record, or nil when none exists
func (r *MilestoneRepository) Latest(ctx context.Context, identity string) (*types.Milestone, error) {
	fields, err := r.store.client.HGetAll(ctx, r.store.Key(KeyMilestone, identity)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read milestone for %s: %w", identity, err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	n, err := strconv.Atoi(fields["milestone"])
	if err != nil {
		return nil, fmt.Errorf("corrupt milestone record for %s: %w", identity, err)
	}
	ts, err := types.ParseTime(fields["timestamp"])
	if err != nil {
		return nil, fmt.Errorf("corrupt milestone timestamp for %s: %w", identity, err)
	}
	return &types.Milestone{Milestone: n, Timestamp: ts}, nil
}
