package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bm-streak/internal/types"
)

const (
	fieldCount    = "count"
	fieldLastSent = "lastSent"
)

// SendLimitRepository persists per-sender daily send counters
type SendLimitRepository struct {
	store *RedisStore
}

// NewSendLimitRepository creates a new send limit repository
func NewSendLimitRepository(store *RedisStore) *SendLimitRepository {
	return &SendLimitRepository{store: store}
}

// Get returns the stored counter for a sender. Missing records are zero.
func (r *SendLimitRepository) Get(ctx context.Context, identity string) (*types.SendLimit, error) {
	fields, err := r.store.client.HGetAll(ctx, r.store.Key(KeySends, identity)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read send limit for %s: %w", identity, err)
	}

	limit := &types.SendLimit{}
	if n, err := strconv.Atoi(fields[fieldCount]); err == nil {
		limit.Count = n
	}
	if raw := fields[fieldLastSent]; raw != "" {
		if ts, err := types.ParseTime(raw); err == nil {
			limit.LastSent = &ts
		}
	}
	return limit, nil
}

// Save writes the counter and the time of the latest send
func (r *SendLimitRepository) Save(ctx context.Context, identity string, count int, lastSent time.Time) error {
	err := r.store.client.HSet(ctx, r.store.Key(KeySends, identity),
		fieldCount, strconv.Itoa(count),
		fieldLastSent, types.FormatTime(lastSent),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save send limit for %s: %w", identity, err)
	}
	return nil
}
