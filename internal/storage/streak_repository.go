package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bm-streak/internal/types"
	"github.com/redis/go-redis/v9"
)

const (
	fieldStreak      = "streak"
	fieldLastCheckIn = "lastCheckIn"
)

// scanBatchSize is the COUNT hint passed to SCAN
const scanBatchSize = 200

// StreakRepository persists per-identity streak records
type StreakRepository struct {
	store *RedisStore
}

// NewStreakRepository creates a new streak repository
func NewStreakRepository(store *RedisStore) *StreakRepository {
	return &StreakRepository{store: store}
}

// Get returns the streak record for an identity.
// A missing record yields a zero streak with no last check-in.
func (r *StreakRepository) Get(ctx context.Context, identity string) (*types.UserStreak, error) {
	fields, err := r.store.client.HGetAll(ctx, r.store.Key(KeyStreak, identity)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read streak for %s: %w", identity, err)
	}
	return parseStreak(identity, fields), nil
}

// Save writes both the streak value and the last check-in timestamp
func (r *StreakRepository) Save(ctx context.Context, identity string, streak int, lastCheckIn time.Time) error {
	err := r.store.client.HSet(ctx, r.store.Key(KeyStreak, identity),
		fieldStreak, strconv.Itoa(streak),
		fieldLastCheckIn, types.FormatTime(lastCheckIn),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save streak for %s: %w", identity, err)
	}
	return nil
}

// SetStreak overwrites only the streak value, leaving lastCheckIn untouched
func (r *StreakRepository) SetStreak(ctx context.Context, identity string, streak int) error {
	err := r.store.client.HSet(ctx, r.store.Key(KeyStreak, identity), fieldStreak, strconv.Itoa(streak)).Err()
	if err != nil {
		return fmt.Errorf("failed to set streak for %s: %w", identity, err)
	}
	return nil
}

// ListAll enumerates every identity that has a streak record
func (r *StreakRepository) ListAll(ctx context.Context) ([]*types.UserStreak, error) {
	var keys []string
	iter := r.store.client.Scan(ctx, 0, r.store.KeyPattern(KeyStreak), scanBatchSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan streak keys: %w", err)
	}

	if len(keys) == 0 {
		return []*types.UserStreak{}, nil
	}

	// Fetch all hashes in one round trip
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	_, err := r.store.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, key := range keys {
			cmds[i] = pipe.HGetAll(ctx, key)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read streak records: %w", err)
	}

	users := make([]*types.UserStreak, 0, len(keys))
	for i, key := range keys {
		identity := r.store.identityFromKey(KeyStreak, key)
		users = append(users, parseStreak(identity, cmds[i].Val()))
	}
	return users, nil
}

// parseStreak builds a record from raw hash fields.
// Unparsable values are treated as absent.
func parseStreak(identity string, fields map[string]string) *types.UserStreak {
	user := &types.UserStreak{Address: identity}

	if raw, ok := fields[fieldStreak]; ok {
		if n, err := strconv.Atoi(raw); err == nil {
			user.Streak = n
			user.HasStreak = true
		}
	}

	if raw, ok := fields[fieldLastCheckIn]; ok && raw != "" {
		if ts, err := types.ParseTime(raw); err == nil {
			user.LastCheckIn = &ts
		}
	}

	return user
}
