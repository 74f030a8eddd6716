package storage

import (
	"context"
	"fmt"

	"github.com/bm-streak/internal/types"
	"github.com/redis/go-redis/v9"
)

// LeaderboardRepository maintains the global streak ranking
type LeaderboardRepository struct {
	store *RedisStore
}

// NewLeaderboardRepository creates a new leaderboard repository
func NewLeaderboardRepository(store *RedisStore) *LeaderboardRepository {
	return &LeaderboardRepository{store: store}
}

// Upsert sets the score for identity, replacing any previous entry.
// Stale spellings of the same identity are removed in the same transaction,
// so the ranking never holds zero or two entries for it.
func (r *LeaderboardRepository) Upsert(ctx context.Context, identity string, score int, stale ...string) error {
	key := r.store.Key(KeyLeaderboard)

	_, err := r.store.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, member := range stale {
			if member != "" && member != identity {
				pipe.ZRem(ctx, key, member)
			}
		}
		pipe.ZAdd(ctx, key, redis.Z{Score: float64(score), Member: identity})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to update leaderboard for %s: %w", identity, err)
	}
	return nil
}

// Ranked returns all entries with a positive score, highest first.
// Order among equal scores is unspecified.
func (r *LeaderboardRepository) Ranked(ctx context.Context) ([]types.LeaderboardEntry, error) {
	zs, err := r.store.client.ZRevRangeByScoreWithScores(ctx, r.store.Key(KeyLeaderboard), &redis.ZRangeBy{
		Min: "(0",
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	entries := make([]types.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, types.LeaderboardEntry{
			Address: member,
			Streak:  int(z.Score),
		})
	}
	return entries, nil
}
