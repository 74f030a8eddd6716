package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bm-streak/internal/config"
	"github.com/redis/go-redis/v9"
)

// KeyType represents the different record families kept in Redis
type KeyType string

const (
	// KeyStreak is the per-identity streak hash {streak, lastCheckIn}
	KeyStreak KeyType = "streak"
	// KeySends is the per-identity send counter hash {count, lastSent}
	KeySends KeyType = "sends"
	// KeyLeaderboard is the global sorted set of identity -> streak
	KeyLeaderboard KeyType = "leaderboard"
	// KeyMilestone is the per-identity milestone hash {milestone, timestamp}
	KeyMilestone KeyType = "milestone"
	// KeyReceived is the per-identity list of inbound receipts
	KeyReceived KeyType = "received"
	// KeyFID is the per-identity external notification identifier
	KeyFID KeyType = "fid"
	// KeyNotification is the per-FID delivery target hash {url, token}
	KeyNotification KeyType = "notification"
)

// RedisStore wraps the Redis client and owns the key namespace
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis connection
func NewRedisStore(cfg *config.RedisConfig) (*RedisStore, error) {
	var opts *redis.Options
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
			Password: cfg.Password,
			DB:       cfg.DB,
		}
	}

	opts.PoolSize = cfg.MaxConnections
	opts.MinIdleConns = 5
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "bm"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Ping checks if Redis is reachable
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Key builds a namespaced key.
// Format: <prefix>:<type>:<param1>:<param2>:...
func (r *RedisStore) Key(keyType KeyType, params ...string) string {
	parts := append([]string{r.prefix, string(keyType)}, params...)
	return strings.Join(parts, ":")
}

// KeyPattern returns the SCAN pattern matching every key of a type
func (r *RedisStore) KeyPattern(keyType KeyType) string {
	return r.Key(keyType, "*")
}

// identityFromKey strips the namespace from a per-identity key
func (r *RedisStore) identityFromKey(keyType KeyType, key string) string {
	return strings.TrimPrefix(key, r.Key(keyType)+":")
}
