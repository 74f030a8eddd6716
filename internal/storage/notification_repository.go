package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/bm-streak/internal/types"
	"github.com/redis/go-redis/v9"
)

// NotificationRepository resolves identities to notification delivery targets
type NotificationRepository struct {
	store *RedisStore
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(store *RedisStore) *NotificationRepository {
	return &NotificationRepository{store: store}
}

// Lookup returns the delivery target for an identity, or nil if the identity
// has no FID mapping or the FID has no enabled target.
func (r *NotificationRepository) Lookup(ctx context.Context, identity string) (*types.NotificationTarget, error) {
	raw, err := r.store.client.Get(ctx, r.store.Key(KeyFID, identity)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read fid for %s: %w", identity, err)
	}

	fid, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		// Non-numeric mappings are ignored
		return nil, nil
	}

	fields, err := r.store.client.HGetAll(ctx, r.store.Key(KeyNotification, strconv.FormatInt(fid, 10))).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read notification target for fid %d: %w", fid, err)
	}
	if fields["url"] == "" || fields["token"] == "" {
		return nil, nil
	}

	return &types.NotificationTarget{FID: fid, URL: fields["url"], Token: fields["token"]}, nil
}

// SetFID maps an identity to its external notification identifier.
// The frame webhook outside this service writes the key; the dispatcher only reads it.
func (r *NotificationRepository) SetFID(ctx context.Context, identity string, fid int64) error {
	if err := r.store.client.Set(ctx, r.store.Key(KeyFID, identity), fid, 0).Err(); err != nil {
		return fmt.Errorf("failed to set fid for %s: %w", identity, err)
	}
	return nil
}

// SaveTarget stores the delivery URL and token for a FID.
// Written by the frame webhook when a client enables notifications.
func (r *NotificationRepository) SaveTarget(ctx context.Context, fid int64, url, token string) error {
	err := r.store.client.HSet(ctx, r.store.Key(KeyNotification, strconv.FormatInt(fid, 10)),
		"url", url,
		"token", token,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save notification target for fid %d: %w", fid, err)
	}
	return nil
}

// DeleteTarget removes the delivery target for a FID
func (r *NotificationRepository) DeleteTarget(ctx context.Context, fid int64) error {
	if err := r.store.client.Del(ctx, r.store.Key(KeyNotification, strconv.FormatInt(fid, 10))).Err(); err != nil {
		return fmt.Errorf("failed to delete notification target for fid %d: %w", fid, err)
	}
	return nil
}
