package storage

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/bm-streak/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(&config.RedisConfig{
		URL:            "redis://" + mr.Addr(),
		MaxConnections: 10,
		KeyPrefix:      "test",
	})
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, store.Close())
	}()

	assert.NoError(t, store.Ping(testContext(t)))
	assert.Equal(t, "test:streak:0xabc", store.Key(KeyStreak, "0xabc"))
}

func TestNewRedisStore_HostPort(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewRedisStore(&config.RedisConfig{
		Host:           mr.Host(),
		Port:           mr.Port(),
		MaxConnections: 5,
	})
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, "bm:leaderboard", store.Key(KeyLeaderboard))
}

func TestNewRedisStore_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewRedisStore(&config.RedisConfig{URL: "redis://" + addr, MaxConnections: 1})
	assert.Error(t, err)
}

func TestNewRedisStore_InvalidURL(t *testing.T) {
	_, err := NewRedisStore(&config.RedisConfig{URL: "://nope"})
	assert.Error(t, err)
}

func TestRedisStore_Keys(t *testing.T) {
	store, _ := newTestStore(t)

	tests := []struct {
		keyType KeyType
		params  []string
		want    string
	}{
		{KeyStreak, []string{"0xabc"}, "bm:streak:0xabc"},
		{KeySends, []string{"0xabc"}, "bm:sends:0xabc"},
		{KeyMilestone, []string{"0xabc"}, "bm:milestone:0xabc"},
		{KeyReceived, []string{"0xabc"}, "bm:received:0xabc"},
		{KeyFID, []string{"0xabc"}, "bm:fid:0xabc"},
		{KeyNotification, []string{"42"}, "bm:notification:42"},
		{KeyLeaderboard, nil, "bm:leaderboard"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, store.Key(tt.keyType, tt.params...))
	}

	assert.Equal(t, "bm:streak:*", store.KeyPattern(KeyStreak))
	assert.Equal(t, "0xabc", store.identityFromKey(KeyStreak, "bm:streak:0xabc"))
}
