package notification

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bm-streak/internal/circuitbreaker"
	"github.com/bm-streak/internal/config"
	"github.com/bm-streak/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.NotificationConfig {
	return &config.NotificationConfig{
		Enabled:            true,
		Workers:            2,
		QueueSize:          8,
		Timeout:            2 * time.Second,
		TargetURL:          "https://bm.example/app",
		BreakerMaxFailures: 2,
		BreakerTimeout:     time.Minute,
	}
}

func TestClient_Deliver(t *testing.T) {
	var got FramePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":{"successfulTokens":["tok"],"invalidTokens":[],"rateLimitedTokens":[]}}`))
	}))
	defer srv.Close()

	client := NewClient(testConfig())
	err := client.Deliver(context.Background(), &types.NotificationTarget{FID: 1, URL: srv.URL, Token: "tok"}, "Hi", "there")
	require.NoError(t, err)

	assert.Equal(t, "Hi", got.Title)
	assert.Equal(t, "there", got.Body)
	assert.Equal(t, "https://bm.example/app", got.TargetURL)
	assert.Equal(t, []string{"tok"}, got.Tokens)
	assert.Len(t, got.NotificationID, 36)
}

func TestClient_DeliverTokenErrors(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  error
	}{
		{"invalid", `{"result":{"invalidTokens":["tok"]}}`, ErrInvalidToken},
		{"rate limited", `{"result":{"rateLimitedTokens":["tok"]}}`, ErrRateLimited},
		{"empty body", ``, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.reply))
			}))
			defer srv.Close()

			err := NewClient(testConfig()).Deliver(context.Background(),
				&types.NotificationTarget{URL: srv.URL, Token: "tok"}, "t", "b")
			if tt.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestClient_DeliverOpensBreaker(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(testConfig())
	target := &types.NotificationTarget{URL: srv.URL, Token: "tok"}

	for i := 0; i < 2; i++ {
		assert.Error(t, client.Deliver(context.Background(), target, "t", "b"))
	}
	assert.Equal(t, circuitbreaker.StateOpen, client.Breaker().GetState())

	err := client.Deliver(context.Background(), target, "t", "b")
	assert.ErrorIs(t, err, circuitbreaker.ErrCircuitOpen)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Forward(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"title": "T", "body": "B"}, body)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	data, err := NewClient(testConfig()).Forward(context.Background(), srv.URL, "secret", "T", "B")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
}

func TestClient_ForwardFailures(t *testing.T) {
	status := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer status.Close()

	notJSON := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	defer notJSON.Close()

	client := NewClient(testConfig())

	_, err := client.Forward(context.Background(), status.URL, "tok", "t", "b")
	assert.Error(t, err)

	_, err = client.Forward(context.Background(), notJSON.URL, "tok", "t", "b")
	assert.Error(t, err)
}
