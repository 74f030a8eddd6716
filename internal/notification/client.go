// Package notification delivers frame notifications to users' clients.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bm-streak/internal/circuitbreaker"
	"github.com/bm-streak/internal/config"
	"github.com/bm-streak/internal/types"
	"github.com/google/uuid"
)

// maxResponseBytes bounds how much of a downstream reply is read
const maxResponseBytes = 1 << 20

var (
	// ErrInvalidToken means the downstream rejected the stored token
	ErrInvalidToken = errors.New("notification token rejected")
	// ErrRateLimited means the downstream throttled the token
	ErrRateLimited = errors.New("notification rate limited")
)

// FramePayload is the body POSTed to a frame notification URL
type FramePayload struct {
	NotificationID string   `json:"notificationId"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	TargetURL      string   `json:"targetUrl"`
	Tokens         []string `json:"tokens"`
}

type frameResponse struct {
	Result struct {
		SuccessfulTokens  []string `json:"successfulTokens"`
		InvalidTokens     []string `json:"invalidTokens"`
		RateLimitedTokens []string `json:"rateLimitedTokens"`
	} `json:"result"`
}

// Client posts notifications over HTTP behind a circuit breaker
type Client struct {
	httpClient *http.Client
	breaker    *circuitbreaker.CircuitBreaker
	targetURL  string
}

// NewClient creates a notification client from config
func NewClient(cfg *config.NotificationConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		breaker: circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			Name:             "notification",
			MaxFailures:      cfg.BreakerMaxFailures,
			Timeout:          cfg.BreakerTimeout,
			HalfOpenMaxCalls: 1,
		}),
		targetURL: cfg.TargetURL,
	}
}

// Breaker exposes the client's circuit breaker
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

// Deliver sends one notification to target.
// A rejected or throttled token is reported with ErrInvalidToken or ErrRateLimited.
func (c *Client) Deliver(ctx context.Context, target *types.NotificationTarget, title, body string) error {
	payload := FramePayload{
		NotificationID: uuid.NewString(),
		Title:          title,
		Body:           body,
		TargetURL:      c.targetURL,
		Tokens:         []string{target.Token},
	}

	var reply frameResponse
	err := c.breaker.Execute(ctx, func() error {
		raw, err := c.post(ctx, target.URL, "", payload)
		if err != nil {
			return err
		}
		if len(raw) > 0 {
			// Some receivers reply with an empty or non-JSON body on success
			_ = json.Unmarshal(raw, &reply)
		}
		return nil
	})
	if err != nil {
		return err
	}

	for _, tok := range reply.Result.InvalidTokens {
		if tok == target.Token {
			return ErrInvalidToken
		}
	}
	for _, tok := range reply.Result.RateLimitedTokens {
		if tok == target.Token {
			return ErrRateLimited
		}
	}
	return nil
}

// Forward POSTs {title, body} to url with a bearer token and returns the JSON reply
func (c *Client) Forward(ctx context.Context, url, token, title, body string) (json.RawMessage, error) {
	raw, err := c.post(ctx, url, token, map[string]string{"title": title, "body": body})
	if err != nil {
		return nil, err
	}
	if !json.Valid(raw) {
		return nil, fmt.Errorf("notification reply is not JSON")
	}
	return json.RawMessage(raw), nil
}

func (c *Client) post(ctx context.Context, url, token string, payload interface{}) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("notification request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read notification reply: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("notification failed with status: %d", resp.StatusCode)
	}
	return raw, nil
}
