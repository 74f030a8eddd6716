package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bm-streak/internal/config"
	bmerrors "github.com/bm-streak/internal/errors"
	"github.com/bm-streak/internal/logging"
	"github.com/bm-streak/internal/metrics"
	"github.com/bm-streak/internal/types"
)

// TargetStore resolves identities to delivery targets
type TargetStore interface {
	Lookup(ctx context.Context, identity string) (*types.NotificationTarget, error)
	DeleteTarget(ctx context.Context, fid int64) error
}

// Deliverer sends one notification to a resolved target
type Deliverer interface {
	Deliver(ctx context.Context, target *types.NotificationTarget, title, body string) error
}

type message struct {
	identity string
	title    string
	body     string
}

// Dispatcher queues notifications and delivers them from a fixed worker pool.
// Notify never blocks; a full queue drops the message.
type Dispatcher struct {
	targets   TargetStore
	deliverer Deliverer
	workers   int
	timeout   time.Duration

	mu      sync.RWMutex
	queue   chan message
	started bool
	stopped bool
	wg      sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Call Start before Notify has any effect.
func NewDispatcher(targets TargetStore, deliverer Deliverer, cfg *config.NotificationConfig) *Dispatcher {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 256
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	return &Dispatcher{
		targets:   targets,
		deliverer: deliverer,
		workers:   workers,
		timeout:   timeout,
		queue:     make(chan message, size),
	}
}

// Start launches the worker pool
func (d *Dispatcher) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.started || d.stopped {
		return
	}
	d.started = true

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	logging.WithField("workers", d.workers).Info("Notification dispatcher started")
}

// Notify enqueues a notification for identity
func (d *Dispatcher) Notify(identity, title, body string) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.started || d.stopped {
		metrics.RecordNotification(metrics.NotificationDropped)
		return
	}

	select {
	case d.queue <- message{identity: identity, title: title, body: body}:
	default:
		metrics.RecordNotification(metrics.NotificationDropped)
		logging.WithField("identity", identity).Warn("Notification queue full, dropping message")
	}
}

// Stop closes the queue and waits for queued messages to drain or ctx to end
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return nil
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("Notification dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.queue {
		d.deliver(msg)
	}
}

func (d *Dispatcher) deliver(msg message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	logger := logging.WithField("identity", msg.identity)

	target, err := d.targets.Lookup(ctx, msg.identity)
	if err != nil {
		metrics.RecordNotification(metrics.NotificationFailed)
		logger.WithError(bmerrors.NewNotificationError(msg.identity, err)).Warn("Notification target lookup failed")
		return
	}
	if target == nil {
		metrics.RecordNotification(metrics.NotificationSkipped)
		logger.Debug("No notification target, skipping")
		return
	}

	err = d.deliverer.Deliver(ctx, target, msg.title, msg.body)
	switch {
	case err == nil:
		metrics.RecordNotification(metrics.NotificationDelivered)
	case errors.Is(err, ErrInvalidToken):
		metrics.RecordNotification(metrics.NotificationFailed)
		logger.WithField("fid", target.FID).Warn("Notification token rejected, removing target")
		if delErr := d.targets.DeleteTarget(ctx, target.FID); delErr != nil {
			logger.WithError(delErr).Warn("Failed to remove notification target")
		}
	default:
		metrics.RecordNotification(metrics.NotificationFailed)
		logger.WithError(bmerrors.NewNotificationError(msg.identity, err)).Warn("Notification delivery failed")
	}
}
