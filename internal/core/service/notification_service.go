package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const defaultNotifyTimeout = 10 * time.Second

// NotificationDispatcher delivers placed-order notifications in the
// background. Delivery is best effort: a full queue drops the notification
// and notifier failures are only logged.
type NotificationDispatcher struct {
	notifiers []port.Notifier
	queue     chan domain.Notification
	timeout   time.Duration
	logger    *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewNotificationDispatcher(queueSize int, logger *zap.Logger, notifiers ...port.Notifier) *NotificationDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationDispatcher{
		notifiers: notifiers,
		queue:     make(chan domain.Notification, queueSize),
		timeout:   defaultNotifyTimeout,
		logger:    logger.Named("notify"),
	}
}

// Start launches workerCount workers draining the queue.
func (d *NotificationDispatcher) Start(workerCount int) {
	for i := 0; i < workerCount; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.workerLoop(id)
		}(i)
	}
}

// Enqueue never blocks; it reports whether the notification was accepted.
func (d *NotificationDispatcher) Enqueue(n domain.Notification) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("dispatcher closed, dropping notification", zap.String("order_number", n.OrderNumber))
		return false
	}

	select {
	case d.queue <- n:
		return true
	default:
		d.logger.Warn("notification queue full, dropping notification", zap.String("order_number", n.OrderNumber))
		return false
	}
}

// Close stops accepting notifications and waits for the queue to drain.
func (d *NotificationDispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *NotificationDispatcher) workerLoop(id int) {
	for n := range d.queue {
		d.deliver(id, n)
	}
}

func (d *NotificationDispatcher) deliver(id int, n domain.Notification) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	logger := d.logger.With(
		zap.Int("worker", id),
		zap.String("order_number", n.OrderNumber),
		zap.String("session_id", n.SessionID),
	)
	for _, notifier := range d.notifiers {
		if err := notifier.Notify(ctx, n); err != nil {
			logger.Error("failed to deliver order notification", zap.Error(err))
		}
	}
	logger.Debug("order notification delivered")
}
