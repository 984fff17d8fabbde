package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/pairline/matching-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// Notifier fans match notifications out to a fixed set of workers using
// consistent hashing on the recipient's user id, so one user's
// notifications are always delivered in order.
type Notifier struct {
	workers []chan ports.Notification
	sink    ports.NotificationSink
	log     zerolog.Logger
}

// NewNotifier creates a Notifier with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewNotifier(numWorkers int, sink ports.NotificationSink, log zerolog.Logger) *Notifier {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	n := &Notifier{
		workers: make([]chan ports.Notification, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range n.workers {
		n.workers[i] = make(chan ports.Notification, channelBuffer)
	}
	return n
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (n *Notifier) Start(ctx context.Context) {
	for i, ch := range n.workers {
		go n.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a notification to the worker owning its recipient.
// Non-blocking up to channelBuffer capacity.
func (n *Notifier) Enqueue(notification ports.Notification) {
	n.workers[n.shardIndex(notification.UserID)] <- notification
}

// EnqueueBatch enqueues multiple notifications preserving per-user ordering.
func (n *Notifier) EnqueueBatch(notifications []ports.Notification) {
	for _, notification := range notifications {
		n.Enqueue(notification)
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (n *Notifier) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(n.workers)
}

func (n *Notifier) runWorker(ctx context.Context, id int, ch <-chan ports.Notification) {
	for {
		select {
		case <-ctx.Done():
			return
		case notification, ok := <-ch:
			if !ok {
				return
			}
			if err := n.sink.Deliver(ctx, notification); err != nil {
				n.log.Error().Err(err).
					Str("user_id", notification.UserID).
					Str("kind", notification.Kind).
					Int("worker_id", id).
					Msg("notification delivery failed")
			}
		}
	}
}
