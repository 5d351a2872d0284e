// Package notify persists notifications off the request path. Enqueue is
// fire-and-forget: a full queue or a store failure is logged and dropped,
// never surfaced to the triggering operation.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/isdamarket/fish_market/internal/models"
)

const (
	queueSize    = 256
	writeTimeout = 5 * time.Second
)

type Store interface {
	Create(ctx context.Context, n *models.Notification) error
}

type Notifier struct {
	store Store
	log   *slog.Logger

	queue chan models.Notification
	wg    sync.WaitGroup

	closeOnce sync.Once
}

func New(store Store, log *slog.Logger) *Notifier {
	n := &Notifier{
		store: store,
		log:   log,
		queue: make(chan models.Notification, queueSize),
	}
	n.wg.Add(1)
	go n.run()
	return n
}

// Enqueue hands off a notification without blocking. When the queue is full
// the notification is dropped with a log line; there is no retry.
func (n *Notifier) Enqueue(notif models.Notification) {
	select {
	case n.queue <- notif:
	default:
		n.log.Error("notification dropped, queue full",
			"recipient_uid", notif.RecipientUID, "type", notif.Type)
	}
}

func (n *Notifier) run() {
	defer n.wg.Done()
	for notif := range n.queue {
		if notif.UID == "" {
			notif.UID = uuid.NewString()
		}
		if notif.CreatedAt.IsZero() {
			notif.CreatedAt = time.Now().UTC()
		}
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		if err := n.store.Create(ctx, &notif); err != nil {
			n.log.Error("notification write failed",
				"recipient_uid", notif.RecipientUID, "type", notif.Type, "error", err)
		}
		cancel()
	}
}

// Close drains the queue and stops the worker.
func (n *Notifier) Close() {
	n.closeOnce.Do(func() {
		close(n.queue)
	})
	n.wg.Wait()
}
