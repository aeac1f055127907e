package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pinodelabs/pinode/internal/config"
	"github.com/pinodelabs/pinode/internal/domain"
	"github.com/pinodelabs/pinode/internal/metrics"
	"github.com/pinodelabs/pinode/internal/repository"
)

// Sender delivers a text message to a chat and reports whether it arrived.
type Sender interface {
	Send(ctx context.Context, chatID int64, text string) bool
}

type userGetter interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (repository.User, error)
}

// Dispatcher delivers notifications on its own goroutine. Notify never
// blocks; when the queue is full the notification is dropped.
type Dispatcher struct {
	queue   chan domain.Notification
	users   userGetter
	sender  Sender
	format  func(domain.Notification) string
	timeout time.Duration
}

func NewDispatcher(users userGetter, sender Sender, format func(domain.Notification) string, size int) *Dispatcher {
	if size <= 0 {
		size = 1
	}
	return &Dispatcher{
		queue:   make(chan domain.Notification, size),
		users:   users,
		sender:  sender,
		format:  format,
		timeout: config.NotifyTimeout,
	}
}

func (d *Dispatcher) Notify(n domain.Notification) {
	select {
	case d.queue <- n:
		metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
	default:
		metrics.Notifications.WithLabelValues(string(n.Kind), "dropped").Inc()
		slog.Warn("notification queue full, dropping", "kind", n.Kind, "user_id", n.UserID)
	}
}

// Run delivers queued notifications until ctx is done.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-d.queue:
			metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
			d.deliver(ctx, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n domain.Notification) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	user, err := d.users.GetUserByID(ctx, n.UserID)
	if err != nil {
		metrics.Notifications.WithLabelValues(string(n.Kind), "failed").Inc()
		slog.Error("notification user lookup", "error", err, "user_id", n.UserID)
		return
	}
	if user.TelegramID == nil {
		metrics.Notifications.WithLabelValues(string(n.Kind), "skipped").Inc()
		return
	}

	if !d.sender.Send(ctx, *user.TelegramID, d.format(n)) {
		metrics.Notifications.WithLabelValues(string(n.Kind), "failed").Inc()
		slog.Warn("notification not delivered", "kind", n.Kind, "user_id", n.UserID)
		return
	}
	metrics.Notifications.WithLabelValues(string(n.Kind), "sent").Inc()
}
