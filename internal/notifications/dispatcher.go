package notifications

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"waveline/internal/middleware"
	"waveline/internal/models"
	"waveline/internal/observability"
	"waveline/internal/repository"
)

const (
	defaultQueueSize = 1024
	defaultWorkers   = 4
	maxAttempts      = 3
	baseBackoff      = 200 * time.Millisecond
)

// Event is one notification to persist and publish.
type Event struct {
	RecipientID uint   `json:"recipient_id"`
	ActorID     uint   `json:"actor_id"`
	Kind        string `json:"kind"`
	RelatedID   uint   `json:"related_id"`
}

// Dispatcher persists notification events on a worker pool, off the request
// path. Enqueue never blocks: a full queue drops the event with a log line,
// matching the fire-and-forget contract.
type Dispatcher struct {
	repo     repository.NotificationRepository
	notifier *Notifier
	queue    chan Event
	workers  int
	wg       sync.WaitGroup
	cancel   context.CancelFunc
	once     sync.Once
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithQueueSize overrides the queue capacity.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.queue = make(chan Event, n)
		}
	}
}

// WithWorkers overrides the worker count.
func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// NewDispatcher creates a stopped Dispatcher. Call Start before use.
func NewDispatcher(repo repository.NotificationRepository, notifier *Notifier, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		repo:     repo,
		notifier: notifier,
		queue:    make(chan Event, defaultQueueSize),
		workers:  defaultWorkers,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the worker pool.
func (d *Dispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}
}

// Stop drains the queue and waits for in-flight work to finish.
func (d *Dispatcher) Stop() {
	d.once.Do(func() {
		close(d.queue)
		d.wg.Wait()
		if d.cancel != nil {
			d.cancel()
		}
	})
}

// Notify implements the service-layer sink. Self-notifications are filtered
// upstream; a full queue drops the event rather than blocking the caller.
func (d *Dispatcher) Notify(recipientID, actorID uint, kind string, relatedID uint) {
	ev := Event{
		RecipientID: recipientID,
		ActorID:     actorID,
		Kind:        kind,
		RelatedID:   relatedID,
	}
	select {
	case d.queue <- ev:
		observability.DispatcherQueueDepth.Set(float64(len(d.queue)))
	default:
		middleware.NotificationDispatches.WithLabelValues("dropped").Inc()
		observability.GlobalLogger.Warn("notification queue full, event dropped",
			"kind", kind, "recipient_id", recipientID)
	}
}

func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for ev := range d.queue {
		observability.DispatcherQueueDepth.Set(float64(len(d.queue)))
		d.process(ctx, ev)
	}
}

func (d *Dispatcher) process(ctx context.Context, ev Event) {
	ctx = observability.WithCorrelationID(ctx, uuid.NewString())
	span, ctx := observability.NewSpan(ctx, "dispatcher."+ev.Kind)
	defer span.End()

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = d.deliver(ctx, ev)
		if err == nil {
			middleware.NotificationDispatches.WithLabelValues("delivered").Inc()
			return
		}
		if attempt < maxAttempts {
			observability.DispatcherRetries.WithLabelValues(ev.Kind).Inc()
			select {
			case <-ctx.Done():
				return
			case <-time.After(baseBackoff << (attempt - 1)):
			}
		}
	}
	middleware.NotificationDispatches.WithLabelValues("failed").Inc()
	span.SetError(err)
	observability.LogAsyncOperationError(ctx, "notification_dispatch", err, map[string]interface{}{
		"kind":         ev.Kind,
		"recipient_id": ev.RecipientID,
	})
}

func (d *Dispatcher) deliver(ctx context.Context, ev Event) error {
	n := &models.Notification{
		RecipientID: ev.RecipientID,
		ActorID:     ev.ActorID,
		Type:        ev.Kind,
		RelatedID:   ev.RelatedID,
	}
	if err := d.repo.Create(ctx, n); err != nil {
		return err
	}
	if d.notifier != nil {
		payload, err := json.Marshal(ev)
		if err == nil {
			// Pub/sub fan-out is best effort.
			_ = d.notifier.PublishUser(ctx, ev.RecipientID, string(payload))
		}
	}
	return nil
}
