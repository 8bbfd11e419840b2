package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"cerealbot/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DefaultInterval is how often pending reminders are checked
const DefaultInterval = 30 * time.Second

// Sender delivers a due reminder to its user
type Sender interface {
	SendReminder(ctx context.Context, r Reminder) error
}

// SenderFunc adapts a function to Sender
type SenderFunc func(ctx context.Context, r Reminder) error

func (f SenderFunc) SendReminder(ctx context.Context, r Reminder) error {
	return f(ctx, r)
}

// Runner sweeps the store on a fixed interval.
// Every due reminder gets exactly one delivery attempt and is then removed, whatever the outcome.
type Runner struct {
	store    *Store
	sender   Sender
	interval time.Duration
	now      func() time.Time
	metrics  *metrics.Metrics

	sweeping sync.Mutex
	inflight sync.WaitGroup
	started  atomic.Bool
	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

type RunnerOption func(*Runner)

func WithInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) { r.now = now }
}

func WithMetrics(m *metrics.Metrics) RunnerOption {
	return func(r *Runner) { r.metrics = m }
}

func NewRunner(store *Store, sender Sender, opts ...RunnerOption) *Runner {
	r := &Runner{
		store:    store,
		sender:   sender,
		interval: DefaultInterval,
		now:      time.Now,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the sweep loop. Calling it again while running is a no-op, so it is
// safe to call from every gateway ready event.
func (r *Runner) Start(ctx context.Context) {
	if !r.started.CompareAndSwap(false, true) {
		log.Debug("Reminder runner already started")
		return
	}

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		log.WithField("interval", r.interval).Info("Reminder runner started")
		for {
			select {
			case <-ctx.Done():
				log.Info("Reminder runner shutting down (context cancelled)...")
				return
			case <-r.stop:
				log.Info("Reminder runner shutting down (stop requested)...")
				return
			case <-ticker.C:
				// A slow sweep must not delay shutdown or queue ticks behind it
				r.inflight.Add(1)
				go func() {
					defer r.inflight.Done()
					r.Sweep(ctx)
				}()
			}
		}
	}()
}

// Started reports whether Start has been called
func (r *Runner) Started() bool {
	return r.started.Load()
}

// Stop ends the loop and waits for it and any in-flight sweep to exit.
// Safe to call more than once or before Start.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stop) })
	if r.started.Load() {
		<-r.done
	}
	r.inflight.Wait()
}

// Sweep delivers every due reminder once and removes it. It returns the number of reminders
// attempted, or -1 if another sweep was still running and this one was skipped.
func (r *Runner) Sweep(ctx context.Context) int {
	if !r.sweeping.TryLock() {
		log.Warn("Previous reminder sweep still running, skipping tick")
		return -1
	}
	defer r.sweeping.Unlock()

	now := r.now()
	var due []Reminder
	for _, rem := range r.store.Snapshot() {
		if rem.Due(now) {
			due = append(due, rem)
		}
	}

	ids := make([]uuid.UUID, 0, len(due))
	for _, rem := range due {
		ids = append(ids, rem.ID)
		err := r.deliver(ctx, rem)
		r.metrics.ReminderDelivered(err)
		if err != nil {
			log.WithFields(log.Fields{
				"reminder_id": rem.ID,
				"user_id":     rem.UserID,
				"channel_id":  rem.ChannelID,
				"error":       err,
			}).Error("Failed to deliver reminder, dropping it")
		}
	}

	r.store.Remove(ids...)
	r.metrics.ReminderSweep(r.store.Len())

	if len(due) > 0 {
		log.WithField("count", len(due)).Debug("Reminder sweep delivered reminders")
	}
	return len(due)
}

func (r *Runner) deliver(ctx context.Context, rem Reminder) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p}
		}
	}()
	return r.sender.SendReminder(ctx, rem)
}
