// Package runtime provides the keyed actor discipline: every actor key maps
// to an exclusive-access handle so at most one operation runs against a key
// at a time, and each key owns a single-slot durable alarm whose firing is
// delivered under the same exclusive access as ordinary commands.
package runtime

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/reugn/go-quartz/job"
	quartzlogger "github.com/reugn/go-quartz/logger"
	"github.com/reugn/go-quartz/quartz"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/Eduardaskuliesa/Alina-workers/internal/store"
)

var ErrNotStarted = errors.New("runtime is not started")

// fireSlack tolerates scheduler jitter when deciding whether a firing alarm
// is still the one recorded in the store or has been re-armed further out.
const fireSlack = time.Second

// Handler reacts to an actor's alarm firing. It runs while the runtime holds
// the key's exclusive lock, so it may freely read and write the key's
// document. The store's alarm slot is already cleared when it runs.
type Handler func(ctx context.Context, key string) error

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Runtime serializes access per actor key and owns the alarm scheduler.
// Actor keys are namespaced as "<kind>:<identity>"; alarm firings are routed
// to the Handler registered for the kind.
type Runtime struct {
	store  store.Store
	logger *zap.SugaredLogger

	mu    sync.Mutex
	locks map[string]*keyLock

	handlersMu sync.RWMutex
	handlers   map[string]Handler

	scheduler quartz.Scheduler
	started   *atomic.Bool
}

func New(st store.Store, logger *zap.SugaredLogger) *Runtime {
	scheduler, _ := quartz.NewStdScheduler(
		quartz.WithLogger(quartzlogger.NewSimpleLogger(nil, quartzlogger.LevelOff)),
	)

	return &Runtime{
		store:     st,
		logger:    logger.Named("runtime"),
		locks:     make(map[string]*keyLock),
		handlers:  make(map[string]Handler),
		scheduler: scheduler,
		started:   atomic.NewBool(false),
	}
}

// RegisterHandler binds the wake-up handler for a key kind (the part of the
// key before ':'). Must be called before Start so restored alarms can be
// delivered.
func (r *Runtime) RegisterHandler(kind string, h Handler) {
	r.handlersMu.Lock()
	defer r.handlersMu.Unlock()
	r.handlers[kind] = h
}

// Start runs the scheduler and re-arms every alarm persisted in the store.
// Alarms whose time already passed fire immediately.
func (r *Runtime) Start(ctx context.Context) error {
	r.scheduler.Start(ctx)
	r.started.Store(r.scheduler.IsStarted())

	pending, err := r.store.PendingAlarms(ctx)
	if err != nil {
		return err
	}
	for _, p := range pending {
		if err := r.arm(p.Key, p.At); err != nil {
			return err
		}
		r.logger.Infow("restored alarm", "key", p.Key, "at", p.At)
	}
	return nil
}

// Stop shuts the scheduler down, waiting up to timeout for in-flight jobs.
func (r *Runtime) Stop(ctx context.Context, timeout time.Duration) {
	if !r.started.Load() {
		return
	}
	_ = r.scheduler.Clear()
	r.scheduler.Stop()
	r.started.Store(r.scheduler.IsStarted())

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	r.scheduler.Wait(ctx)
}

// Do runs fn while holding the exclusive lock for key. Operations against
// the same key never interleave; different keys proceed independently.
func (r *Runtime) Do(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	l := r.acquire(key)
	l.mu.Lock()
	defer func() {
		l.mu.Unlock()
		r.release(key)
	}()
	return fn(ctx)
}

// SetAlarm persists and arms the key's single alarm slot, replacing any
// previously armed alarm. Intended to be called from within Do.
func (r *Runtime) SetAlarm(ctx context.Context, key string, at time.Time) error {
	if !r.started.Load() {
		return ErrNotStarted
	}
	if err := r.store.SetAlarm(ctx, key, at); err != nil {
		return err
	}
	return r.arm(key, at)
}

// CancelAlarm clears the key's alarm slot and deletes the scheduled job.
func (r *Runtime) CancelAlarm(ctx context.Context, key string) error {
	if err := r.store.CancelAlarm(ctx, key); err != nil {
		return err
	}
	// DeleteJob errors when nothing is scheduled, which is fine here
	_ = r.scheduler.DeleteJob(quartz.NewJobKey(key))
	return nil
}

// arm schedules the run-once job for key. The job key equals the actor key,
// so scheduling always replaces a previously pending job.
func (r *Runtime) arm(key string, at time.Time) error {
	_ = r.scheduler.DeleteJob(quartz.NewJobKey(key))

	j := job.NewFunctionJob[bool](func(ctx context.Context) (bool, error) {
		err := r.deliver(ctx, key)
		return err == nil, err
	})

	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	detail := quartz.NewJobDetail(j, quartz.NewJobKey(key))
	return r.scheduler.ScheduleJob(detail, quartz.NewRunOnceTrigger(delay))
}

// deliver runs a fired alarm under the key's exclusive lock. The store is
// consulted first: if the alarm was cancelled or re-armed further out since
// the job fired, the firing is stale and dropped.
func (r *Runtime) deliver(ctx context.Context, key string) error {
	h := r.handlerFor(key)
	if h == nil {
		r.logger.Warnw("alarm fired for key with no handler", "key", key)
		return nil
	}

	return r.Do(ctx, key, func(ctx context.Context) error {
		at, armed, err := r.store.Alarm(ctx, key)
		if err != nil {
			r.logger.Errorw("failed to read alarm state", "key", key, "error", err)
			return err
		}
		if !armed || time.Until(at) > fireSlack {
			return nil
		}
		if err := r.store.CancelAlarm(ctx, key); err != nil {
			r.logger.Errorw("failed to clear alarm slot", "key", key, "error", err)
			return err
		}

		if err := h(ctx, key); err != nil {
			r.logger.Errorw("wake-up handler failed", "key", key, "error", err)
			return err
		}
		return nil
	})
}

func (r *Runtime) handlerFor(key string) Handler {
	kind, _, ok := strings.Cut(key, ":")
	if !ok {
		return nil
	}
	r.handlersMu.RLock()
	defer r.handlersMu.RUnlock()
	return r.handlers[kind]
}

func (r *Runtime) acquire(key string) *keyLock {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[key]
	if !ok {
		l = &keyLock{}
		r.locks[key] = l
	}
	l.refs++
	return l
}

func (r *Runtime) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.locks[key]
	if !ok {
		return
	}
	l.refs--
	if l.refs == 0 {
		delete(r.locks, key)
	}
}
