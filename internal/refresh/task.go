// Package refresh runs named, independently cancellable periodic tasks.
package refresh

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DelayFunc computes how long to wait before the next run.
type DelayFunc func(now time.Time) time.Duration

// UntilMinuteMark returns the delay to the next HH:minute:00 strictly after now.
func UntilMinuteMark(now time.Time, minute int) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(time.Hour)
	}
	return next.Sub(now)
}

// AtMinute fires once an hour at the given minute of the wall clock in loc.
// A nil loc keeps the clock's own zone.
func AtMinute(minute int, loc *time.Location) DelayFunc {
	return func(now time.Time) time.Duration {
		if loc != nil {
			now = now.In(loc)
		}
		return UntilMinuteMark(now, minute)
	}
}

// Every fires at a fixed interval.
func Every(d time.Duration) DelayFunc {
	return func(time.Time) time.Duration { return d }
}

// Task is a goroutine that sleeps per its DelayFunc and then runs.
type Task struct {
	name  string
	delay DelayFunc
	run   func(ctx context.Context)
	now   func() time.Time

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTask builds a stopped task.
func NewTask(name string, delay DelayFunc, run func(ctx context.Context)) *Task {
	return &Task{name: name, delay: delay, run: run, now: time.Now}
}

// Name returns the task name.
func (t *Task) Name() string { return t.name }

// Start launches the task. Starting a running task is a no-op.
func (t *Task) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel, t.done = cancel, done
	go t.loop(ctx, done)
	slog.Debug("task started", "task", t.name)
}

func (t *Task) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		wait := t.delay(t.now())
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
		slog.Debug("task run", "task", t.name)
		t.run(ctx)
	}
}

// Stop cancels the task and waits for its goroutine to exit.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	slog.Debug("task stopped", "task", t.name)
}

// Restart stops and starts the task again.
func (t *Task) Restart(ctx context.Context) {
	t.Stop()
	t.Start(ctx)
}

// Running reports whether the task goroutine is alive.
func (t *Task) Running() bool {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}
