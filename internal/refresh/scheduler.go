package refresh

import (
	"context"
	"log/slog"
	"time"
)

// Loader is what the scheduler drives for each source.
type Loader interface {
	Refresh(ctx context.Context, source string) error
	Poll(ctx context.Context, source string) (bool, error)
}

// Config selects sources and timings. A nil Poll disables change polling.
type Config struct {
	Sources []string
	Reload  DelayFunc
	Poll    DelayFunc
}

// DefaultConfig reloads at HH:minute in loc and polls every interval.
func DefaultConfig(sources []string, minute int, interval time.Duration, loc *time.Location) Config {
	cfg := Config{Sources: sources, Reload: AtMinute(minute, loc)}
	if interval > 0 {
		cfg.Poll = Every(interval)
	}
	return cfg
}

// Scheduler owns a reload-<source> and a poll-<source> task per source.
type Scheduler struct {
	tasks []*Task
}

// NewScheduler builds stopped tasks for every source.
func NewScheduler(loader Loader, cfg Config) *Scheduler {
	s := &Scheduler{}
	for _, src := range cfg.Sources {
		source := src
		if cfg.Reload != nil {
			s.tasks = append(s.tasks, NewTask("reload-"+source, cfg.Reload, func(ctx context.Context) {
				// Failures are logged and recorded by the loader.
				_ = loader.Refresh(ctx, source)
			}))
		}
		if cfg.Poll != nil {
			s.tasks = append(s.tasks, NewTask("poll-"+source, cfg.Poll, func(ctx context.Context) {
				changed, err := loader.Poll(ctx, source)
				if err != nil {
					slog.Warn("change poll failed", "source", source, "error", err)
					return
				}
				if changed {
					slog.Info("feed changed", "source", source)
				}
			}))
		}
	}
	return s
}

// Tasks lists the scheduled tasks.
func (s *Scheduler) Tasks() []*Task { return s.tasks }

// Start launches every task.
func (s *Scheduler) Start(ctx context.Context) {
	for _, t := range s.tasks {
		t.Start(ctx)
	}
}

// Stop cancels every task and waits for them.
func (s *Scheduler) Stop() {
	for _, t := range s.tasks {
		t.Stop()
	}
}

// Restart stops and starts every task.
func (s *Scheduler) Restart(ctx context.Context) {
	s.Stop()
	s.Start(ctx)
}
