package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/fxboard/internal/signals"
)

// TopPickWatcher alerts when the top-confidence pair of a source, or its
// direction, changes between loads. The first load of a source only primes it.
type TopPickWatcher struct {
	n Notifier

	mu       sync.Mutex
	last     map[string]signals.Summary
	queue    []alert
	draining bool
}

type alert struct {
	source string
	msg    string
}

// NewTopPickWatcher sends through n.
func NewTopPickWatcher(n Notifier) *TopPickWatcher {
	return &TopPickWatcher{n: n, last: make(map[string]signals.Summary)}
}

// record stores s and returns the alert it triggers, if any. w.mu must be held.
func (w *TopPickWatcher) record(source string, s signals.Summary) (string, bool) {
	prev, seen := w.last[source]
	w.last[source] = s
	if !seen || (prev.Pair == s.Pair && prev.Signal == s.Signal) {
		return "", false
	}
	return TopPickMessage(source, prev, s), true
}

// Observe records the newest summary and notifies on a change.
func (w *TopPickWatcher) Observe(ctx context.Context, source string, s signals.Summary) error {
	w.mu.Lock()
	msg, changed := w.record(source, s)
	w.mu.Unlock()

	if !changed {
		return nil
	}
	return w.n.Notify(ctx, msg)
}

// ObserveAsync records s before returning and queues any alert. Alerts are
// sent one at a time in the order they were recorded, each bounded by timeout.
func (w *TopPickWatcher) ObserveAsync(source string, s signals.Summary, timeout time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	msg, changed := w.record(source, s)
	if !changed {
		return
	}
	w.queue = append(w.queue, alert{source: source, msg: msg})
	if !w.draining {
		w.draining = true
		go w.drain(timeout)
	}
}

func (w *TopPickWatcher) drain(timeout time.Duration) {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.draining = false
			w.mu.Unlock()
			return
		}
		a := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if err := w.n.Notify(ctx, a.msg); err != nil {
			slog.Warn("top pick notification failed", "source", a.source, "error", err)
		}
		cancel()
	}
}

// TopPickMessage formats the change alert.
func TopPickMessage(source string, prev, cur signals.Summary) string {
	return fmt.Sprintf("[%s] %s\n%s %s (期待度 %d%%)\n前回: %s %s (期待度 %d%%)",
		source, cur.Title(),
		cur.Pair, cur.Direction, cur.Confidence,
		prev.Pair, prev.Direction, prev.Confidence)
}
