package view

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/dgnsrekt/fxboard/internal/signals"
)

// Fetcher retrieves a source document.
type Fetcher interface {
	Fetch(ctx context.Context, source string) (signals.Feed, error)
}

// Loader fetches, transforms and stores views, then tells listeners.
type Loader struct {
	fetcher Fetcher
	state   *State
	loc     *time.Location
	now     func() time.Time

	mu        sync.RWMutex
	listeners []func(View)
}

// NewLoader wires a fetcher to a state. loc sets the hour shown in the
// summary banner; nil means local time.
func NewLoader(fetcher Fetcher, state *State, loc *time.Location) *Loader {
	if loc == nil {
		loc = time.Local
	}
	return &Loader{fetcher: fetcher, state: state, loc: loc, now: time.Now}
}

// State returns the state the loader writes to.
func (l *Loader) State() *State { return l.state }

// OnUpdate registers fn to run after every applied view.
func (l *Loader) OnUpdate(fn func(View)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Load fetches source once and replaces its view. On failure the error is
// logged and recorded and the previous view is kept. There is no retry.
func (l *Loader) Load(ctx context.Context, source string) (View, error) {
	feed, err := l.fetcher.Fetch(ctx, source)
	if err != nil {
		slog.Error("load forex data failed", "source", source, "error", err)
		l.state.RecordError(source, err, l.now())
		return View{}, fmt.Errorf("load %s: %w", source, err)
	}
	v := l.Apply(source, feed)
	slog.Info("forex data loaded", "source", source, "pairs", len(v.Rows))
	return v, nil
}

// Refresh is Load without the view, for scheduled runs.
func (l *Loader) Refresh(ctx context.Context, source string) error {
	_, err := l.Load(ctx, source)
	return err
}

// Poll fetches source and applies it only if its forexData differs from
// the current view.
func (l *Loader) Poll(ctx context.Context, source string) (bool, error) {
	feed, err := l.fetcher.Fetch(ctx, source)
	if err != nil {
		return false, fmt.Errorf("poll %s: %w", source, err)
	}
	if cur, ok := l.state.Get(source); ok && cur.Loaded() && bytes.Equal(cur.Raw, feed.Raw) {
		return false, nil
	}
	l.Apply(source, feed)
	return true, nil
}

// Apply builds and stores a view from an already fetched feed.
func (l *Loader) Apply(source string, feed signals.Feed) View {
	v := Build(source, feed, l.now().In(l.loc))
	l.state.Set(v)

	l.mu.RLock()
	listeners := slices.Clone(l.listeners)
	l.mu.RUnlock()
	for _, fn := range listeners {
		fn(v)
	}
	return v
}
