// Package view holds the per-source dashboard state and renders it.
package view

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/dgnsrekt/fxboard/internal/signals"
)

// View is an immutable snapshot of one source. Each load replaces it whole.
type View struct {
	Source     string               `json:"source"`
	Pairs      int                  `json:"pairs"`
	Rows       []signals.DisplayRow `json:"rows"`
	Summary    signals.Summary      `json:"summary"`
	HasSummary bool                 `json:"has_summary"`
	Raw        json.RawMessage      `json:"-"`
	LoadedAt   time.Time            `json:"loaded_at"`

	// The last failed load. Recorded for the API and logs; the page keeps
	// showing the previous rows.
	LastError   string    `json:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at,omitempty"`
}

// Loaded reports whether any load has succeeded.
func (v View) Loaded() bool { return !v.LoadedAt.IsZero() }

// Build turns a decoded feed into a View. The summary is taken over the
// rows in feed order before sorting.
func Build(source string, feed signals.Feed, at time.Time) View {
	mode, _ := signals.ModeFor(source)
	base := signals.Transform(feed)
	summary, ok := signals.Summarize(base, at)

	rows := signals.Annotate(base, mode)
	signals.SortRows(rows)

	return View{
		Source:     source,
		Pairs:      mode.Pairs,
		Rows:       rows,
		Summary:    summary,
		HasSummary: ok,
		Raw:        feed.Raw,
		LoadedAt:   at,
	}
}

// State is the explicit view state shared by the loader, the scheduler and
// request handlers.
type State struct {
	mu    sync.RWMutex
	views map[string]View
}

// NewState creates empty views for every known source.
func NewState() *State {
	s := &State{views: make(map[string]View, len(signals.Sources))}
	for _, src := range signals.Sources {
		mode, _ := signals.ModeFor(src)
		s.views[src] = View{Source: src, Pairs: mode.Pairs}
	}
	return s
}

// Get returns the current view. ok is false for unknown sources.
func (s *State) Get(source string) (View, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.views[source]
	return v, ok
}

// Set replaces the view for v.Source.
func (s *State) Set(v View) {
	s.mu.Lock()
	s.views[v.Source] = v
	s.mu.Unlock()
}

// RecordError notes a failed load without touching the rows.
func (s *State) RecordError(source string, err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.views[source]
	if !ok {
		return
	}
	v.LastError = err.Error()
	v.LastErrorAt = at
	s.views[source] = v
}
