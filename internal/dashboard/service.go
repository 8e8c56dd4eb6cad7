// Package dashboard ties the view state, chart store and auth together
// behind the operations the HTTP layer exposes.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dgnsrekt/fxboard/internal/auth"
	"github.com/dgnsrekt/fxboard/internal/charts"
	"github.com/dgnsrekt/fxboard/internal/refresh"
	"github.com/dgnsrekt/fxboard/internal/relay"
	"github.com/dgnsrekt/fxboard/internal/signals"
	"github.com/dgnsrekt/fxboard/internal/view"
)

// Service implements the dashboard operations.
type Service struct {
	loader   *view.Loader
	renderer *view.Renderer
	auth     *auth.Authenticator
	grid     *charts.Grid
	images   *charts.Store
	sched    *refresh.Scheduler
	broker   *relay.Broker
}

// Options are the parts a Service is built from. Grid and Images may be
// nil, which turns the verification grid off.
type Options struct {
	Loader   *view.Loader
	Renderer *view.Renderer
	Auth     *auth.Authenticator
	Grid     *charts.Grid
	Images   *charts.Store

	// Scheduler and Broker only feed Status. Both may be nil.
	Scheduler *refresh.Scheduler
	Broker    *relay.Broker
}

func NewService(opts Options) *Service {
	r := opts.Renderer
	if r == nil {
		r = view.NewRenderer()
	}
	return &Service{
		loader:   opts.Loader,
		renderer: r,
		auth:     opts.Auth,
		grid:     opts.Grid,
		images:   opts.Images,
		sched:    opts.Scheduler,
		broker:   opts.Broker,
	}
}

// ResolveSource trims source and defaults it. Unknown names are rejected.
func ResolveSource(source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return signals.DefaultSource, nil
	}
	if _, ok := signals.ModeFor(source); !ok {
		return "", newError(CodeValidation, fmt.Sprintf("unknown source %q (want %s)", source, strings.Join(signals.Sources, " or ")), nil)
	}
	return source, nil
}

// Signals returns the current view of source.
func (s *Service) Signals(ctx context.Context, source string) (view.View, error) {
	src, err := ResolveSource(source)
	if err != nil {
		return view.View{}, err
	}
	v, _ := s.loader.State().Get(src)
	return v, nil
}

// Raw returns the forexData object of the last successful load.
func (s *Service) Raw(ctx context.Context, source string) (json.RawMessage, error) {
	v, err := s.Signals(ctx, source)
	if err != nil {
		return nil, err
	}
	if !v.Loaded() {
		return nil, newError(CodeNotFound, "no data loaded for "+v.Source, nil)
	}
	return v.Raw, nil
}

// Refresh loads source now.
func (s *Service) Refresh(ctx context.Context, source string) (view.View, error) {
	src, err := ResolveSource(source)
	if err != nil {
		return view.View{}, err
	}
	v, err := s.loader.Load(ctx, src)
	if err != nil {
		return view.View{}, newError(CodeFeedUnavailable, "failed to load "+src, err)
	}
	return v, nil
}

// Charts returns the verification grid. It is nil when no grid is configured.
func (s *Service) Charts(ctx context.Context) (*charts.Table, error) {
	if s.grid == nil {
		return nil, nil
	}
	t := s.grid.Table(s.images)
	return &t, nil
}

// MarkOutcome tags a stored chart image as Win or Lose. An empty outcome
// clears the tag.
func (s *Service) MarkOutcome(ctx context.Context, date, slot, outcome string) (charts.Image, error) {
	if s.images == nil {
		return charts.Image{}, newError(CodeNotFound, "chart images are not configured", nil)
	}
	img, err := s.images.MarkOutcome(strings.TrimSpace(date), strings.TrimSpace(slot), strings.TrimSpace(outcome))
	switch {
	case err == nil:
		return img, nil
	case errors.Is(err, charts.ErrInvalid):
		return charts.Image{}, newError(CodeValidation, "date must be YYYY_MM_DD, slot HHMM and outcome Win, Lose or empty", err)
	case errors.Is(err, charts.ErrNotFound):
		return charts.Image{}, newError(CodeNotFound, fmt.Sprintf("no chart image for %s %s", date, slot), err)
	default:
		return charts.Image{}, newError(CodeStorage, "failed to tag chart image", err)
	}
}

// Images lists every stored chart image.
func (s *Service) Images(ctx context.Context) ([]charts.Image, error) {
	if s.images == nil {
		return []charts.Image{}, nil
	}
	images, err := s.images.List()
	if err != nil {
		return nil, newError(CodeStorage, "failed to list chart images", err)
	}
	return images, nil
}

// ChartMeta returns the capture metadata of one image.
func (s *Service) ChartMeta(ctx context.Context, date, slot string) (charts.Meta, error) {
	if s.images == nil {
		return charts.Meta{}, newError(CodeNotFound, "chart images are not configured", nil)
	}
	meta, err := s.images.Get(strings.TrimSpace(date), strings.TrimSpace(slot))
	switch {
	case err == nil:
		return meta, nil
	case errors.Is(err, charts.ErrInvalid):
		return charts.Meta{}, newError(CodeValidation, "date must be YYYY_MM_DD and slot HHMM", err)
	case errors.Is(err, charts.ErrNotFound):
		return charts.Meta{}, newError(CodeNotFound, fmt.Sprintf("no capture metadata for %s %s", date, slot), err)
	default:
		return charts.Meta{}, newError(CodeStorage, "failed to read capture metadata", err)
	}
}

// SourceStatus is the load state of one source.
type SourceStatus struct {
	Source      string    `json:"source"`
	Loaded      bool      `json:"loaded"`
	LoadedAt    time.Time `json:"loaded_at,omitempty"`
	Rows        int       `json:"rows"`
	LastError   string    `json:"last_error,omitempty"`
	LastErrorAt time.Time `json:"last_error_at,omitempty"`
}

// TaskStatus is one scheduled task.
type TaskStatus struct {
	Name    string `json:"name"`
	Running bool   `json:"running"`
}

// Status reports load state, scheduled tasks and push subscribers.
type Status struct {
	Sources       []SourceStatus `json:"sources"`
	Tasks         []TaskStatus   `json:"tasks"`
	Subscribers   int            `json:"subscribers"`
	DroppedEvents int64          `json:"dropped_events"`
}

func (s *Service) Status(ctx context.Context) Status {
	st := Status{Sources: make([]SourceStatus, 0, len(signals.Sources)), Tasks: []TaskStatus{}}
	for _, src := range signals.Sources {
		v, _ := s.loader.State().Get(src)
		st.Sources = append(st.Sources, SourceStatus{
			Source:      src,
			Loaded:      v.Loaded(),
			LoadedAt:    v.LoadedAt,
			Rows:        len(v.Rows),
			LastError:   v.LastError,
			LastErrorAt: v.LastErrorAt,
		})
	}
	if s.sched != nil {
		for _, t := range s.sched.Tasks() {
			st.Tasks = append(st.Tasks, TaskStatus{Name: t.Name(), Running: t.Running()})
		}
	}
	if s.broker != nil {
		st.Subscribers = s.broker.ClientCount()
		st.DroppedEvents = s.broker.Dropped()
	}
	return st
}

// RenderDashboard writes the page for source.
func (s *Service) RenderDashboard(ctx context.Context, w io.Writer, source string) error {
	v, err := s.Signals(ctx, source)
	if err != nil {
		return err
	}
	table, err := s.Charts(ctx)
	if err != nil {
		return err
	}
	return s.renderer.Dashboard(w, v, table)
}

// Login checks password and mints a session. Errors are auth sentinels.
func (s *Service) Login(ctx context.Context, password string) (auth.Session, error) {
	return s.auth.Login(ctx, password)
}

// ChangePassword replaces the login password.
func (s *Service) ChangePassword(ctx context.Context, adminPassword, oldPassword, newPassword string) error {
	return s.auth.ChangePassword(ctx, adminPassword, oldPassword, newPassword)
}
