// Package api serves the dashboard pages, the auth endpoints and the JSON
// API on a chi router, with huma operations and the OpenAPI docs.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/dgnsrekt/fxboard/internal/auth"
	"github.com/dgnsrekt/fxboard/internal/charts"
	"github.com/dgnsrekt/fxboard/internal/dashboard"
	"github.com/dgnsrekt/fxboard/internal/relay"
	"github.com/dgnsrekt/fxboard/internal/view"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Service interface {
	Signals(ctx context.Context, source string) (view.View, error)
	Raw(ctx context.Context, source string) (json.RawMessage, error)
	Refresh(ctx context.Context, source string) (view.View, error)
	Charts(ctx context.Context) (*charts.Table, error)
	MarkOutcome(ctx context.Context, date, slot, outcome string) (charts.Image, error)
	Images(ctx context.Context) ([]charts.Image, error)
	ChartMeta(ctx context.Context, date, slot string) (charts.Meta, error)
	Status(ctx context.Context) dashboard.Status
	RenderDashboard(ctx context.Context, w io.Writer, source string) error
	Login(ctx context.Context, password string) (auth.Session, error)
	ChangePassword(ctx context.Context, adminPassword, oldPassword, newPassword string) error
}

// Options configures the non-API parts of the router.
type Options struct {
	Gate    auth.GateConfig
	Limiter *auth.LoginLimiter
	Broker  *relay.Broker
	// PublicDir is served under /data. ImagesDir under /images. Empty
	// disables the route.
	PublicDir string
	ImagesDir string
}

func NewServer(svc Service, opts Options) http.Handler {
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger)
	router.Use(middleware.Recoverer)
	router.Use(opts.Limiter.Middleware(authPath))
	router.Use(auth.Gate(opts.Gate))

	cfg := huma.DefaultConfig("FX Signal Dashboard API", "1.0.0")
	cfg.DocsPath = ""
	api := humachi.New(router, cfg)

	router.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		writeHTML(w, http.StatusOK, docsHTML)
	})
	router.Get("/docs/events", func(w http.ResponseWriter, r *http.Request) {
		writeHTML(w, http.StatusOK, eventsDocsHTML)
	})

	registerPageHandlers(router, svc)
	registerStaticHandlers(router, opts)
	if opts.Broker != nil {
		router.Get("/events", relay.SSEHandler(opts.Broker))
		router.Get("/ws", relay.WSHandler(opts.Broker))
	}

	registerAuthHandlers(api, svc)
	registerSignalHandlers(api, svc)
	registerChartHandlers(api, svc)
	registerStatusHandlers(api, svc)
	registerHealthHandlers(api)

	return router
}

func writeHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := io.WriteString(w, body); err != nil {
		slog.Debug("html response write failed", "error", err)
	}
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var coded *dashboard.CodedError
	if errors.As(err, &coded) {
		switch coded.Code {
		case dashboard.CodeValidation:
			return huma.Error400BadRequest(coded.Message)
		case dashboard.CodeNotFound:
			return huma.Error404NotFound(coded.Message)
		case dashboard.CodeFeedUnavailable:
			return huma.Error502BadGateway(coded.Message)
		default:
			return huma.Error500InternalServerError(fmt.Sprintf("%s: %s", coded.Code, coded.Message))
		}
	}
	return huma.Error500InternalServerError(err.Error())
}
