package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/dgnsrekt/fxboard/internal/dashboard"
	"github.com/dgnsrekt/fxboard/internal/view"
	"github.com/go-chi/chi/v5"
)

func registerPageHandlers(router chi.Router, svc Service) {
	index := func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		if err := svc.RenderDashboard(r.Context(), &buf, r.URL.Query().Get("source")); err != nil {
			var coded *dashboard.CodedError
			if errors.As(err, &coded) && coded.Code == dashboard.CodeValidation {
				http.Error(w, coded.Message, http.StatusBadRequest)
				return
			}
			slog.Error("render dashboard failed", "error", err)
			http.Error(w, "render failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		writeHTML(w, http.StatusOK, buf.String())
	}
	router.Get("/", index)
	router.Get("/index.html", index)

	router.Get("/login.html", func(w http.ResponseWriter, r *http.Request) {
		writeHTML(w, http.StatusOK, view.LoginHTML)
	})
	router.Get("/admin.html", func(w http.ResponseWriter, r *http.Request) {
		writeHTML(w, http.StatusOK, view.AdminHTML)
	})
}

func registerStaticHandlers(router chi.Router, opts Options) {
	if opts.PublicDir != "" {
		data := http.StripPrefix("/data/", http.FileServer(http.Dir(filepath.Join(opts.PublicDir, "data"))))
		router.Get("/data/*", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			data.ServeHTTP(w, r)
		})
	}
	if opts.ImagesDir != "" {
		router.Handle("/images/*", http.StripPrefix("/images/", http.FileServer(http.Dir(opts.ImagesDir))))
	}
}
