package auth

import (
	"net/http"
	"strings"
)

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login.html"

// GateConfig lists what the gate protects.
type GateConfig struct {
	Paths    []string
	Prefixes []string
}

// DefaultGateConfig protects the dashboard, /protected/ and the JSON API.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		Paths:    []string{"/", "/index.html"},
		Prefixes: []string{"/protected/", "/api/v1/"},
	}
}

// Protected reports whether path needs a session.
func (c GateConfig) Protected(path string) bool {
	if strings.Contains(path, "login.html") || strings.Contains(path, "admin.html") {
		return false
	}
	for _, p := range c.Paths {
		if path == p {
			return true
		}
	}
	for _, p := range c.Prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// Gate redirects requests to protected paths without a valid session
// cookie to the login page.
func Gate(cfg GateConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Protected(r.URL.Path) {
				c, err := r.Cookie(CookieName)
				if err != nil || !ValidToken(c.Value) {
					http.Redirect(w, r, LoginPath, http.StatusFound)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
