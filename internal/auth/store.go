package auth

import (
	"context"
	"log/slog"
)

// PasswordStore reads and writes password entries. Get never fails: it
// returns def when the value is missing or unreadable. Set reports success.
type PasswordStore interface {
	Get(ctx context.Context, key, def string) string
	Set(ctx context.Context, key, value string) bool
}

// KV is a raw key/value backend whose errors surface.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// FallbackStore adapts a KV to PasswordStore. A read error falls back to
// the default, so a storage outage accepts the default password.
type FallbackStore struct {
	kv KV
}

// NewFallbackStore wraps kv.
func NewFallbackStore(kv KV) *FallbackStore {
	return &FallbackStore{kv: kv}
}

func (s *FallbackStore) Get(ctx context.Context, key, def string) string {
	v, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		slog.Warn("password store read failed, using default", "key", key, "error", err)
		return def
	}
	if !ok || v == "" {
		return def
	}
	return v
}

func (s *FallbackStore) Set(ctx context.Context, key, value string) bool {
	if err := s.kv.Set(ctx, key, value); err != nil {
		slog.Error("password store update failed", "key", key, "error", err)
		return false
	}
	return true
}
