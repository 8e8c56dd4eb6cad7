package capture

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgnsrekt/fxboard/internal/charts"
)

func TestSlotFor(t *testing.T) {
	date, slot := SlotFor(time.Date(2025, 9, 3, 7, 59, 0, 0, time.UTC))
	if date != "2025_09_03" || slot != "0700" {
		t.Fatalf("SlotFor() = %s, %s", date, slot)
	}
}

func TestCaptureSavesUnderSlot(t *testing.T) {
	store, err := charts.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	tokyo := time.FixedZone("JST", 9*3600)
	c := New(Config{ChartURL: "https://charts.example/usdjpy", Location: tokyo}, store)
	c.shoot = func(context.Context) ([]byte, error) { return []byte("\x89PNG"), nil }

	meta, err := c.Capture(context.Background(), time.Date(2025, 9, 3, 14, 59, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Capture() error: %v", err)
	}
	if meta.File != "[2025_09_03][2300].png" {
		t.Fatalf("file = %q", meta.File)
	}
	if meta.SourceURL != "https://charts.example/usdjpy" {
		t.Fatalf("source = %q", meta.SourceURL)
	}
	if _, err := os.Stat(filepath.Join(store.Dir(), meta.File)); err != nil {
		t.Fatalf("image not written: %v", err)
	}
}

func TestCaptureErrors(t *testing.T) {
	store, err := charts.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	c := New(Config{}, store)
	if _, err := c.CaptureNow(context.Background()); err == nil {
		t.Fatal("Capture() without URL error = nil")
	}

	c = New(Config{ChartURL: "https://charts.example"}, store)
	c.shoot = func(context.Context) ([]byte, error) { return nil, errors.New("net::ERR_NAME_NOT_RESOLVED") }
	if _, err := c.CaptureNow(context.Background()); err == nil {
		t.Fatal("Capture() with failing browser error = nil")
	}
	list, _ := store.List()
	if len(list) != 0 {
		t.Fatalf("images = %v; want none", list)
	}
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{}, nil)
	if c.cfg.Width != 1600 || c.cfg.Height != 900 || c.cfg.Timeout != time.Minute {
		t.Fatalf("defaults = %+v", c.cfg)
	}
	if c.NewTask(1).Name() != "chart-capture" {
		t.Fatal("task name")
	}
}
