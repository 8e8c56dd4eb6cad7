package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestKVGetSet(t *testing.T) {
	kv, err := OpenKV(MemoryPath)
	if err != nil {
		t.Fatalf("OpenKV() error: %v", err)
	}
	defer kv.Close()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "login_password"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v; want false, nil", ok, err)
	}
	if err := kv.Set(ctx, "login_password", "first"); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	if err := kv.Set(ctx, "login_password", "second"); err != nil {
		t.Fatalf("Set() overwrite error: %v", err)
	}
	got, ok, err := kv.Get(ctx, "login_password")
	if err != nil || !ok || got != "second" {
		t.Fatalf("Get() = %q, %v, %v; want second, true, nil", got, ok, err)
	}
}

func TestKVPersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "fxboard.db")
	kv, err := OpenKV(path)
	if err != nil {
		t.Fatalf("OpenKV() error: %v", err)
	}
	if err := kv.Set(context.Background(), "k", "v"); err != nil {
		t.Fatal(err)
	}
	kv.Close()

	kv, err = OpenKV(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer kv.Close()
	if got, ok, _ := kv.Get(context.Background(), "k"); !ok || got != "v" {
		t.Fatalf("Get() after reopen = %q, %v", got, ok)
	}
}

func TestKVClosedReturnsError(t *testing.T) {
	kv, err := OpenKV(MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	kv.Close()
	if _, _, err := kv.Get(context.Background(), "k"); err == nil {
		t.Fatal("Get() on closed store error = nil")
	}
	if err := kv.Set(context.Background(), "k", "v"); err == nil {
		t.Fatal("Set() on closed store error = nil")
	}
}

func TestHistoryWritesPerSourceFiles(t *testing.T) {
	dir := t.TempDir()
	h := NewHistory(dir, 16, 1)
	h.now = func() time.Time { return time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC) }

	for i := 0; i < 3; i++ {
		if err := h.Append("28pair", map[string]int{"n": i}); err != nil {
			t.Fatalf("Append() error: %v", err)
		}
	}
	if err := h.Append("10pair", map[string]int{"n": 9}); err != nil {
		t.Fatal(err)
	}
	if err := h.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "2025-09-01", "28pair.jsonl"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer f.Close()
	var lines []map[string]int
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var m map[string]int
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			t.Fatalf("bad line %q: %v", sc.Text(), err)
		}
		lines = append(lines, m)
	}
	if len(lines) != 3 || lines[2]["n"] != 2 {
		t.Fatalf("lines = %v", lines)
	}
	if _, err := os.Stat(filepath.Join(dir, "2025-09-01", "10pair.jsonl")); err != nil {
		t.Fatalf("10pair history missing: %v", err)
	}

	if err := h.Append("28pair", nil); !errors.Is(err, ErrHistoryClosed) {
		t.Fatalf("Append() after Close = %v; want ErrHistoryClosed", err)
	}
}
