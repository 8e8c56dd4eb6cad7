package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgnsrekt/fxboard/internal/refresh"
)

// ErrMissingForexData is returned for JSON without a top-level forexData key.
var ErrMissingForexData = errors.New("missing forexData")

// File is one source/destination pair.
type File struct {
	Name        string `mapstructure:"name"`
	Source      string `mapstructure:"source"`
	Destination string `mapstructure:"destination"`
}

// CopyFile decodes src and writes it to dst as indented UTF-8, keeping key
// order. dst is replaced atomically.
func CopyFile(src, dst string) error {
	raw, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	text, enc, err := Decode(raw)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(text, &top); err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}
	if _, ok := top["forexData"]; !ok {
		return fmt.Errorf("%s: %w", src, ErrMissingForexData)
	}

	var out bytes.Buffer
	if err := json.Indent(&out, text, "", "  "); err != nil {
		return fmt.Errorf("indent %s: %w", src, err)
	}
	out.WriteByte('\n')

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(dst), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".ingest-*")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(out.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return fmt.Errorf("rename to %s: %w", dst, err)
	}

	slog.Debug("ingest decoded", "source", src, "encoding", enc)
	return nil
}

// CopyAll copies every file and returns how many succeeded.
func CopyAll(files []File) int {
	copied := 0
	for _, f := range files {
		if err := CopyFile(f.Source, f.Destination); err != nil {
			slog.Error("ingest copy failed", "name", f.Name, "error", err)
			continue
		}
		slog.Info("ingest copied", "name", f.Name, "destination", f.Destination)
		copied++
	}
	if copied == 0 {
		slog.Warn("no files were copied", "total", len(files))
	} else {
		slog.Info("ingest run complete", "copied", fmt.Sprintf("%d/%d", copied, len(files)))
	}
	return copied
}

// CheckSources logs whether each source file exists.
func CheckSources(files []File) {
	for _, f := range files {
		_, err := os.Stat(f.Source)
		status := "EXISTS"
		if err != nil {
			status = "MISSING"
		}
		slog.Info("ingest source", "name", f.Name, "path", f.Source, "status", status)
	}
}

// NewTask copies files once an hour at minute of the host clock, which is the
// clock the terminal export runs on.
func NewTask(files []File, minute int) *refresh.Task {
	return refresh.NewTask("ingest", refresh.AtMinute(minute, time.Local), func(context.Context) {
		CopyAll(files)
	})
}
