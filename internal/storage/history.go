package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ErrHistoryClosed is returned by Append after Close.
var ErrHistoryClosed = errors.New("history writer is closed")

// ErrHistoryFull is returned when the write buffer is full. The record is dropped.
var ErrHistoryFull = errors.New("history buffer full")

type historyRecord struct {
	source string
	data   any
}

// History appends one JSON line per loaded view to
// baseDir/YYYY-MM-DD/<source>.jsonl. Writes are async and never block the
// caller.
type History struct {
	baseDir   string
	maxSizeMB int
	now       func() time.Time

	writeCh chan historyRecord
	done    chan struct{}
	wg      sync.WaitGroup

	mu      sync.Mutex
	date    string
	writers map[string]*lumberjack.Logger
}

// NewHistory starts the background writer.
func NewHistory(baseDir string, bufferSize, maxSizeMB int) *History {
	h := &History{
		baseDir:   baseDir,
		maxSizeMB: maxSizeMB,
		now:       time.Now,
		writeCh:   make(chan historyRecord, bufferSize),
		done:      make(chan struct{}),
		writers:   make(map[string]*lumberjack.Logger),
	}
	h.wg.Add(1)
	go h.writeLoop()
	return h
}

// Append queues record under source.
func (h *History) Append(source string, record any) error {
	select {
	case <-h.done:
		return ErrHistoryClosed
	default:
	}
	select {
	case h.writeCh <- historyRecord{source: source, data: record}:
		return nil
	default:
		slog.Warn("history buffer full, dropping record", "source", source)
		return ErrHistoryFull
	}
}

// Close flushes queued records and closes the files.
func (h *History) Close() error {
	close(h.done)
	h.wg.Wait()

	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for _, w := range h.writers {
		errs = append(errs, w.Close())
	}
	h.writers = map[string]*lumberjack.Logger{}
	return errors.Join(errs...)
}

func (h *History) writeLoop() {
	defer h.wg.Done()
	for {
		select {
		case rec := <-h.writeCh:
			h.write(rec)
		case <-h.done:
			for {
				select {
				case rec := <-h.writeCh:
					h.write(rec)
				default:
					return
				}
			}
		}
	}
}

func (h *History) write(rec historyRecord) {
	data, err := json.Marshal(rec.data)
	if err != nil {
		slog.Error("history marshal failed", "source", rec.source, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	w, err := h.writerLocked(rec.source)
	if err != nil {
		slog.Error("history open failed", "source", rec.source, "error", err)
		return
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		slog.Error("history write failed", "source", rec.source, "error", err)
	}
}

// writerLocked returns the file for source, starting new files when the
// UTC date rolls over.
func (h *History) writerLocked(source string) (*lumberjack.Logger, error) {
	date := h.now().UTC().Format("2006-01-02")
	if date != h.date {
		for _, w := range h.writers {
			_ = w.Close()
		}
		h.writers = make(map[string]*lumberjack.Logger)
		h.date = date
	}
	if w, ok := h.writers[source]; ok {
		return w, nil
	}

	dir := filepath.Join(h.baseDir, date)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, source+".jsonl"),
		MaxSize:    h.maxSizeMB,
		MaxBackups: 100,
		MaxAge:     30,
	}
	h.writers[source] = w
	slog.Info("opened history file", "file", w.Filename)
	return w, nil
}
