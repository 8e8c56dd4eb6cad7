package charts

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("chart image not found")
	ErrInvalid  = errors.New("invalid chart reference")
)

// Meta describes a stored chart capture.
type Meta struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Slot      string    `json:"slot"`
	Outcome   string    `json:"outcome,omitempty"`
	File      string    `json:"file"`
	SizeBytes int       `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
	SourceURL string    `json:"source_url,omitempty"`
}

// Store manages chart images and their metadata sidecars on disk.
type Store struct {
	dir string
	mu  sync.RWMutex
	now func() time.Time
}

// NewStore creates a Store and ensures the directory exists.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("chart store: mkdir %s: %w", dir, err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

// Dir is the directory images are served from.
func (s *Store) Dir() string { return s.dir }

func validate(date, slot string) error {
	if !ValidDate(date) || !ValidSlot(slot) {
		return fmt.Errorf("%w: date=%q slot=%q", ErrInvalid, date, slot)
	}
	return nil
}

func (s *Store) metaPath(date, slot string) string {
	return filepath.Join(s.dir, fmt.Sprintf("[%s][%s].json", date, slot))
}

// Save writes a capture for date/slot, replacing any earlier one and
// dropping its outcome tag.
func (s *Store) Save(date, slot string, png []byte, sourceURL string) (Meta, error) {
	if err := validate(date, slot); err != nil {
		return Meta{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeImagesLocked(date, slot)

	meta := Meta{
		ID:        uuid.NewString(),
		Date:      date,
		Slot:      slot,
		File:      FileName(date, slot, ""),
		SizeBytes: len(png),
		CreatedAt: s.now().UTC(),
		SourceURL: sourceURL,
	}

	imgPath := filepath.Join(s.dir, meta.File)
	if err := os.WriteFile(imgPath, png, 0o644); err != nil {
		return Meta{}, fmt.Errorf("chart store: write image: %w", err)
	}
	if err := s.writeMetaLocked(meta); err != nil {
		_ = os.Remove(imgPath)
		return Meta{}, err
	}
	return meta, nil
}

func (s *Store) writeMetaLocked(meta Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("chart store: marshal meta: %w", err)
	}
	if err := os.WriteFile(s.metaPath(meta.Date, meta.Slot), data, 0o644); err != nil {
		return fmt.Errorf("chart store: write meta: %w", err)
	}
	return nil
}

func (s *Store) removeImagesLocked(date, slot string) {
	for _, outcome := range []string{"", OutcomeWin, OutcomeLose} {
		p := filepath.Join(s.dir, FileName(date, slot, outcome))
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			slog.Debug("chart image cleanup failed", "path", p, "error", err)
		}
	}
}

// Get reads the metadata sidecar for date/slot.
func (s *Store) Get(date, slot string) (Meta, error) {
	if err := validate(date, slot); err != nil {
		return Meta{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.readMetaLocked(date, slot)
}

func (s *Store) readMetaLocked(date, slot string) (Meta, error) {
	data, err := os.ReadFile(s.metaPath(date, slot))
	if err != nil {
		if os.IsNotExist(err) {
			return Meta{}, fmt.Errorf("%w: %s %s", ErrNotFound, date, slot)
		}
		return Meta{}, fmt.Errorf("chart store: read meta: %w", err)
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("chart store: unmarshal meta: %w", err)
	}
	return meta, nil
}

// Lookup finds the image on disk for date/slot, tagged files first.
func (s *Store) Lookup(date, slot string) (Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(date, slot)
}

func (s *Store) lookupLocked(date, slot string) (Image, bool) {
	for _, outcome := range []string{OutcomeWin, OutcomeLose, ""} {
		name := FileName(date, slot, outcome)
		if _, err := os.Stat(filepath.Join(s.dir, name)); err == nil {
			img, _ := ParseFileName(name)
			return img, true
		}
	}
	return Image{}, false
}

// List returns every image in the directory ordered by date then slot.
func (s *Store) List() ([]Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("chart store: read dir: %w", err)
	}

	images := make([]Image, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		img, ok := ParseFileName(e.Name())
		if !ok {
			continue
		}
		images = append(images, img)
	}

	sort.Slice(images, func(i, j int) bool {
		if images[i].Date != images[j].Date {
			return images[i].Date < images[j].Date
		}
		return images[i].Slot < images[j].Slot
	})
	return images, nil
}

// MarkOutcome renames the image for date/slot to carry the outcome tag.
// An empty outcome clears the tag.
func (s *Store) MarkOutcome(date, slot, outcome string) (Image, error) {
	if err := validate(date, slot); err != nil {
		return Image{}, err
	}
	if !ValidOutcome(outcome) {
		return Image{}, fmt.Errorf("%w: outcome=%q", ErrInvalid, outcome)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lookupLocked(date, slot)
	if !ok {
		return Image{}, fmt.Errorf("%w: %s %s", ErrNotFound, date, slot)
	}

	target := FileName(date, slot, outcome)
	if current.File != target {
		if err := os.Rename(filepath.Join(s.dir, current.File), filepath.Join(s.dir, target)); err != nil {
			return Image{}, fmt.Errorf("chart store: rename: %w", err)
		}
	}

	meta, err := s.readMetaLocked(date, slot)
	switch {
	case err == nil:
		meta.Outcome = outcome
		meta.File = target
		if err := s.writeMetaLocked(meta); err != nil {
			return Image{}, err
		}
	case errors.Is(err, ErrNotFound):
		// Images copied in by hand have no sidecar.
	default:
		return Image{}, err
	}

	img, _ := ParseFileName(target)
	return img, nil
}
