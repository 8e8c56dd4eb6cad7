package charts

import (
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// Grid is the verification table layout: one column per date, one row per
// hourly entry slot.
type Grid struct {
	Dates []string `yaml:"dates" json:"dates"`
	Slots []string `yaml:"slots,omitempty" json:"slots"`
}

// DefaultSlots returns the 24 hourly slots "0:00" .. "23:00".
func DefaultSlots() []string {
	slots := make([]string, 24)
	for h := range slots {
		slots[h] = fmt.Sprintf("%d:00", h)
	}
	return slots
}

// LoadGrid reads and validates a charts YAML file.
func LoadGrid(path string) (*Grid, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("charts config: %w", err)
	}
	var g Grid
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("charts config: %w", err)
	}
	if err := g.normalize(); err != nil {
		return nil, err
	}
	return &g, nil
}

func (g *Grid) normalize() error {
	for i, d := range g.Dates {
		if !ValidDate(d) {
			return fmt.Errorf("charts config: dates[%d] %q is not YYYY_MM_DD", i, d)
		}
	}
	if len(g.Slots) == 0 {
		g.Slots = DefaultSlots()
	}
	return nil
}

// Cell is one thumbnail slot of the rendered table.
type Cell struct {
	Date   string `json:"date"`
	Slot   string `json:"slot"`
	Path   string `json:"path"`
	Frame  string `json:"frame,omitempty"`
	Title  string `json:"title"`
	Exists bool   `json:"exists"`
}

// Row is one entry time across every date.
type Row struct {
	Slot  string `json:"slot"`
	Cells []Cell `json:"cells"`
}

// Table is the grid resolved against the files on disk.
type Table struct {
	Headers []string `json:"headers"`
	Rows    []Row    `json:"rows"`
}

// Table resolves each cell to a stored file. A nil store yields plain names.
func (g *Grid) Table(store *Store) Table {
	t := Table{Headers: make([]string, 0, len(g.Dates))}
	for _, d := range g.Dates {
		t.Headers = append(t.Headers, FormatDate(d))
	}

	for _, slot := range g.Slots {
		row := Row{Slot: slot, Cells: make([]Cell, 0, len(g.Dates))}
		for _, d := range g.Dates {
			sf := SlotFile(slot)
			file := FileName(d, sf, "")
			exists := false
			if store != nil {
				if img, ok := store.Lookup(d, sf); ok {
					file = img.File
					exists = true
				}
			}
			row.Cells = append(row.Cells, Cell{
				Date:   d,
				Slot:   sf,
				Path:   ImagePath(file),
				Frame:  FrameClass(file),
				Title:  ImageTitle(file),
				Exists: exists,
			})
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ImagePath is the URL an image file is served under.
func ImagePath(file string) string {
	return "/images/" + url.PathEscape(file)
}
