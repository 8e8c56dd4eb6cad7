package view

import (
	"fmt"
	"html/template"
	"io"

	"github.com/dgnsrekt/fxboard/internal/charts"
	"github.com/dgnsrekt/fxboard/internal/signals"
)

// Tab is one entry of the 10/28 pair toggle.
type Tab struct {
	Source string
	Label  string
	Active bool
}

// Page is the dashboard template data.
type Page struct {
	View   View
	Tabs   []Tab
	Charts *charts.Table
}

// Renderer renders dashboard pages.
type Renderer struct {
	dashboard *template.Template
}

// NewRenderer parses the page templates.
func NewRenderer() *Renderer {
	return &Renderer{
		dashboard: template.Must(template.New("dashboard").Parse(dashboardHTML)),
	}
}

// Tabs builds the source toggle with active marked.
func Tabs(active string) []Tab {
	tabs := make([]Tab, 0, len(signals.Sources))
	for _, src := range signals.Sources {
		mode, _ := signals.ModeFor(src)
		tabs = append(tabs, Tab{
			Source: src,
			Label:  fmt.Sprintf("%d通貨ペア", mode.Pairs),
			Active: src == active,
		})
	}
	return tabs
}

// Dashboard writes the full page for v. A nil table omits the
// verification grid.
func (r *Renderer) Dashboard(w io.Writer, v View, table *charts.Table) error {
	page := Page{View: v, Tabs: Tabs(v.Source), Charts: table}
	if err := r.dashboard.Execute(w, page); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return nil
}
