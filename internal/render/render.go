// Package render writes catalog views and one-line status messages for the
// CLI, either styled for a terminal or as JSON.
package render

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/mesh-intelligence/catalog/pkg/types"
)

// Kind classifies a status line.
type Kind string

const (
	KindOK     Kind = "ok"
	KindFailed Kind = "failed"
	KindInfo   Kind = "info"
)

// Styles are the lipgloss styles used for terminal output.
type Styles struct {
	Success lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
	Bold    lipgloss.Style
	Header  lipgloss.Style
}

// newStyles binds styles to r so color is only emitted when the
// destination supports it.
func newStyles(r *lipgloss.Renderer) *Styles {
	return &Styles{
		Success: r.NewStyle().Foreground(lipgloss.Color("2")),
		Error:   r.NewStyle().Foreground(lipgloss.Color("1")),
		Muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
		Bold:    r.NewStyle().Bold(true),
		Header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("4")),
	}
}

// Renderer writes to one destination in one mode.
type Renderer struct {
	w      io.Writer
	json   bool
	styles *Styles
}

// New returns a Renderer writing to w. With jsonMode every method emits a
// single JSON document instead of styled text.
func New(w io.Writer, jsonMode bool) *Renderer {
	return &Renderer{
		w:      w,
		json:   jsonMode,
		styles: newStyles(lipgloss.NewRenderer(w)),
	}
}

type statusJSON struct {
	Status  Kind   `json:"status"`
	Message string `json:"message"`
}

// Status writes one status line.
func (r *Renderer) Status(kind Kind, msg string) error {
	if r.json {
		return r.encode(statusJSON{Status: kind, Message: msg})
	}

	style := r.styles.Muted
	switch kind {
	case KindOK:
		style = r.styles.Success
	case KindFailed:
		style = r.styles.Error
	}
	_, err := fmt.Fprintln(r.w, style.Render(msg))
	return err
}

// CourseTable writes a heading followed by a number/title table.
func (r *Renderer) CourseTable(heading string, courses []*types.Course) error {
	if r.json {
		return r.encode(courses)
	}

	fmt.Fprintln(r.w, r.styles.Header.Render(heading))

	t := table.NewWriter()
	t.SetOutputMirror(r.w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Course", "Title"})
	for _, c := range courses {
		t.AppendRow(table.Row{c.CourseNumber, c.Title})
	}
	t.Render()

	_, err := fmt.Fprintln(r.w, r.styles.Muted.Render(fmt.Sprintf("(%d courses)", len(courses))))
	return err
}

// CourseDetails writes the full record of one course.
func (r *Renderer) CourseDetails(c *types.Course) error {
	if r.json {
		return r.encode(c)
	}

	fmt.Fprintf(r.w, "%s, %s\n", r.styles.Bold.Render(c.CourseNumber), c.Title)
	fmt.Fprintf(r.w, "%s %s\n", r.styles.Bold.Render("Major:"), c.Major)
	fmt.Fprintf(r.w, "%s %s\n", r.styles.Bold.Render("Category:"), c.Category)
	_, err := fmt.Fprintf(r.w, "%s %s\n", r.styles.Bold.Render("Prerequisites:"), c.PrerequisiteList())
	return err
}

func (r *Renderer) encode(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
