// Package render formats registry results as terminal tables.
package render

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hazyhaar/prenoms-registry/pkg/names"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Category colours of the comparison table.
var (
	ColorFemale = lipgloss.Color("#FFC0CB") // pink
	ColorMale   = lipgloss.Color("#87CEFA") // light sky blue
	ColorMixed  = lipgloss.Color("#DDA0DD") // plum
)

// CategoryColor returns the row colour of a category, or "" when it has none.
func CategoryColor(c names.Category) lipgloss.Color {
	switch c {
	case names.CategoryFemale:
		return ColorFemale
	case names.CategoryMale:
		return ColorMale
	case names.CategoryMixed:
		return ColorMixed
	}
	return ""
}

// DisplayName title-cases a canonical name for display ("marie-claire" ->
// "Marie-Claire").
func DisplayName(name string) string {
	return cases.Title(language.French).String(name)
}

// FormatCount prints n with French digit grouping.
func FormatCount(n int) string {
	return message.NewPrinter(language.French).Sprintf("%d", n)
}

type styles struct {
	header lipgloss.Style
	title  lipgloss.Style
	muted  lipgloss.Style
	row    lipgloss.Style
	box    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().Bold(true).Underline(true),
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("#5F5FD7")),
		muted:  r.NewStyle().Faint(true),
		row:    r.NewStyle().Foreground(lipgloss.Color("#000000")),
		box:    r.NewStyle().BorderStyle(lipgloss.RoundedBorder()).Padding(0, 1),
	}
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

func padLeft(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return strings.Repeat(" ", width-w) + s
	}
	return s
}

// truncate shortens s to width cells, marking the cut with an ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
