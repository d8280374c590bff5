package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/hazyhaar/prenoms-registry/pkg/names"
)

// Options controls the report layout.
type Options struct {
	// Color enables styling. Without it the output is plain aligned text.
	Color bool
	// NameWidth caps the name column; 0 means no cap.
	NameWidth int
}

// Renderer builds the report tables for one output.
type Renderer struct {
	opts   Options
	styles styles
}

// New returns a Renderer for w. Styles follow w's colour profile.
func New(w io.Writer, opts Options) *Renderer {
	return &Renderer{opts: opts, styles: newStyles(lipgloss.NewRenderer(w))}
}

func (r *Renderer) paint(st lipgloss.Style, s string) string {
	if !r.opts.Color {
		return s
	}
	return st.Render(s)
}

// column alignment
const (
	alignLeft = iota
	alignRight
)

// grid lays out a header and rows with per-column alignment. rowStyle, when
// set, styles whole data rows.
func (r *Renderer) grid(header []string, align []int, rows [][]string, rowStyle func(i int) (lipgloss.Style, bool)) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	line := func(cells []string) string {
		parts := make([]string, len(cells))
		for i, c := range cells {
			if align[i] == alignRight {
				parts[i] = padLeft(c, widths[i])
			} else {
				parts[i] = padRight(c, widths[i])
			}
		}
		return strings.Join(parts, "  ")
	}

	var sb strings.Builder
	sb.WriteString(r.paint(r.styles.header, line(header)))
	for i, row := range rows {
		sb.WriteByte('\n')
		text := line(row)
		if rowStyle != nil {
			if st, ok := rowStyle(i); ok {
				text = r.paint(st, text)
			}
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func (r *Renderer) section(title, body string) string {
	out := r.paint(r.styles.title, title) + "\n" + body
	if r.opts.Color {
		out = r.styles.box.Render(out)
	}
	return out + "\n"
}

func (r *Renderer) name(n string) string {
	return truncate(DisplayName(n), r.opts.NameWidth)
}

// Totals renders the yearly totals table.
func (r *Renderer) Totals(totals []names.YearlyTotal, sexes names.SexFilter) string {
	rows := make([][]string, len(totals))
	for i, t := range totals {
		rows[i] = []string{strconv.Itoa(t.Year), FormatCount(t.TotalBirths), FormatCount(t.DistinctNames)}
	}
	title := fmt.Sprintf("Naissances par année (%s)", strings.Join(sexes.Names(), ", "))
	if len(rows) == 0 {
		return r.section(title, r.paint(r.styles.muted, "aucune donnée"))
	}
	return r.section(title, r.grid(
		[]string{"année", "naissances", "prénoms"},
		[]int{alignLeft, alignRight, alignRight},
		rows, nil))
}

// Series renders one name's history with a column per sex.
func (r *Renderer) Series(s names.Series, category names.Category) string {
	title := fmt.Sprintf("%s (%s)", r.name(s.Name), s.Query)
	if s.Empty() {
		return r.section(title, r.paint(r.styles.muted, "prénom inconnu"))
	}
	if category != "" {
		title += " · " + string(category)
	}

	type point struct{ male, female string }
	byYear := make(map[int]*point)
	var years []int
	at := func(y int) *point {
		p, ok := byYear[y]
		if !ok {
			p = &point{male: "-", female: "-"}
			byYear[y] = p
			years = append(years, y)
		}
		return p
	}
	// Records is ordered by year, so years comes out sorted.
	for _, rec := range s.Records() {
		p := at(rec.Year)
		if rec.Sex == names.Male {
			p.male = FormatCount(rec.Count)
		} else {
			p.female = FormatCount(rec.Count)
		}
	}

	rows := make([][]string, len(years))
	for i, y := range years {
		rows[i] = []string{strconv.Itoa(y), byYear[y].male, byYear[y].female}
	}
	body := r.grid([]string{"année", "garçons", "filles"}, []int{alignLeft, alignRight, alignRight}, rows, nil)
	body += "\n" + r.paint(r.styles.muted, "total "+FormatCount(s.Total()))
	return r.section(title, body)
}

// Comparison renders the multi-period ranking, rows coloured by category.
func (r *Renderer) Comparison(c *names.Comparison) string {
	header := []string{"rang", "prénom"}
	align := []int{alignRight, alignLeft}
	for _, rk := range c.Rankings {
		header = append(header, fmt.Sprintf("%d ans (%d-%d)", rk.Period, rk.FirstYear, rk.LastYear))
		align = append(align, alignRight)
	}
	header = append(header, "catégorie")
	align = append(align, alignLeft)

	rows := make([][]string, len(c.Rows))
	for i, row := range c.Rows {
		cells := []string{strconv.Itoa(i + 1), r.name(row.Name)}
		for _, avg := range row.Averages {
			if avg.Valid {
				cells = append(cells, FormatCount(avg.Count))
			} else {
				cells = append(cells, "-")
			}
		}
		rows[i] = append(cells, string(row.Category))
	}

	title := fmt.Sprintf("Moyenne annuelle des naissances, année courante %d", c.CurrentYear)
	if len(rows) == 0 {
		return r.section(title, r.paint(r.styles.muted, "aucun prénom sur ces périodes"))
	}
	return r.section(title, r.grid(header, align, rows, func(i int) (lipgloss.Style, bool) {
		color := CategoryColor(c.Rows[i].Category)
		if color == "" {
			return lipgloss.Style{}, false
		}
		return r.styles.row.Background(color), true
	}))
}
