package services

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"map-analysis/models"
)

// DefaultReportWidth is used when the output is not a terminal.
const DefaultReportWidth = 54

const (
	noDataText       = "No data available."
	noReviewsText    = "No reviews data available."
	noIncompleteText = "No locations with incomplete data."
)

// Reporter renders an AnalysisReport as text. It never modifies the report.
type Reporter struct {
	out   io.Writer
	width int

	banner  lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
	cell    lipgloss.Style
	header  lipgloss.Style
	border  lipgloss.Style
}

// NewReporter creates a Reporter writing to out. A width of 0 or less selects
// DefaultReportWidth.
func NewReporter(out io.Writer, width int) *Reporter {
	if width <= 0 {
		width = DefaultReportWidth
	}
	re := lipgloss.NewRenderer(out)
	return &Reporter{
		out:     out,
		width:   width,
		banner:  re.NewStyle().Bold(true).Foreground(lipgloss.Color("#B48EAD")),
		heading: re.NewStyle().Bold(true).Foreground(lipgloss.Color("#EBCB8B")),
		muted:   re.NewStyle().Foreground(lipgloss.Color("#888888")),
		cell:    re.NewStyle().Padding(0, 1),
		header:  re.NewStyle().Bold(true).Padding(0, 1),
		border:  re.NewStyle().Foreground(lipgloss.Color("#444444")),
	}
}

// TerminalWidth returns the column count of f when it is a terminal, capped
// to a readable width, or fallback otherwise.
func TerminalWidth(f *os.File, fallback int) int {
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return fallback
	}
	w, _, err := term.GetSize(fd)
	if err != nil || w <= 0 {
		return fallback
	}
	if w > 100 {
		return 100
	}
	return w
}

// Print writes the four sections in fixed order.
func (r *Reporter) Print(rep *models.AnalysisReport) {
	sep := strings.Repeat("═", r.width)

	fmt.Fprintf(r.out, "\n%s\n", r.banner.Render(sep))
	fmt.Fprintf(r.out, "%s\n", r.banner.Render("  MAP DATA ANALYSIS"))
	fmt.Fprintf(r.out, "%s\n", r.banner.Render(sep))

	r.section("Valid Points Per Type")
	if len(rep.PointsPerType) == 0 {
		r.none(noDataText)
	} else {
		rows := make([][]string, 0, len(rep.PointsPerType))
		for _, tc := range rep.PointsPerType {
			rows = append(rows, []string{tc.Type, strconv.Itoa(tc.Count)})
		}
		r.table([]string{TypeField, "count"}, rows)
	}

	r.section("Average Rating Per Type")
	if len(rep.AverageRatingPerType) == 0 {
		r.none(noDataText)
	} else {
		rows := make([][]string, 0, len(rep.AverageRatingPerType))
		for _, ta := range rep.AverageRatingPerType {
			rows = append(rows, []string{ta.Type, formatCell(ta.Average)})
		}
		r.table([]string{TypeField, RatingField}, rows)
	}

	r.section("Location with Highest Reviews")
	if rep.MaxReviewsLocation == nil {
		r.none(noReviewsText)
	} else {
		rows := make([][]string, 0, len(rep.MaxReviewsLocation))
		for _, f := range rep.MaxReviewsLocation {
			rows = append(rows, []string{f.Name, formatCell(f.Value)})
		}
		r.table([]string{"field", "value"}, rows)
	}

	r.section("Locations with Incomplete Data")
	if len(rep.IncompleteData) == 0 {
		r.none(noIncompleteText)
	} else {
		headers := rep.IncompleteData[0].Names()
		rows := make([][]string, 0, len(rep.IncompleteData))
		for _, rec := range rep.IncompleteData {
			row := make([]string, len(headers))
			for i, name := range headers {
				v, _ := rec.Get(name)
				row[i] = formatCell(v)
			}
			rows = append(rows, row)
		}
		r.table(headers, rows)
	}

	fmt.Fprintf(r.out, "\n%s\n\n", r.banner.Render(sep))
}

func (r *Reporter) section(title string) {
	fmt.Fprintf(r.out, "\n%s\n", r.heading.Render("--- "+title+" ---"))
}

func (r *Reporter) none(text string) {
	fmt.Fprintf(r.out, "%s\n", r.muted.Render(text))
}

func (r *Reporter) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(r.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.header
			}
			return r.cell
		})
	fmt.Fprintln(r.out, t.String())
}

// formatCell renders one value for the text report. Nulls print as "null"
// and undefined averages as "NaN".
func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if math.IsNaN(x) {
			return "NaN"
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	}
}
