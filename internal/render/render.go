// Package render formats calendar results for the terminal.
package render

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"github.com/zapponejosh/churchyear/internal/calendar"
	"github.com/zapponejosh/churchyear/internal/precedence"
)

const (
	cellPadding = 1

	// border and padding added by tableWrapperStyle
	tableChrome = 4

	// columns wider than this give up cells first when a table is too wide
	minColumnWidth = 8
)

var noColorMode bool // Global flag to disable all color output

// SetNoColor sets the global no-color flag.
func SetNoColor(disable bool) {
	noColorMode = disable
}

// ColorEnabled reports whether output to f should carry ANSI colors.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// DetectWidth returns the width of the terminal behind f. It falls back to
// 100 columns when the size is unknown and returns 0 when f is not a
// terminal at all.
func DetectWidth(f *os.File) int {
	fd := f.Fd()
	if !isatty.IsTerminal(fd) {
		return 0
	}
	if w, _, err := term.GetSize(int(fd)); err == nil {
		return w
	}
	return 100
}

var maxWidth int // 0 means tables are never narrowed

// SetWidth caps table output at w columns. Zero or less removes the cap.
func SetWidth(w int) {
	maxWidth = max(w, 0)
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FEC260"))
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#A5B4FC"))
	labelStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#94A3B8"))
	tableWrapperStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#475569")).
				Padding(0, 1)
)

// Vestment colors. Black is drawn on a light background so it stays
// visible on dark terminals.
var colorStyles = map[calendar.Color]lipgloss.Style{
	calendar.ColorWhite:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F8FAFC")).Bold(true),
	calendar.ColorRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
	calendar.ColorViolet: lipgloss.NewStyle().Foreground(lipgloss.Color("#A855F7")).Bold(true),
	calendar.ColorBlack:  lipgloss.NewStyle().Foreground(lipgloss.Color("#0F172A")).Background(lipgloss.Color("#CBD5E1")),
	calendar.ColorGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("#22C55E")).Bold(true),
}

// Colored renders s in the style of liturgical color c.
func Colored(c calendar.Color, s string) string {
	if noColorMode {
		return s
	}
	style, ok := colorStyles[c]
	if !ok {
		return s
	}
	return style.Render(s)
}

func title(s string) string {
	if noColorMode {
		return s
	}
	return titleStyle.Render(s)
}

func label(s string) string {
	if noColorMode {
		return s
	}
	return labelStyle.Render(s)
}

// Day renders one resolved day as a short block.
func Day(d precedence.ResolvedDay) string {
	var b strings.Builder

	fmt.Fprintln(&b, title(d.Date.Format("Monday, January 2, 2006")))
	fmt.Fprintf(&b, "%s %s\n", label("Observance:"), Colored(d.Color, d.Primary.Name))

	season := d.Season.String()
	if d.WeekOfSeason > 0 {
		season = fmt.Sprintf("%s (week %d)", season, d.WeekOfSeason)
	}
	fmt.Fprintf(&b, "%s %s\n", label("Season:    "), season)
	fmt.Fprintf(&b, "%s %s\n", label("Rank:      "), d.Primary.Rank)
	fmt.Fprintf(&b, "%s %s\n", label("Color:     "), Colored(d.Color, d.Color.String()))

	for _, c := range d.Commemorations {
		fmt.Fprintf(&b, "%s %s (%s)\n", label("Commemorate:"), c.Name, c.Rank)
	}
	return strings.TrimRight(b.String(), "\n")
}

// Days renders resolved days as a table.
func Days(days []precedence.ResolvedDay) string {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{
			calendar.FormatDate(d.Date),
			d.Date.Weekday().String()[:3],
			d.Primary.Name,
			d.Primary.Rank.String(),
			d.Color.String(),
			d.Season.String(),
		})
	}
	return renderTable([]string{"Date", "Day", "Observance", "Rank", "Color", "Season"}, rows, 4)
}

// Easter renders a year to Easter date table.
func Easter(dates map[int]time.Time) string {
	years := make([]int, 0, len(dates))
	for y := range dates {
		years = append(years, y)
	}
	sort.Ints(years)

	rows := make([][]string, 0, len(years))
	for _, y := range years {
		rows = append(rows, []string{fmt.Sprint(y), dates[y].Format("Mon Jan 2")})
	}
	return renderTable([]string{"Year", "Easter"}, rows, -1)
}

// HolyDays renders the canonical holy days of a year.
func HolyDays(days []calendar.HolyDay) string {
	rows := make([][]string, 0, len(days))
	for _, d := range days {
		rows = append(rows, []string{calendar.FormatDate(d.Date), d.Name, string(d.Type)})
	}
	return renderTable([]string{"Date", "Holy Day", "Type"}, rows, -1)
}

// MoveableFeasts renders the Easter-relative table of a year in offset
// order.
func MoveableFeasts(dates map[string]time.Time) string {
	feasts := calendar.MoveableFeasts()
	rows := make([][]string, 0, len(feasts))
	for _, f := range feasts {
		date, ok := dates[f.Name]
		if !ok {
			continue
		}
		rows = append(rows, []string{calendar.FormatDate(date), f.Name, fmt.Sprintf("%+d", f.Offset)})
	}
	return renderTable([]string{"Date", "Feast", "Offset"}, rows, -1)
}

// renderTable lays rows out with bubbles/table. When colorCol is a valid
// index, color names in that column are painted after layout so that
// escape codes do not skew column widths.
func renderTable(headers []string, rows [][]string, colorCol int) string {
	columns := make([]table.Column, len(headers))
	for i, h := range headers {
		width := lipgloss.Width(h)
		for _, r := range rows {
			width = max(width, lipgloss.Width(r[i]))
		}
		columns[i] = table.Column{Title: h, Width: width}
	}
	fitColumns(columns, maxWidth)

	tableRows := make([]table.Row, len(rows))
	for i, r := range rows {
		tableRows[i] = table.Row(r)
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(tableRows),
		table.WithHeight(len(rows)+2),
	)
	t.SetStyles(tableStyles())
	t.Blur()

	view := strings.TrimRight(t.View(), "\n")
	if noColorMode {
		return view
	}
	if colorCol >= 0 {
		view = paintColors(view)
	}
	return tableWrapperStyle.Render(view)
}

// fitColumns narrows the widest column one cell at a time until the table
// fits in limit. bubbles/table truncates the cells that no longer fit.
func fitColumns(columns []table.Column, limit int) {
	if limit <= 0 {
		return
	}
	total := tableChrome
	for _, c := range columns {
		total += c.Width + 2*cellPadding
	}
	for total > limit {
		widest := 0
		for i, c := range columns {
			if c.Width > columns[widest].Width {
				widest = i
			}
		}
		if columns[widest].Width <= minColumnWidth {
			return
		}
		columns[widest].Width--
		total--
	}
}

func paintColors(view string) string {
	for c := range colorStyles {
		name := c.String()
		view = strings.ReplaceAll(view, " "+name+" ", " "+Colored(c, name)+" ")
	}
	return view
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	if noColorMode {
		styles.Header = lipgloss.NewStyle().Padding(0, cellPadding)
	} else {
		styles.Header = headerStyle.Padding(0, cellPadding)
	}
	styles.Selected = lipgloss.NewStyle()
	styles.Cell = lipgloss.NewStyle().Padding(0, cellPadding)
	return styles
}
