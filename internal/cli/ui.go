package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cpanmap/pkg/catalog"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - links
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleLink for URLs.
	StyleLink = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for numeric values.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(14)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleResolved = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconStar    = "★"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a written output path.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func printKeyValue(w io.Writer, key, value string) {
	fmt.Fprintln(w, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints load counters on a single dimmed line.
func printStats(w io.Writer, s catalog.LoadStats) {
	parts := []string{
		fmt.Sprintf("%d records", s.Records),
		fmt.Sprintf("%d malformed", s.Malformed),
		fmt.Sprintf("%d collisions", s.Collisions),
	}
	if s.Ignored > 0 {
		parts = append(parts, fmt.Sprintf("%d ignored", s.Ignored))
	}
	parts = append(parts, s.Duration.Round(time.Microsecond).String())
	fmt.Fprintln(w, "  "+StyleDim.Render(strings.Join(parts, " · ")))
}

// =============================================================================
// Entity Rendering
// =============================================================================

func formatCell(row, col int) string {
	return fmt.Sprintf("%d,%d (0x%x,0x%x)", row, col, row, col)
}

func formatRating(r *catalog.Rating) string {
	if r == nil {
		return "-"
	}
	return fmt.Sprintf("%s %.1f (%d) %s", strings.Repeat(iconStar, (r.Stars+5)/10), r.Score, r.Count,
		StyleDim.Render(strconv.Itoa(r.Stars)))
}

func renderDistribution(w io.Writer, c *catalog.Catalog, d *catalog.Distribution) {
	fmt.Fprintln(w, StyleTitle.Render(d.Name))
	printKeyValue(w, "Release name", d.DisplayName)
	if d.MainModule != "" {
		printKeyValue(w, "Main module", d.MainModule)
	}
	printKeyValue(w, "Maintainer", fmt.Sprintf("%s (%s)", d.Maintainer.DisplayName(), d.Maintainer.ID))
	if d.Namespace != nil {
		printKeyValue(w, "Namespace", d.Namespace.Name)
	}
	printKeyValue(w, "Cell", formatCell(d.Row, d.Col))
	printKeyValue(w, "Colour", c.ColourClass(d))
	printKeyValue(w, "Rating", formatRating(d.Rating))
	if date := d.ReleaseDate(); date != "" {
		printKeyValue(w, "Released", date)
	}
	fmt.Fprintln(w, StyleLink.Render("https://metacpan.org/pod/"+d.DocModule()))
}

func renderMaintainer(w io.Writer, c *catalog.Catalog, m *catalog.Maintainer) {
	fmt.Fprintln(w, StyleTitle.Render(m.DisplayName()))
	printKeyValue(w, "ID", m.ID)
	printKeyValue(w, "Distributions", StyleNumber.Render(strconv.Itoa(m.DistroCount)))
	if url := c.AvatarURL(m); url != "" {
		printKeyValue(w, "Avatar", url)
	}
	if detail, ok := m.Detail.Get(); ok {
		if place := strings.Trim(detail.City+", "+detail.Country, ", "); place != "" {
			printKeyValue(w, "Location", place)
		}
		for _, l := range detail.SocialLinks {
			printKeyValue(w, l.Network, l.ID)
		}
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func renderDistributionList(w io.Writer, c *catalog.Catalog, ds []*catalog.Distribution) {
	t := newTable("Distribution", "Maintainer", "Cell", "Rating")
	for _, d := range ds {
		t.Row(d.Name, d.Maintainer.ID, formatCell(d.Row, d.Col), formatRating(d.Rating))
	}
	fmt.Fprintln(w, t.Render())
}

func renderDependencies(w io.Writer, d *catalog.Distribution, r *catalog.DependencyReport) {
	fmt.Fprintln(w, StyleTitle.Render(d.Name)+StyleDim.Render(fmt.Sprintf("  %d dependencies", r.Len())))
	for _, g := range r.Groups {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleHeader.Render(g.Phase))
		t := newTable("Module", "Version", "Distribution")
		for _, dep := range g.Deps {
			distro := StyleDim.Render("not on map")
			if dep.Resolved() {
				distro = styleResolved.Render(dep.Distro)
			}
			t.Row(dep.Module, dep.Version, distro)
		}
		fmt.Fprintln(w, t.Render())
	}
}

func renderReverseDependencies(w io.Writer, d *catalog.Distribution, r *catalog.ReverseDependencyReport) {
	fmt.Fprintln(w, StyleTitle.Render(d.Name)+StyleDim.Render(fmt.Sprintf("  %d reverse dependencies", len(r.Entries))))
	if len(r.Entries) == 0 {
		return
	}
	t := newTable("Distribution", "Maintainer", "Released")
	for _, e := range r.Entries {
		t.Row(e.Distro, fmt.Sprintf("%s (%s)", e.MaintainerName, e.MaintainerID), e.ReleaseDate)
	}
	fmt.Fprintln(w, t.Render())
}
