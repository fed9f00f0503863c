package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/matzehuels/coalsim/pkg/pipeline"
	"github.com/matzehuels/coalsim/pkg/sfs"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
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

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess for success messages.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

// printSuccess prints a success message.
func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + msg)
}

// printError prints an error message.
func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconError.Render(iconError) + " " + msg)
}

// printWarning prints a warning message.
func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(msg))
}

// printInfo prints an info/status message.
func printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + msg)
}

// printDetail prints a detail line (indented).
func printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Println("  " + StyleDim.Render(msg))
}

// =============================================================================
// File Output
// =============================================================================

// printFile prints a file output line.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// =============================================================================
// Key-Value Output
// =============================================================================

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(12)
	fmt.Println(keyStyle.Render(key) + " " + StyleValue.Render(value))
}

// =============================================================================
// Stats Display
// =============================================================================

// printStats prints genealogy statistics on a single line.
func printStats(leafCount, mutationCount int, cached bool) {
	var parts []string
	if leafCount > 0 {
		parts = append(parts, fmt.Sprintf("%s leaves", humanize.Comma(int64(leafCount))))
	}
	if mutationCount > 0 {
		parts = append(parts, fmt.Sprintf("%s mutations", humanize.Comma(int64(mutationCount))))
	}

	status := iconFresh
	statusStyle := styleComputed
	if cached {
		status = iconCached
		statusStyle = styleCached
	}
	parts = append(parts, statusStyle.Render(status))

	line := "  "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" · ")
		}
		line += StyleDim.Render(part)
	}
	fmt.Println(line)
}

// =============================================================================
// Commands & Next Steps
// =============================================================================

// printNextStep prints a suggested next command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// =============================================================================
// Tables
// =============================================================================

// newTable returns a table in the CLI style: rounded dim border, bold gray
// headers, right-aligned numeric columns after the first.
func newTable(headers ...string) *table.Table {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true).Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
	numberStyle := lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1).Align(lipgloss.Right)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return labelStyle
			default:
				return numberStyle
			}
		})
}

// spectrumTable renders spectrum report rows. The expectation column is
// omitted without a mutation rate.
func spectrumTable(rows []sfs.Row, withExpected bool) string {
	headers := []string{"i", "sites", "sites/n"}
	if withExpected {
		headers = append(headers, "E[η_i]")
	}
	t := newTable(headers...)
	for _, r := range rows {
		cells := []string{
			strconv.Itoa(r.Count),
			humanize.Comma(int64(r.Sites)),
			humanize.FtoaWithDigits(r.Frequency, 6),
		}
		if withExpected {
			cells = append(cells, humanize.FtoaWithDigits(r.Expected, 6))
		}
		t.Row(cells...)
	}
	return t.Render()
}

// batchTable renders the moments of a batch summary.
func batchTable(s *pipeline.BatchSummary) string {
	t := newTable("statistic", "mean", "variance", "std dev")
	for _, m := range []struct {
		name string
		m    pipeline.Moments
	}{
		{"T_MRCA", s.MRCA},
		{"branch length", s.BranchLen},
	} {
		t.Row(m.name,
			humanize.FtoaWithDigits(m.m.Mean, 6),
			humanize.FtoaWithDigits(m.m.Variance, 6),
			humanize.FtoaWithDigits(m.m.StdDev(), 6))
	}
	return t.Render()
}

// meanSpectrumTable renders the mean folded spectrum of a batch for bins
// 1..max(n/2, largest bin).
func meanSpectrumTable(s *pipeline.BatchSummary, theta *float64) string {
	last := s.N / 2
	for k := range s.MeanSpectrum {
		last = max(last, k)
	}
	headers := []string{"i", "mean sites"}
	if theta != nil {
		headers = append(headers, "E[η_i]")
	}
	t := newTable(headers...)
	for i := 1; i <= last; i++ {
		cells := []string{strconv.Itoa(i), humanize.FtoaWithDigits(s.MeanSpectrum[i], 4)}
		if theta != nil {
			cells = append(cells, humanize.FtoaWithDigits(sfs.ExpectedFolded(*theta, i, s.N), 4))
		}
		t.Row(cells...)
	}
	return t.Render()
}

// =============================================================================
// Utilities
// =============================================================================

// printNewline prints an empty line.
func printNewline() {
	fmt.Println()
}
