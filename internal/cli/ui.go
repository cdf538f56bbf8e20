package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorRed    = lipgloss.Color("167") // errors
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // labels
	colorDim    = lipgloss.Color("240") // muted
)

var (
	// StyleTitle for section headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warnings.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleLabel   = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

// status icons
var (
	iconSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	iconError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	iconWarning = lipgloss.NewStyle().Foreground(colorYellow).Render("!")
	iconInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
	iconArrow   = StyleDim.Render("→")
)

// statusOut receives every status line. Stdout is reserved for command
// output so it can be piped.
var statusOut io.Writer = os.Stderr

func status(icon, msg string) {
	fmt.Fprintln(statusOut, icon+" "+msg)
}

func printSuccess(format string, args ...any) {
	status(iconSuccess, fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	status(iconError, fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	status(iconWarning, StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	status(iconInfo, fmt.Sprintf(format, args...))
}

// printDetail prints an indented, muted line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(statusOut, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints the path a command wrote to.
func printFile(path string) {
	fmt.Fprintln(statusOut, "  "+iconArrow+" "+StyleValue.Render(path))
}

// printSection starts a titled group of key/value lines. Every section but
// the first is preceded by a blank line.
func printSection(title string, first bool) {
	if !first {
		fmt.Fprintln(statusOut)
	}
	fmt.Fprintln(statusOut, StyleTitle.Render(title))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(statusOut, "  "+styleLabel.Render(key)+" "+StyleValue.Render(value))
}

// printStats summarizes a run: "12 rows · 10 options · cached".
func printStats(rows, lines int, cached, truncated bool) {
	parts := []string{
		fmt.Sprintf("%d rows", rows),
		fmt.Sprintf("%d options", lines),
	}
	if truncated {
		parts = append(parts, "truncated")
	}
	state := "fresh"
	if cached {
		state = "cached"
	}
	parts = append(parts, state)

	sep := StyleDim.Render(" · ")
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}
	fmt.Fprintln(statusOut, "  "+strings.Join(parts, sep))
}
