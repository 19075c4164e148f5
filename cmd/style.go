package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	labelStyle   = lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("245"))
	sectionStyle = lipgloss.NewStyle().MarginTop(1).Bold(true)
)

// setupStyles picks the color profile for stdout. NO_COLOR and --no-color
// both force plain ASCII output.
func setupStyles(noColor bool) {
	if noColor || os.Getenv("NO_COLOR") != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())
}

// printResult writes a success or failure line for a job.
func printResult(w io.Writer, ok bool, msg string) {
	if ok {
		fmt.Fprintln(w, okStyle.Render("✓ "+msg))
		return
	}
	fmt.Fprintln(w, errorStyle.Render("✗ "+msg))
}

// printField writes an aligned "label value" line.
func printField(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label)+value)
}
