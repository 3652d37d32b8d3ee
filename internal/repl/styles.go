package repl

import (
	"github.com/charmbracelet/lipgloss"
)

const (
	colorYellow = lipgloss.Color("11")
	colorRed    = lipgloss.Color("9")
	colorGray   = lipgloss.Color("8")
	colorCyan   = lipgloss.Color("12")
)

var (
	// promptStyle colors the rendered prompt line.
	promptStyle = lipgloss.NewStyle().Foreground(colorYellow)

	// errorStyle is used for command and builtin failures.
	errorStyle = lipgloss.NewStyle().Foreground(colorRed)

	// dimStyle is used for secondary information like cache ages and
	// timings.
	dimStyle = lipgloss.NewStyle().Foreground(colorGray)

	// headingStyle is used for listing headers in builtin output.
	headingStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
)
