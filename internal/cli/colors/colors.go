// Package colors provides pre-configured color functions for CLI output.
package colors

import "github.com/fatih/color"

var (
	// Error formats text in red for error messages.
	Error = color.New(color.FgRed).SprintFunc()

	// Warning formats text in yellow for warning messages.
	Warning = color.New(color.FgYellow).SprintFunc()

	// Success formats text in green for success messages.
	Success = color.New(color.FgGreen).SprintFunc()

	// FieldLabel formats field labels (e.g. "Zone:", "Offset:") in cyan.
	FieldLabel = color.New(color.FgCyan).SprintFunc()

	// Daylight marks daylight saving abbreviations and flags in green.
	Daylight = color.New(color.FgGreen).SprintFunc()

	// DiffAdded formats added lines (+) in green.
	DiffAdded = color.New(color.FgGreen).SprintFunc()

	// DiffRemoved formats removed lines (-) in red.
	DiffRemoved = color.New(color.FgRed).SprintFunc()

	// Failed formats "Failed" text in red.
	Failed = color.New(color.FgRed).SprintFunc()
)
