// Package output handles formatted output for the CLI.
//
// Colors run through the fatih/color globals: SetColorMode decides once
// per invocation whether they stay on, based on the requested mode and
// whether the destination is a terminal.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/mlieder/go-localtime/internal/cli/colors"
	"github.com/mlieder/go-localtime/internal/cli/terminal"
)

// SetColorMode enables or disables colored output. Mode "always" and
// "never" force it; "auto" (or an empty mode) keeps color only when w is
// a terminal.
func SetColorMode(mode string, w io.Writer) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "", "auto":
		color.NoColor = !terminal.IsTerminalWriter(w)
	default:
		return fmt.Errorf("invalid color mode %q: want auto, always or never", mode)
	}
	return nil
}

// Writer provides formatted output methods.
type Writer struct {
	w io.Writer
}

// New creates a new output writer.
func New(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Field prints a labeled field.
func (o *Writer) Field(label, value string) {
	_, _ = fmt.Fprintf(o.w, "%s %s\n", colors.FieldLabel(label+":"), value)
}

// Separator prints a separator line.
func (o *Writer) Separator() {
	_, _ = fmt.Fprintln(o.w)
}

// Warning prints a warning message in yellow.
func Warning(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(w, colors.Warning("Warning: "+msg))
}

// Error prints an error message in red.
// Used for user-facing error messages that are not Go errors.
func Error(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintln(w, colors.Error("Error: "+msg))
}

// Success prints a success message with a green checkmark.
func Success(w io.Writer, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(w, "%s %s\n", colors.Success("✓"), msg)
}

// Failed prints a failure message in red.
// Example: "Failed bad.tzif: error message".
func Failed(w io.Writer, name string, err error) {
	_, _ = fmt.Fprintf(w, "%s %s: %v\n", colors.Failed("Failed"), name, err)
}

// Println writes a message to the writer with a newline.
func Println(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, msg)
}

// Printf writes a formatted message to the writer.
func Printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// ColorDiff adds ANSI colors to the +/- lines of a diff.
func ColorDiff(diff string) string {
	if diff == "" {
		return ""
	}

	var result strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "-"):
			result.WriteString(colors.DiffRemoved(line))
		case strings.HasPrefix(line, "+"):
			result.WriteString(colors.DiffAdded(line))
		default:
			result.WriteString(line)
		}
		result.WriteString("\n")
	}
	return result.String()
}
