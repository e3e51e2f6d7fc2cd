package tzposix

import (
	"fmt"
	"strings"
)

// String renders the rule back into POSIX TZ form. Defaults that Parse
// filled in are spelled out, so the result is equivalent to the input
// rather than byte-identical: "PST8PDT" comes back as
// "PST8PDT,M3.2.0,M11.1.0".
func (t TZ) String() string {
	var b strings.Builder
	b.WriteString(quoteName(t.Std))
	b.WriteString(formatOffset(t.StdOffset))
	if !t.HasDST {
		return b.String()
	}
	b.WriteString(quoteName(t.Dst))
	if t.DstOffset != t.StdOffset+secondsPerHour {
		b.WriteString(formatOffset(t.DstOffset))
	}
	b.WriteByte(',')
	b.WriteString(t.Start.String())
	b.WriteByte(',')
	b.WriteString(t.End.String())
	return b.String()
}

// String renders the rule date in its POSIX form, with a /time suffix
// only when the time is not the 02:00:00 default.
func (r Rule) String() string {
	var b strings.Builder
	switch r.Kind {
	case JulianDay:
		fmt.Fprintf(&b, "J%d", r.Day)
	case YearDay:
		fmt.Fprintf(&b, "%d", r.Day)
	case MonthWeekDay:
		fmt.Fprintf(&b, "M%d.%d.%d", r.Mon, r.Week, r.Day)
	}
	if r.Time != defaultRuleTime {
		b.WriteByte('/')
		b.WriteString(formatClock(r.Time))
	}
	return b.String()
}

// quoteName wraps a designation in angle brackets when the bare form
// could not scan it back, because it is too short or holds a digit,
// sign, comma or bracket.
func quoteName(name string) string {
	plain := len(name) >= 3
	for i := 0; plain && i < len(name); i++ {
		switch c := name[i]; {
		case c == '-' || c == '+' || c == ',' || c == '<' || c == '>':
			plain = false
		case '0' <= c && c <= '9':
			plain = false
		}
	}
	if plain {
		return name
	}
	return "<" + name + ">"
}

// formatOffset prints an offset in the POSIX west-positive convention.
func formatOffset(off int32) string {
	return formatClock(-off)
}

// formatClock prints a second count as h[:mm[:ss]], dropping trailing
// fields that are zero.
func formatClock(v int32) string {
	var sign string
	if v < 0 {
		sign, v = "-", -v
	}
	h, rem := v/secondsPerHour, v%secondsPerHour
	m, s := rem/secondsPerMinute, rem%secondsPerMinute
	switch {
	case s != 0:
		return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
	case m != 0:
		return fmt.Sprintf("%s%d:%02d", sign, h, m)
	default:
		return fmt.Sprintf("%s%d", sign, h)
	}
}
