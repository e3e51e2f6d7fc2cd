// Package tzposix parses and evaluates time zone rules written in the
// POSIX TZ environment variable format, such as "PST8PDT,M3.2.0,M11.1.0".
// TZif files carry one of these rules in their footer to describe the
// zone's behavior past the end of the transition table.
package tzposix

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalid reports a TZ string that does not follow the POSIX grammar.
var ErrInvalid = errors.New("invalid TZ rule")

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour

	// defaultRuleTime is the time of day a rule switches at when the
	// string does not name one, 02:00:00 local time.
	defaultRuleTime = 2 * secondsPerHour

	// maxOffsetHours bounds offsets and rule times. POSIX allows -167
	// through 167 hours so that a rule can name a day in a neighboring
	// week.
	maxOffsetHours = 167

	// defaultRules completes a daylight saving zone whose string stops
	// after the designations, using the current United States practice.
	defaultRules = ",M3.2.0,M11.1.0"
)

// RuleKind distinguishes the three date forms a POSIX rule can take.
type RuleKind int

const (
	// JulianDay is the "Jn" form: day n in [1, 365] counted without any
	// February 29, so J60 is March 1 in every year.
	JulianDay RuleKind = iota
	// YearDay is the bare "n" form: a zero-based day in [0, 365] counted
	// with February 29 in leap years.
	YearDay
	// MonthWeekDay is the "Mm.w.d" form: weekday d of week w in month m,
	// where week 5 names the last occurrence of d in the month.
	MonthWeekDay
)

// Rule is one side of a daylight saving rule pair: a date, repeated every
// year, on which the zone changes offset, and the wall-clock time at
// which the change happens.
type Rule struct {
	Kind RuleKind
	Day  int   // JulianDay, YearDay: the day number. MonthWeekDay: the weekday, Sunday is 0.
	Week int   // MonthWeekDay only: week of the month, [1, 5]
	Mon  int   // MonthWeekDay only: month, [1, 12]
	Time int32 // seconds past local midnight; may be negative or beyond one day
}

// TZ is a parsed rule: a fixed standard time, optionally alternating with
// a daylight saving time bounded by the Start and End rules. Offsets
// count seconds east of UT, with the sign flipped from the POSIX text
// where positive means west of the prime meridian.
type TZ struct {
	Std       string
	StdOffset int32
	Dst       string
	DstOffset int32
	Start     Rule
	End       Rule
	HasDST    bool
}

// Parse parses a POSIX TZ string. A daylight saving zone that omits its
// rule pair receives the default rules, and a daylight saving offset that
// is omitted defaults to one hour ahead of standard time.
func Parse(s string) (TZ, error) {
	tz, err := parse(s)
	if err != nil {
		return TZ{}, fmt.Errorf("%w %q: %w", ErrInvalid, s, err)
	}
	return tz, nil
}

func parse(s string) (TZ, error) {
	var tz TZ
	if s == "" {
		return tz, errors.New("empty string")
	}
	if s[0] == ':' {
		return tz, errors.New("file references are not supported")
	}
	name, rest, err := parseName(s)
	if err != nil {
		return tz, err
	}
	off, rest, err := parseOffset(rest)
	if err != nil {
		return tz, err
	}
	tz.Std = name
	tz.StdOffset = -off // POSIX counts west of the meridian, this module east

	if rest == "" {
		return tz, nil
	}
	if rest[0] == ',' {
		return tz, errors.New("rules without a daylight saving designation")
	}
	tz.Dst, rest, err = parseName(rest)
	if err != nil {
		return tz, err
	}
	tz.HasDST = true
	if rest == "" || rest[0] == ',' {
		tz.DstOffset = tz.StdOffset + secondsPerHour
	} else {
		off, rest, err = parseOffset(rest)
		if err != nil {
			return tz, err
		}
		tz.DstOffset = -off
	}
	if rest == "" {
		rest = defaultRules
	}
	if rest[0] != ',' {
		return tz, fmt.Errorf("unexpected %q after offsets", rest)
	}
	tz.Start, rest, err = parseRule(rest[1:])
	if err != nil {
		return tz, err
	}
	if rest == "" || rest[0] != ',' {
		return tz, errors.New("missing end rule")
	}
	tz.End, rest, err = parseRule(rest[1:])
	if err != nil {
		return tz, err
	}
	if rest != "" {
		return tz, fmt.Errorf("trailing %q", rest)
	}
	return tz, nil
}

// parseName scans a zone designation: either a run of at least three
// characters that are not digits, signs or commas, or anything between
// angle brackets.
func parseName(s string) (string, string, error) {
	if s == "" {
		return "", "", errors.New("missing designation")
	}
	if s[0] == '<' {
		i := strings.IndexByte(s, '>')
		if i < 0 {
			return "", "", errors.New("unterminated quoted designation")
		}
		return s[1:i], s[i+1:], nil
	}
	var i int
	for i = 0; i < len(s); i++ {
		c := s[i]
		if c == '-' || c == '+' || c == ',' || ('0' <= c && c <= '9') {
			break
		}
	}
	if i < 3 {
		return "", "", errors.New("designation shorter than three characters")
	}
	return s[:i], s[i:], nil
}

// parseOffset scans a signed [+-]hh[:mm[:ss]] offset and returns it in
// seconds, still in the POSIX west-positive convention.
func parseOffset(s string) (int32, string, error) {
	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	hours, s, err := parseNum(s, 0, maxOffsetHours)
	if err != nil {
		return 0, "", fmt.Errorf("hours: %w", err)
	}
	off := int32(hours) * secondsPerHour
	if s != "" && s[0] == ':' {
		var mins int
		mins, s, err = parseNum(s[1:], 0, 59)
		if err != nil {
			return 0, "", fmt.Errorf("minutes: %w", err)
		}
		off += int32(mins) * secondsPerMinute
		if s != "" && s[0] == ':' {
			var secs int
			secs, s, err = parseNum(s[1:], 0, 59)
			if err != nil {
				return 0, "", fmt.Errorf("seconds: %w", err)
			}
			off += int32(secs)
		}
	}
	if neg {
		off = -off
	}
	return off, s, nil
}

// parseRule scans one side of the rule pair, a date in one of the three
// POSIX forms with an optional /time suffix.
func parseRule(s string) (Rule, string, error) {
	var r Rule
	var err error
	switch {
	case s == "":
		return r, "", errors.New("missing rule")
	case s[0] == 'J':
		r.Kind = JulianDay
		r.Day, s, err = parseNum(s[1:], 1, 365)
		if err != nil {
			return r, "", fmt.Errorf("julian day: %w", err)
		}
	case s[0] == 'M':
		r.Kind = MonthWeekDay
		r.Mon, s, err = parseNum(s[1:], 1, 12)
		if err != nil {
			return r, "", fmt.Errorf("rule month: %w", err)
		}
		if s == "" || s[0] != '.' {
			return r, "", errors.New("rule month: missing separator")
		}
		r.Week, s, err = parseNum(s[1:], 1, 5)
		if err != nil {
			return r, "", fmt.Errorf("rule week: %w", err)
		}
		if s == "" || s[0] != '.' {
			return r, "", errors.New("rule week: missing separator")
		}
		r.Day, s, err = parseNum(s[1:], 0, 6)
		if err != nil {
			return r, "", fmt.Errorf("rule weekday: %w", err)
		}
	default:
		r.Kind = YearDay
		r.Day, s, err = parseNum(s, 0, 365)
		if err != nil {
			return r, "", fmt.Errorf("year day: %w", err)
		}
	}
	if s != "" && s[0] == '/' {
		r.Time, s, err = parseOffset(s[1:])
		if err != nil {
			return r, "", fmt.Errorf("rule time: %w", err)
		}
	} else {
		r.Time = defaultRuleTime
	}
	return r, s, nil
}

// parseNum scans a decimal number and checks it against the given bounds.
func parseNum(s string, min, max int) (int, string, error) {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, "", errors.New("missing number")
	}
	var n, i int
	for i = 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
		if n > max {
			return 0, "", fmt.Errorf("number exceeds %d", max)
		}
	}
	if n < min {
		return 0, "", fmt.Errorf("number below %d", min)
	}
	return n, s[i:], nil
}
