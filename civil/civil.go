// Package civil implements broken-down calendar time in the manner of the
// C library's struct tm. All arithmetic uses the proleptic Gregorian
// calendar and ignores leap seconds; a Sec value of 60 can represent an
// inserted leap second but is never produced by plain Unix conversion.
package civil

import (
	"errors"
	"fmt"
	"math"

	"github.com/mlieder/go-localtime/internal/overflow"
)

// ErrRange reports a time that cannot be represented, either because a
// Unix time falls outside the supported calendar span or because
// normalization pushes a field past what its type can hold.
var ErrRange = errors.New("time out of range")

// Time is a date and time broken down into calendar fields. The field
// conventions follow struct tm: Month counts from zero, Year counts from
// 1900 and Weekday counts from Sunday.
//
// IsDST, Offset and Zone describe the time zone the other fields are
// expressed in. Calendar arithmetic in this package neither reads nor
// writes them; package zone fills them in.
type Time struct {
	Sec     int    // second of the minute, [0, 60] to admit a leap second
	Min     int    // minute of the hour, [0, 59]
	Hour    int    // hour of the day, [0, 23]
	Day     int    // day of the month, [1, 31]
	Month   int    // months since January, [0, 11]
	Year    int    // years since 1900
	Weekday int    // days since Sunday, [0, 6]
	Yday    int    // days since January 1, [0, 365]
	IsDST   int    // positive if daylight saving time is in effect, zero if not, negative if unknown
	Offset  int    // offset east of UTC in seconds
	Zone    string // abbreviation of the current zone, such as "CET"
}

// The day-count arithmetic below follows time.go in the Go standard
// library's time package: dates reduce to days since an absolute epoch
// chosen so that the 400-year Gregorian cycle starts there, which makes
// the leap-year bookkeeping a chain of divisions.
const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour
	minutesPerHour   = 60
	hoursPerDay      = 24
	monthsPerYear    = 12
	daysPer400Years  = 365*400 + 97
	daysPer100Years  = 365*100 + 24
	daysPer4Years    = 365*4 + 1

	// absoluteZeroYear is the first year of the absolute epoch. January 1
	// of that year is absolute day zero, and a Monday.
	absoluteZeroYear = -292277022399
	internalYear     = 1

	absoluteToInternal int64 = (absoluteZeroYear - internalYear) * 365.2425 * secondsPerDay
	unixToInternal     int64 = (1969*365 + 1969/4 - 1969/100 + 1969/400) * secondsPerDay
	unixToAbsolute     int64 = unixToInternal - absoluteToInternal

	// minUnix is the Unix time of absolute second zero. Earlier instants
	// have no calendar representation here. Every Unix time from minUnix
	// through math.MaxInt64 breaks down to a year no later than maxYear.
	minUnix        = -unixToAbsolute
	maxYear  int64 = 292277026596

	// maxAbsSecond and maxAbsDay are the absolute second and day counts
	// of the largest representable Unix time.
	maxAbsSecond uint64 = math.MaxInt64 + uint64(unixToAbsolute)
	maxAbsDay    uint64 = maxAbsSecond / secondsPerDay
)

// daysBefore[m] counts the days in a non-leap year before the zero-based
// month m, with a final entry for the length of the whole year.
var daysBefore = [13]int32{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334, 365}

// FromUnix breaks a Unix time down into its UTC calendar fields like
// gmtime(3). IsDST, Offset and Zone are left at their zero values for the
// caller to fill in. Unix times before the absolute epoch return ErrRange.
func FromUnix(sec int64) (Time, error) {
	if sec < minUnix {
		return Time{}, ErrRange
	}
	abs := uint64(sec) + uint64(unixToAbsolute)
	d := abs / secondsPerDay
	clock := abs % secondsPerDay

	year, month, day, yday := daysToDate(d)
	tmYear := year - 1900
	if int64(int(tmYear)) != tmYear {
		return Time{}, ErrRange
	}
	return Time{
		Sec:     int(clock % secondsPerMinute),
		Min:     int(clock % secondsPerHour / secondsPerMinute),
		Hour:    int(clock / secondsPerHour),
		Day:     day,
		Month:   month,
		Year:    int(tmYear),
		Weekday: int((d + 1) % 7), // absolute day zero is a Monday
		Yday:    yday,
	}, nil
}

// Unix converts the calendar fields back to a Unix time, interpreting
// them as UTC in the manner of timegm(3). Out-of-range fields carry over
// exactly as Normalize would move them, so January 32 means February 1.
// Weekday and Yday are ignored. A time outside the representable span
// returns ErrRange.
func (t Time) Unix() (int64, error) {
	if err := t.Normalize(); err != nil {
		return 0, err
	}

	// Normalization bounds the year, so the absolute second count below
	// cannot wrap a uint64. It can still exceed the largest Unix time by
	// a few months at the very top of the range.
	year := int64(t.Year) + 1900
	d := daysSinceEpoch(year) + uint64(daysBefore[t.Month]) + uint64(t.Day-1)
	if t.Month > 1 && IsLeapYear(year) {
		d++
	}
	abs := d*secondsPerDay + uint64(t.Hour)*secondsPerHour + uint64(t.Min)*secondsPerMinute + uint64(t.Sec)
	if abs > maxAbsSecond {
		return 0, ErrRange
	}
	return int64(abs - uint64(unixToAbsolute)), nil
}

// Normalize brings every calendar field back into its documented range,
// carrying overflow between fields the way mktime(3) does: ninety seconds
// becomes one minute and thirty seconds, January 32 becomes February 1,
// month twelve becomes January of the next year. Weekday and Yday are
// recomputed from the normalized date. IsDST, Offset and Zone are left
// alone. If the date leaves the supported calendar span, Normalize
// reports ErrRange without modifying the receiver.
func (t *Time) Normalize() error {
	sec, minute, hour := int64(t.Sec), int64(t.Min), int64(t.Hour)
	day, month := int64(t.Day), int64(t.Month)
	year, ok := overflow.Add(int64(t.Year), 1900)
	if !ok {
		return ErrRange
	}

	if minute, ok = overflow.Add(minute, floorDiv(sec, secondsPerMinute)); !ok {
		return ErrRange
	}
	sec = floorMod(sec, secondsPerMinute)
	if hour, ok = overflow.Add(hour, floorDiv(minute, minutesPerHour)); !ok {
		return ErrRange
	}
	minute = floorMod(minute, minutesPerHour)
	if day, ok = overflow.Add(day, floorDiv(hour, hoursPerDay)); !ok {
		return ErrRange
	}
	hour = floorMod(hour, hoursPerDay)
	if year, ok = overflow.Add(year, floorDiv(month, monthsPerYear)); !ok {
		return ErrRange
	}
	month = floorMod(month, monthsPerYear)

	if year < absoluteZeroYear || year > maxYear {
		return ErrRange
	}

	// Reduce the date to an absolute day count and break it back down,
	// so that any size of day overflow lands on the right calendar day.
	d := int64(daysSinceEpoch(year)) + int64(daysBefore[month])
	if month > 1 && IsLeapYear(year) {
		d++
	}
	if day, ok = overflow.Sub(day, 1); !ok {
		return ErrRange
	}
	if d, ok = overflow.Add(d, day); !ok {
		return ErrRange
	}
	if d < 0 || uint64(d) > maxAbsDay {
		return ErrRange
	}
	yy, mm, dd, yday := daysToDate(uint64(d))
	tmYear := yy - 1900
	if int64(int(tmYear)) != tmYear {
		return ErrRange
	}

	t.Sec = int(sec)
	t.Min = int(minute)
	t.Hour = int(hour)
	t.Day = dd
	t.Month = mm
	t.Year = int(tmYear)
	t.Weekday = int((uint64(d) + 1) % 7)
	t.Yday = yday
	return nil
}

var shortDayNames = [...]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

var shortMonthNames = [...]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// String formats the time the way asctime(3) does, for example
// "Thu Jan  1 00:00:00 1970". A Weekday or Month outside its range
// renders as "???".
func (t Time) String() string {
	wday, mon := "???", "???"
	if 0 <= t.Weekday && t.Weekday < len(shortDayNames) {
		wday = shortDayNames[t.Weekday]
	}
	if 0 <= t.Month && t.Month < len(shortMonthNames) {
		mon = shortMonthNames[t.Month]
	}
	return fmt.Sprintf("%s %s %2d %02d:%02d:%02d %d",
		wday, mon, t.Day, t.Hour, t.Min, t.Sec, int64(t.Year)+1900)
}

// IsLeapYear reports whether a calendar year (not a Year field, which
// counts from 1900) is a leap year in the proleptic Gregorian calendar.
func IsLeapYear(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// daysSinceEpoch returns the number of days from the absolute epoch to
// the start of the given year. This is basically (year - zeroYear) * 365,
// but accounting for leap days.
//
// This function was copied from time.go in the Go standard library time
// package. The year must lie in [absoluteZeroYear, maxYear].
func daysSinceEpoch(year int64) uint64 {
	y := uint64(year - absoluteZeroYear)

	// Add in days from 400-year cycles.
	n := y / 400
	y -= 400 * n
	d := daysPer400Years * n

	// Add in 100-year cycles.
	n = y / 100
	y -= 100 * n
	d += daysPer100Years * n

	// Add in 4-year cycles.
	n = y / 4
	y -= 4 * n
	d += daysPer4Years * n

	// Add in non-leap years.
	n = y
	d += 365 * n

	return d
}

// daysToDate breaks an absolute day count back down into a calendar date
// with a zero-based month. It inverts daysSinceEpoch plus the in-year
// tables, following the absDate function in the Go standard library time
// package.
func daysToDate(d uint64) (year int64, month, day, yday int) {
	// Split off 400-year cycles.
	n := d / daysPer400Years
	y := 400 * n
	d -= daysPer400Years * n

	// Cut off 100-year cycles. The last cycle has one extra leap year,
	// so on the last day of that year, day / daysPer100Years will be 4
	// instead of 3. Cut it back down to 3 by subtracting n>>2.
	n = d / daysPer100Years
	n -= n >> 2
	y += 100 * n
	d -= daysPer100Years * n

	// Cut off 4-year cycles. The last cycle has a missing leap year,
	// which does not affect the computation.
	n = d / daysPer4Years
	y += 4 * n
	d -= daysPer4Years * n

	// Cut off years within a 4-year cycle. The last year is a leap
	// year, so on the last day of that year, day / 365 will be 4
	// instead of 3. Cut it back down to 3 by subtracting n>>2.
	n = d / 365
	n -= n >> 2
	y += n
	d -= 365 * n

	year = int64(y) + absoluteZeroYear
	yday = int(d)

	day = yday
	if IsLeapYear(year) {
		switch {
		case day > 31+29-1:
			// After leap day; pretend it wasn't there.
			day--
		case day == 31+29-1:
			// Leap day.
			return year, 1, 29, yday
		}
	}

	// Estimate the month assuming every month has 31 days; the estimate
	// is low by at most one.
	month = day / 31
	end := int(daysBefore[month+1])
	var begin int
	if day >= end {
		month++
		begin = end
	} else {
		begin = int(daysBefore[month])
	}
	day = day - begin + 1
	return year, month, day, yday
}

// floorDiv divides rounding toward negative infinity. The divisor must
// be positive.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

// floorMod reduces a into [0, b). The divisor must be positive.
func floorMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
