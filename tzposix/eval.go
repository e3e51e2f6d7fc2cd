package tzposix

import (
	"github.com/mlieder/go-localtime/civil"
	"github.com/mlieder/go-localtime/internal/overflow"
)

// daysBefore[m] counts the days in a non-leap year before the one-based
// month m+1.
var daysBefore = [12]int32{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// OffsetAt returns the designation, offset east of UT and daylight saving
// flag in effect at the given Unix time. The rule pairs of the
// surrounding years are all considered, so a switch time that spills past
// the turn of the year, such as "J365/25", still lands on the right side.
func (tz TZ) OffsetAt(sec int64) (name string, offset int32, isDST bool) {
	if !tz.HasDST {
		return tz.Std, tz.StdOffset, false
	}
	tm, err := civil.FromUnix(sec)
	if err != nil {
		return tz.Std, tz.StdOffset, false
	}
	year := int64(tm.Year) + 1900

	// Find the latest transition at or before sec. On a tie the change
	// evaluated later wins, which keeps back-to-back daylight saving
	// years seamless.
	var best int64
	var bestDST, haveBest bool
	var earliest int64
	var earliestDST, haveEarliest bool
	for y := year - 1; y <= year+1; y++ {
		toDST, toStd, ok := tz.Transitions(y)
		if !ok {
			continue
		}
		for _, tr := range [2]struct {
			at  int64
			dst bool
		}{{toDST, true}, {toStd, false}} {
			if tr.at <= sec && (!haveBest || tr.at >= best) {
				best, bestDST, haveBest = tr.at, tr.dst, true
			}
			if !haveEarliest || tr.at < earliest {
				earliest, earliestDST, haveEarliest = tr.at, tr.dst, true
			}
		}
	}
	switch {
	case haveBest:
		isDST = bestDST
	case haveEarliest:
		// sec precedes every candidate, so it sits in the segment the
		// earliest transition ends.
		isDST = !earliestDST
	}
	if isDST {
		return tz.Dst, tz.DstOffset, true
	}
	return tz.Std, tz.StdOffset, false
}

// Transitions returns the two Unix times at which the zone changes offset
// in the given year: toDST when the daylight saving period begins and
// toStd when it ends. In the southern hemisphere toStd precedes toDST.
// ok is false when the zone observes no daylight saving time or the year
// lies outside the convertible range.
func (tz TZ) Transitions(year int64) (toDST, toStd int64, ok bool) {
	if !tz.HasDST {
		return 0, 0, false
	}
	tmYear := year - 1900
	if int64(int(tmYear)) != tmYear {
		return 0, 0, false
	}
	ys, err := (civil.Time{Day: 1, Year: int(tmYear)}).Unix()
	if err != nil {
		return 0, 0, false
	}
	toDST, ok = transitionAt(ys, ruleYearSeconds(tz.Start, year), tz.StdOffset)
	if !ok {
		return 0, 0, false
	}
	toStd, ok = transitionAt(ys, ruleYearSeconds(tz.End, year), tz.DstOffset)
	if !ok {
		return 0, 0, false
	}
	return toDST, toStd, true
}

// transitionAt converts a wall-clock second count into the year to the
// UTC instant of the change, given the offset in effect before it.
func transitionAt(yearStart, yearSeconds int64, utoff int32) (int64, bool) {
	t, ok := overflow.Add(yearStart, yearSeconds)
	if !ok {
		return 0, false
	}
	return overflow.Sub(t, int64(utoff))
}

// ruleYearSeconds returns the wall-clock second within the year at which
// the rule fires.
func ruleYearSeconds(r Rule, year int64) int64 {
	var day int
	switch r.Kind {
	case JulianDay:
		day = r.Day - 1
		if day >= 59 && civil.IsLeapYear(year) {
			// Jn never counts February 29.
			day++
		}
	case YearDay:
		day = r.Day
	case MonthWeekDay:
		// Zero-based day of month of the first occurrence of the
		// weekday, then forward a week at a time while one fits.
		d := r.Day - civil.Weekday(year, r.Mon-1, 1)
		if d < 0 {
			d += 7
		}
		for i := 1; i < r.Week; i++ {
			if d+7 >= civil.DaysInMonth(year, r.Mon-1) {
				break
			}
			d += 7
		}
		day = int(daysBefore[r.Mon-1]) + d
		if r.Mon > 2 && civil.IsLeapYear(year) {
			day++
		}
	}
	return int64(day)*secondsPerDay + int64(r.Time)
}
