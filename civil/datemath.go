package civil

// DaysInMonth returns the number of days in a month, given zero-based
// like the Month field of Time.
func DaysInMonth(year int64, month int) int {
	if month == 1 {
		if IsLeapYear(year) {
			return 29
		}
		return 28
	}
	if month == 3 || month == 5 || month == 8 || month == 10 {
		// April, June, September and November.
		return 30
	}
	return 31
}

// Weekday returns the day of the week for a calendar date, where
// 0=Sunday, 1=Monday, ..., 6=Saturday. The month is zero-based like the
// Month field of Time.
func Weekday(year int64, month, day int) int {
	// Zeller's congruence wants positive years. The Gregorian calendar
	// repeats every 400 years and that cycle holds a whole number of
	// weeks, so fold the year into [2000, 2400) first.
	y := year % 400
	if y < 0 {
		y += 400
	}
	y += 2000

	// Zeller counts January and February as months 13 and 14 of the
	// preceding year.
	m := int64(month) + 1
	if m < 3 {
		m += 12
		y--
	}
	k := y % 100
	j := y / 100
	h := (int64(day) + (13*(m+1))/5 + k + k/4 + j/4 + 5*j) % 7
	// Adjust the result to fit Sunday=0, Monday=1, ..., Saturday=6.
	return int((h + 6) % 7)
}
