package caltime

// weekdayOffsets is the month table of Sakamoto's variant of Zeller's congruence.
var weekdayOffsets = [12]int{0, 3, 2, 5, 0, 3, 5, 1, 4, 6, 2, 4}

// Weekday returns the day of week for the given date, 0 = Sunday.
func Weekday(year, month, day int) int {
	if month < 3 {
		year--
	}
	return (year + year/4 - year/100 + year/400 + weekdayOffsets[month-1] + day) % 7
}

// LastSunday returns the day of month of the last Sunday in a 31-day month
// (March and October are the only months it is used for).
func LastSunday(year, month int) int {
	first := Weekday(year, month, 1)
	return 31 - ((first + 30) % 7)
}

// IsDST reports whether Central European Summer Time is in effect at the
// given calendar hour.
//
// Summer time starts on the last Sunday of March at 02:00 and ends on the
// last Sunday of October at 03:00. The function is total over
// month 1..12, day 1..31, hour 0..23.
func IsDST(year, month, day, hour int) bool {
	switch {
	case month < 3 || month > 10:
		return false
	case month > 3 && month < 10:
		return true
	}

	switchDay := LastSunday(year, month)

	if month == 3 {
		if day != switchDay {
			return day > switchDay
		}
		return hour >= 2
	}

	// октябрь
	if day != switchDay {
		return day < switchDay
	}
	return hour < 3
}

// LocalOffset returns the Central European offset from UTC in seconds for
// the given DST state: +1h standard, +2h daylight.
func LocalOffset(dst bool) int64 {
	if dst {
		return 2 * secondsPerHour
	}
	return secondsPerHour
}
