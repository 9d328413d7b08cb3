// Package caltime implements calendar arithmetic for the controller clock:
// Gregorian calendar to epoch conversion and Central European daylight saving rules.
// All calculations use integer arithmetic only.
package caltime

import "fmt"

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
	secondsPerDay    = 24 * secondsPerHour

	epochYear = 1970
)

// daysInMonth содержит количество дней в месяцах невисокосного года
var daysInMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// DateTime is a broken-down calendar time without zone information.
type DateTime struct {
	Year   int
	Month  int // 1..12
	Day    int // 1..31
	Hour   int
	Minute int
	Second int
}

// String formats the value as "YYYY-MM-DD HH:MM:SS".
func (d DateTime) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d", d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second)
}

// IsLeapYear reports whether year is a Gregorian leap year.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the length of month (1..12) in year.
func DaysInMonth(year, month int) int {
	if month == 2 && IsLeapYear(year) {
		return 29
	}
	return daysInMonth[month-1]
}

func daysInYear(year int) int64 {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// ToEpoch converts d, interpreted as UTC, into seconds since 1970-01-01T00:00:00.
// Years before 1970 yield negative values.
func ToEpoch(d DateTime) int64 {
	var days int64

	// Целые годы между эпохой и годом d
	if d.Year >= epochYear {
		for y := epochYear; y < d.Year; y++ {
			days += daysInYear(y)
		}
	} else {
		for y := d.Year; y < epochYear; y++ {
			days -= daysInYear(y)
		}
	}

	// Целые месяцы текущего года
	for m := 1; m < d.Month; m++ {
		days += int64(DaysInMonth(d.Year, m))
	}

	days += int64(d.Day - 1)

	return days*secondsPerDay +
		int64(d.Hour)*secondsPerHour +
		int64(d.Minute)*secondsPerMinute +
		int64(d.Second)
}

// FromEpoch decomposes seconds since the epoch into UTC calendar fields.
// It is the inverse of ToEpoch.
func FromEpoch(epoch int64) DateTime {
	days := epoch / secondsPerDay
	rem := epoch % secondsPerDay
	if rem < 0 {
		rem += secondsPerDay
		days--
	}

	d := DateTime{
		Hour:   int(rem / secondsPerHour),
		Minute: int(rem % secondsPerHour / secondsPerMinute),
		Second: int(rem % secondsPerMinute),
	}

	year := epochYear
	for days < 0 {
		year--
		days += daysInYear(year)
	}
	for days >= daysInYear(year) {
		days -= daysInYear(year)
		year++
	}

	month := 1
	for days >= int64(DaysInMonth(year, month)) {
		days -= int64(DaysInMonth(year, month))
		month++
	}

	d.Year = year
	d.Month = month
	d.Day = int(days) + 1
	return d
}
