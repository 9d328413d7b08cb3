package timesync

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iudanet/otagate/internal/caltime"
)

// monthNames maps the three-letter month names of a Date header to 1..12
var monthNames = [12]string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// ParseDate parses a Date header of the form
// "<weekday>, <day> <Mon> <year> <hh>:<mm>:<ss> GMT" into GMT calendar fields.
// The weekday name is not checked against the date.
func ParseDate(value string) (caltime.DateTime, error) {
	fields := strings.Fields(value)
	if len(fields) != 6 || !strings.HasSuffix(fields[0], ",") || fields[5] != "GMT" {
		return caltime.DateTime{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}

	var dt caltime.DateTime
	var err error

	if dt.Day, err = parseNumber(fields[1], 1, 31); err != nil {
		return caltime.DateTime{}, err
	}
	if dt.Month, err = parseMonth(fields[2]); err != nil {
		return caltime.DateTime{}, err
	}
	if dt.Year, err = parseNumber(fields[3], 1970, 9999); err != nil {
		return caltime.DateTime{}, err
	}
	if dt.Day > caltime.DaysInMonth(dt.Year, dt.Month) {
		return caltime.DateTime{}, fmt.Errorf("%w: day %d out of range", ErrInvalidDate, dt.Day)
	}

	clock := strings.Split(fields[4], ":")
	if len(clock) != 3 {
		return caltime.DateTime{}, fmt.Errorf("%w: time %q", ErrInvalidDate, fields[4])
	}
	if dt.Hour, err = parseNumber(clock[0], 0, 23); err != nil {
		return caltime.DateTime{}, err
	}
	if dt.Minute, err = parseNumber(clock[1], 0, 59); err != nil {
		return caltime.DateTime{}, err
	}
	// 60 допускается для секунды координации
	if dt.Second, err = parseNumber(clock[2], 0, 60); err != nil {
		return caltime.DateTime{}, err
	}

	return dt, nil
}

func parseMonth(name string) (int, error) {
	for i, m := range monthNames {
		if m == name {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: month %q", ErrInvalidDate, name)
}

func parseNumber(s string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, fmt.Errorf("%w: field %q", ErrInvalidDate, s)
	}
	return n, nil
}
