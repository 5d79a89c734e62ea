package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// DateLayout is the wire and display format of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar date with no time zone. Month membership is decided by
// its components, never by converting an instant between zones.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate reads the leading YYYY-MM-DD of s. Full timestamps such as
// "2025-01-31T23:30:00-05:00" keep their written day.
func ParseDate(s string) (Date, error) {
	if len(s) < len(DateLayout) || s[4] != '-' || s[7] != '-' {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	y, errY := strconv.Atoi(s[0:4])
	m, errM := strconv.Atoi(s[5:7])
	d, errD := strconv.Atoi(s[8:10])
	if errY != nil || errM != nil || errD != nil || m < 1 || m > 12 || d < 1 || d > DaysIn(time.Month(m), y) {
		return Date{}, fmt.Errorf("invalid date %q", s)
	}
	return Date{Year: y, Month: time.Month(m), Day: d}, nil
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(m time.Month, y int) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// IsZero reports whether d is unset.
func (d Date) IsZero() bool { return d == Date{} }

// In reports whether d falls in the given month (1-12) and year.
func (d Date) In(month, year int) bool {
	return int(d.Month) == month && d.Year == year
}

// Compare returns -1, 0 or +1 as d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalJSON encodes d as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a date or timestamp string. null and "" leave d zero.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date: %w", err)
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
