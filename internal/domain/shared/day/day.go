package day

import (
	"errors"
	"time"
)

// Layout is the canonical wire format for calendar days.
const Layout = "2006-01-02"

var ErrInvalid = errors.New("day: invalid calendar day")

// Day is a calendar day without a time component. The zero value is empty.
// The canonical form is zero-padded ISO ("2025-06-01"), so lexicographic
// ordering matches chronological ordering.
type Day string

// Parse validates and normalizes a calendar day string.
func Parse(value string) (Day, error) {
	t, err := time.Parse(Layout, value)
	if err != nil {
		return "", ErrInvalid
	}
	return FromTime(t), nil
}

// FromTime truncates a timestamp to its calendar day in the timestamp's
// location.
func FromTime(t time.Time) Day {
	return Day(t.Format(Layout))
}

// Today returns the current calendar day in the server's local timezone.
func Today() Day {
	return FromTime(time.Now())
}

func (d Day) IsZero() bool {
	return d == ""
}

func (d Day) Before(other Day) bool {
	return string(d) < string(other)
}

func (d Day) String() string {
	return string(d)
}

// Time returns midnight UTC of the day, for storage backends that persist
// timestamps.
func (d Day) Time() time.Time {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
