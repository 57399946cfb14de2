// Package week matches target dates against the validity windows menu sources publish.
//
// Dates are civil dates carried as time.Time values at midnight UTC; use Date or
// Truncate to build them so comparisons never depend on a wall-clock offset.
package week

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/JakeFAU/menufetcher/internal/menu"
)

// LabelLayout renders the "week of" caption menu documents print for their Monday.
const LabelLayout = "Monday January 2, 2006"

const isoLayout = "2006-01-02"

var rangePattern = regexp.MustCompile(
	`^([0-9][0-9]?)/([0-9][0-9]?)/([0-9]+) - ([0-9][0-9]?)/([0-9][0-9]?)/([0-9]+)$`)

// Window is an inclusive date range.
type Window struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside the window, both ends included.
func (w Window) Contains(day time.Time) bool {
	day = Truncate(day)
	return !day.Before(w.Start) && !day.After(w.End)
}

// Offset returns the number of days between the window start and day.
func (w Window) Offset(day time.Time) int {
	return int(Truncate(day).Sub(w.Start).Hours() / 24)
}

func (w Window) String() string {
	return w.Start.Format(isoLayout) + ".." + w.End.Format(isoLayout)
}

// ParseRange parses a listing caption such as "9/1/24 - 9/7/24" (month/day/year).
// Two-digit years are read as 20YY.
func ParseRange(raw string) (Window, error) {
	m := rangePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return Window{}, fmt.Errorf("%w: invalid date range %q", menu.ErrMalformedSource, raw)
	}
	start, err := civil(m[3], m[1], m[2])
	if err != nil {
		return Window{}, fmt.Errorf("%w: range start %q: %w", menu.ErrMalformedSource, raw, err)
	}
	end, err := civil(m[6], m[4], m[5])
	if err != nil {
		return Window{}, fmt.Errorf("%w: range end %q: %w", menu.ErrMalformedSource, raw, err)
	}
	if end.Before(start) {
		return Window{}, fmt.Errorf("%w: range %q ends before it starts", menu.ErrMalformedSource, raw)
	}
	return Window{Start: start, End: end}, nil
}

// ParseISORange builds a window from two ISO dates. Anything after the date part
// (a time of day, an offset) is ignored.
func ParseISORange(start, end string) (Window, error) {
	s, err := parseISO(start)
	if err != nil {
		return Window{}, err
	}
	e, err := parseISO(end)
	if err != nil {
		return Window{}, err
	}
	return Window{Start: s, End: e}, nil
}

func parseISO(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if len(raw) > len(isoLayout) {
		raw = raw[:len(isoLayout)]
	}
	t, err := time.Parse(isoLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q", menu.ErrMalformedSource, raw)
	}
	return t, nil
}

func civil(year, month, day string) (time.Time, error) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, err
	}
	if y < 100 {
		y += 2000
	}
	mo, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, err
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, err
	}
	t := Date(y, time.Month(mo), d)
	if t.Month() != time.Month(mo) || t.Day() != d {
		return time.Time{}, fmt.Errorf("no such date %d/%d/%d", mo, d, y)
	}
	return t, nil
}

// Date builds a civil date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Truncate drops the time of day, keeping the calendar date as seen in t's location.
func Truncate(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

// Monday returns the Monday of the ISO week containing day.
func Monday(day time.Time) time.Time {
	day = Truncate(day)
	back := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -back)
}

// SameWeek reports whether a and b fall in the same Monday-based week.
func SameWeek(a, b time.Time) bool {
	return Monday(a).Equal(Monday(b))
}

// Label renders the caption of the week containing day, e.g. "Monday January 6, 2025".
func Label(day time.Time) string {
	return Monday(day).Format(LabelLayout)
}

// IsWeekend reports whether day is a Saturday or Sunday.
func IsWeekend(day time.Time) bool {
	wd := day.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DayName is the lowercase English weekday name, used as a document anchor.
func DayName(day time.Time) string {
	return strings.ToLower(day.Weekday().String())
}
