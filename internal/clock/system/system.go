// Package system provides a real clock implementation.
package system

import (
	"fmt"
	"time"
)

// Clock reports the current time in the dining facilities' time zone, so that
// "today" and "this week" match what the site publishes.
type Clock struct {
	loc *time.Location
}

// New creates a Clock for loc; nil means UTC.
func New(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.UTC
	}
	return &Clock{loc: loc}
}

// ForZone creates a Clock for an IANA zone name such as "America/Los_Angeles".
func ForZone(name string) (*Clock, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", name, err)
	}
	return New(loc), nil
}

// Now returns the current time.
func (c Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

// Today returns the current civil date as midnight UTC.
func (c Clock) Today() time.Time {
	now := c.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
