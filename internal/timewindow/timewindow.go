// Package timewindow provides day-relative time interval primitives used by
// shift validation, block lookups and reservation conflict detection.
package timewindow

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// MinutesPerDay is the number of minutes in a service day.
const MinutesPerDay = 24 * 60

// Clock is a time of day expressed as minutes since midnight (0..1439).
type Clock int

// ClockOf converts a time.Time to its minutes-since-midnight value.
func ClockOf(t time.Time) Clock {
	return Clock(t.Hour()*60 + t.Minute())
}

// ParseClock parses "HH:MM" (or "H:MM") into a Clock.
func ParseClock(s string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %q", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time out of range: %q", s)
	}
	return Clock(hour*60 + minute), nil
}

// String formats the clock as "HH:MM".
func (c Clock) String() string {
	m := int(c) % MinutesPerDay
	if m < 0 {
		m += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// Window is the half-open interval [Start, Start+Duration) within one day.
// Duration is in minutes.
type Window struct {
	Start    Clock
	Duration int
}

// New builds a window from a start clock and a duration in minutes.
func New(start Clock, durationMinutes int) Window {
	return Window{Start: start, Duration: durationMinutes}
}

// End returns the wall-clock end of the window. When the duration runs past
// midnight the value wraps modulo 24h and is reported without a date shift.
func (w Window) End() Clock {
	return Clock((int(w.Start) + w.Duration) % MinutesPerDay)
}

// endRaw is the unwrapped end used for comparisons. Reservations are not
// allowed to cross midnight for conflict purposes, so overlap math stays on
// the plain value.
func (w Window) endRaw() int {
	return int(w.Start) + w.Duration
}

// Overlaps reports whether two windows intersect: aStart < bEnd && bStart < aEnd.
func Overlaps(a, b Window) bool {
	return int(a.Start) < b.endRaw() && int(b.Start) < a.endRaw()
}

// Contains reports whether the instant falls inside the half-open window.
func Contains(w Window, instant Clock) bool {
	return int(instant) >= int(w.Start) && int(instant) < w.endRaw()
}

// ContainsInclusive reports whether Start <= instant <= end. Shift
// containment checks are inclusive on both ends.
func ContainsInclusive(w Window, instant Clock) bool {
	return int(instant) >= int(w.Start) && int(instant) <= w.endRaw()
}

// Between builds a window from two clocks, treating them as [from, to).
func Between(from, to Clock) Window {
	return Window{Start: from, Duration: int(to) - int(from)}
}

// String formats the window as "HH:MM-HH:MM".
func (w Window) String() string {
	return w.Start.String() + "-" + w.End().String()
}
