// Package shiftmath converts "HH:MM" shift rules into minute offsets on a
// single continuous timeline. A shift whose end precedes its start crosses
// midnight; its end is pushed past 1440 so every downstream comparison (late,
// early-out, overtime, window checks) works without wrapping negative.
package shiftmath

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// Window is a shift's boundaries in minutes since midnight. For a shift that
// crosses midnight, EndMinutes has already been advanced by one day.
type Window struct {
	StartMinutes    int
	EndMinutes      int
	CrossesMidnight bool
}

// ParseClock parses an "HH:MM" wall-clock string into minutes since midnight.
func ParseClock(clock string) (int, error) {
	parts := strings.SplitN(clock, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock %q: want HH:MM", clock)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid clock %q: %w", clock, err)
	}
	if hh < 0 || hh > 23 || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid clock %q: out of range", clock)
	}
	return hh*60 + mm, nil
}

// ResolveWindow converts a shift's start/end clocks into a Window. End before
// start means the shift crosses midnight and end gains a full day.
func ResolveWindow(start, end string) (Window, error) {
	startMin, err := ParseClock(start)
	if err != nil {
		return Window{}, err
	}
	endMin, err := ParseClock(end)
	if err != nil {
		return Window{}, err
	}

	w := Window{StartMinutes: startMin, EndMinutes: endMin}
	if endMin < startMin {
		w.CrossesMidnight = true
		w.EndMinutes += minutesPerDay
	}
	return w, nil
}

// Adjust normalizes a minute-of-day value onto the window's timeline: on a
// midnight-crossing shift, clock values before the shift start belong to the
// next calendar day and gain a full day. Every minute value compared against
// the window must pass through here first.
func (w Window) Adjust(minutes int) int {
	if w.CrossesMidnight && minutes < w.StartMinutes {
		return minutes + minutesPerDay
	}
	return minutes
}

// MinuteOfDay returns t's wall-clock position as minutes since midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
