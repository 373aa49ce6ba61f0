// Package ledger implements the attendance and payment ledgers kept for every
// person on the roster.
//
// Both ledgers are immutable values. Every mutator returns a new ledger and
// leaves the receiver untouched, so callers replace their reference on success
// and simply discard the attempt on failure. The valid window of a ledger runs
// from the person's join date to a ceiling derived from "now", which is always
// read from an injected Clock.
package ledger

import "time"

// Clock supplies the current instant used to compute ledger ceilings.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock, optionally converted to Location.
type SystemClock struct {
	Location *time.Location
}

// Now returns the current wall-clock time.
func (c SystemClock) Now() time.Time {
	now := time.Now()
	if c.Location != nil {
		return now.In(c.Location)
	}
	return now
}

// FixedClock always reports the same instant.
type FixedClock struct {
	T time.Time
}

// Now returns the pinned instant.
func (c FixedClock) Now() time.Time {
	return c.T
}

// ClockFunc adapts a plain function to the Clock interface.
type ClockFunc func() time.Time

// Now calls f.
func (f ClockFunc) Now() time.Time {
	return f()
}

func orSystemClock(clock Clock) Clock {
	if clock == nil {
		return SystemClock{}
	}
	return clock
}
