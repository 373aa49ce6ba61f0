package ledger

import (
	"errors"
	"fmt"
)

// Sentinel kinds for errors.Is checks.
var (
	ErrOutOfRange    = errors.New("out of range")
	ErrAlreadyMarked = errors.New("attendance already marked")
	ErrNotMarked     = errors.New("attendance not marked")
	ErrInvalidFormat = errors.New("invalid format")
)

// OutOfRangeError reports a week or month outside a ledger's valid window.
// Lower and Upper are the inclusive window bounds in their textual form.
type OutOfRangeError struct {
	Unit      string
	Target    string
	Lower     string
	Upper     string
	TooEarly  bool
	LowerName string
	UpperName string
}

func (e *OutOfRangeError) Error() string {
	if e.TooEarly {
		return fmt.Sprintf("%s %s is before %s %s", e.Unit, e.Target, e.LowerName, e.Lower)
	}
	return fmt.Sprintf("%s %s is after %s %s", e.Unit, e.Target, e.UpperName, e.Upper)
}

// Is matches ErrOutOfRange.
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// AlreadyMarkedError is returned when marking a slot that is already attended.
type AlreadyMarkedError struct {
	Slot WeeklyAttendance
}

func (e *AlreadyMarkedError) Error() string {
	return fmt.Sprintf("attendance for %s is already marked", e.Slot)
}

// Is matches ErrAlreadyMarked.
func (e *AlreadyMarkedError) Is(target error) bool {
	return target == ErrAlreadyMarked
}

// NotMarkedError is returned when unmarking a slot that was never attended.
type NotMarkedError struct {
	Slot WeeklyAttendance
}

func (e *NotMarkedError) Error() string {
	return fmt.Sprintf("attendance for %s is not marked", e.Slot)
}

// Is matches ErrNotMarked.
func (e *NotMarkedError) Is(target error) bool {
	return target == ErrNotMarked
}

// InvalidFormatError reports a value that failed to parse or validate.
type InvalidFormatError struct {
	Kind  string
	Value string
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Kind, e.Value)
}

// Is matches ErrInvalidFormat.
func (e *InvalidFormatError) Is(target error) bool {
	return target == ErrInvalidFormat
}

func weekOutOfRange(target, lower, upper WeeklyAttendance) *OutOfRangeError {
	return &OutOfRangeError{
		Unit:      "week",
		Target:    target.String(),
		Lower:     lower.String(),
		Upper:     upper.String(),
		TooEarly:  target.IsBefore(lower),
		LowerName: "join week",
		UpperName: "current week",
	}
}

func monthOutOfRange(target, lower, upper YearMonth) *OutOfRangeError {
	return &OutOfRangeError{
		Unit:      "month",
		Target:    target.String(),
		Lower:     lower.String(),
		Upper:     upper.String(),
		TooEarly:  target.Before(lower),
		LowerName: "join month",
		UpperName: "current month",
	}
}
