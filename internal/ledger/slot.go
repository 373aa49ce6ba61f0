package ledger

import (
	"fmt"
	"time"
)

// WeeklyAttendance is one of the four coarse week slots of a month.
// Slots are ordered by month first, then week.
type WeeklyAttendance struct {
	Week  int
	Month YearMonth
}

// NewWeeklyAttendance validates and builds a slot.
func NewWeeklyAttendance(week int, month YearMonth) (WeeklyAttendance, error) {
	slot := WeeklyAttendance{Week: week, Month: month}
	if !slot.Valid() {
		return WeeklyAttendance{}, &InvalidFormatError{Kind: "week", Value: fmt.Sprintf("%s-W%d", month, week)}
	}
	return slot, nil
}

// SlotOf returns the slot containing t.
func SlotOf(t time.Time) WeeklyAttendance {
	return WeeklyAttendance{Week: weekOfMonth(t.Day()), Month: YearMonthOf(t)}
}

// LastSlotOf returns the final slot of month m.
func LastSlotOf(m YearMonth) WeeklyAttendance {
	return WeeklyAttendance{Week: WeeksPerMonth, Month: m}
}

// Valid reports whether the week index and month are in range.
func (w WeeklyAttendance) Valid() bool {
	return w.Week >= 1 && w.Week <= WeeksPerMonth && w.Month.Valid()
}

// Compare returns -1, 0 or +1 following the slot order.
func (w WeeklyAttendance) Compare(o WeeklyAttendance) int {
	if c := w.Month.Compare(o.Month); c != 0 {
		return c
	}
	switch {
	case w.Week < o.Week:
		return -1
	case w.Week > o.Week:
		return 1
	default:
		return 0
	}
}

// IsBefore reports whether w precedes o.
func (w WeeklyAttendance) IsBefore(o WeeklyAttendance) bool { return w.Compare(o) < 0 }

// IsAfter reports whether w follows o.
func (w WeeklyAttendance) IsAfter(o WeeklyAttendance) bool { return w.Compare(o) > 0 }

// Equal reports whether both fields match.
func (w WeeklyAttendance) Equal(o WeeklyAttendance) bool { return w == o }

// Next returns the following slot, rolling into the next month after week 4.
func (w WeeklyAttendance) Next() WeeklyAttendance {
	if w.Week >= WeeksPerMonth {
		return WeeklyAttendance{Week: 1, Month: w.Month.Next()}
	}
	return WeeklyAttendance{Week: w.Week + 1, Month: w.Month}
}

// Prev returns the preceding slot.
func (w WeeklyAttendance) Prev() WeeklyAttendance {
	if w.Week <= 1 {
		return WeeklyAttendance{Week: WeeksPerMonth, Month: w.Month.Prev()}
	}
	return WeeklyAttendance{Week: w.Week - 1, Month: w.Month}
}

func (w WeeklyAttendance) String() string {
	return fmt.Sprintf("%s-W%d", w.Month, w.Week)
}

// MarshalText encodes the slot as a week marker.
func (w WeeklyAttendance) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText decodes a week marker.
func (w *WeeklyAttendance) UnmarshalText(text []byte) error {
	marker, err := ParseWeekMarker(string(text))
	if err != nil {
		return err
	}
	*w = marker.ToSlot()
	return nil
}

// MonthlyRecord is the payment state of one month. Equality and order
// consider the month only.
type MonthlyRecord struct {
	Month YearMonth `json:"month"`
	Paid  bool      `json:"paid"`
}

// NewMonthlyRecord validates and builds a record.
func NewMonthlyRecord(month YearMonth, paid bool) (MonthlyRecord, error) {
	if !month.Valid() {
		return MonthlyRecord{}, &InvalidFormatError{Kind: "month", Value: month.String()}
	}
	return MonthlyRecord{Month: month, Paid: paid}, nil
}

// Compare orders records by month.
func (r MonthlyRecord) Compare(o MonthlyRecord) int { return r.Month.Compare(o.Month) }

// IsBefore reports whether r's month precedes o's.
func (r MonthlyRecord) IsBefore(o MonthlyRecord) bool { return r.Compare(o) < 0 }

// IsAfter reports whether r's month follows o's.
func (r MonthlyRecord) IsAfter(o MonthlyRecord) bool { return r.Compare(o) > 0 }

// Equal reports whether both records cover the same month.
func (r MonthlyRecord) Equal(o MonthlyRecord) bool { return r.Month == o.Month }
