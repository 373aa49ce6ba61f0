package ledger

import "sort"

// AttendanceLedger records which week slots a student attended.
//
// Every stored slot lies within [JoinWeek, CurrentWeek]. The ceiling is the
// last slot of the current month, so any week of the current month can be
// marked regardless of the day "now" falls on.
type AttendanceLedger struct {
	joinDate JoinDate
	clock    Clock
	attended map[WeeklyAttendance]struct{}
}

// NewAttendanceLedger returns an empty ledger anchored at joinDate.
func NewAttendanceLedger(joinDate JoinDate, clock Clock) *AttendanceLedger {
	return &AttendanceLedger{
		joinDate: joinDate,
		clock:    orSystemClock(clock),
		attended: make(map[WeeklyAttendance]struct{}),
	}
}

// RestoreAttendanceLedger rebuilds a ledger from previously exported slots.
// Slots outside the current window are dropped.
func RestoreAttendanceLedger(joinDate JoinDate, clock Clock, slots []WeeklyAttendance) *AttendanceLedger {
	l := NewAttendanceLedger(joinDate, clock)
	lower, upper := l.window()
	for _, slot := range slots {
		if slot.Valid() && !slot.IsBefore(lower) && !slot.IsAfter(upper) {
			l.attended[slot] = struct{}{}
		}
	}
	return l
}

// JoinDate returns the ledger anchor.
func (l *AttendanceLedger) JoinDate() JoinDate { return l.joinDate }

// JoinWeek is the earliest slot that can be marked.
func (l *AttendanceLedger) JoinWeek() WeeklyAttendance {
	return l.joinDate.ToFirstWeekSlot()
}

// CurrentWeek is the latest slot that can be marked.
func (l *AttendanceLedger) CurrentWeek() WeeklyAttendance {
	return LastSlotOf(YearMonthOf(l.clock.Now()))
}

func (l *AttendanceLedger) window() (WeeklyAttendance, WeeklyAttendance) {
	return l.JoinWeek(), l.CurrentWeek()
}

func (l *AttendanceLedger) checkSlot(slot WeeklyAttendance) error {
	if !slot.Valid() {
		return &InvalidFormatError{Kind: "week", Value: slot.String()}
	}
	lower, upper := l.window()
	if slot.IsBefore(lower) || slot.IsAfter(upper) {
		return weekOutOfRange(slot, lower, upper)
	}
	return nil
}

// HasAttended reports whether slot is marked. Slots outside the window are
// never attended.
func (l *AttendanceLedger) HasAttended(slot WeeklyAttendance) bool {
	if l.checkSlot(slot) != nil {
		return false
	}
	_, ok := l.attended[slot]
	return ok
}

// MarkAttendance returns a new ledger with slot marked.
func (l *AttendanceLedger) MarkAttendance(slot WeeklyAttendance) (*AttendanceLedger, error) {
	if err := l.checkSlot(slot); err != nil {
		return nil, err
	}
	if _, ok := l.attended[slot]; ok {
		return nil, &AlreadyMarkedError{Slot: slot}
	}
	next := l.clone()
	next.attended[slot] = struct{}{}
	return next, nil
}

// UnmarkAttendance returns a new ledger with slot removed.
func (l *AttendanceLedger) UnmarkAttendance(slot WeeklyAttendance) (*AttendanceLedger, error) {
	if err := l.checkSlot(slot); err != nil {
		return nil, err
	}
	if _, ok := l.attended[slot]; !ok {
		return nil, &NotMarkedError{Slot: slot}
	}
	next := l.clone()
	delete(next.attended, slot)
	return next, nil
}

// Slots returns the attended slots in ascending order.
func (l *AttendanceLedger) Slots() []WeeklyAttendance {
	slots := make([]WeeklyAttendance, 0, len(l.attended))
	for slot := range l.attended {
		slots = append(slots, slot)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i].IsBefore(slots[j]) })
	return slots
}

// Len returns the number of attended slots.
func (l *AttendanceLedger) Len() int { return len(l.attended) }

func (l *AttendanceLedger) clone() *AttendanceLedger {
	attended := make(map[WeeklyAttendance]struct{}, len(l.attended)+1)
	for slot := range l.attended {
		attended[slot] = struct{}{}
	}
	return &AttendanceLedger{joinDate: l.joinDate, clock: l.clock, attended: attended}
}
