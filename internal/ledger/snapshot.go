package ledger

// Entry is one exported ledger line. Key is a week marker (attendance) or a
// yyyy-MM month (payment); Flag is presence or the paid flag respectively.
type Entry struct {
	Key  string `json:"key"`
	Flag bool   `json:"flag"`
}

// Snapshot is the plain form of a ledger handed to storage.
type Snapshot struct {
	Anchor  string  `json:"anchor"`
	Entries []Entry `json:"entries"`
}

// Snapshot exports the ledger anchor and attended slots.
func (l *AttendanceLedger) Snapshot() Snapshot {
	slots := l.Slots()
	entries := make([]Entry, 0, len(slots))
	for _, slot := range slots {
		entries = append(entries, Entry{Key: slot.String(), Flag: true})
	}
	return Snapshot{Anchor: l.joinDate.String(), Entries: entries}
}

// AttendanceLedgerFromSnapshot restores an attendance ledger. Entries with a
// false flag are ignored and out-of-window slots are dropped.
func AttendanceLedgerFromSnapshot(s Snapshot, clock Clock) (*AttendanceLedger, error) {
	joinDate, err := ParseJoinDate(s.Anchor)
	if err != nil {
		return nil, err
	}
	slots := make([]WeeklyAttendance, 0, len(s.Entries))
	for _, entry := range s.Entries {
		if !entry.Flag {
			continue
		}
		marker, err := ParseWeekMarker(entry.Key)
		if err != nil {
			return nil, err
		}
		slots = append(slots, marker.ToSlot())
	}
	return RestoreAttendanceLedger(joinDate, clock, slots), nil
}

// Snapshot exports the ledger anchor and monthly records.
func (l *PaymentLedger) Snapshot() Snapshot {
	records := l.Records()
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, Entry{Key: rec.Month.String(), Flag: rec.Paid})
	}
	return Snapshot{Anchor: l.joinDate.String(), Entries: entries}
}

// PaymentLedgerFromSnapshot restores a payment ledger, dropping records
// outside the window.
func PaymentLedgerFromSnapshot(s Snapshot, clock Clock) (*PaymentLedger, error) {
	joinDate, err := ParseJoinDate(s.Anchor)
	if err != nil {
		return nil, err
	}
	records := make([]MonthlyRecord, 0, len(s.Entries))
	for _, entry := range s.Entries {
		month, err := ParseYearMonth(entry.Key)
		if err != nil {
			return nil, err
		}
		records = append(records, MonthlyRecord{Month: month, Paid: entry.Flag})
	}
	return RestorePaymentLedger(joinDate, clock, records), nil
}
