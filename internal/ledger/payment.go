package ledger

import "sort"

// PaymentStatus summarises a payment ledger.
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusUnpaid  PaymentStatus = "unpaid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// PaymentLedger tracks the paid flag of every month from the join month up to
// the current month. A month without a record counts as unpaid.
//
// The ledger does not reject paying an already-paid month or unpaying an
// unpaid one; callers check IsMonthPaid first when they need that guard.
type PaymentLedger struct {
	joinDate JoinDate
	clock    Clock
	records  map[YearMonth]bool
}

// NewPaymentLedger returns a ledger holding one unpaid record for every month
// from the join month through the current month.
func NewPaymentLedger(joinDate JoinDate, clock Clock) *PaymentLedger {
	l := &PaymentLedger{
		joinDate: joinDate,
		clock:    orSystemClock(clock),
		records:  make(map[YearMonth]bool),
	}
	lower, upper := l.window()
	for m := lower; !m.After(upper); m = m.Next() {
		l.records[m] = false
	}
	return l
}

// RestorePaymentLedger rebuilds a ledger from stored records without
// re-deriving defaults. Records outside the window are dropped; a later
// record for the same month wins.
func RestorePaymentLedger(joinDate JoinDate, clock Clock, records []MonthlyRecord) *PaymentLedger {
	l := &PaymentLedger{
		joinDate: joinDate,
		clock:    orSystemClock(clock),
		records:  make(map[YearMonth]bool, len(records)),
	}
	lower, upper := l.window()
	for _, rec := range records {
		if rec.Month.Valid() && !rec.Month.Before(lower) && !rec.Month.After(upper) {
			l.records[rec.Month] = rec.Paid
		}
	}
	return l
}

// JoinDate returns the ledger anchor.
func (l *PaymentLedger) JoinDate() JoinDate { return l.joinDate }

// JoinMonth is the earliest month that can be paid.
func (l *PaymentLedger) JoinMonth() YearMonth {
	return l.joinDate.ToJoinMonth().ToYearMonth()
}

// CurrentMonth is the latest month that can be paid.
func (l *PaymentLedger) CurrentMonth() YearMonth {
	return YearMonthOf(l.clock.Now())
}

func (l *PaymentLedger) window() (YearMonth, YearMonth) {
	return l.JoinMonth(), l.CurrentMonth()
}

func (l *PaymentLedger) checkMonth(month YearMonth) error {
	if !month.Valid() {
		return &InvalidFormatError{Kind: "month", Value: month.String()}
	}
	lower, upper := l.window()
	if month.Before(lower) || month.After(upper) {
		return monthOutOfRange(month, lower, upper)
	}
	return nil
}

// IsMonthPaid reports whether month has a paid record.
func (l *PaymentLedger) IsMonthPaid(month YearMonth) bool {
	return l.records[month]
}

// MarkMonthAsPaid returns a new ledger with month recorded as paid.
func (l *PaymentLedger) MarkMonthAsPaid(month YearMonth) (*PaymentLedger, error) {
	return l.set(month, true)
}

// MarkMonthAsUnpaid returns a new ledger with month recorded as unpaid.
func (l *PaymentLedger) MarkMonthAsUnpaid(month YearMonth) (*PaymentLedger, error) {
	return l.set(month, false)
}

func (l *PaymentLedger) set(month YearMonth, paid bool) (*PaymentLedger, error) {
	if err := l.checkMonth(month); err != nil {
		return nil, err
	}
	records := make(map[YearMonth]bool, len(l.records)+1)
	for m, p := range l.records {
		records[m] = p
	}
	records[month] = paid
	return &PaymentLedger{joinDate: l.joinDate, clock: l.clock, records: records}, nil
}

// OverallStatus derives the ledger status. Any unpaid month before the current
// one makes the ledger overdue; otherwise the current month decides.
func (l *PaymentLedger) OverallStatus() PaymentStatus {
	if _, overdue := l.FirstOverdueMonth(); overdue {
		return PaymentStatusOverdue
	}
	if l.IsMonthPaid(l.CurrentMonth()) {
		return PaymentStatusPaid
	}
	return PaymentStatusUnpaid
}

// FirstOverdueMonth returns the earliest unpaid month strictly before the
// current month.
func (l *PaymentLedger) FirstOverdueMonth() (YearMonth, bool) {
	lower, upper := l.window()
	for m := lower; m.Before(upper); m = m.Next() {
		if !l.records[m] {
			return m, true
		}
	}
	return YearMonth{}, false
}

// UnpaidMonths lists every month in the window without a paid record.
func (l *PaymentLedger) UnpaidMonths() []YearMonth {
	lower, upper := l.window()
	var months []YearMonth
	for m := lower; !m.After(upper); m = m.Next() {
		if !l.records[m] {
			months = append(months, m)
		}
	}
	return months
}

// Records returns the stored records in ascending month order.
func (l *PaymentLedger) Records() []MonthlyRecord {
	records := make([]MonthlyRecord, 0, len(l.records))
	for m, paid := range l.records {
		records = append(records, MonthlyRecord{Month: m, Paid: paid})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].IsBefore(records[j]) })
	return records
}
