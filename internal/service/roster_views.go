package service

import (
	"errors"

	"github.com/noah-isme/tutor-roster-api/internal/dto"
	"github.com/noah-isme/tutor-roster-api/internal/ledger"
	"github.com/noah-isme/tutor-roster-api/internal/models"
	appErrors "github.com/noah-isme/tutor-roster-api/pkg/errors"
)

// restoredLedgers is a person's ledgers rebuilt against the service clock.
// attendance is nil for tutors.
type restoredLedgers struct {
	attendance *ledger.AttendanceLedger
	payments   *ledger.PaymentLedger
}

func restoreLedgers(person *models.Person, clock ledger.Clock) (restoredLedgers, error) {
	var out restoredLedgers
	payments, err := ledger.PaymentLedgerFromSnapshot(ledger.Snapshot(person.Payments), clock)
	if err != nil {
		return out, appErrors.WrapAs(err, appErrors.ErrCorruptLedger, "payment ledger could not be read")
	}
	out.payments = payments
	if person.Attendance != nil {
		attendance, err := ledger.AttendanceLedgerFromSnapshot(ledger.Snapshot(*person.Attendance), clock)
		if err != nil {
			return out, appErrors.WrapAs(err, appErrors.ErrCorruptLedger, "attendance ledger could not be read")
		}
		out.attendance = attendance
	}
	return out, nil
}

// store writes the ledgers back onto the person as snapshots.
func (r restoredLedgers) store(person *models.Person) {
	if r.attendance != nil {
		snap := models.LedgerSnapshot(r.attendance.Snapshot())
		person.Attendance = &snap
	} else {
		person.Attendance = nil
	}
	person.Payments = models.LedgerSnapshot(r.payments.Snapshot())
}

func buildPersonView(person *models.Person, ledgers restoredLedgers) dto.PersonView {
	view := dto.PersonView{
		ID:        person.ID,
		Role:      person.Role,
		Name:      person.Name,
		Phone:     person.Phone,
		Email:     person.Email,
		Address:   person.Address,
		JoinDate:  ledgers.payments.JoinDate().String(),
		Payments:  buildPaymentView(ledgers.payments),
		Version:   person.Version,
		CreatedAt: person.CreatedAt,
		UpdatedAt: person.UpdatedAt,
	}
	if ledgers.attendance != nil {
		attendance := buildAttendanceView(ledgers.attendance)
		view.Attendance = &attendance
	}
	return view
}

func buildAttendanceView(l *ledger.AttendanceLedger) dto.AttendanceView {
	slots := l.Slots()
	weeks := make([]string, 0, len(slots))
	for _, slot := range slots {
		weeks = append(weeks, slot.String())
	}
	return dto.AttendanceView{
		JoinWeek:    l.JoinWeek().String(),
		CurrentWeek: l.CurrentWeek().String(),
		Weeks:       weeks,
	}
}

func buildPaymentView(l *ledger.PaymentLedger) dto.PaymentView {
	records := l.Records()
	view := dto.PaymentView{
		JoinMonth:    l.JoinMonth().String(),
		CurrentMonth: l.CurrentMonth().String(),
		Status:       string(l.OverallStatus()),
		UnpaidMonths: monthStrings(l.UnpaidMonths()),
		Records:      make([]dto.PaymentRecord, 0, len(records)),
	}
	if first, ok := l.FirstOverdueMonth(); ok {
		view.FirstOverdueMonth = first.String()
	}
	for _, rec := range records {
		view.Records = append(view.Records, dto.PaymentRecord{Month: rec.Month.String(), Paid: rec.Paid})
	}
	return view
}

func monthStrings(months []ledger.YearMonth) []string {
	out := make([]string, 0, len(months))
	for _, m := range months {
		out = append(out, m.String())
	}
	return out
}

// ledgerError translates ledger failures into API errors, keeping the ledger
// message which already names the offending slot and window.
func ledgerError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ledger.ErrInvalidFormat):
		return appErrors.WrapAs(err, appErrors.ErrInvalidFormat, err.Error())
	case errors.Is(err, ledger.ErrOutOfRange):
		return appErrors.WrapAs(err, appErrors.ErrOutOfRange, err.Error())
	case errors.Is(err, ledger.ErrAlreadyMarked):
		return appErrors.WrapAs(err, appErrors.ErrAlreadyMarked, err.Error())
	case errors.Is(err, ledger.ErrNotMarked):
		return appErrors.WrapAs(err, appErrors.ErrNotMarked, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update ledger")
	}
}
