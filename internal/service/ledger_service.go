package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-roster-api/internal/dto"
	"github.com/noah-isme/tutor-roster-api/internal/ledger"
	"github.com/noah-isme/tutor-roster-api/internal/models"
	"github.com/noah-isme/tutor-roster-api/internal/repository"
	appErrors "github.com/noah-isme/tutor-roster-api/pkg/errors"
)

// LedgerService runs the ledger-affecting roster commands. Each command loads
// the person, rebuilds the ledgers against the clock, applies one mutation and
// writes the new snapshots back guarded by the person's version.
type LedgerService struct {
	repo      personRepository
	cache     *CacheService
	metrics   *MetricsService
	clock     ledger.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLedgerService constructs the ledger service. A nil clock reads the system time.
func NewLedgerService(repo personRepository, cache *CacheService, metrics *MetricsService, clock ledger.Clock, validate *validator.Validate, logger *zap.Logger) *LedgerService {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerService{repo: repo, cache: cache, metrics: metrics, clock: clock, validator: validate, logger: logger}
}

// Attendance returns the attendance view of a student.
func (s *LedgerService) Attendance(ctx context.Context, id string) (*dto.AttendanceView, error) {
	_, ledgers, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if ledgers.attendance == nil {
		return nil, notAStudent(id)
	}
	view := buildAttendanceView(ledgers.attendance)
	return &view, nil
}

// Payments returns the payment view of any person.
func (s *LedgerService) Payments(ctx context.Context, id string) (*dto.PaymentView, error) {
	_, ledgers, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	view := buildPaymentView(ledgers.payments)
	return &view, nil
}

// MarkAttendance records attendance for the given week.
func (s *LedgerService) MarkAttendance(ctx context.Context, id string, req dto.MarkAttendanceRequest) (*dto.AttendanceView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	return s.changeAttendance(ctx, id, OpMarkAttendance, req.Week, (*ledger.AttendanceLedger).MarkAttendance)
}

// UnmarkAttendance removes attendance for the given week marker.
func (s *LedgerService) UnmarkAttendance(ctx context.Context, id string, week string) (*dto.AttendanceView, error) {
	return s.changeAttendance(ctx, id, OpUnmarkAttendance, week, (*ledger.AttendanceLedger).UnmarkAttendance)
}

func (s *LedgerService) changeAttendance(ctx context.Context, id, op, week string, apply func(*ledger.AttendanceLedger, ledger.WeeklyAttendance) (*ledger.AttendanceLedger, error)) (*dto.AttendanceView, error) {
	marker, err := ledger.ParseWeekMarker(strings.TrimSpace(week))
	if err != nil {
		return nil, ledgerError(err)
	}
	slot := marker.ToSlot()
	updated, err := s.mutate(ctx, id, op, slot.String(), func(current restoredLedgers) (restoredLedgers, error) {
		if current.attendance == nil {
			return current, notAStudent(id)
		}
		next, err := apply(current.attendance, slot)
		if err != nil {
			return current, ledgerError(err)
		}
		current.attendance = next
		return current, nil
	})
	if err != nil {
		return nil, err
	}
	view := buildAttendanceView(updated.attendance)
	return &view, nil
}

// Pay marks a month as paid. Paying an already paid month is rejected.
func (s *LedgerService) Pay(ctx context.Context, id string, req dto.PaymentRequest) (*dto.PaymentView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}
	return s.changePayment(ctx, id, OpPay, req.Month, func(l *ledger.PaymentLedger, month ledger.YearMonth) (*ledger.PaymentLedger, error) {
		next, err := l.MarkMonthAsPaid(month)
		if err != nil {
			return nil, ledgerError(err)
		}
		if l.IsMonthPaid(month) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyPaid, fmt.Sprintf("month %s is already paid", month))
		}
		return next, nil
	})
}

// Unpay marks a paid month as unpaid again.
func (s *LedgerService) Unpay(ctx context.Context, id string, month string) (*dto.PaymentView, error) {
	return s.changePayment(ctx, id, OpUnpay, month, func(l *ledger.PaymentLedger, month ledger.YearMonth) (*ledger.PaymentLedger, error) {
		next, err := l.MarkMonthAsUnpaid(month)
		if err != nil {
			return nil, ledgerError(err)
		}
		if !l.IsMonthPaid(month) {
			return nil, appErrors.Clone(appErrors.ErrAlreadyUnpaid, fmt.Sprintf("month %s is already unpaid", month))
		}
		return next, nil
	})
}

// DeletePayment removes a recorded payment. The ledger transition matches
// Unpay but a month without a payment reports not found.
func (s *LedgerService) DeletePayment(ctx context.Context, id string, month string) (*dto.PaymentView, error) {
	return s.changePayment(ctx, id, OpDeletePayment, month, func(l *ledger.PaymentLedger, month ledger.YearMonth) (*ledger.PaymentLedger, error) {
		next, err := l.MarkMonthAsUnpaid(month)
		if err != nil {
			return nil, ledgerError(err)
		}
		if !l.IsMonthPaid(month) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no payment recorded for %s", month))
		}
		return next, nil
	})
}

func (s *LedgerService) changePayment(ctx context.Context, id, op, rawMonth string, apply func(*ledger.PaymentLedger, ledger.YearMonth) (*ledger.PaymentLedger, error)) (*dto.PaymentView, error) {
	month, err := ledger.ParseYearMonth(strings.TrimSpace(rawMonth))
	if err != nil {
		return nil, ledgerError(err)
	}
	updated, err := s.mutate(ctx, id, op, month.String(), func(current restoredLedgers) (restoredLedgers, error) {
		next, err := apply(current.payments, month)
		if err != nil {
			return current, err
		}
		current.payments = next
		return current, nil
	})
	if err != nil {
		return nil, err
	}
	view := buildPaymentView(updated.payments)
	return &view, nil
}

// Overdue lists everyone whose payment status is overdue.
func (s *LedgerService) Overdue(ctx context.Context) ([]dto.OverdueItem, error) {
	people, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list people")
	}
	items := make([]dto.OverdueItem, 0)
	for i := range people {
		person := &people[i]
		payments, err := ledger.PaymentLedgerFromSnapshot(ledger.Snapshot(person.Payments), s.clock)
		if err != nil {
			s.logger.Warn("skipping unreadable payment ledger", zap.String("person_id", person.ID), zap.Error(err))
			continue
		}
		first, overdue := payments.FirstOverdueMonth()
		if !overdue {
			continue
		}
		items = append(items, dto.OverdueItem{
			ID:                person.ID,
			Name:              person.Name,
			Role:              person.Role,
			Phone:             person.Phone,
			FirstOverdueMonth: first.String(),
			UnpaidMonths:      monthStrings(payments.UnpaidMonths()),
		})
	}
	return items, nil
}

// mutate applies fn to the person's ledgers and persists the result. On any
// failure the stored ledgers are left as they were.
func (s *LedgerService) mutate(ctx context.Context, id, op, target string, fn func(restoredLedgers) (restoredLedgers, error)) (restoredLedgers, error) {
	person, current, err := s.load(ctx, id)
	if err != nil {
		return restoredLedgers{}, err
	}
	next, err := fn(current)
	if err != nil {
		s.metrics.RecordLedgerMutation(op, err)
		return restoredLedgers{}, err
	}
	next.store(person)
	if err := s.repo.UpdateLedgers(ctx, person); err != nil {
		s.metrics.RecordLedgerMutation(op, err)
		if errors.Is(err, repository.ErrStaleVersion) {
			return restoredLedgers{}, appErrors.WrapAs(err, appErrors.ErrConflict, "person was modified concurrently, retry the command")
		}
		return restoredLedgers{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save ledger")
	}
	s.metrics.RecordLedgerMutation(op, nil)
	_ = s.cache.Evict(ctx, s.cache.Key("person", id))
	s.logger.Info(ledgerLogMessage(op), zap.String("person_id", id), zap.String("op", op), zap.String("target", target))
	return next, nil
}

func (s *LedgerService) load(ctx context.Context, id string) (*models.Person, restoredLedgers, error) {
	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, restoredLedgers{}, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, restoredLedgers{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load person")
	}
	ledgers, err := restoreLedgers(person, s.clock)
	if err != nil {
		return nil, restoredLedgers{}, err
	}
	return person, ledgers, nil
}

func ledgerLogMessage(op string) string {
	switch op {
	case OpMarkAttendance:
		return "attendance marked"
	case OpUnmarkAttendance:
		return "attendance unmarked"
	case OpPay:
		return "month paid"
	case OpUnpay:
		return "month unpaid"
	case OpDeletePayment:
		return "payment deleted"
	default:
		return "ledger updated"
	}
}

func notAStudent(id string) error {
	return appErrors.Clone(appErrors.ErrNotAStudent, fmt.Sprintf("person %s is not a student", id))
}
