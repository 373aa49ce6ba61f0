package service

import (
	"context"
	"sort"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-roster-api/internal/dto"
	"github.com/noah-isme/tutor-roster-api/internal/models"
	appErrors "github.com/noah-isme/tutor-roster-api/pkg/errors"
)

func newLedgerServiceForTest(repo *mockPersonRepo) (*LedgerService, *MetricsService) {
	metrics := NewMetricsService()
	return NewLedgerService(repo, nil, metrics, fixtureClock(), validator.New(), zap.NewNop()), metrics
}

func TestLedgerServiceMarkAttendance(t *testing.T) {
	repo := newMockPersonRepo(studentFixture("s1", "2024-03-01"))
	svc, metrics := newLedgerServiceForTest(repo)
	ctx := context.Background()

	view, err := svc.MarkAttendance(ctx, "s1", dto.MarkAttendanceRequest{Week: "2024-03-W1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-W1"}, view.Weeks)
	assert.Equal(t, 2, repo.people["s1"].Version)

	view, err = svc.MarkAttendance(ctx, "s1", dto.MarkAttendanceRequest{Week: " 2024-07-W4 "})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-03-W1", "2024-07-W4"}, view.Weeks)

	_, err = svc.MarkAttendance(ctx, "s1", dto.MarkAttendanceRequest{Week: "2024-03-W1"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyMarked))
	assert.Contains(t, err.Error(), "2024-03-W1")

	assert.Equal(t, uint64(2), metrics.Snapshot().LedgerMutations[OpMarkAttendance])
	assert.Equal(t, 2, repo.ledgerWrites)
}

func TestLedgerServiceAttendanceWindow(t *testing.T) {
	repo := newMockPersonRepo(studentFixture("s1", "2024-03-01"))
	svc, _ := newLedgerServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.MarkAttendance(ctx, "s1", dto.MarkAttendanceRequest{Week: "2024-02-W4"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrOutOfRange))
	assert.Contains(t, err.Error(), "join week 2024-03-W1")

	_, err = svc.MarkAttendance(ctx, "s1", dto.MarkAttendanceRequest{Week: "2024-08-W1"})
	assert.True(t, appErrors.Is(err, appErrors.ErrOutOfRange))

	_, err = svc.MarkAttendance(ctx, "s1", dto.MarkAttendanceRequest{Week: "2024-03-W5"})
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidFormat))

	_, err = svc.MarkAttendance(ctx, "s1", dto.MarkAttendanceRequest{})
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	assert.Zero(t, repo.ledgerWrites)
}

func TestLedgerServiceUnmarkAttendance(t *testing.T) {
	repo := newMockPersonRepo(studentFixture("s1", "2024-03-01"))
	svc, _ := newLedgerServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.UnmarkAttendance(ctx, "s1", "2024-04-W2")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotMarked))

	_, err = svc.MarkAttendance(ctx, "s1", dto.MarkAttendanceRequest{Week: "2024-04-W2"})
	require.NoError(t, err)
	view, err := svc.UnmarkAttendance(ctx, "s1", "2024-04-W2")
	require.NoError(t, err)
	assert.Empty(t, view.Weeks)

	stored, err := svc.Attendance(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, stored.Weeks)
}

func TestLedgerServiceTutorHasNoAttendance(t *testing.T) {
	repo := newMockPersonRepo(tutorFixture("t1", "2024-03-01"))
	svc, _ := newLedgerServiceForTest(repo)
	ctx := context.Background()

	_, err := svc.MarkAttendance(ctx, "t1", dto.MarkAttendanceRequest{Week: "2024-03-W1"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotAStudent))
	_, err = svc.UnmarkAttendance(ctx, "t1", "2024-03-W1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotAStudent))
	_, err = svc.Attendance(ctx, "t1")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotAStudent))

	view, err := svc.Pay(ctx, "t1", dto.PaymentRequest{Month: "2024-03"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-04", "2024-05", "2024-06", "2024-07"}, view.UnpaidMonths)
}

func TestLedgerServicePaymentScenario(t *testing.T) {
	repo := newMockPersonRepo(studentFixture("s1", "2024-03-01"))
	svc, _ := newLedgerServiceForTest(repo)
	ctx := context.Background()

	view, err := svc.Pay(ctx, "s1", dto.PaymentRequest{Month: "2024-03"})
	require.NoError(t, err)
	assert.Equal(t, "overdue", view.Status)
	assert.Equal(t, "2024-04", view.FirstOverdueMonth)

	_, err = svc.Pay(ctx, "s1", dto.PaymentRequest{Month: "2024-02"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrOutOfRange))
	assert.Contains(t, err.Error(), "join month 2024-03")

	_, err = svc.Pay(ctx, "s1", dto.PaymentRequest{Month: "2030-12"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrOutOfRange))
	assert.Contains(t, err.Error(), "current month 2024-07")

	_, err = svc.Pay(ctx, "s1", dto.PaymentRequest{Month: "2024-03"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyPaid))

	for _, month := range []string{"2024-04", "2024-05", "2024-06"} {
		view, err = svc.Pay(ctx, "s1", dto.PaymentRequest{Month: month})
		require.NoError(t, err)
	}
	assert.Equal(t, "unpaid", view.Status)

	view, err = svc.Pay(ctx, "s1", dto.PaymentRequest{Month: "2024-07"})
	require.NoError(t, err)
	assert.Equal(t, "paid", view.Status)
	assert.Empty(t, view.UnpaidMonths)
}

func TestLedgerServiceUnpay(t *testing.T) {
	repo := newMockPersonRepo(withPaidMonths(studentFixture("s1", "2024-06-01"), "2024-06", "2024-07"))
	svc, _ := newLedgerServiceForTest(repo)
	ctx := context.Background()

	view, err := svc.Unpay(ctx, "s1", "2024-06")
	require.NoError(t, err)
	assert.Equal(t, "overdue", view.Status)

	_, err = svc.Unpay(ctx, "s1", "2024-06")
	assert.True(t, appErrors.Is(err, appErrors.ErrAlreadyUnpaid))

	// the window check wins over the already-unpaid guard
	_, err = svc.Unpay(ctx, "s1", "2024-05")
	assert.True(t, appErrors.Is(err, appErrors.ErrOutOfRange))

	_, err = svc.Unpay(ctx, "s1", "June")
	assert.True(t, appErrors.Is(err, appErrors.ErrInvalidFormat))
}

func TestLedgerServiceDeletePayment(t *testing.T) {
	repo := newMockPersonRepo(withPaidMonths(tutorFixture("t1", "2024-07-01"), "2024-07"))
	svc, metrics := newLedgerServiceForTest(repo)
	ctx := context.Background()

	view, err := svc.DeletePayment(ctx, "t1", "2024-07")
	require.NoError(t, err)
	assert.Equal(t, "unpaid", view.Status)
	assert.Equal(t, []dto.PaymentRecord{{Month: "2024-07", Paid: false}}, view.Records)

	_, err = svc.DeletePayment(ctx, "t1", "2024-07")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))

	assert.Equal(t, uint64(1), metrics.Snapshot().LedgerMutations[OpDeletePayment])
}

func TestLedgerServiceStaleWriteLeavesLedgerUntouched(t *testing.T) {
	person := studentFixture("s1", "2024-03-01")
	repo := newMockPersonRepo(person)
	repo.staleLedgers = true
	svc, _ := newLedgerServiceForTest(repo)

	_, err := svc.Pay(context.Background(), "s1", dto.PaymentRequest{Month: "2024-03"})
	require.Error(t, err)
	assert.True(t, appErrors.Is(err, appErrors.ErrConflict))
	assert.Equal(t, person.Payments, repo.people["s1"].Payments)
}

func TestLedgerServiceMissingPerson(t *testing.T) {
	svc, _ := newLedgerServiceForTest(newMockPersonRepo())
	ctx := context.Background()

	_, err := svc.Payments(ctx, "ghost")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
	_, err = svc.Pay(ctx, "ghost", dto.PaymentRequest{Month: "2024-03"})
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestLedgerServiceOverdue(t *testing.T) {
	corrupt := tutorFixture("t9", "2024-01-01")
	corrupt.Payments.Anchor = ""
	repo := newMockPersonRepo(
		withPaidMonths(studentFixture("s1", "2024-05-01"), "2024-05", "2024-06"),
		withPaidMonths(studentFixture("s2", "2024-05-01"), "2024-05", "2024-07"),
		tutorFixture("t1", "2024-07-02"),
		corrupt,
	)
	svc, _ := newLedgerServiceForTest(repo)

	items, err := svc.Overdue(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "s2", items[0].ID)
	assert.Equal(t, "2024-06", items[0].FirstOverdueMonth)
	assert.Equal(t, []string{"2024-06"}, items[0].UnpaidMonths)
}

func TestLedgerServicePaymentsView(t *testing.T) {
	repo := newMockPersonRepo(withPaidMonths(tutorFixture("t1", "2024-04-10"), "2024-05"))
	svc, _ := newLedgerServiceForTest(repo)

	view, err := svc.Payments(context.Background(), "t1")
	require.NoError(t, err)
	months := make([]string, 0, len(view.Records))
	for _, rec := range view.Records {
		months = append(months, rec.Month)
	}
	assert.True(t, sort.StringsAreSorted(months))
	assert.Equal(t, "2024-04", view.JoinMonth)
	assert.Equal(t, "2024-07", view.CurrentMonth)
	assert.Equal(t, []string{"2024-04", "2024-06", "2024-07"}, view.UnpaidMonths)
	assert.Equal(t, models.RoleTutor, repo.people["t1"].Role)
}
