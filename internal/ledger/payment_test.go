package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPaymentLedgerPopulatesWindow(t *testing.T) {
	ledger := NewPaymentLedger(mustJoinDate(t, "2023-11-20"), clockAt(2024, time.February, 2))

	records := ledger.Records()
	require.Len(t, records, 4)
	for i, want := range []string{"2023-11", "2023-12", "2024-01", "2024-02"} {
		assert.Equal(t, want, records[i].Month.String())
		assert.False(t, records[i].Paid)
	}
	assert.Equal(t, "2023-11", ledger.JoinMonth().String())
	assert.Equal(t, "2024-02", ledger.CurrentMonth().String())
}

func TestPaymentLedgerScenario(t *testing.T) {
	ledger := NewPaymentLedger(mustJoinDate(t, "2024-03-01"), clockAt(2024, time.July, 15))

	paid, err := ledger.MarkMonthAsPaid(mustMonth(t, "2024-03"))
	require.NoError(t, err)
	assert.True(t, paid.IsMonthPaid(mustMonth(t, "2024-03")))
	assert.False(t, ledger.IsMonthPaid(mustMonth(t, "2024-03")))

	_, err = ledger.MarkMonthAsPaid(mustMonth(t, "2024-02"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Contains(t, err.Error(), "join month 2024-03")

	_, err = ledger.MarkMonthAsPaid(mustMonth(t, "2030-12"))
	require.Error(t, err)
	var rangeErr *OutOfRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.False(t, rangeErr.TooEarly)
	assert.Equal(t, "2024-07", rangeErr.Upper)
	assert.Contains(t, err.Error(), "current month 2024-07")
}

func TestPaymentLedgerBoundaries(t *testing.T) {
	ledger := NewPaymentLedger(mustJoinDate(t, "2024-03-20"), clockAt(2024, time.July, 1))

	_, err := ledger.MarkMonthAsPaid(mustMonth(t, "2024-03"))
	assert.NoError(t, err)
	_, err = ledger.MarkMonthAsPaid(mustMonth(t, "2024-07"))
	assert.NoError(t, err)
	_, err = ledger.MarkMonthAsUnpaid(mustMonth(t, "2024-02"))
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = ledger.MarkMonthAsUnpaid(mustMonth(t, "2024-08"))
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = ledger.MarkMonthAsPaid(YearMonth{Year: 2024, Month: 14})
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestPaymentLedgerMutatorsAreIdempotent(t *testing.T) {
	ledger := NewPaymentLedger(mustJoinDate(t, "2024-01-01"), clockAt(2024, time.March, 1))
	march := mustMonth(t, "2024-03")

	once, err := ledger.MarkMonthAsPaid(march)
	require.NoError(t, err)
	twice, err := once.MarkMonthAsPaid(march)
	require.NoError(t, err)
	assert.Equal(t, once.Records(), twice.Records())

	unpaid, err := ledger.MarkMonthAsUnpaid(march)
	require.NoError(t, err)
	assert.Equal(t, ledger.Records(), unpaid.Records())
}

func TestPaymentLedgerAbsentMonthIsUnpaid(t *testing.T) {
	ledger := RestorePaymentLedger(mustJoinDate(t, "2024-01-01"), clockAt(2024, time.March, 1), nil)
	assert.Empty(t, ledger.Records())
	assert.False(t, ledger.IsMonthPaid(mustMonth(t, "2024-02")))
	assert.Equal(t, PaymentStatusOverdue, ledger.OverallStatus())
}

func payMonths(t *testing.T, ledger *PaymentLedger, months ...string) *PaymentLedger {
	t.Helper()
	var err error
	for _, raw := range months {
		ledger, err = ledger.MarkMonthAsPaid(mustMonth(t, raw))
		require.NoError(t, err)
	}
	return ledger
}

func TestPaymentLedgerOverallStatus(t *testing.T) {
	fresh := func() *PaymentLedger {
		return NewPaymentLedger(mustJoinDate(t, "2024-01-10"), clockAt(2024, time.July, 15))
	}
	past := []string{"2024-01", "2024-02", "2024-03", "2024-04", "2024-05", "2024-06"}

	t.Run("current month unpaid", func(t *testing.T) {
		ledger := payMonths(t, fresh(), past...)
		assert.Equal(t, PaymentStatusUnpaid, ledger.OverallStatus())
		assert.Equal(t, []YearMonth{mustMonth(t, "2024-07")}, ledger.UnpaidMonths())
	})

	t.Run("any past month unpaid", func(t *testing.T) {
		for skip := range past {
			months := append([]string{"2024-07"}, past[:skip]...)
			months = append(months, past[skip+1:]...)
			ledger := payMonths(t, fresh(), months...)
			assert.Equal(t, PaymentStatusOverdue, ledger.OverallStatus(), past[skip])
			first, ok := ledger.FirstOverdueMonth()
			require.True(t, ok)
			assert.Equal(t, past[skip], first.String())
		}
	})

	t.Run("everything paid", func(t *testing.T) {
		ledger := payMonths(t, fresh(), append(past, "2024-07")...)
		assert.Equal(t, PaymentStatusPaid, ledger.OverallStatus())
		_, ok := ledger.FirstOverdueMonth()
		assert.False(t, ok)
		assert.Empty(t, ledger.UnpaidMonths())
	})

	t.Run("first unpaid month wins", func(t *testing.T) {
		ledger := payMonths(t, fresh(), "2024-01", "2024-03", "2024-05", "2024-06", "2024-07")
		first, ok := ledger.FirstOverdueMonth()
		require.True(t, ok)
		assert.Equal(t, "2024-02", first.String())
	})
}

func TestPaymentLedgerJoinedThisMonth(t *testing.T) {
	ledger := NewPaymentLedger(mustJoinDate(t, "2024-07-01"), clockAt(2024, time.July, 15))
	assert.Equal(t, PaymentStatusUnpaid, ledger.OverallStatus())

	paid := payMonths(t, ledger, "2024-07")
	assert.Equal(t, PaymentStatusPaid, paid.OverallStatus())
}

func TestRestorePaymentLedgerFiltersWindow(t *testing.T) {
	records := []MonthlyRecord{
		{Month: mustMonth(t, "2023-12"), Paid: true},
		{Month: mustMonth(t, "2024-01"), Paid: true},
		{Month: mustMonth(t, "2024-02"), Paid: false},
		{Month: mustMonth(t, "2024-02"), Paid: true},
		{Month: mustMonth(t, "2024-09"), Paid: true},
	}
	ledger := RestorePaymentLedger(mustJoinDate(t, "2024-01-05"), clockAt(2024, time.March, 3), records)

	assert.Equal(t, []MonthlyRecord{
		{Month: mustMonth(t, "2024-01"), Paid: true},
		{Month: mustMonth(t, "2024-02"), Paid: true},
	}, ledger.Records())
	assert.Equal(t, PaymentStatusUnpaid, ledger.OverallStatus())
}

func TestPaymentLedgerWindowGrowsWithClock(t *testing.T) {
	now := time.Date(2024, time.January, 20, 0, 0, 0, 0, time.UTC)
	clock := ClockFunc(func() time.Time { return now })
	ledger := payMonths(t, NewPaymentLedger(mustJoinDate(t, "2024-01-02"), clock), "2024-01")
	assert.Equal(t, PaymentStatusPaid, ledger.OverallStatus())

	now = time.Date(2024, time.February, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, PaymentStatusUnpaid, ledger.OverallStatus())
	assert.False(t, ledger.IsMonthPaid(mustMonth(t, "2024-02")))

	now = time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, PaymentStatusOverdue, ledger.OverallStatus())
}
