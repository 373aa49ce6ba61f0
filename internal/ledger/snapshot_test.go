package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttendanceSnapshotRoundTrip(t *testing.T) {
	clock := clockAt(2024, time.May, 9)
	ledger := NewAttendanceLedger(mustJoinDate(t, "2024-02-10"), clock)
	var err error
	for _, raw := range []string{"2024-02-W2", "2024-04-W3", "2024-05-W4"} {
		ledger, err = ledger.MarkAttendance(mustSlot(t, raw))
		require.NoError(t, err)
	}

	snap := ledger.Snapshot()
	assert.Equal(t, "2024-02-10", snap.Anchor)
	assert.Equal(t, []Entry{{Key: "2024-02-W2", Flag: true}, {Key: "2024-04-W3", Flag: true}, {Key: "2024-05-W4", Flag: true}}, snap.Entries)

	restored, err := AttendanceLedgerFromSnapshot(snap, clock)
	require.NoError(t, err)
	assert.Equal(t, ledger.Slots(), restored.Slots())
	for slot := ledger.JoinWeek(); !slot.IsAfter(ledger.CurrentWeek()); slot = slot.Next() {
		assert.Equal(t, ledger.HasAttended(slot), restored.HasAttended(slot), slot.String())
	}
}

func TestPaymentSnapshotRoundTrip(t *testing.T) {
	clock := clockAt(2024, time.July, 15)
	ledger := payMonths(t, NewPaymentLedger(mustJoinDate(t, "2024-01-31"), clock), "2024-01", "2024-03", "2024-07")

	payload, err := json.Marshal(ledger.Snapshot())
	require.NoError(t, err)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(payload, &snap))
	restored, err := PaymentLedgerFromSnapshot(snap, clock)
	require.NoError(t, err)

	assert.Equal(t, ledger.OverallStatus(), restored.OverallStatus())
	assert.Equal(t, ledger.Records(), restored.Records())
	for m := ledger.JoinMonth(); !m.After(ledger.CurrentMonth()); m = m.Next() {
		assert.Equal(t, ledger.IsMonthPaid(m), restored.IsMonthPaid(m), m.String())
	}
}

func TestSnapshotReloadDropsOutOfWindowEntries(t *testing.T) {
	snap := Snapshot{
		Anchor: "2024-03-01",
		Entries: []Entry{
			{Key: "2024-02", Flag: true},
			{Key: "2024-03", Flag: true},
			{Key: "2024-08", Flag: true},
		},
	}
	ledger, err := PaymentLedgerFromSnapshot(snap, clockAt(2024, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, []MonthlyRecord{{Month: mustMonth(t, "2024-03"), Paid: true}}, ledger.Records())

	attendance, err := AttendanceLedgerFromSnapshot(Snapshot{
		Anchor: "2024-03-01",
		Entries: []Entry{
			{Key: "2024-02-W4", Flag: true},
			{Key: "2024-03-W2", Flag: true},
			{Key: "2024-04-W1", Flag: false},
			{Key: "2024-05-W1", Flag: true},
		},
	}, clockAt(2024, time.April, 1))
	require.NoError(t, err)
	assert.Equal(t, []WeeklyAttendance{mustSlot(t, "2024-03-W2")}, attendance.Slots())
}

func TestSnapshotRejectsMalformedEntries(t *testing.T) {
	clock := clockAt(2024, time.April, 1)

	_, err := PaymentLedgerFromSnapshot(Snapshot{Anchor: "2024-02-30"}, clock)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = PaymentLedgerFromSnapshot(Snapshot{Anchor: "2024-02-01", Entries: []Entry{{Key: "March"}}}, clock)
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = AttendanceLedgerFromSnapshot(Snapshot{Anchor: "2024-02-01", Entries: []Entry{{Key: "2024-03-W9", Flag: true}}}, clock)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
