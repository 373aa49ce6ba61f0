package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/tutor-roster-api/internal/ledger"
)

// PersonRole distinguishes students from tutors.
type PersonRole string

const (
	RoleStudent PersonRole = "student"
	RoleTutor   PersonRole = "tutor"
)

// Valid returns true when the role is a supported value.
func (r PersonRole) Valid() bool {
	switch r {
	case RoleStudent, RoleTutor:
		return true
	default:
		return false
	}
}

// TracksAttendance reports whether people with this role carry an attendance ledger.
func (r PersonRole) TracksAttendance() bool {
	return r == RoleStudent
}

// LedgerSnapshot is the JSONB column form of a ledger.
type LedgerSnapshot ledger.Snapshot

// Value implements driver.Valuer.
func (s LedgerSnapshot) Value() (driver.Value, error) {
	if s.Entries == nil {
		s.Entries = []ledger.Entry{}
	}
	payload, err := json.Marshal(ledger.Snapshot(s))
	if err != nil {
		return nil, fmt.Errorf("marshal ledger snapshot: %w", err)
	}
	return payload, nil
}

// Scan implements sql.Scanner.
func (s *LedgerSnapshot) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = LedgerSnapshot{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan ledger snapshot: unsupported type %T", src)
	}
	var snap ledger.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return fmt.Errorf("unmarshal ledger snapshot: %w", err)
	}
	*s = LedgerSnapshot(snap)
	return nil
}

// Person is a student or tutor on the roster together with their ledgers.
// Attendance is nil for tutors.
type Person struct {
	ID         string          `db:"id" json:"id"`
	Role       PersonRole      `db:"role" json:"role"`
	Name       string          `db:"name" json:"name"`
	Phone      string          `db:"phone" json:"phone"`
	Email      string          `db:"email" json:"email"`
	Address    string          `db:"address" json:"address"`
	JoinDate   time.Time       `db:"join_date" json:"join_date"`
	Attendance *LedgerSnapshot `db:"attendance_ledger" json:"-"`
	Payments   LedgerSnapshot  `db:"payment_ledger" json:"-"`
	Version    int             `db:"version" json:"version"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time       `db:"updated_at" json:"updated_at"`
}

// PersonFilter encapsulates allowed search parameters for listing people.
type PersonFilter struct {
	Search    string
	Role      PersonRole
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
