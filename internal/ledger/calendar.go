package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	// DateLayout is the textual form of a JoinDate.
	DateLayout = "2006-01-02"
	// MonthLayout is the textual form of a YearMonth and JoinMonth.
	MonthLayout = "2006-01"
	// WeeksPerMonth is the number of coarse week slots in every month.
	WeeksPerMonth = 4
)

var (
	datePattern  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	weekPattern  = regexp.MustCompile(`^(\d{4}-\d{2})-W(\d)$`)
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// NewYearMonth validates and builds a YearMonth.
func NewYearMonth(year int, month time.Month) (YearMonth, error) {
	if year < 1 || year > 9999 || month < time.January || month > time.December {
		return YearMonth{}, &InvalidFormatError{Kind: "month", Value: fmt.Sprintf("%04d-%02d", year, int(month))}
	}
	return YearMonth{Year: year, Month: month}, nil
}

// ParseYearMonth parses a yyyy-MM string.
func ParseYearMonth(raw string) (YearMonth, error) {
	if !monthPattern.MatchString(raw) {
		return YearMonth{}, &InvalidFormatError{Kind: "month", Value: raw}
	}
	t, err := time.Parse(MonthLayout, raw)
	if err != nil || t.Year() < 1 {
		return YearMonth{}, &InvalidFormatError{Kind: "month", Value: raw}
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// YearMonthOf returns the month containing t, in t's location.
func YearMonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// Valid reports whether m names a real month.
func (m YearMonth) Valid() bool {
	return m.Year >= 1 && m.Year <= 9999 && m.Month >= time.January && m.Month <= time.December
}

// IsZero reports whether m is the zero value.
func (m YearMonth) IsZero() bool {
	return m == YearMonth{}
}

// Compare returns -1, 0 or +1 depending on whether m is before, equal to or after o.
func (m YearMonth) Compare(o YearMonth) int {
	switch {
	case m.Year < o.Year:
		return -1
	case m.Year > o.Year:
		return 1
	case m.Month < o.Month:
		return -1
	case m.Month > o.Month:
		return 1
	default:
		return 0
	}
}

// Before reports whether m is strictly earlier than o.
func (m YearMonth) Before(o YearMonth) bool { return m.Compare(o) < 0 }

// After reports whether m is strictly later than o.
func (m YearMonth) After(o YearMonth) bool { return m.Compare(o) > 0 }

// Equal reports whether m and o name the same month.
func (m YearMonth) Equal(o YearMonth) bool { return m == o }

// Next returns the following month.
func (m YearMonth) Next() YearMonth {
	if m.Month == time.December {
		return YearMonth{Year: m.Year + 1, Month: time.January}
	}
	return YearMonth{Year: m.Year, Month: m.Month + 1}
}

// Prev returns the preceding month.
func (m YearMonth) Prev() YearMonth {
	if m.Month == time.January {
		return YearMonth{Year: m.Year - 1, Month: time.December}
	}
	return YearMonth{Year: m.Year, Month: m.Month - 1}
}

func (m YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText encodes m as yyyy-MM.
func (m YearMonth) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a yyyy-MM string.
func (m *YearMonth) UnmarshalText(text []byte) error {
	parsed, err := ParseYearMonth(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// JoinDate is the day a person joined; it anchors the attendance ledger.
type JoinDate struct {
	t time.Time
}

// ParseJoinDate parses a yyyy-MM-dd string, rejecting impossible dates.
func ParseJoinDate(raw string) (JoinDate, error) {
	if !datePattern.MatchString(raw) {
		return JoinDate{}, &InvalidFormatError{Kind: "join date", Value: raw}
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil || t.Year() < 1 {
		return JoinDate{}, &InvalidFormatError{Kind: "join date", Value: raw}
	}
	return JoinDate{t: t}, nil
}

// NewJoinDate truncates t to its calendar day.
func NewJoinDate(t time.Time) JoinDate {
	return JoinDate{t: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// Time returns the join date at midnight UTC.
func (d JoinDate) Time() time.Time { return d.t }

// IsZero reports whether d is unset.
func (d JoinDate) IsZero() bool { return d.t.IsZero() }

func (d JoinDate) String() string {
	return d.t.Format(DateLayout)
}

// ToFirstWeekSlot returns the week slot containing the join date.
func (d JoinDate) ToFirstWeekSlot() WeeklyAttendance {
	return SlotOf(d.t)
}

// ToJoinMonth returns the month containing the join date.
func (d JoinDate) ToJoinMonth() JoinMonth {
	return JoinMonth{month: YearMonthOf(d.t)}
}

// JoinMonth is the month a person joined; it anchors the payment ledger.
type JoinMonth struct {
	month YearMonth
}

// ParseJoinMonth parses a yyyy-MM string.
func ParseJoinMonth(raw string) (JoinMonth, error) {
	m, err := ParseYearMonth(raw)
	if err != nil {
		return JoinMonth{}, &InvalidFormatError{Kind: "join month", Value: raw}
	}
	return JoinMonth{month: m}, nil
}

// ToYearMonth returns the anchored month.
func (j JoinMonth) ToYearMonth() YearMonth { return j.month }

func (j JoinMonth) String() string { return j.month.String() }

// WeekMarker is the user-facing yyyy-MM-Wn reference to a week slot.
type WeekMarker struct {
	slot WeeklyAttendance
}

// ParseWeekMarker parses strings such as 2024-03-W2.
func ParseWeekMarker(raw string) (WeekMarker, error) {
	parts := weekPattern.FindStringSubmatch(raw)
	if parts == nil {
		return WeekMarker{}, &InvalidFormatError{Kind: "week", Value: raw}
	}
	month, err := ParseYearMonth(parts[1])
	if err != nil {
		return WeekMarker{}, &InvalidFormatError{Kind: "week", Value: raw}
	}
	week, _ := strconv.Atoi(parts[2])
	slot, err := NewWeeklyAttendance(week, month)
	if err != nil {
		return WeekMarker{}, &InvalidFormatError{Kind: "week", Value: raw}
	}
	return WeekMarker{slot: slot}, nil
}

// ToSlot returns the week slot the marker refers to.
func (w WeekMarker) ToSlot() WeeklyAttendance { return w.slot }

func (w WeekMarker) String() string { return w.slot.String() }

// weekOfMonth folds days 29-31 into the last slot.
func weekOfMonth(day int) int {
	week := (day-1)/7 + 1
	if week > WeeksPerMonth {
		return WeeksPerMonth
	}
	return week
}
