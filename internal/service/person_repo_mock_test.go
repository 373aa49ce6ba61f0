package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/tutor-roster-api/internal/ledger"
	"github.com/noah-isme/tutor-roster-api/internal/models"
	"github.com/noah-isme/tutor-roster-api/internal/repository"
)

type mockPersonRepo struct {
	people       map[string]models.Person
	lastFilter   models.PersonFilter
	listErr      error
	updateErr    error
	staleLedgers bool
	ledgerWrites int
	seq          int
}

func newMockPersonRepo(people ...models.Person) *mockPersonRepo {
	repo := &mockPersonRepo{people: make(map[string]models.Person)}
	for _, p := range people {
		repo.people[p.ID] = p
	}
	return repo
}

func (m *mockPersonRepo) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int, error) {
	m.lastFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	out, _ := m.ListAll(ctx)
	return out, len(out), nil
}

func (m *mockPersonRepo) ListAll(ctx context.Context) ([]models.Person, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.Person, 0, len(m.people))
	for _, p := range m.people {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockPersonRepo) FindByID(ctx context.Context, id string) (*models.Person, error) {
	p, ok := m.people[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *mockPersonRepo) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	for id, p := range m.people {
		if strings.EqualFold(p.Email, email) && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockPersonRepo) Create(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		m.seq++
		person.ID = fmt.Sprintf("person-%d", m.seq)
	}
	person.Version = 1
	person.CreatedAt = time.Now()
	person.UpdatedAt = person.CreatedAt
	m.people[person.ID] = *person
	return nil
}

func (m *mockPersonRepo) Update(ctx context.Context, person *models.Person) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.people[person.ID]; !ok {
		return sql.ErrNoRows
	}
	m.people[person.ID] = *person
	return nil
}

func (m *mockPersonRepo) UpdateLedgers(ctx context.Context, person *models.Person) error {
	stored, ok := m.people[person.ID]
	if !ok || m.staleLedgers || stored.Version != person.Version {
		return repository.ErrStaleVersion
	}
	m.ledgerWrites++
	person.Version++
	stored.Attendance = person.Attendance
	stored.Payments = person.Payments
	stored.Version = person.Version
	m.people[person.ID] = stored
	return nil
}

func (m *mockPersonRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.people[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.people, id)
	return nil
}

// fixtureClock pins "now" to 2024-07-15 10:00 UTC.
func fixtureClock() ledger.FixedClock {
	return ledger.FixedClock{T: time.Date(2024, time.July, 15, 10, 0, 0, 0, time.UTC)}
}

func studentFixture(id, joinDate string) models.Person {
	jd, err := ledger.ParseJoinDate(joinDate)
	if err != nil {
		panic(err)
	}
	attendance := models.LedgerSnapshot(ledger.NewAttendanceLedger(jd, fixtureClock()).Snapshot())
	return models.Person{
		ID:         id,
		Role:       models.RoleStudent,
		Name:       "Student " + id,
		Phone:      "08123",
		Email:      id + "@example.com",
		Address:    "Jl. Merdeka 1",
		JoinDate:   jd.Time(),
		Attendance: &attendance,
		Payments:   models.LedgerSnapshot(ledger.NewPaymentLedger(jd, fixtureClock()).Snapshot()),
		Version:    1,
	}
}

func tutorFixture(id, joinDate string) models.Person {
	p := studentFixture(id, joinDate)
	p.Role = models.RoleTutor
	p.Name = "Tutor " + id
	p.Attendance = nil
	return p
}

func withPaidMonths(p models.Person, months ...string) models.Person {
	l, err := ledger.PaymentLedgerFromSnapshot(ledger.Snapshot(p.Payments), fixtureClock())
	if err != nil {
		panic(err)
	}
	for _, raw := range months {
		m, err := ledger.ParseYearMonth(raw)
		if err != nil {
			panic(err)
		}
		if l, err = l.MarkMonthAsPaid(m); err != nil {
			panic(err)
		}
	}
	p.Payments = models.LedgerSnapshot(l.Snapshot())
	return p
}
