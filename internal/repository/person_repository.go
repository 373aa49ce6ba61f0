package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutor-roster-api/internal/models"
)

// ErrStaleVersion is returned when a ledger write loses an optimistic lock race.
var ErrStaleVersion = errors.New("person was modified concurrently")

const personColumns = `id, role, name, phone, email, address, join_date, attendance_ledger, payment_ledger, version, created_at, updated_at`

// PersonRepository manages persistence for roster people and their ledger snapshots.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs a PersonRepository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// List returns people matching the provided filters.
func (r *PersonRepository) List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Role != "" {
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)+1))
		args = append(args, filter.Role)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d OR phone LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	where := strings.Join(conditions, " AND ")

	allowedSorts := map[string]string{
		"name":       "name",
		"join_date":  "join_date",
		"created_at": "created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM people WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d", personColumns, where, column, order, size, offset)
	var people []models.Person
	if err := r.db.SelectContext(ctx, &people, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list people: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM people WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count people: %w", err)
	}
	return people, total, nil
}

// ListAll returns every person ordered by name. Used for reports.
func (r *PersonRepository) ListAll(ctx context.Context) ([]models.Person, error) {
	var people []models.Person
	query := fmt.Sprintf("SELECT %s FROM people ORDER BY name ASC", personColumns)
	if err := r.db.SelectContext(ctx, &people, query); err != nil {
		return nil, fmt.Errorf("list all people: %w", err)
	}
	return people, nil
}

// FindByID fetches a person by ID. sql.ErrNoRows is returned untouched.
func (r *PersonRepository) FindByID(ctx context.Context, id string) (*models.Person, error) {
	var person models.Person
	query := fmt.Sprintf("SELECT %s FROM people WHERE id = $1", personColumns)
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		return nil, err
	}
	return &person, nil
}

// ExistsByEmail checks if the email is taken, optionally excluding an ID.
func (r *PersonRepository) ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM people WHERE LOWER(email) = LOWER($1)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check email: %w", err)
	}
	return true, nil
}

// Create inserts a new person together with its initial ledgers.
func (r *PersonRepository) Create(ctx context.Context, person *models.Person) error {
	if person.ID == "" {
		person.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if person.CreatedAt.IsZero() {
		person.CreatedAt = now
	}
	person.UpdatedAt = now
	if person.Version == 0 {
		person.Version = 1
	}
	const query = `INSERT INTO people (id, role, name, phone, email, address, join_date, attendance_ledger, payment_ledger, version, created_at, updated_at)
        VALUES (:id, :role, :name, :phone, :email, :address, :join_date, :attendance_ledger, :payment_ledger, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, person); err != nil {
		return fmt.Errorf("create person: %w", err)
	}
	return nil
}

// Update modifies contact fields only.
func (r *PersonRepository) Update(ctx context.Context, person *models.Person) error {
	person.UpdatedAt = time.Now().UTC()
	const query = `UPDATE people SET name = :name, phone = :phone, email = :email, address = :address, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, person)
	if err != nil {
		return fmt.Errorf("update person: %w", err)
	}
	return requireAffected(res, "update person")
}

// UpdateLedgers replaces both ledger snapshots when the stored version still
// matches person.Version. On success person.Version is bumped.
func (r *PersonRepository) UpdateLedgers(ctx context.Context, person *models.Person) error {
	now := time.Now().UTC()
	const query = `UPDATE people SET attendance_ledger = $1, payment_ledger = $2, version = version + 1, updated_at = $3
        WHERE id = $4 AND version = $5`
	res, err := r.db.ExecContext(ctx, query, person.Attendance, person.Payments, now, person.ID, person.Version)
	if err != nil {
		return fmt.Errorf("update ledgers: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update ledgers: %w", err)
	}
	if affected == 0 {
		return ErrStaleVersion
	}
	person.Version++
	person.UpdatedAt = now
	return nil
}

// Delete removes the person and their ledgers.
func (r *PersonRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM people WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return requireAffected(res, "delete person")
}

func requireAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
