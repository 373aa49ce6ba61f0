package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-roster-api/internal/dto"
	"github.com/noah-isme/tutor-roster-api/internal/ledger"
	"github.com/noah-isme/tutor-roster-api/internal/models"
	appErrors "github.com/noah-isme/tutor-roster-api/pkg/errors"
)

type personRepository interface {
	List(ctx context.Context, filter models.PersonFilter) ([]models.Person, int, error)
	ListAll(ctx context.Context) ([]models.Person, error)
	FindByID(ctx context.Context, id string) (*models.Person, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, person *models.Person) error
	Update(ctx context.Context, person *models.Person) error
	UpdateLedgers(ctx context.Context, person *models.Person) error
	Delete(ctx context.Context, id string) error
}

// PersonService handles roster membership use-cases.
type PersonService struct {
	repo      personRepository
	cache     *CacheService
	clock     ledger.Clock
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPersonService constructs the person service. A nil clock reads the system time.
func NewPersonService(repo personRepository, cache *CacheService, clock ledger.Clock, validate *validator.Validate, logger *zap.Logger) *PersonService {
	if clock == nil {
		clock = ledger.SystemClock{}
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PersonService{repo: repo, cache: cache, clock: clock, validator: validate, logger: logger}
}

// List returns people and pagination metadata.
func (s *PersonService) List(ctx context.Context, filter models.PersonFilter) ([]dto.PersonSummary, *models.Pagination, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "role must be student or tutor")
	}
	people, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list people")
	}
	summaries := make([]dto.PersonSummary, 0, len(people))
	for i := range people {
		summaries = append(summaries, s.summarize(&people[i]))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return summaries, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *PersonService) summarize(person *models.Person) dto.PersonSummary {
	summary := dto.PersonSummary{
		ID:       person.ID,
		Role:     person.Role,
		Name:     person.Name,
		Phone:    person.Phone,
		Email:    person.Email,
		JoinDate: ledger.NewJoinDate(person.JoinDate).String(),
	}
	payments, err := ledger.PaymentLedgerFromSnapshot(ledger.Snapshot(person.Payments), s.clock)
	if err != nil {
		s.logger.Warn("unreadable payment ledger", zap.String("person_id", person.ID), zap.Error(err))
		summary.PaymentStatus = "unknown"
		return summary
	}
	summary.PaymentStatus = string(payments.OverallStatus())
	return summary
}

// Get returns the detailed person view, read through the cache. The boolean
// reports a cache hit.
func (s *PersonService) Get(ctx context.Context, id string) (*dto.PersonView, bool, error) {
	key := s.cache.Key("person", id)
	var cached dto.PersonView
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, true, nil
	}

	person, err := s.load(ctx, id)
	if err != nil {
		return nil, false, err
	}
	ledgers, err := restoreLedgers(person, s.clock)
	if err != nil {
		return nil, false, err
	}
	view := buildPersonView(person, ledgers)
	_ = s.cache.Set(ctx, key, view, 0)
	return &view, false, nil
}

// Create adds a person to the roster with a fresh ledger pair.
func (s *PersonService) Create(ctx context.Context, req dto.CreatePersonRequest) (*dto.PersonView, error) {
	normalizePersonRequest(&req.Name, &req.Email, &req.Phone, &req.Address)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid person payload")
	}
	joinDate, err := ledger.ParseJoinDate(strings.TrimSpace(req.JoinDate))
	if err != nil {
		return nil, ledgerError(err)
	}
	if joinDate.Time().After(ledger.NewJoinDate(s.clock.Now()).Time()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "join date cannot be in the future")
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}

	ledgers := restoredLedgers{payments: ledger.NewPaymentLedger(joinDate, s.clock)}
	if req.Role.TracksAttendance() {
		ledgers.attendance = ledger.NewAttendanceLedger(joinDate, s.clock)
	}
	person := &models.Person{
		Role:     req.Role,
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    req.Email,
		Address:  req.Address,
		JoinDate: joinDate.Time(),
	}
	ledgers.store(person)
	if err := s.repo.Create(ctx, person); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create person")
	}
	s.logger.Info("person added", zap.String("person_id", person.ID), zap.String("role", string(person.Role)))
	view := buildPersonView(person, ledgers)
	return &view, nil
}

// Update edits contact fields. Ledgers are left untouched.
func (s *PersonService) Update(ctx context.Context, id string, req dto.UpdatePersonRequest) (*dto.PersonView, error) {
	normalizePersonRequest(&req.Name, &req.Email, &req.Phone, &req.Address)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid person payload")
	}
	person, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByEmail(ctx, req.Email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already used")
	}
	person.Name = req.Name
	person.Phone = req.Phone
	person.Email = req.Email
	person.Address = req.Address
	if err := s.repo.Update(ctx, person); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update person")
	}
	_ = s.cache.Evict(ctx, s.cache.Key("person", id))
	ledgers, err := restoreLedgers(person, s.clock)
	if err != nil {
		return nil, err
	}
	view := buildPersonView(person, ledgers)
	return &view, nil
}

// Delete removes a person and their ledgers from the roster.
func (s *PersonService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete person")
	}
	_ = s.cache.Evict(ctx, s.cache.Key("person", id))
	s.logger.Info("person deleted", zap.String("person_id", id))
	return nil
}

func (s *PersonService) load(ctx context.Context, id string) (*models.Person, error) {
	person, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "person not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load person")
	}
	return person, nil
}

func normalizePersonRequest(name, email, phone, address *string) {
	*name = strings.TrimSpace(*name)
	*email = strings.ToLower(strings.TrimSpace(*email))
	*phone = strings.TrimSpace(*phone)
	*address = strings.TrimSpace(*address)
}
