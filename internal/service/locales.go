package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/evolution-crm/evoadmin/internal/models"
)

// LocaleRepository defines the persistence operations required by the
// locale service.
type LocaleRepository interface {
	GetAll(ctx context.Context, includeInactive bool) ([]models.Locale, error)
	GetByID(ctx context.Context, id string) (*models.Locale, error)
	Create(ctx context.Context, l models.Locale) error
	Update(ctx context.Context, l models.Locale) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
	UsersByLocale(ctx context.Context, localeID string) ([]models.User, error)
}

// AssignmentRepository is the slice of the user repository the locale
// service needs for admin assignment.
type AssignmentRepository interface {
	SetLocale(ctx context.Context, userID, localeID string) error
	ClearLocale(ctx context.Context, userID string) error
}

// LocaleService implements locale management and the admin-assignment
// workflow.
type LocaleService struct {
	repo  LocaleRepository
	users AssignmentRepository
}

// NewLocaleService constructs a new LocaleService using the provided
// repositories.
func NewLocaleService(repo LocaleRepository, users AssignmentRepository) *LocaleService {
	return &LocaleService{repo: repo, users: users}
}

// List returns every locale, optionally including inactive ones.
func (s *LocaleService) List(ctx context.Context, includeInactive bool) ([]models.Locale, error) {
	return s.repo.GetAll(ctx, includeInactive)
}

// Get returns one locale by ID.
func (s *LocaleService) Get(ctx context.Context, id string) (*models.Locale, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new active locale.
func (s *LocaleService) Create(ctx context.Context, l models.Locale) (*models.Locale, error) {
	l.Identity = uuid.NewString()
	l.Active = true
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Update rewrites the fields of a locale and returns the stored record.
func (s *LocaleService) Update(ctx context.Context, l models.Locale) (*models.Locale, error) {
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, l.Identity)
}

// SetActive flips the active flag and returns the updated record.
func (s *LocaleService) SetActive(ctx context.Context, id string, active bool) (*models.Locale, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a locale. Users assigned to it are unassigned, not
// deleted.
func (s *LocaleService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AssignAdmin assigns a user to a locale. The user's role is never
// changed by assignment.
func (s *LocaleService) AssignAdmin(ctx context.Context, localeID, userID string) error {
	if _, err := s.repo.GetByID(ctx, localeID); err != nil {
		return err
	}
	return s.users.SetLocale(ctx, userID, localeID)
}

// Unassign removes a user from their locale.
func (s *LocaleService) Unassign(ctx context.Context, userID string) error {
	return s.users.ClearLocale(ctx, userID)
}

// AssignedUsers returns the users assigned to a locale.
func (s *LocaleService) AssignedUsers(ctx context.Context, localeID string) ([]models.User, error) {
	return s.repo.UsersByLocale(ctx, localeID)
}
