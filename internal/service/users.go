package service

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evolution-crm/evoadmin/internal/models"
)

// UserRepository defines the persistence operations required by the
// user service.
type UserRepository interface {
	GetAll(ctx context.Context, includeInactive bool) ([]models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Create(ctx context.Context, u models.User, passwordHash string) error
	Update(ctx context.Context, u models.User) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// UserService implements user management on top of a UserRepository.
type UserService struct {
	repo UserRepository
}

// NewUserService constructs a new UserService using the provided repository.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

// CreateUserInput carries the fields of a user creation request.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Phone    string
	Address  string
}

// List returns every user, optionally including inactive accounts.
func (s *UserService) List(ctx context.Context, includeInactive bool) ([]models.User, error) {
	return s.repo.GetAll(ctx, includeInactive)
}

// Get returns one user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// Create registers a new active user. Unrecognized roles are coerced to
// the least-privileged one rather than rejected.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*models.User, error) {
	role, _ := models.ParseRole(in.Role)
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.User{
		Identity: uuid.NewString(),
		Name:     in.Name,
		Email:    in.Email,
		Role:     role,
		Active:   true,
		Phone:    in.Phone,
		Address:  in.Address,
	}
	if err := s.repo.Create(ctx, u, string(hash)); err != nil {
		return nil, err
	}
	return &u, nil
}

// Update rewrites the profile fields of a user and returns the stored
// record.
func (s *UserService) Update(ctx context.Context, u models.User) (*models.User, error) {
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, u.Identity)
}

// SetActive flips the active flag and returns the updated record.
func (s *UserService) SetActive(ctx context.Context, id string, active bool) (*models.User, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
