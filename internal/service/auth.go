// Package service provides the admin business logic, delegating
// persistence to repository interfaces.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/evolution-crm/evoadmin/internal/models"
)

var (
	// ErrInvalidCredentials is returned when the email or password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInactiveAccount is returned when a disabled account tries to log in.
	ErrInactiveAccount = errors.New("account is inactive")
)

// AuthRepository defines the persistence operations required by the
// authentication service.
type AuthRepository interface {
	// GetByEmail returns the user and their password hash.
	GetByEmail(ctx context.Context, email string) (*models.User, string, error)
	// GetByID returns the user by ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// UpdatePassword replaces the user's password hash.
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

// AuthService implements login, session, and password operations.
// Sessions are held in memory; restarting the server logs everyone out.
type AuthService struct {
	repo AuthRepository

	mu       sync.Mutex
	sessions map[string]string // token -> user ID
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo AuthRepository) *AuthService {
	return &AuthService{
		repo:     repo,
		sessions: make(map[string]string),
	}
}

// Login checks the credentials and issues a bearer token. Inactive
// accounts are rejected even with a correct password.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, hash, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if !user.Active {
		return "", nil, ErrInactiveAccount
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = user.Identity
	s.mu.Unlock()
	return token, user, nil
}

// Validate resolves a bearer token to the user it was issued for.
func (s *AuthService) Validate(token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	userID, ok := s.sessions[token]
	return userID, ok
}

// Logout revokes a token. Unknown tokens are a no-op.
func (s *AuthService) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// CurrentUser returns the profile of the authenticated user.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.repo.GetByID(ctx, userID)
}

// ChangePassword verifies the current password and stores a hash of the
// new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	_, hash, err := s.repo.GetByEmail(ctx, user.Email)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	newHash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, string(newHash))
}
