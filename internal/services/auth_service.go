package services

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordTooShort   = errors.New("password too short")
)

// AuthService handles authentication-related business logic.
type AuthService struct {
	users *repository.UsersRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *repository.UsersRepository) *AuthService {
	return &AuthService{users: users}
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user. A
// missing user, a deactivated account, and a wrong password are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.UserRecord, error) {
	user, found, err := s.users.FindByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !found || !user.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetActiveUser resolves a session user id to its record. Deactivated
// accounts resolve as not found, which ends their sessions.
func (s *AuthService) GetActiveUser(ctx context.Context, id string) (*models.UserRecord, error) {
	user, found, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !found || !user.Active {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// HashPassword produces the stored form of a password.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
