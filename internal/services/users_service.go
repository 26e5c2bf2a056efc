package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pskladal/staff-shifts-api/internal/constants"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailTaken         = errors.New("email already exists")
	ErrInvalidAppRole     = errors.New("unknown application role")
	ErrInvalidStaffRole   = errors.New("unknown staff role")
	ErrInvalidAvailStatus = errors.New("unknown availability status")
	ErrInvalidDate        = errors.New("date must be YYYY-MM-DD")
)

// UsersService handles account management and worker self-service.
type UsersService struct {
	users *repository.UsersRepository
}

// NewUsersService creates a new UsersService.
func NewUsersService(users *repository.UsersRepository) *UsersService {
	return &UsersService{users: users}
}

// CreateUserInput carries the admin-facing fields of a new account.
type CreateUserInput struct {
	Name        string
	Email       string
	Password    string
	Role        models.AppRole
	LocationIDs []string
}

// Create registers a new active account with a hashed password.
func (s *UsersService) Create(ctx context.Context, input CreateUserInput) (*models.UserRecord, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if !models.ValidAppRole(input.Role) {
		return nil, ErrInvalidAppRole
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if _, found, err := s.users.FindByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	} else if found {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	locationIDs := input.LocationIDs
	if locationIDs == nil {
		locationIDs = []string{}
	}
	return s.users.Create(ctx, &models.UserRecord{
		Name:               strings.TrimSpace(input.Name),
		Email:              email,
		PasswordHash:       hash,
		Role:               input.Role,
		Active:             true,
		LocationIDs:        locationIDs,
		PreferredRoles:     []models.StaffRole{},
		AvailabilityByDate: map[string]models.AvailabilityStatus{},
	})
}

// SetRole changes a user's application role.
func (s *UsersService) SetRole(ctx context.Context, userID string, role models.AppRole) (*models.UserRecord, error) {
	if !models.ValidAppRole(role) {
		return nil, ErrInvalidAppRole
	}
	user, found, err := s.users.Update(ctx, userID, map[string]any{"role": role})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// SetActive activates or deactivates an account. A deactivated account
// cannot log in and its existing sessions stop resolving.
func (s *UsersService) SetActive(ctx context.Context, userID string, active bool) (*models.UserRecord, error) {
	user, found, err := s.users.Update(ctx, userID, map[string]any{"active": active})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdatePreferredRoles replaces a worker's ordered staff-role preferences.
func (s *UsersService) UpdatePreferredRoles(ctx context.Context, userID string, roles []models.StaffRole) (*models.UserRecord, error) {
	for _, role := range roles {
		if !models.ValidStaffRole(role) {
			return nil, ErrInvalidStaffRole
		}
	}
	if roles == nil {
		roles = []models.StaffRole{}
	}
	user, found, err := s.users.Update(ctx, userID, map[string]any{"preferredRoles": roles})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// UpdateAvailability merges one date's availability status into the
// user's availability map; the other dates keep their values.
func (s *UsersService) UpdateAvailability(ctx context.Context, userID, date string, status models.AvailabilityStatus) (*models.UserRecord, error) {
	if !models.ValidAvailabilityStatus(status) {
		return nil, ErrInvalidAvailStatus
	}
	if date == "" {
		return nil, ErrInvalidDate
	}
	user, found, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	next := make(map[string]models.AvailabilityStatus, len(user.AvailabilityByDate)+1)
	for d, st := range user.AvailabilityByDate {
		next[d] = st
	}
	next[date] = status
	updated, found, err := s.users.Update(ctx, userID, map[string]any{"availabilityByDate": next})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrUserNotFound
	}
	return updated, nil
}
