package repository

import (
	"context"
	"strings"

	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/storage"
)

// UsersRepository is the typed view over the users store.
type UsersRepository struct {
	base[*models.UserRecord]
}

// NewUsersRepository creates a UsersRepository.
func NewUsersRepository(store storage.Store[*models.UserRecord]) *UsersRepository {
	return &UsersRepository{base[*models.UserRecord]{store: store}}
}

// FindByEmail returns the user with the given email, compared
// case-insensitively. Emails are unique, so the first match wins.
func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (*models.UserRecord, bool, error) {
	users, err := r.LoadAll(ctx)
	if err != nil {
		return nil, false, err
	}
	for _, user := range users {
		if strings.EqualFold(user.Email, email) {
			return user, true, nil
		}
	}
	return nil, false, nil
}
