package repository

import (
	"context"

	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/storage"
)

// AssignmentsRepository is the typed view over the assignments store.
type AssignmentsRepository struct {
	base[*models.AssignmentRecord]
}

// NewAssignmentsRepository creates an AssignmentsRepository.
func NewAssignmentsRepository(store storage.Store[*models.AssignmentRecord]) *AssignmentsRepository {
	return &AssignmentsRepository{base[*models.AssignmentRecord]{store: store}}
}

// ForShift returns every assignment on the given shift.
func (r *AssignmentsRepository) ForShift(ctx context.Context, shiftID string) ([]*models.AssignmentRecord, error) {
	return r.store.FindByField(ctx, "shiftId", shiftID)
}

// ForUser returns every assignment belonging to the given user.
func (r *AssignmentsRepository) ForUser(ctx context.Context, userID string) ([]*models.AssignmentRecord, error) {
	return r.store.FindByField(ctx, "userId", userID)
}

// ForShiftIDs returns every assignment on any of the given shifts.
func (r *AssignmentsRepository) ForShiftIDs(ctx context.Context, shiftIDs []string) ([]*models.AssignmentRecord, error) {
	return r.store.FindByFieldIn(ctx, "shiftId", shiftIDs)
}
