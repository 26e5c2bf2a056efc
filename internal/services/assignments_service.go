package services

import (
	"context"
	"errors"

	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrInvalidStatus      = errors.New("status must be confirmed or pending")
)

// AssignmentsService handles assignment lookups and manager moderation.
type AssignmentsService struct {
	assignments *repository.AssignmentsRepository
}

// NewAssignmentsService creates a new AssignmentsService.
func NewAssignmentsService(assignments *repository.AssignmentsRepository) *AssignmentsService {
	return &AssignmentsService{assignments: assignments}
}

// ForShift returns every assignment on the given shift.
func (s *AssignmentsService) ForShift(ctx context.Context, shiftID string) ([]*models.AssignmentRecord, error) {
	return s.assignments.ForShift(ctx, shiftID)
}

// ForUser returns every assignment belonging to the given user.
func (s *AssignmentsService) ForUser(ctx context.Context, userID string) ([]*models.AssignmentRecord, error) {
	return s.assignments.ForUser(ctx, userID)
}

// ForShiftIDs returns every assignment on any of the given shifts.
func (s *AssignmentsService) ForShiftIDs(ctx context.Context, shiftIDs []string) ([]*models.AssignmentRecord, error) {
	return s.assignments.ForShiftIDs(ctx, shiftIDs)
}

// Create persists a new assignment.
func (s *AssignmentsService) Create(ctx context.Context, assignment *models.AssignmentRecord) (*models.AssignmentRecord, error) {
	return s.assignments.Create(ctx, assignment)
}

// SetStatus confirms or un-confirms one assignment.
func (s *AssignmentsService) SetStatus(ctx context.Context, id string, status models.AssignmentStatus) (*models.AssignmentRecord, error) {
	if status != models.AssignmentConfirmed && status != models.AssignmentPending {
		return nil, ErrInvalidStatus
	}
	updated, found, err := s.assignments.Update(ctx, id, map[string]any{"status": status})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAssignmentNotFound
	}
	return updated, nil
}

// Remove deletes one assignment, reporting whether it existed.
func (s *AssignmentsService) Remove(ctx context.Context, id string) (bool, error) {
	return s.assignments.Delete(ctx, id)
}

// DeleteForShift removes every assignment on the given shift and returns
// how many were removed.
func (s *AssignmentsService) DeleteForShift(ctx context.Context, shiftID string) (int, error) {
	items, err := s.assignments.ForShift(ctx, shiftID)
	if err != nil {
		return 0, err
	}
	deleted := 0
	for _, item := range items {
		ok, err := s.assignments.Delete(ctx, item.ID)
		if err != nil {
			return deleted, err
		}
		if ok {
			deleted++
		}
	}
	return deleted, nil
}
