package services

import (
	"context"
	"errors"
	"time"

	"github.com/pskladal/staff-shifts-api/internal/constants"
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
	"github.com/pskladal/staff-shifts-api/internal/utils"
)

var (
	ErrShiftNotFound    = errors.New("shift not found")
	ErrLocationRequired = errors.New("location is required")
	ErrNoTargetDates    = errors.New("no target dates resolved")
)

// Occupancy holds the assignment headcounts of one shift.
type Occupancy struct {
	Confirmed int `json:"confirmed"`
	Pending   int `json:"pending"`
	Total     int `json:"total"`
}

// CountOccupancy folds a shift's assignments into occupancy counts.
func CountOccupancy(assignments []*models.AssignmentRecord) Occupancy {
	occ := Occupancy{Total: len(assignments)}
	for _, a := range assignments {
		switch a.Status {
		case models.AssignmentConfirmed:
			occ.Confirmed++
		case models.AssignmentPending:
			occ.Pending++
		}
	}
	return occ
}

// ShiftsService handles shift signups, occupancy, cascading deletes, and
// bulk creation.
type ShiftsService struct {
	shifts      *repository.ShiftsRepository
	assignments *AssignmentsService
}

// NewShiftsService creates a new ShiftsService.
func NewShiftsService(shifts *repository.ShiftsRepository, assignments *AssignmentsService) *ShiftsService {
	return &ShiftsService{shifts: shifts, assignments: assignments}
}

// Signup claims a place on a shift for the user. Signup is idempotent:
// when an assignment for this (shift, user) pair already exists it is
// returned unchanged. The new assignment is pending when the shift
// requires approval, confirmed otherwise; forceStatus overrides both
// (manager manual assignment).
func (s *ShiftsService) Signup(ctx context.Context, shiftID string, user *models.UserRecord, staffRole models.StaffRole, forceStatus *models.AssignmentStatus) (*models.AssignmentRecord, error) {
	shift, found, err := s.shifts.FindByID(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrShiftNotFound
	}
	if !models.ValidStaffRole(staffRole) {
		return nil, ErrInvalidStaffRole
	}

	existing, err := s.assignments.ForShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	for _, a := range existing {
		if a.UserID == user.ID {
			return a, nil
		}
	}

	status := models.AssignmentConfirmed
	if shift.RequiresApproval {
		status = models.AssignmentPending
	}
	if forceStatus != nil {
		status = *forceStatus
	}
	return s.assignments.Create(ctx, &models.AssignmentRecord{
		ShiftID:   shiftID,
		UserID:    user.ID,
		StaffRole: staffRole,
		Status:    status,
	})
}

// Unassign withdraws the user's assignment from a shift, reporting
// whether one existed.
func (s *ShiftsService) Unassign(ctx context.Context, shiftID, userID string) (bool, error) {
	assignments, err := s.assignments.ForShift(ctx, shiftID)
	if err != nil {
		return false, err
	}
	for _, a := range assignments {
		if a.UserID == userID {
			return s.assignments.Remove(ctx, a.ID)
		}
	}
	return false, nil
}

// Occupancy counts the shift's assignments by status.
func (s *ShiftsService) Occupancy(ctx context.Context, shiftID string) (Occupancy, error) {
	assignments, err := s.assignments.ForShift(ctx, shiftID)
	if err != nil {
		return Occupancy{}, err
	}
	return CountOccupancy(assignments), nil
}

// SetRequiresApproval flips whether new signups on the shift start out
// pending. Existing assignments keep their status.
func (s *ShiftsService) SetRequiresApproval(ctx context.Context, shiftID string, required bool) (*models.ShiftRecord, error) {
	updated, found, err := s.shifts.Update(ctx, shiftID, map[string]any{"requiresApproval": required})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrShiftNotFound
	}
	return updated, nil
}

// DeleteCascade removes a shift together with all of its assignments.
// The assignments go first, so a crash in between leaves a shift without
// assignments rather than assignments without a shift.
func (s *ShiftsService) DeleteCascade(ctx context.Context, shiftID string) (bool, error) {
	if _, err := s.assignments.DeleteForShift(ctx, shiftID); err != nil {
		return false, err
	}
	return s.shifts.Delete(ctx, shiftID)
}

// shiftPreset is a named bundle of bulk-creation defaults.
type shiftPreset struct {
	Type          models.ShiftType
	StartTime     string
	EndTime       string
	MinimumPeople int
	Notes         string
}

var shiftPresets = map[string]shiftPreset{
	"restaurant_to_16": {models.ShiftRestaurant, "10:00", "16:00", 2, "Restaurace otevřeno do 16:00"},
	"restaurant_full":  {models.ShiftRestaurant, "10:00", "22:00", 3, "Restaurace standard"},
	"wedding_day":      {models.ShiftWedding, "12:00", "23:00", 6, "Svatba"},
	"event_evening":    {models.ShiftEvent, "16:00", "22:00", 4, "Akce"},
}

var weekdayNames = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// BulkShiftInput drives bulk shift creation over a date range or an
// explicit date list.
type BulkShiftInput struct {
	Type             models.ShiftType
	Preset           string
	DateFrom         string
	DateTo           string
	CustomDates      []string
	Weekdays         []string
	StartTime        string
	EndTime          string
	FlexibleEnd      bool
	LocationID       string
	MinimumPeople    int
	RequiresApproval bool
	Notes            string
}

// BulkCreate creates (or overwrites) one shift per resolved date at the
// input's location. Explicit custom dates win over the from/to range; the
// weekday set filters the range; a named preset fills in type, times,
// headcount, and notes. An existing shift at a (date, location) is
// overwritten rather than duplicated.
func (s *ShiftsService) BulkCreate(ctx context.Context, input BulkShiftInput) ([]*models.ShiftRecord, error) {
	if input.LocationID == "" {
		return nil, ErrLocationRequired
	}

	shiftType := input.Type
	if !models.ValidShiftType(shiftType) {
		shiftType = models.ShiftRestaurant
	}
	dateTo := input.DateTo
	if dateTo == "" {
		dateTo = input.DateFrom
	}

	dates := input.CustomDates
	if len(dates) == 0 {
		weekdays := make(map[time.Weekday]bool)
		for _, name := range input.Weekdays {
			if wd, ok := weekdayNames[name]; ok {
				weekdays[wd] = true
			}
		}
		dates = utils.EnumerateDates(input.DateFrom, dateTo, weekdays)
	}
	if len(dates) == 0 {
		if input.DateFrom == "" {
			return nil, ErrNoTargetDates
		}
		dates = []string{input.DateFrom}
	}

	startTime, endTime := defaultShiftTimes(shiftType, input.StartTime, input.EndTime)
	minimumPeople := input.MinimumPeople
	notes := input.Notes
	if preset, ok := shiftPresets[input.Preset]; ok {
		shiftType = preset.Type
		startTime = preset.StartTime
		endTime = preset.EndTime
		minimumPeople = preset.MinimumPeople
		notes = preset.Notes
	}
	if input.FlexibleEnd {
		endTime = constants.FlexibleEndTime
	}
	if minimumPeople < 0 {
		minimumPeople = 0
	}

	out := make([]*models.ShiftRecord, 0, len(dates))
	for _, date := range dates {
		payload := map[string]any{
			"date":             date,
			"startTime":        startTime,
			"endTime":          endTime,
			"locationId":       input.LocationID,
			"type":             shiftType,
			"requiredRoles":    []models.RoleRequirement{},
			"minimumPeople":    minimumPeople,
			"requiresApproval": input.RequiresApproval,
			"notes":            notes,
		}
		existing, found, err := s.shifts.FindAt(ctx, date, input.LocationID)
		if err != nil {
			return nil, err
		}
		if found {
			updated, _, err := s.shifts.Update(ctx, existing.ID, payload)
			if err != nil {
				return nil, err
			}
			out = append(out, updated)
			continue
		}
		created, err := s.shifts.Create(ctx, &models.ShiftRecord{
			Date:             date,
			StartTime:        startTime,
			EndTime:          endTime,
			LocationID:       input.LocationID,
			Type:             shiftType,
			RequiredRoles:    []models.RoleRequirement{},
			MinimumPeople:    minimumPeople,
			RequiresApproval: input.RequiresApproval,
			Notes:            notes,
		})
		if err != nil {
			return nil, err
		}
		out = append(out, created)
	}
	return out, nil
}

// defaultShiftTimes fills missing times with the per-type defaults.
func defaultShiftTimes(shiftType models.ShiftType, startTime, endTime string) (string, string) {
	if shiftType == models.ShiftRestaurant {
		if startTime == "" {
			startTime = "10:00"
		}
		if endTime == "" {
			endTime = "22:00"
		}
		return startTime, endTime
	}
	if startTime == "" {
		startTime = "12:00"
	}
	if endTime == "" {
		endTime = "23:00"
	}
	return startTime, endTime
}
