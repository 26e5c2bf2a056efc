package services

import (
	"context"
	"sort"

	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
)

// DayType classifies all shifts of one date: a single shift type when
// they agree, mixed otherwise.
type DayType string

// DayTypeMixed marks a date whose shifts disagree on type.
const DayTypeMixed DayType = "mixed"

// AnnotatedAssignment is an assignment joined with its user's display
// fields for day views.
type AnnotatedAssignment struct {
	models.AssignmentRecord
	UserName string         `json:"userName,omitempty"`
	UserRole models.AppRole `json:"userRole,omitempty"`
}

// DayShiftView pairs one shift with its assignments and occupancy.
type DayShiftView struct {
	Shift       *models.ShiftRecord   `json:"shift"`
	Assignments []AnnotatedAssignment `json:"assignments"`
	Occupancy   Occupancy             `json:"occupancy"`
}

// LocationSummary accumulates one date's shifts at one location.
type LocationSummary struct {
	LocationID     string             `json:"locationId"`
	ShiftIDs       []string           `json:"shiftIds"`
	ShiftTypes     []models.ShiftType `json:"shiftTypes"`
	MinimumPeople  int                `json:"minimumPeople"`
	ConfirmedCount int                `json:"confirmedCount"`
	PendingCount   int                `json:"pendingCount"`
}

// DaySummary accumulates one date's shifts across locations.
type DaySummary struct {
	Date              string                `json:"date"`
	DayType           DayType               `json:"dayType"`
	Shifts            []*models.ShiftRecord `json:"shifts"`
	MinimumPeople     int                   `json:"minimumPeople"`
	ConfirmedCount    int                   `json:"confirmedCount"`
	PendingCount      int                   `json:"pendingCount"`
	LocationSummaries []LocationSummary     `json:"locationSummaries"`
}

// MyShiftItem is one entry of a worker's personal shift list.
type MyShiftItem struct {
	Assignment *models.AssignmentRecord `json:"assignment"`
	Shift      *models.ShiftRecord      `json:"shift"`
	Location   *models.LocationRecord   `json:"location"`
}

// DashboardContext bundles everything the schedule dashboard shows for a
// date range.
type DashboardContext struct {
	Summaries map[string]*DaySummary   `json:"summaries"`
	Locations []*models.LocationRecord `json:"locations"`
	Events    []*models.EventRecord    `json:"events"`
}

// ScheduleService derives the read-only calendar views. Everything here
// is pure computation over loaded collections: nothing is persisted, and
// a dangling foreign key drops the row from the output instead of
// raising.
type ScheduleService struct {
	shifts      *repository.ShiftsRepository
	assignments *repository.AssignmentsRepository
	users       *repository.UsersRepository
	locations   *repository.LocationsRepository
	events      *repository.EventsRepository
}

// NewScheduleService creates a new ScheduleService.
func NewScheduleService(
	shifts *repository.ShiftsRepository,
	assignments *repository.AssignmentsRepository,
	users *repository.UsersRepository,
	locations *repository.LocationsRepository,
	events *repository.EventsRepository,
) *ScheduleService {
	return &ScheduleService{
		shifts:      shifts,
		assignments: assignments,
		users:       users,
		locations:   locations,
		events:      events,
	}
}

// DayDetails lists every shift on a date (sorted by start then end time)
// with its assignments annotated by user name and role.
func (s *ScheduleService) DayDetails(ctx context.Context, date string) ([]DayShiftView, error) {
	shifts, err := s.shifts.ForDate(ctx, date)
	if err != nil {
		return nil, err
	}
	users, err := s.users.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	userByID := make(map[string]*models.UserRecord, len(users))
	for _, user := range users {
		userByID[user.ID] = user
	}

	views := make([]DayShiftView, 0, len(shifts))
	for _, shift := range shifts {
		assignments, err := s.assignments.ForShift(ctx, shift.ID)
		if err != nil {
			return nil, err
		}
		annotated := make([]AnnotatedAssignment, 0, len(assignments))
		for _, a := range assignments {
			entry := AnnotatedAssignment{AssignmentRecord: *a}
			if user, ok := userByID[a.UserID]; ok {
				entry.UserName = user.Name
				entry.UserRole = user.Role
			}
			annotated = append(annotated, entry)
		}
		views = append(views, DayShiftView{
			Shift:       shift,
			Assignments: annotated,
			Occupancy:   CountOccupancy(assignments),
		})
	}
	return views, nil
}

// DaySummaries groups the range's shifts by date, and within each date by
// location, accumulating headcounts and the set of shift types present.
// Location summaries are ordered by location id ascending regardless of
// insertion order.
func (s *ScheduleService) DaySummaries(ctx context.Context, from, to string) (map[string]*DaySummary, error) {
	shifts, err := s.shifts.ForDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	shiftIDs := make([]string, len(shifts))
	for i, shift := range shifts {
		shiftIDs[i] = shift.ID
	}
	assignments, err := s.assignments.ForShiftIDs(ctx, shiftIDs)
	if err != nil {
		return nil, err
	}
	byShift := make(map[string][]*models.AssignmentRecord)
	for _, a := range assignments {
		byShift[a.ShiftID] = append(byShift[a.ShiftID], a)
	}

	summaries := make(map[string]*DaySummary)
	for _, shift := range shifts {
		occ := CountOccupancy(byShift[shift.ID])

		summary := summaries[shift.Date]
		if summary == nil {
			summary = &DaySummary{Date: shift.Date, DayType: DayType(shift.Type)}
			summaries[shift.Date] = summary
		} else if summary.DayType != DayType(shift.Type) {
			summary.DayType = DayTypeMixed
		}
		summary.Shifts = append(summary.Shifts, shift)
		summary.MinimumPeople += shift.MinimumPeople
		summary.ConfirmedCount += occ.Confirmed
		summary.PendingCount += occ.Pending

		idx := -1
		for i := range summary.LocationSummaries {
			if summary.LocationSummaries[i].LocationID == shift.LocationID {
				idx = i
				break
			}
		}
		if idx < 0 {
			summary.LocationSummaries = append(summary.LocationSummaries, LocationSummary{
				LocationID: shift.LocationID,
			})
			idx = len(summary.LocationSummaries) - 1
		}
		loc := &summary.LocationSummaries[idx]
		loc.ShiftIDs = append(loc.ShiftIDs, shift.ID)
		if !containsShiftType(loc.ShiftTypes, shift.Type) {
			loc.ShiftTypes = append(loc.ShiftTypes, shift.Type)
		}
		loc.MinimumPeople += shift.MinimumPeople
		loc.ConfirmedCount += occ.Confirmed
		loc.PendingCount += occ.Pending
	}

	for _, summary := range summaries {
		sort.Slice(summary.LocationSummaries, func(i, j int) bool {
			return summary.LocationSummaries[i].LocationID < summary.LocationSummaries[j].LocationID
		})
	}
	return summaries, nil
}

// MyShifts joins a user's assignments to their shifts and locations,
// sorted by date then start time. Assignments whose shift no longer
// exists are dropped; an unknown location leaves the entry with a nil
// location.
func (s *ScheduleService) MyShifts(ctx context.Context, userID string) ([]MyShiftItem, error) {
	assignments, err := s.assignments.ForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	shifts, err := s.shifts.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	locations, err := s.locations.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	shiftByID := make(map[string]*models.ShiftRecord, len(shifts))
	for _, shift := range shifts {
		shiftByID[shift.ID] = shift
	}
	locationByID := make(map[string]*models.LocationRecord, len(locations))
	for _, location := range locations {
		locationByID[location.ID] = location
	}

	items := make([]MyShiftItem, 0, len(assignments))
	for _, assignment := range assignments {
		shift, ok := shiftByID[assignment.ShiftID]
		if !ok {
			continue
		}
		items = append(items, MyShiftItem{
			Assignment: assignment,
			Shift:      shift,
			Location:   locationByID[shift.LocationID],
		})
	}
	sort.Slice(items, func(i, j int) bool {
		a, b := items[i].Shift, items[j].Shift
		return a.Date+a.StartTime < b.Date+b.StartTime
	})
	return items, nil
}

// DashboardContext bundles the range's day summaries with the locations
// and the range's events.
func (s *ScheduleService) DashboardContext(ctx context.Context, from, to string) (*DashboardContext, error) {
	summaries, err := s.DaySummaries(ctx, from, to)
	if err != nil {
		return nil, err
	}
	locations, err := s.locations.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.events.ForDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return &DashboardContext{
		Summaries: summaries,
		Locations: locations,
		Events:    events,
	}, nil
}

func containsShiftType(types []models.ShiftType, t models.ShiftType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
