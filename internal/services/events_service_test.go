package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pskladal/staff-shifts-api/internal/models"
)

func TestEventsServiceCreateGeneratesShift(t *testing.T) {
	env := setupServicesTestEnv(t)
	ctx := context.Background()

	event, err := env.events.Create(ctx, &models.EventRecord{
		Name:       "Svatba Novákovi",
		Type:       models.EventWedding,
		Date:       "2026-09-12",
		StartTime:  "12:00",
		EndTime:    "23:00",
		LocationID: "loc-1",
		RequiredRoles: []models.RoleRequirement{
			{Role: models.StaffService, Count: 4},
			{Role: models.StaffBar, Count: 2},
		},
		MinimumPeople: 6,
		Notes:         "zahrada",
	})
	require.NoError(t, err)
	require.NotEmpty(t, event.ShiftID)

	shift, found, err := env.shiftsRepo.FindByID(ctx, event.ShiftID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, event.Date, shift.Date)
	require.Equal(t, event.StartTime, shift.StartTime)
	require.Equal(t, event.EndTime, shift.EndTime)
	require.Equal(t, event.LocationID, shift.LocationID)
	require.Equal(t, models.ShiftWedding, shift.Type)
	require.Equal(t, event.RequiredRoles, shift.RequiredRoles)
	require.Equal(t, 6, shift.MinimumPeople)
	require.Equal(t, "zahrada", shift.Notes)
	require.Equal(t, event.ID, shift.EventID)

	// generated shifts always gate signups behind approval
	require.True(t, shift.RequiresApproval)
}

func TestEventsServiceCreateAdoptsExistingShift(t *testing.T) {
	env := setupServicesTestEnv(t)
	ctx := context.Background()

	standing := env.createShift(t, &models.ShiftRecord{
		Date: "2026-09-12", StartTime: "10:00", EndTime: "16:00",
		LocationID: "loc-1", Type: models.ShiftRestaurant,
	})

	event, err := env.events.Create(ctx, &models.EventRecord{
		Name: "Firemní večírek", Type: models.EventGeneric,
		Date: "2026-09-12", StartTime: "18:00", EndTime: "23:00",
		LocationID: "loc-1", MinimumPeople: 4,
	})
	require.NoError(t, err)

	// the standing shift at the same date and location is overwritten,
	// not duplicated
	require.Equal(t, standing.ID, event.ShiftID)
	shifts, err := env.shiftsRepo.ForDate(ctx, "2026-09-12")
	require.NoError(t, err)
	require.Len(t, shifts, 1)
	require.Equal(t, "18:00", shifts[0].StartTime)
	require.Equal(t, models.ShiftEvent, shifts[0].Type)
	require.Equal(t, event.ID, shifts[0].EventID)
	require.True(t, shifts[0].RequiresApproval)
}

func TestEventsServiceUpdatePropagatesToShift(t *testing.T) {
	env := setupServicesTestEnv(t)
	ctx := context.Background()

	event, err := env.events.Create(ctx, &models.EventRecord{
		Name: "Svatba", Type: models.EventWedding,
		Date: "2026-09-12", StartTime: "12:00", EndTime: "23:00",
		LocationID: "loc-1", MinimumPeople: 6,
	})
	require.NoError(t, err)

	updated, found, err := env.events.Update(ctx, event.ID, map[string]any{
		"date":          "2026-09-13",
		"minimumPeople": 8,
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2026-09-13", updated.Date)

	shift, found, err := env.shiftsRepo.FindByID(ctx, event.ShiftID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2026-09-13", shift.Date)
	require.Equal(t, 8, shift.MinimumPeople)
}

func TestEventsServiceShiftEditsAreNotReflectedBack(t *testing.T) {
	env := setupServicesTestEnv(t)
	ctx := context.Background()

	event, err := env.events.Create(ctx, &models.EventRecord{
		Name: "Svatba", Type: models.EventWedding,
		Date: "2026-09-12", StartTime: "12:00", EndTime: "23:00",
		LocationID: "loc-1",
	})
	require.NoError(t, err)

	_, _, err = env.shiftsRepo.Update(ctx, event.ShiftID, map[string]any{"startTime": "14:00"})
	require.NoError(t, err)

	reloaded, _, err := env.events.FindByID(ctx, event.ID)
	require.NoError(t, err)
	require.Equal(t, "12:00", reloaded.StartTime)
}

func TestEventsServiceDeleteCascades(t *testing.T) {
	env := setupServicesTestEnv(t)
	ctx := context.Background()

	event, err := env.events.Create(ctx, &models.EventRecord{
		Name: "Svatba", Type: models.EventWedding,
		Date: "2026-09-12", StartTime: "12:00", EndTime: "23:00",
		LocationID: "loc-1",
	})
	require.NoError(t, err)

	worker := env.createWorker(t, "Jana", "jana@example.com")
	pending := models.AssignmentPending
	_, err = env.shifts.Signup(ctx, event.ShiftID, worker, models.StaffService, &pending)
	require.NoError(t, err)

	removed, err := env.events.Delete(ctx, event.ID)
	require.NoError(t, err)
	require.True(t, removed)

	_, found, err := env.shiftsRepo.FindByID(ctx, event.ShiftID)
	require.NoError(t, err)
	require.False(t, found)

	assignments, err := env.assignments.ForShift(ctx, event.ShiftID)
	require.NoError(t, err)
	require.Empty(t, assignments)
}

func TestEventsServiceDeleteUnknown(t *testing.T) {
	env := setupServicesTestEnv(t)

	removed, err := env.events.Delete(context.Background(), "missing")
	require.NoError(t, err)
	require.False(t, removed)
}
