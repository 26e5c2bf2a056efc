package services

import (
	"context"
	"errors"

	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/repository"
)

var ErrEventNotFound = errors.New("event not found")

// EventsService keeps each event and its generated shift in sync. The
// event is the source of truth: creating one adopts or creates the shift
// at its (date, location), updating one re-propagates its fields onto the
// shift, and deleting one cascades through the shift to its assignments.
// Edits made to the shift directly are never reflected back.
type EventsService struct {
	events  *repository.EventsRepository
	shifts  *repository.ShiftsRepository
	cascade *ShiftsService
}

// NewEventsService creates a new EventsService.
func NewEventsService(events *repository.EventsRepository, shifts *repository.ShiftsRepository, cascade *ShiftsService) *EventsService {
	return &EventsService{events: events, shifts: shifts, cascade: cascade}
}

// mirrorPatch is the slice of event fields a generated shift mirrors.
func mirrorPatch(event *models.EventRecord) map[string]any {
	requiredRoles := event.RequiredRoles
	if requiredRoles == nil {
		requiredRoles = []models.RoleRequirement{}
	}
	return map[string]any{
		"date":          event.Date,
		"startTime":     event.StartTime,
		"endTime":       event.EndTime,
		"locationId":    event.LocationID,
		"type":          models.ShiftType(event.Type),
		"requiredRoles": requiredRoles,
		"minimumPeople": event.MinimumPeople,
		"notes":         event.Notes,
		"eventId":       event.ID,
	}
}

// LoadAll returns every event.
func (s *EventsService) LoadAll(ctx context.Context) ([]*models.EventRecord, error) {
	return s.events.LoadAll(ctx)
}

// FindByID returns one event, if present.
func (s *EventsService) FindByID(ctx context.Context, id string) (*models.EventRecord, bool, error) {
	return s.events.FindByID(ctx, id)
}

// ForDateRange returns events dated within [from, to].
func (s *EventsService) ForDateRange(ctx context.Context, from, to string) ([]*models.EventRecord, error) {
	return s.events.ForDateRange(ctx, from, to)
}

// Create stores the event and materializes its operational shift. A shift
// already standing at the event's (date, location) is overwritten and
// adopted, whatever its origin; otherwise a new shift is created. Either
// way the shift ends up mirroring the event with requiresApproval forced
// on, and the event records the shift's id.
func (s *EventsService) Create(ctx context.Context, input *models.EventRecord) (*models.EventRecord, error) {
	event, err := s.events.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	patch := mirrorPatch(event)
	patch["requiresApproval"] = true

	existing, found, err := s.shifts.FindAt(ctx, event.Date, event.LocationID)
	if err != nil {
		return nil, err
	}
	var shiftID string
	if found {
		updated, ok, err := s.shifts.Update(ctx, existing.ID, patch)
		if err != nil {
			return nil, err
		}
		shiftID = existing.ID
		if ok {
			shiftID = updated.ID
		}
	} else {
		requiredRoles := event.RequiredRoles
		if requiredRoles == nil {
			requiredRoles = []models.RoleRequirement{}
		}
		created, err := s.shifts.Create(ctx, &models.ShiftRecord{
			Date:             event.Date,
			StartTime:        event.StartTime,
			EndTime:          event.EndTime,
			LocationID:       event.LocationID,
			Type:             models.ShiftType(event.Type),
			RequiredRoles:    requiredRoles,
			MinimumPeople:    event.MinimumPeople,
			RequiresApproval: true,
			Notes:            event.Notes,
			EventID:          event.ID,
		})
		if err != nil {
			return nil, err
		}
		shiftID = created.ID
	}

	stamped, ok, err := s.events.Update(ctx, event.ID, map[string]any{"shiftId": shiftID})
	if err != nil {
		return nil, err
	}
	if !ok {
		return event, nil
	}
	return stamped, nil
}

// Update applies the patch to the event and, when the event owns a shift,
// re-propagates the mirrored fields onto it.
func (s *EventsService) Update(ctx context.Context, id string, patch map[string]any) (*models.EventRecord, bool, error) {
	updated, found, err := s.events.Update(ctx, id, patch)
	if err != nil || !found {
		return nil, false, err
	}
	if updated.ShiftID != "" {
		if _, _, err := s.shifts.Update(ctx, updated.ShiftID, mirrorPatch(updated)); err != nil {
			return nil, false, err
		}
	}
	return updated, true, nil
}

// Delete removes the event and cascades to its generated shift and that
// shift's assignments. The steps are not transactional across resources;
// a crash in between can orphan the shift (an accepted gap).
func (s *EventsService) Delete(ctx context.Context, id string) (bool, error) {
	event, found, err := s.events.FindByID(ctx, id)
	if err != nil {
		return false, err
	}
	deleted, err := s.events.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted && found && event.ShiftID != "" {
		if _, err := s.cascade.DeleteCascade(ctx, event.ShiftID); err != nil {
			return false, err
		}
	}
	return deleted, nil
}
