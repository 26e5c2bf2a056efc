package repository

import (
	"context"
	"sort"

	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/storage"
)

// ShiftsRepository is the typed view over the shifts store.
type ShiftsRepository struct {
	base[*models.ShiftRecord]
}

// NewShiftsRepository creates a ShiftsRepository.
func NewShiftsRepository(store storage.Store[*models.ShiftRecord]) *ShiftsRepository {
	return &ShiftsRepository{base[*models.ShiftRecord]{store: store}}
}

// ForDate returns the shifts on one date, sorted by start time then end
// time. Times compare lexicographically on their zero-padded HH:MM form;
// the flexible-end sentinel is non-numeric text, so it sorts after every
// clock time.
func (r *ShiftsRepository) ForDate(ctx context.Context, date string) ([]*models.ShiftRecord, error) {
	shifts, err := r.store.FindByField(ctx, "date", date)
	if err != nil {
		return nil, err
	}
	sort.Slice(shifts, func(i, j int) bool {
		return shifts[i].StartTime+shifts[i].EndTime < shifts[j].StartTime+shifts[j].EndTime
	})
	return shifts, nil
}

// ForDateRange returns shifts dated within [from, to], sorted by date
// then start then end time.
func (r *ShiftsRepository) ForDateRange(ctx context.Context, from, to string) ([]*models.ShiftRecord, error) {
	shifts, err := r.store.FindByFieldRange(ctx, "date", from, to)
	if err != nil {
		return nil, err
	}
	sort.Slice(shifts, func(i, j int) bool {
		a, b := shifts[i], shifts[j]
		return a.Date+a.StartTime+a.EndTime < b.Date+b.StartTime+b.EndTime
	})
	return shifts, nil
}

// ForIDs returns the shifts whose ids are in ids.
func (r *ShiftsRepository) ForIDs(ctx context.Context, ids []string) ([]*models.ShiftRecord, error) {
	return r.store.FindByIDs(ctx, ids)
}

// FindAt returns the shift at the given date and location, if one exists.
// Each (date, location) pair holds at most one shift by construction.
func (r *ShiftsRepository) FindAt(ctx context.Context, date, locationID string) (*models.ShiftRecord, bool, error) {
	shifts, err := r.store.FindByField(ctx, "date", date)
	if err != nil {
		return nil, false, err
	}
	for _, shift := range shifts {
		if shift.LocationID == locationID {
			return shift, true, nil
		}
	}
	return nil, false, nil
}
