package repository

import (
	"context"
	"sort"

	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/storage"
)

// EventsRepository is the typed view over the events store.
type EventsRepository struct {
	base[*models.EventRecord]
}

// NewEventsRepository creates an EventsRepository.
func NewEventsRepository(store storage.Store[*models.EventRecord]) *EventsRepository {
	return &EventsRepository{base[*models.EventRecord]{store: store}}
}

// ForDateRange returns events dated within [from, to], sorted by date
// then start time.
func (r *EventsRepository) ForDateRange(ctx context.Context, from, to string) ([]*models.EventRecord, error) {
	events, err := r.store.FindByFieldRange(ctx, "date", from, to)
	if err != nil {
		return nil, err
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date+events[i].StartTime < events[j].Date+events[j].StartTime
	})
	return events, nil
}
