package repository

import (
	"github.com/pskladal/staff-shifts-api/internal/models"
	"github.com/pskladal/staff-shifts-api/internal/storage"
)

// LocationsRepository is the typed view over the locations store.
type LocationsRepository struct {
	base[*models.LocationRecord]
}

// NewLocationsRepository creates a LocationsRepository.
func NewLocationsRepository(store storage.Store[*models.LocationRecord]) *LocationsRepository {
	return &LocationsRepository{base[*models.LocationRecord]{store: store}}
}
