package storage

import (
	"path/filepath"

	"go.uber.org/zap"

	"github.com/pskladal/staff-shifts-api/internal/constants"
	"github.com/pskladal/staff-shifts-api/internal/models"
)

// Stores bundles the five resource stores behind the backend-independent
// contract. Exactly one of the constructors below runs at startup; from
// then on no caller knows which backend it is talking to.
type Stores struct {
	Users       Store[*models.UserRecord]
	Locations   Store[*models.LocationRecord]
	Events      Store[*models.EventRecord]
	Shifts      Store[*models.ShiftRecord]
	Assignments Store[*models.AssignmentRecord]
}

var (
	_ Store[*models.UserRecord] = (*FileStore[*models.UserRecord])(nil)
	_ Store[*models.UserRecord] = (*PostgresStore[*models.UserRecord])(nil)
)

func dataFile(dataDir, resource string) string {
	return filepath.Join(dataDir, resource+".json")
}

// NewFileStores builds the flat-file backend rooted at dataDir. All five
// stores share one write queue so per-file serialization is process-wide.
func NewFileStores(dataDir string, logger *zap.Logger) *Stores {
	queue := newWriteQueue()
	return &Stores{
		Users:       NewFileStore[*models.UserRecord](dataFile(dataDir, constants.ResourceUsers), queue, logger),
		Locations:   NewFileStore[*models.LocationRecord](dataFile(dataDir, constants.ResourceLocations), queue, logger),
		Events:      NewFileStore[*models.EventRecord](dataFile(dataDir, constants.ResourceEvents), queue, logger),
		Shifts:      NewFileStore[*models.ShiftRecord](dataFile(dataDir, constants.ResourceShifts), queue, logger),
		Assignments: NewFileStore[*models.AssignmentRecord](dataFile(dataDir, constants.ResourceAssignments), queue, logger),
	}
}

// NewPostgresStores builds the relational backend. Each store seeds its
// partition from the equivalent flat file under dataDir the first time it
// is read in an otherwise empty state.
func NewPostgresStores(db *DB, dataDir string) *Stores {
	return &Stores{
		Users:       NewPostgresStore[*models.UserRecord](db, constants.ResourceUsers, dataFile(dataDir, constants.ResourceUsers)),
		Locations:   NewPostgresStore[*models.LocationRecord](db, constants.ResourceLocations, dataFile(dataDir, constants.ResourceLocations)),
		Events:      NewPostgresStore[*models.EventRecord](db, constants.ResourceEvents, dataFile(dataDir, constants.ResourceEvents)),
		Shifts:      NewPostgresStore[*models.ShiftRecord](db, constants.ResourceShifts, dataFile(dataDir, constants.ResourceShifts)),
		Assignments: NewPostgresStore[*models.AssignmentRecord](db, constants.ResourceAssignments, dataFile(dataDir, constants.ResourceAssignments)),
	}
}
