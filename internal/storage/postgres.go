package storage

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DB wraps the shared Postgres connection pool together with the
// ensure-schema lifecycle state. The "has the schema been ensured" flag is
// explicit and per-instance so tests can inject their own connection
// instead of relying on process-global state.
type DB struct {
	gorm   *gorm.DB
	logger *zap.Logger

	schemaOnce sync.Once
	schemaErr  error
}

// OpenPostgres connects to the database behind the connection string and
// wraps it for use by the record stores.
func OpenPostgres(dsn string, logger *zap.Logger) (*DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("storage: connect to postgres: %w", err)
	}
	return NewDB(gdb, logger), nil
}

// NewDB wraps an existing gorm connection (used by tests).
func NewDB(gdb *gorm.DB, logger *zap.Logger) *DB {
	return &DB{gorm: gdb, logger: logger.Named("storage.postgres")}
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS app_records (
		resource text NOT NULL,
		id text NOT NULL,
		payload jsonb NOT NULL,
		PRIMARY KEY (resource, id)
	)`,
	`CREATE INDEX IF NOT EXISTS app_records_resource_idx
		ON app_records (resource)`,
	`CREATE INDEX IF NOT EXISTS app_records_shifts_date_idx
		ON app_records ((payload->>'date')) WHERE resource = 'shifts'`,
	`CREATE INDEX IF NOT EXISTS app_records_assignments_shift_idx
		ON app_records ((payload->>'shiftId')) WHERE resource = 'assignments'`,
	`CREATE INDEX IF NOT EXISTS app_records_assignments_user_idx
		ON app_records ((payload->>'userId')) WHERE resource = 'assignments'`,
	`CREATE INDEX IF NOT EXISTS app_records_assignments_status_idx
		ON app_records ((payload->>'status')) WHERE resource = 'assignments'`,
}

// EnsureSchema creates the shared records table and its indexes. It runs
// at most once per DB; every store operation goes through it, so the first
// query of the process pays for schema setup and the rest are free.
func (d *DB) EnsureSchema(ctx context.Context) error {
	d.schemaOnce.Do(func() {
		d.logger.Info("ensuring records schema")
		for _, stmt := range schemaStatements {
			if err := d.gorm.WithContext(ctx).Exec(stmt).Error; err != nil {
				d.schemaErr = fmt.Errorf("storage: ensure schema: %w", err)
				return
			}
		}
	})
	return d.schemaErr
}
