package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/pskladal/staff-shifts-api/internal/utils"
)

// PostgresStore keeps one resource in the shared app_records table, one
// row per record with the whole record as a jsonb payload. Row-level
// statements give create/delete atomicity; Update is a single
// payload-merge statement, so concurrent patches to the same record
// cannot lose each other's disjoint fields.
type PostgresStore[T Record] struct {
	db       *DB
	resource string
	seedPath string
	logger   *zap.Logger

	seedMu sync.Mutex
	seeded bool
}

// NewPostgresStore creates a relational store for the named resource.
// When seedPath points at a non-empty flat-file table and the resource
// partition holds zero rows, the first read imports every seed record
// once per process lifetime.
func NewPostgresStore[T Record](db *DB, resource, seedPath string) *PostgresStore[T] {
	return &PostgresStore[T]{
		db:       db,
		resource: resource,
		seedPath: seedPath,
		logger:   db.logger.With(zap.String("resource", resource)),
	}
}

// LoadAll returns every record in the resource partition.
func (s *PostgresStore[T]) LoadAll(ctx context.Context) ([]T, error) {
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.queryPayloads(ctx,
		"SELECT payload FROM app_records WHERE resource = ?", s.resource)
}

// FindByID returns the record with the given id, if present.
func (s *PostgresStore[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	if err := s.ensureSeeded(ctx); err != nil {
		return zero, false, err
	}
	rows, err := s.queryPayloads(ctx,
		"SELECT payload FROM app_records WHERE resource = ? AND id = ? LIMIT 1",
		s.resource, id)
	if err != nil {
		return zero, false, err
	}
	if len(rows) == 0 {
		return zero, false, nil
	}
	return rows[0], true, nil
}

// Create inserts the record, assigning an id when absent and stamping
// both timestamps.
func (s *PostgresStore[T]) Create(ctx context.Context, input T) (T, error) {
	var zero T
	if err := s.db.EnsureSchema(ctx); err != nil {
		return zero, err
	}
	id := input.RecordID()
	if id == "" {
		id = newRecordID()
	}
	input.StampNew(id, utils.NowISO())
	payload, err := json.Marshal(input)
	if err != nil {
		return zero, fmt.Errorf("storage: encode %s record: %w", s.resource, err)
	}
	err = s.db.gorm.WithContext(ctx).Exec(
		"INSERT INTO app_records (resource, id, payload) VALUES (?, ?, ?::jsonb)",
		s.resource, id, string(payload)).Error
	if err != nil {
		return zero, fmt.Errorf("storage: insert %s record: %w", s.resource, err)
	}
	return input, nil
}

// Update merges the patch into the stored payload with a single jsonb
// concatenation, so the read-modify-write lost-update window of a
// two-statement update never opens. Identity fields are stripped from the
// patch before it reaches SQL; jsonb || keeps the stored id and createdAt.
func (s *PostgresStore[T]) Update(ctx context.Context, id string, patch map[string]any) (T, bool, error) {
	var zero T
	if err := s.db.EnsureSchema(ctx); err != nil {
		return zero, false, err
	}
	sanitized := sanitizePatch(patch, utils.NowISO())
	encoded, err := json.Marshal(sanitized)
	if err != nil {
		return zero, false, fmt.Errorf("storage: encode %s patch: %w", s.resource, err)
	}
	var payload string
	result := s.db.gorm.WithContext(ctx).Raw(
		`UPDATE app_records SET payload = payload || ?::jsonb
		 WHERE resource = ? AND id = ? RETURNING payload`,
		string(encoded), s.resource, id).Scan(&payload)
	if result.Error != nil {
		return zero, false, fmt.Errorf("storage: update %s record: %w", s.resource, result.Error)
	}
	if result.RowsAffected == 0 {
		return zero, false, nil
	}
	updated := newRecord[T]()
	if err := json.Unmarshal([]byte(payload), updated); err != nil {
		return zero, false, fmt.Errorf("storage: decode %s record: %w", s.resource, err)
	}
	return updated, true, nil
}

// Delete removes the record's row, reporting whether one was removed.
func (s *PostgresStore[T]) Delete(ctx context.Context, id string) (bool, error) {
	if err := s.db.EnsureSchema(ctx); err != nil {
		return false, err
	}
	result := s.db.gorm.WithContext(ctx).Exec(
		"DELETE FROM app_records WHERE resource = ? AND id = ?", s.resource, id)
	if result.Error != nil {
		return false, fmt.Errorf("storage: delete %s record: %w", s.resource, result.Error)
	}
	return result.RowsAffected > 0, nil
}

// FindByField returns records whose named payload field equals value.
func (s *PostgresStore[T]) FindByField(ctx context.Context, field, value string) ([]T, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.queryPayloads(ctx, fmt.Sprintf(
		"SELECT payload FROM app_records WHERE resource = ? AND payload->>'%s' = ?", field),
		s.resource, value)
}

// FindByFieldRange returns records whose named payload field lies in
// [from, to].
func (s *PostgresStore[T]) FindByFieldRange(ctx context.Context, field, from, to string) ([]T, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.queryPayloads(ctx, fmt.Sprintf(
		"SELECT payload FROM app_records WHERE resource = ? AND payload->>'%s' >= ? AND payload->>'%s' <= ?",
		field, field),
		s.resource, from, to)
}

// FindByFieldIn returns records whose named payload field equals any of
// values.
func (s *PostgresStore[T]) FindByFieldIn(ctx context.Context, field string, values []string) ([]T, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return []T{}, nil
	}
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.queryPayloads(ctx, fmt.Sprintf(
		"SELECT payload FROM app_records WHERE resource = ? AND payload->>'%s' IN ?", field),
		s.resource, values)
}

// FindByIDs returns the records whose ids are in ids.
func (s *PostgresStore[T]) FindByIDs(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	if err := s.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.queryPayloads(ctx,
		"SELECT payload FROM app_records WHERE resource = ? AND id IN ?", s.resource, ids)
}

func (s *PostgresStore[T]) queryPayloads(ctx context.Context, sql string, args ...any) ([]T, error) {
	var payloads []string
	if err := s.db.gorm.WithContext(ctx).Raw(sql, args...).Scan(&payloads).Error; err != nil {
		return nil, fmt.Errorf("storage: query %s records: %w", s.resource, err)
	}
	out := make([]T, 0, len(payloads))
	for _, payload := range payloads {
		rec := newRecord[T]()
		if err := json.Unmarshal([]byte(payload), rec); err != nil {
			return nil, fmt.Errorf("storage: decode %s record: %w", s.resource, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ensureSeeded imports the flat-file table into an empty resource
// partition. The flag flips only on success, so a failed import is
// retried by the next read instead of being skipped for the rest of the
// process.
func (s *PostgresStore[T]) ensureSeeded(ctx context.Context) error {
	if err := s.db.EnsureSchema(ctx); err != nil {
		return err
	}
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	if s.seeded {
		return nil
	}
	if s.seedPath == "" {
		s.seeded = true
		return nil
	}

	var count int64
	err := s.db.gorm.WithContext(ctx).Raw(
		"SELECT count(*) FROM app_records WHERE resource = ?", s.resource).Scan(&count).Error
	if err != nil {
		return fmt.Errorf("storage: count %s records: %w", s.resource, err)
	}
	if count > 0 {
		s.seeded = true
		return nil
	}

	rows, err := s.readSeedRows()
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		s.logger.Info("seeding resource from flat file", zap.Int("records", len(rows)))
	}
	for _, row := range rows {
		payload, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("storage: encode %s seed record: %w", s.resource, err)
		}
		err = s.db.gorm.WithContext(ctx).Exec(
			`INSERT INTO app_records (resource, id, payload)
			 VALUES (?, ?, ?::jsonb) ON CONFLICT (resource, id) DO NOTHING`,
			s.resource, row.RecordID(), string(payload)).Error
		if err != nil {
			return fmt.Errorf("storage: seed %s record: %w", s.resource, err)
		}
	}
	s.seeded = true
	return nil
}

func (s *PostgresStore[T]) readSeedRows() ([]T, error) {
	data, err := os.ReadFile(s.seedPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read seed %s: %w", s.seedPath, err)
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("storage: parse seed %s: %w", s.seedPath, err)
	}
	return rows, nil
}
