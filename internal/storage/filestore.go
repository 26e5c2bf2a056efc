package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/pskladal/staff-shifts-api/internal/utils"
)

// FileStore keeps one resource as a single pretty-printed JSON array on
// disk. Reads parse the current file content without locking; every
// mutation goes through the write serializer: per-file FIFO queue, then
// the cross-process lock file, then read-compute-write with an atomic
// rename over the destination.
type FileStore[T Record] struct {
	path   string
	queue  *writeQueue
	logger *zap.Logger
}

// NewFileStore creates a file-backed store for the resource persisted at
// path. Stores sharing a data directory share the queue.
func NewFileStore[T Record](path string, queue *writeQueue, logger *zap.Logger) *FileStore[T] {
	return &FileStore[T]{
		path:   path,
		queue:  queue,
		logger: logger.Named("storage.file"),
	}
}

// Path returns the data file location. The relational backend reads the
// same file as its seed source.
func (s *FileStore[T]) Path() string { return s.path }

// LoadAll returns every record in the file. An absent file reads as an
// empty table and is materialized so the resource exists on disk from
// then on.
func (s *FileStore[T]) LoadAll(_ context.Context) ([]T, error) {
	rows, exists, err := s.readRows()
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := s.mutate(func(rows []T) ([]T, error) { return rows, nil }); err != nil {
			return nil, err
		}
		return []T{}, nil
	}
	return rows, nil
}

// FindByID returns the record with the given id, if present.
func (s *FileStore[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	var zero T
	rows, err := s.LoadAll(ctx)
	if err != nil {
		return zero, false, err
	}
	for _, row := range rows {
		if row.RecordID() == id {
			return row, true, nil
		}
	}
	return zero, false, nil
}

// Create appends the record, assigning an id when absent and stamping
// both timestamps.
func (s *FileStore[T]) Create(_ context.Context, input T) (T, error) {
	id := input.RecordID()
	if id == "" {
		id = newRecordID()
	}
	input.StampNew(id, utils.NowISO())
	err := s.mutate(func(rows []T) ([]T, error) {
		return append(rows, input), nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return input, nil
}

// Update merges the patch over the stored record. Identity fields in the
// patch are discarded; updatedAt is refreshed.
func (s *FileStore[T]) Update(_ context.Context, id string, patch map[string]any) (T, bool, error) {
	var (
		updated T
		found   bool
	)
	sanitized := sanitizePatch(patch, utils.NowISO())
	err := s.mutate(func(rows []T) ([]T, error) {
		for i, row := range rows {
			if row.RecordID() != id {
				continue
			}
			next, err := applyPatch(row, sanitized)
			if err != nil {
				return nil, err
			}
			rows[i] = next
			updated = next
			found = true
			break
		}
		return rows, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return updated, found, nil
}

// Delete removes the record with the given id, reporting whether one was
// removed.
func (s *FileStore[T]) Delete(_ context.Context, id string) (bool, error) {
	var removed bool
	err := s.mutate(func(rows []T) ([]T, error) {
		next := rows[:0]
		for _, row := range rows {
			if row.RecordID() == id {
				removed = true
				continue
			}
			next = append(next, row)
		}
		return next, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// FindByField returns records whose named field equals value.
func (s *FileStore[T]) FindByField(ctx context.Context, field, value string) ([]T, error) {
	return s.scan(ctx, field, func(v string) bool { return v == value })
}

// FindByFieldRange returns records whose named field lies in [from, to],
// compared lexicographically (date keys compare correctly this way).
func (s *FileStore[T]) FindByFieldRange(ctx context.Context, field, from, to string) ([]T, error) {
	return s.scan(ctx, field, func(v string) bool { return v >= from && v <= to })
}

// FindByFieldIn returns records whose named field equals any of values.
func (s *FileStore[T]) FindByFieldIn(ctx context.Context, field string, values []string) ([]T, error) {
	if len(values) == 0 {
		return []T{}, nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return s.scan(ctx, field, func(v string) bool { return set[v] })
}

// FindByIDs returns the records whose ids are in ids, in storage order.
func (s *FileStore[T]) FindByIDs(ctx context.Context, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	rows, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(ids))
	for _, row := range rows {
		if set[row.RecordID()] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *FileStore[T]) scan(ctx context.Context, field string, match func(string) bool) ([]T, error) {
	if err := checkField(field); err != nil {
		return nil, err
	}
	rows, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := []T{}
	for _, row := range rows {
		fields, err := recordFields(row)
		if err != nil {
			return nil, err
		}
		value, ok := fields[field]
		if !ok {
			continue
		}
		if match(fieldString(value)) {
			out = append(out, row)
		}
	}
	return out, nil
}

// readRows parses the current file content. The second result reports
// whether the file exists; a present but non-array payload is a fatal
// parse error, never silently repaired.
func (s *FileStore[T]) readRows() ([]T, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("storage: read %s: %w", s.path, err)
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, true, fmt.Errorf("storage: expected JSON array in %s", s.path)
	}
	var rows []T
	if err := json.Unmarshal(trimmed, &rows); err != nil {
		return nil, true, fmt.Errorf("storage: parse %s: %w", s.path, err)
	}
	return rows, true, nil
}

// mutate runs one serialized read-compute-write cycle: queue slot, lock
// file, read current rows (absent file reads as empty), apply fn, write a
// uniquely named temp file, rename it over the destination. Temp-file
// cleanup and lock release run on every exit path; a temp file already
// renamed away is tolerated.
func (s *FileStore[T]) mutate(fn func(rows []T) ([]T, error)) error {
	return s.queue.enqueue(s.path, func() error {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("storage: ensure data dir: %w", err)
		}
		lockPath := s.path + ".lock"
		if err := acquireFileLock(lockPath); err != nil {
			return err
		}
		tmpPath := fmt.Sprintf("%s.%d.%d.tmp", s.path, os.Getpid(), time.Now().UnixNano())
		defer func() {
			if err := os.Remove(tmpPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
				s.logger.Warn("temp file cleanup failed", zap.String("path", tmpPath), zap.Error(err))
			}
			if err := releaseFileLock(lockPath); err != nil {
				s.logger.Warn("lock release failed", zap.String("path", lockPath), zap.Error(err))
			}
		}()

		current, _, err := s.readRows()
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if next == nil {
			next = []T{}
		}
		body, err := json.MarshalIndent(next, "", "  ")
		if err != nil {
			return fmt.Errorf("storage: encode %s: %w", s.path, err)
		}
		body = append(body, '\n')
		if err := os.WriteFile(tmpPath, body, 0o644); err != nil {
			return fmt.Errorf("storage: write %s: %w", tmpPath, err)
		}
		if err := os.Rename(tmpPath, s.path); err != nil {
			return fmt.Errorf("storage: rename %s: %w", s.path, err)
		}
		return nil
	})
}
