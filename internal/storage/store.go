// Package storage implements durable keyed storage for the application's
// record types. Two interchangeable backends satisfy the same Store
// contract: a flat-file backend keeping one pretty-printed JSON array per
// resource, and a Postgres backend keeping every record as a jsonb payload
// in a single shared table. Callers never branch on which backend is
// active; the choice is made once at startup from configuration.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"

	"github.com/google/uuid"
)

// Record is the contract every stored type satisfies via an embedded
// models.Meta.
type Record interface {
	RecordID() string
	StampNew(id, timestamp string)
}

// Store is the backend-independent CRUD contract for one resource.
//
// FindByID, Update, and Delete signal "no such record" through their
// boolean result, never through an error. The field-query extensions
// exist so the relational backend can answer them with indexed lookups;
// the file backend answers them with a full scan plus in-memory filter.
// Neither backend guarantees result ordering; callers sort explicitly.
//
// Update patch keys that match no record field are dropped on write by
// the file backend but retained inertly in the relational jsonb payload;
// both are invisible through the decoded record, so results agree.
type Store[T Record] interface {
	LoadAll(ctx context.Context) ([]T, error)
	FindByID(ctx context.Context, id string) (T, bool, error)
	Create(ctx context.Context, input T) (T, error)
	Update(ctx context.Context, id string, patch map[string]any) (T, bool, error)
	Delete(ctx context.Context, id string) (bool, error)

	FindByField(ctx context.Context, field, value string) ([]T, error)
	FindByFieldRange(ctx context.Context, field, from, to string) ([]T, error)
	FindByFieldIn(ctx context.Context, field string, values []string) ([]T, error)
	FindByIDs(ctx context.Context, ids []string) ([]T, error)
}

// ErrUnsafeField is returned when a dynamic field name fails the
// safe-identifier check, before any query is built from it.
var ErrUnsafeField = errors.New("storage: unsafe field name")

var safeFieldPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// checkField validates a dynamic field name against the safe-identifier
// pattern. Field names reach SQL text, so this is enforced on every
// field-query path rather than assumed.
func checkField(field string) error {
	if !safeFieldPattern.MatchString(field) {
		return fmt.Errorf("%w: %q", ErrUnsafeField, field)
	}
	return nil
}

// newRecord allocates a fresh record of the store's element type. T is
// always a pointer type, so the zero value alone is not usable.
func newRecord[T Record]() T {
	var zero T
	return reflect.New(reflect.TypeOf(zero).Elem()).Interface().(T)
}

// newRecordID generates an id for a record created without one.
func newRecordID() string {
	return uuid.NewString()
}

// sanitizePatch copies patch without the identity fields and stamps
// updatedAt. A patch can therefore never rewrite a record's id or
// creation time, no matter what the caller put in it.
func sanitizePatch(patch map[string]any, updatedAt string) map[string]any {
	out := make(map[string]any, len(patch)+1)
	for key, value := range patch {
		switch key {
		case "id", "createdAt", "updatedAt":
			continue
		}
		out[key] = value
	}
	out["updatedAt"] = updatedAt
	return out
}

// applyPatch merges a sanitized patch over the current record, field by
// field (shallow: a patched field replaces the stored field wholesale),
// and decodes the result into a fresh record.
func applyPatch[T Record](current T, patch map[string]any) (T, error) {
	var zero T
	fields, err := recordFields(current)
	if err != nil {
		return zero, err
	}
	for key, value := range patch {
		fields[key] = value
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return zero, fmt.Errorf("storage: encode merged record: %w", err)
	}
	next := newRecord[T]()
	if err := json.Unmarshal(merged, next); err != nil {
		return zero, fmt.Errorf("storage: decode merged record: %w", err)
	}
	return next, nil
}

// recordFields flattens a record into its JSON field map.
func recordFields[T Record](rec T) (map[string]any, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("storage: encode record: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("storage: decode record: %w", err)
	}
	return fields, nil
}

// fieldString renders one JSON field for equality/range comparison. Every
// filtered field (dates, foreign keys, statuses) is stored as a string;
// anything else falls back to its printed form.
func fieldString(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
