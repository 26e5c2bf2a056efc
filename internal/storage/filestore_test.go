package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pskladal/staff-shifts-api/internal/models"
)

func newShiftsFileStore(t *testing.T) *FileStore[*models.ShiftRecord] {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shifts.json")
	return NewFileStore[*models.ShiftRecord](path, newWriteQueue(), zap.NewNop())
}

func TestFileStoreCreateAssignsIdentity(t *testing.T) {
	store := newShiftsFileStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &models.ShiftRecord{
		Date:       "2026-07-04",
		StartTime:  "10:00",
		EndTime:    "22:00",
		LocationID: "loc-1",
		Type:       models.ShiftRestaurant,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	require.NotEmpty(t, created.CreatedAt)
	require.Equal(t, created.CreatedAt, created.UpdatedAt)

	loaded, found, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "2026-07-04", loaded.Date)
}

func TestFileStoreLoadAllMaterializesAbsentFile(t *testing.T) {
	store := newShiftsFileStore(t)

	rows, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, rows)

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	require.JSONEq(t, "[]", string(data))
}

func TestFileStoreRejectsNonArrayFile(t *testing.T) {
	store := newShiftsFileStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte(`{"oops": true}`), 0o644))

	_, err := store.LoadAll(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected JSON array")
}

func TestFileStoreUpdateProtectsIdentity(t *testing.T) {
	store := newShiftsFileStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &models.ShiftRecord{Date: "2026-07-04", LocationID: "loc-1"})
	require.NoError(t, err)

	updated, found, err := store.Update(ctx, created.ID, map[string]any{
		"id":        "forged",
		"createdAt": "1999-01-01T00:00:00.000Z",
		"notes":     "changed",
	})
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, created.ID, updated.ID)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)
	require.Equal(t, "changed", updated.Notes)
	require.GreaterOrEqual(t, updated.UpdatedAt, created.UpdatedAt)

	// untouched fields survive the merge
	require.Equal(t, "loc-1", updated.LocationID)

	// an empty patch changes only updatedAt
	after, found, err := store.Update(ctx, created.ID, map[string]any{})
	require.NoError(t, err)
	require.True(t, found)
	require.GreaterOrEqual(t, after.UpdatedAt, updated.UpdatedAt)
	beforeRest, afterRest := *updated, *after
	beforeRest.UpdatedAt, afterRest.UpdatedAt = "", ""
	require.Equal(t, beforeRest, afterRest)
}

func TestFileStoreUpdateUnknownID(t *testing.T) {
	store := newShiftsFileStore(t)

	_, found, err := store.Update(context.Background(), "missing", map[string]any{"notes": "x"})
	require.NoError(t, err)
	require.False(t, found)
}

func TestFileStoreDelete(t *testing.T) {
	store := newShiftsFileStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &models.ShiftRecord{Date: "2026-07-04"})
	require.NoError(t, err)

	removed, err := store.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = store.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestFileStoreFieldQueries(t *testing.T) {
	store := newShiftsFileStore(t)
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		_, err := store.Create(ctx, &models.ShiftRecord{
			Date:       fmt.Sprintf("2026-07-%02d", day),
			LocationID: "loc-1",
		})
		require.NoError(t, err)
	}

	byDate, err := store.FindByField(ctx, "date", "2026-07-03")
	require.NoError(t, err)
	require.Len(t, byDate, 1)

	inRange, err := store.FindByFieldRange(ctx, "date", "2026-07-02", "2026-07-04")
	require.NoError(t, err)
	require.Len(t, inRange, 3)

	in, err := store.FindByFieldIn(ctx, "date", []string{"2026-07-01", "2026-07-05"})
	require.NoError(t, err)
	require.Len(t, in, 2)

	none, err := store.FindByFieldIn(ctx, "date", nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestFileStoreRejectsUnsafeField(t *testing.T) {
	store := newShiftsFileStore(t)

	_, err := store.FindByField(context.Background(), "date'; DROP TABLE app_records; --", "x")
	require.ErrorIs(t, err, ErrUnsafeField)
}

func TestFileStoreConcurrentCreates(t *testing.T) {
	store := newShiftsFileStore(t)
	ctx := context.Background()

	const n = 25
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = store.Create(ctx, &models.ShiftRecord{
				Date:       "2026-07-04",
				LocationID: fmt.Sprintf("loc-%d", i),
			})
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	rows, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, n)

	// the file itself holds all records, not just the last writer's view
	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	var onDisk []json.RawMessage
	require.NoError(t, json.Unmarshal(data, &onDisk))
	require.Len(t, onDisk, n)
}

func TestFileStoreConcurrentUpdatesKeepDisjointFields(t *testing.T) {
	store := newShiftsFileStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &models.ShiftRecord{
		Date: "2026-07-04", StartTime: "10:00", LocationID: "loc-1",
	})
	require.NoError(t, err)

	patches := []map[string]any{
		{"notes": "changed"},
		{"startTime": "09:00"},
	}
	var wg sync.WaitGroup
	errs := make([]error, len(patches))
	for i, patch := range patches {
		wg.Add(1)
		go func(i int, patch map[string]any) {
			defer wg.Done()
			_, _, errs[i] = store.Update(ctx, created.ID, patch)
		}(i, patch)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	// neither racing patch overwrote the other's field
	final, found, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "changed", final.Notes)
	require.Equal(t, "09:00", final.StartTime)
}

func TestFileStoreIncrementCyclesObservePriorWrites(t *testing.T) {
	store := newShiftsFileStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, &models.ShiftRecord{Date: "2026-07-04", LocationID: "loc-1"})
	require.NoError(t, err)

	// every read-increment-write cycle must observe the previous write
	const n = 20
	for i := 0; i < n; i++ {
		current, found, err := store.FindByID(ctx, created.ID)
		require.NoError(t, err)
		require.True(t, found)
		_, _, err = store.Update(ctx, created.ID, map[string]any{
			"minimumPeople": current.MinimumPeople + 1,
		})
		require.NoError(t, err)
	}

	final, _, err := store.FindByID(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, n, final.MinimumPeople)
}
