// Package repository provides the typed per-resource views over the
// record stores. A repository adds type identity, shields record identity
// from update patches, and offers the query helpers the services need.
// Helpers produce identical result sets on both storage backends; any
// ordering a caller relies on is imposed here with an explicit sort, never
// assumed from storage order.
package repository

import (
	"context"

	"github.com/pskladal/staff-shifts-api/internal/storage"
)

// base is the CRUD surface every repository shares.
type base[T storage.Record] struct {
	store storage.Store[T]
}

func (r base[T]) LoadAll(ctx context.Context) ([]T, error) {
	return r.store.LoadAll(ctx)
}

func (r base[T]) FindByID(ctx context.Context, id string) (T, bool, error) {
	return r.store.FindByID(ctx, id)
}

func (r base[T]) Create(ctx context.Context, input T) (T, error) {
	return r.store.Create(ctx, input)
}

// Update applies a partial patch. The store discards id, createdAt, and
// updatedAt from the patch, so identity cannot be rewritten through this
// path regardless of what the caller sends.
func (r base[T]) Update(ctx context.Context, id string, patch map[string]any) (T, bool, error) {
	return r.store.Update(ctx, id, patch)
}

func (r base[T]) Delete(ctx context.Context, id string) (bool, error) {
	return r.store.Delete(ctx, id)
}
