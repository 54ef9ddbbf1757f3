// Package dataloader provides helpers for answering graph-gophers/dataloader
// batches from keyed query rows.
//
// A batch function receives N keys and must return exactly N results in key
// order. The helpers here turn the rows of one IN (...) query into that shape.
//
// # One-to-many
//
//	func tracksBatch(ctx context.Context, albumIDs []int) []*dl.Result[[]*chinook.Track] {
//	    rows, err := repo.TracksByAlbums(ctx, albumIDs)
//	    if err != nil {
//	        return dataloader.Fail[[]*chinook.Track](len(albumIDs), err)
//	    }
//	    groups := dataloader.GroupByKey(rows, keyOf, valueOf)
//	    return dataloader.Results(dataloader.OrderGroupsByKeys(albumIDs, groups), nil)
//	}
//
// # Exactly one parent
//
//	values, errs := dataloader.OrderSingleByKeys(trackIDs, groups, func(id, n int) error {
//	    return chinook.NewJoinError("track_album", chinook.KindTrack, id, n)
//	})
//	return dataloader.Results(values, errs)
//
// # Request scope
//
// Loaders hold no cache and live for a single request:
//
//	ctx = dataloader.WithLoaders(ctx, newLoaders(repo))
//	loaders := dataloader.For[*Loaders](ctx)
package dataloader

import (
	"context"

	dl "github.com/graph-gophers/dataloader/v7"
)

// GroupByKey groups rows by key, converting each row with valueFn.
// Useful for one-to-many relationships where multiple rows share the same foreign key.
// Row order is preserved within a group.
func GroupByKey[K comparable, R, V any](rows []R, keyFn func(R) K, valueFn func(R) V) map[K][]V {
	result := make(map[K][]V)
	for _, r := range rows {
		key := keyFn(r)
		result[key] = append(result[key], valueFn(r))
	}
	return result
}

// OrderGroupsByKeys reorders grouped entities to match the order of requested keys.
// Keys without rows get an empty, non-nil slice.
func OrderGroupsByKeys[K comparable, V any](keys []K, groups map[K][]V) [][]V {
	result := make([][]V, len(keys))
	for i, key := range keys {
		if g, ok := groups[key]; ok {
			result[i] = g
		} else {
			result[i] = []V{}
		}
	}
	return result
}

// OrderSingleByKeys is OrderGroupsByKeys for relations that must yield exactly
// one value per key. A key with zero or several values gets the error built by
// errFn from the key and the number of values found.
func OrderSingleByKeys[K comparable, V any](keys []K, groups map[K][]V, errFn func(key K, count int) error) ([]V, []error) {
	result := make([]V, len(keys))
	errs := make([]error, len(keys))
	for i, key := range keys {
		g := groups[key]
		if len(g) != 1 {
			errs[i] = errFn(key, len(g))
			continue
		}
		result[i] = g[0]
	}
	return result, errs
}

// ctxKey is the context key for storing DataLoaders.
type ctxKey struct{}

// WithLoaders injects DataLoaders into the context.
func WithLoaders[T any](ctx context.Context, loaders T) context.Context {
	return context.WithValue(ctx, ctxKey{}, loaders)
}

// For extracts DataLoaders from context. It returns the zero value of T when
// none were injected.
func For[T any](ctx context.Context) T {
	v, _ := ctx.Value(ctxKey{}).(T)
	return v
}

// Results converts separate value and error slices into dataloader results.
func Results[V any](values []V, errs []error) []*dl.Result[V] {
	results := make([]*dl.Result[V], len(values))
	for i := range values {
		var err error
		if i < len(errs) {
			err = errs[i]
		}
		results[i] = &dl.Result[V]{Data: values[i], Error: err}
	}
	return results
}

// Fail returns n results all carrying err, for a batch whose query failed.
func Fail[V any](n int, err error) []*dl.Result[V] {
	results := make([]*dl.Result[V], n)
	for i := range results {
		results[i] = &dl.Result[V]{Error: err}
	}
	return results
}
