package relation

import (
	"context"

	dl "github.com/graph-gophers/dataloader/v7"

	"github.com/syssam/chinook"
	"github.com/syssam/chinook/contrib/dataloader"
	"github.com/syssam/chinook/repository"
)

// loaders holds the per-request batch loaders. They never cache, so two
// requests for the same key produce two records.
type loaders struct {
	albumTracks  *dl.Loader[int, []*chinook.Track]
	artistAlbums *dl.Loader[int, []*chinook.Album]
	trackAlbum   *dl.Loader[int, *chinook.Album]
	trackArtist  *dl.Loader[int, *chinook.Artist]
	albumArtist  *dl.Loader[int, *chinook.Artist]
}

// Batching returns a context under which sibling relation calls are batched.
// The loaders are scoped to the returned context and must not outlive the
// request.
func (r *Resolver) Batching(ctx context.Context) context.Context {
	return dataloader.WithLoaders(ctx, &loaders{
		albumTracks:  newLoader(r, many(r.repo.TracksByAlbums)),
		artistAlbums: newLoader(r, many(r.repo.AlbumsByArtists)),
		trackAlbum:   newLoader(r, one(r, r.repo.AlbumsOfTracks, repository.RelTrackAlbum, chinook.KindTrack)),
		trackArtist:  newLoader(r, one(r, r.repo.ArtistsOfTracks, repository.RelTrackArtist, chinook.KindTrack)),
		albumArtist:  newLoader(r, one(r, r.repo.ArtistsOfAlbums, repository.RelAlbumArtist, chinook.KindAlbum)),
	})
}

func newLoader[V any](r *Resolver, fn dl.BatchFunc[int, V]) *dl.Loader[int, V] {
	opts := []dl.Option[int, V]{
		dl.WithCache[int, V](&dl.NoCache[int, V]{}),
		dl.WithWait[int, V](r.wait),
	}
	if r.capacity > 0 {
		opts = append(opts, dl.WithBatchCapacity[int, V](r.capacity))
	}
	return dl.NewBatchedLoader(fn, opts...)
}

func key[V any](k repository.Keyed[V]) int { return k.Key }

func value[V any](k repository.Keyed[V]) V { return k.Value }

// many answers a one-to-many batch; keys without rows get an empty slice.
func many[V any](fetch func(context.Context, []int) ([]repository.Keyed[V], error)) dl.BatchFunc[int, []V] {
	return func(ctx context.Context, keys []int) []*dl.Result[[]V] {
		rows, err := fetch(ctx, keys)
		if err != nil {
			return dataloader.Fail[[]V](len(keys), err)
		}
		groups := dataloader.GroupByKey(rows, key[V], value[V])
		return dataloader.Results(dataloader.OrderGroupsByKeys(keys, groups), nil)
	}
}

// one answers a reverse-relation batch; every key must match exactly one row.
func one[V any](r *Resolver, fetch func(context.Context, []int) ([]repository.Keyed[V], error), rel string, kind chinook.Kind) dl.BatchFunc[int, V] {
	return func(ctx context.Context, keys []int) []*dl.Result[V] {
		rows, err := fetch(ctx, keys)
		if err != nil {
			return dataloader.Fail[V](len(keys), err)
		}
		groups := dataloader.GroupByKey(rows, key[V], value[V])
		values, errs := dataloader.OrderSingleByKeys(keys, groups, func(id, count int) error {
			return r.joinError(ctx, rel, kind, id, count)
		})
		return dataloader.Results(values, errs)
	}
}
