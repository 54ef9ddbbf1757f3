// Package relation resolves the related entities of an already resolved
// entity, one relation at a time and only when asked.
//
// Album.tracks and Artist.albums are one-to-many lookups by foreign key.
// Track.album, Track.artist and Album.artist are reverse lookups through a
// join and must yield exactly one parent; anything else is a
// *chinook.JoinError.
//
// By default every call issues its own query, so a list of N parents costs N
// queries per relation. A context prepared with (*Resolver).Batching instead
// collects the sibling calls of one request and answers them with a single
// IN (...) query per batch. Batching changes timing only, never results.
package relation

import (
	"context"
	"log/slog"
	"time"

	"github.com/syssam/chinook"
	"github.com/syssam/chinook/contrib/dataloader"
	"github.com/syssam/chinook/repository"
)

// Resolver resolves relations of chinook entities.
type Resolver struct {
	repo     *repository.Repository
	log      *slog.Logger
	wait     time.Duration
	capacity int
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to report join failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.log = l
	}
}

// WithBatchWait sets how long a batch collects keys before it is dispatched.
func WithBatchWait(d time.Duration) Option {
	return func(r *Resolver) {
		r.wait = d
	}
}

// WithBatchCapacity caps the number of keys sent in one IN (...) query.
func WithBatchCapacity(n int) Option {
	return func(r *Resolver) {
		r.capacity = n
	}
}

// New returns a Resolver reading through repo.
func New(repo *repository.Repository, opts ...Option) *Resolver {
	r := &Resolver{
		repo:     repo,
		log:      slog.Default(),
		wait:     2 * time.Millisecond,
		capacity: 500,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AlbumTracks returns the tracks of the album, in storage order.
func (r *Resolver) AlbumTracks(ctx context.Context, albumID int) ([]*chinook.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l := dataloader.For[*loaders](ctx); l != nil {
		return l.albumTracks.Load(ctx, albumID)()
	}
	return r.repo.TracksByAlbum(ctx, albumID)
}

// ArtistAlbums returns the albums of the artist, in storage order.
func (r *Resolver) ArtistAlbums(ctx context.Context, artistID int) ([]*chinook.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l := dataloader.For[*loaders](ctx); l != nil {
		return l.artistAlbums.Load(ctx, artistID)()
	}
	return r.repo.AlbumsByArtist(ctx, artistID)
}

// TrackAlbum returns the album owning the track.
func (r *Resolver) TrackAlbum(ctx context.Context, trackID int) (*chinook.Album, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l := dataloader.For[*loaders](ctx); l != nil {
		return l.trackAlbum.Load(ctx, trackID)()
	}
	albums, err := r.repo.AlbumOfTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	return single(ctx, r, albums, repository.RelTrackAlbum, chinook.KindTrack, trackID)
}

// TrackArtist returns the artist owning the track's album.
func (r *Resolver) TrackArtist(ctx context.Context, trackID int) (*chinook.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l := dataloader.For[*loaders](ctx); l != nil {
		return l.trackArtist.Load(ctx, trackID)()
	}
	artists, err := r.repo.ArtistOfTrack(ctx, trackID)
	if err != nil {
		return nil, err
	}
	return single(ctx, r, artists, repository.RelTrackArtist, chinook.KindTrack, trackID)
}

// AlbumArtist returns the artist owning the album.
func (r *Resolver) AlbumArtist(ctx context.Context, albumID int) (*chinook.Artist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if l := dataloader.For[*loaders](ctx); l != nil {
		return l.albumArtist.Load(ctx, albumID)()
	}
	artists, err := r.repo.ArtistOfAlbum(ctx, albumID)
	if err != nil {
		return nil, err
	}
	return single(ctx, r, artists, repository.RelAlbumArtist, chinook.KindAlbum, albumID)
}

func single[T any](ctx context.Context, r *Resolver, rows []T, rel string, kind chinook.Kind, id int) (T, error) {
	if len(rows) != 1 {
		var zero T
		return zero, r.joinError(ctx, rel, kind, id, len(rows))
	}
	return rows[0], nil
}

func (r *Resolver) joinError(ctx context.Context, rel string, kind chinook.Kind, id, count int) error {
	err := chinook.NewJoinError(rel, kind, id, count)
	r.log.ErrorContext(ctx, "relation join failed",
		"relation", rel,
		"entity", kind.Label(),
		"id", id,
		"rows", count,
	)
	return err
}
