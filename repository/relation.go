package repository

import (
	"context"

	"github.com/syssam/chinook"
	"github.com/syssam/chinook/dialect/sql"
)

// Relation names, used for logging and join failures.
const (
	RelAlbumTracks  = "album_tracks"
	RelArtistAlbums = "artist_albums"
	RelTrackAlbum   = "track_album"
	RelTrackArtist  = "track_artist"
	RelAlbumArtist  = "album_artist"
)

const (
	tracksByAlbumQuery  = "SELECT " + trackColumns + " FROM tracks tr WHERE tr.AlbumId = ?"
	albumsByArtistQuery = "SELECT " + albumColumns + " FROM albums al WHERE al.ArtistId = ?"
	albumOfTrackQuery   = "SELECT " + albumColumns + " FROM albums al JOIN tracks tr ON tr.AlbumId = al.AlbumId WHERE tr.TrackId = ?"
	artistOfTrackQuery  = "SELECT " + artistColumns + " FROM artists ar JOIN albums al ON al.ArtistId = ar.ArtistId JOIN tracks tr ON tr.AlbumId = al.AlbumId WHERE tr.TrackId = ?"
	artistOfAlbumQuery  = "SELECT " + artistColumns + " FROM artists ar JOIN albums al ON al.ArtistId = ar.ArtistId WHERE al.AlbumId = ?"

	tracksByAlbumsQuery  = "SELECT tr.AlbumId, " + trackColumns + " FROM tracks tr WHERE tr.AlbumId IN "
	albumsByArtistsQuery = "SELECT al.ArtistId, " + albumColumns + " FROM albums al WHERE al.ArtistId IN "
	albumsOfTracksQuery  = "SELECT tr.TrackId, " + albumColumns + " FROM albums al JOIN tracks tr ON tr.AlbumId = al.AlbumId WHERE tr.TrackId IN "
	artistsOfTracksQuery = "SELECT tr.TrackId, " + artistColumns + " FROM artists ar JOIN albums al ON al.ArtistId = ar.ArtistId JOIN tracks tr ON tr.AlbumId = al.AlbumId WHERE tr.TrackId IN "
	artistsOfAlbumsQuery = "SELECT al.AlbumId, " + artistColumns + " FROM artists ar JOIN albums al ON al.ArtistId = ar.ArtistId WHERE al.AlbumId IN "
)

// TracksByAlbum returns the tracks owned by the album.
func (r *Repository) TracksByAlbum(ctx context.Context, albumID int) ([]*chinook.Track, error) {
	return list(ctx, r, chinook.KindTrack, RelAlbumTracks, tracksByAlbumQuery, albumID, scanTrack)
}

// AlbumsByArtist returns the albums owned by the artist.
func (r *Repository) AlbumsByArtist(ctx context.Context, artistID int) ([]*chinook.Album, error) {
	return list(ctx, r, chinook.KindAlbum, RelArtistAlbums, albumsByArtistQuery, artistID, scanAlbum)
}

// AlbumOfTrack returns every album row joined to the track. A consistent
// store yields exactly one.
func (r *Repository) AlbumOfTrack(ctx context.Context, trackID int) ([]*chinook.Album, error) {
	return list(ctx, r, chinook.KindAlbum, RelTrackAlbum, albumOfTrackQuery, trackID, scanAlbum)
}

// ArtistOfTrack returns every artist row reached from the track through its
// album. A consistent store yields exactly one.
func (r *Repository) ArtistOfTrack(ctx context.Context, trackID int) ([]*chinook.Artist, error) {
	return list(ctx, r, chinook.KindArtist, RelTrackArtist, artistOfTrackQuery, trackID, scanArtist)
}

// ArtistOfAlbum returns every artist row joined to the album. A consistent
// store yields exactly one.
func (r *Repository) ArtistOfAlbum(ctx context.Context, albumID int) ([]*chinook.Artist, error) {
	return list(ctx, r, chinook.KindArtist, RelAlbumArtist, artistOfAlbumQuery, albumID, scanArtist)
}

// TracksByAlbums is the batched form of TracksByAlbum. Rows are keyed by album id.
func (r *Repository) TracksByAlbums(ctx context.Context, albumIDs []int) ([]Keyed[*chinook.Track], error) {
	return batch(ctx, r, chinook.KindTrack, RelAlbumTracks, tracksByAlbumsQuery, albumIDs, scanTrack)
}

// AlbumsByArtists is the batched form of AlbumsByArtist. Rows are keyed by artist id.
func (r *Repository) AlbumsByArtists(ctx context.Context, artistIDs []int) ([]Keyed[*chinook.Album], error) {
	return batch(ctx, r, chinook.KindAlbum, RelArtistAlbums, albumsByArtistsQuery, artistIDs, scanAlbum)
}

// AlbumsOfTracks is the batched form of AlbumOfTrack. Rows are keyed by track id.
func (r *Repository) AlbumsOfTracks(ctx context.Context, trackIDs []int) ([]Keyed[*chinook.Album], error) {
	return batch(ctx, r, chinook.KindAlbum, RelTrackAlbum, albumsOfTracksQuery, trackIDs, scanAlbum)
}

// ArtistsOfTracks is the batched form of ArtistOfTrack. Rows are keyed by track id.
func (r *Repository) ArtistsOfTracks(ctx context.Context, trackIDs []int) ([]Keyed[*chinook.Artist], error) {
	return batch(ctx, r, chinook.KindArtist, RelTrackArtist, artistsOfTracksQuery, trackIDs, scanArtist)
}

// ArtistsOfAlbums is the batched form of ArtistOfAlbum. Rows are keyed by album id.
func (r *Repository) ArtistsOfAlbums(ctx context.Context, albumIDs []int) ([]Keyed[*chinook.Artist], error) {
	return batch(ctx, r, chinook.KindArtist, RelAlbumArtist, artistsOfAlbumsQuery, albumIDs, scanArtist)
}

func list[T any](ctx context.Context, r *Repository, kind chinook.Kind, op, query string, key int, scan func(sql.ColumnScanner, ...any) (T, error)) ([]T, error) {
	out := []T{}
	err := r.query(ctx, kind, op, query, []any{key}, func(s sql.ColumnScanner) error {
		v, err := scan(s)
		if err != nil {
			return err
		}
		out = append(out, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func batch[T any](ctx context.Context, r *Repository, kind chinook.Kind, op, query string, keys []int, scan func(sql.ColumnScanner, ...any) (T, error)) ([]Keyed[T], error) {
	if len(keys) == 0 {
		return nil, nil
	}
	placeholders, args := in(keys)
	var out []Keyed[T]
	err := r.query(ctx, kind, op, query+placeholders, args, func(s sql.ColumnScanner) error {
		var key int
		v, err := scan(s, &key)
		if err != nil {
			return err
		}
		out = append(out, Keyed[T]{Key: key, Value: v})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
