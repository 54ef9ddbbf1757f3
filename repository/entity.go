package repository

import (
	"context"

	"github.com/syssam/chinook"
	"github.com/syssam/chinook/dialect/sql"
)

var (
	listArtistsQuery = "SELECT " + artistColumns + " FROM " + chinook.KindArtist.Table() + " ar"
	getArtistQuery   = listArtistsQuery + " WHERE ar." + chinook.KindArtist.IDColumn() + " = ?"
	listAlbumsQuery  = "SELECT " + albumColumns + " FROM " + chinook.KindAlbum.Table() + " al"
	getAlbumQuery    = listAlbumsQuery + " WHERE al." + chinook.KindAlbum.IDColumn() + " = ?"
	getTrackQuery    = "SELECT " + trackColumns + " FROM " + chinook.KindTrack.Table() + " tr WHERE tr." + chinook.KindTrack.IDColumn() + " = ?"
)

// ListArtists returns every artist in storage order.
func (r *Repository) ListArtists(ctx context.Context) ([]*chinook.Artist, error) {
	out := []*chinook.Artist{}
	err := r.query(ctx, chinook.KindArtist, "list", listArtistsQuery, []any{}, func(s sql.ColumnScanner) error {
		a, err := scanArtist(s)
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetArtist returns the artist with the given id, or nil if there is none.
func (r *Repository) GetArtist(ctx context.Context, id int) (*chinook.Artist, error) {
	var out *chinook.Artist
	err := r.query(ctx, chinook.KindArtist, "get", getArtistQuery, []any{id}, func(s sql.ColumnScanner) (err error) {
		out, err = scanArtist(s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListAlbums returns every album in storage order.
func (r *Repository) ListAlbums(ctx context.Context) ([]*chinook.Album, error) {
	out := []*chinook.Album{}
	err := r.query(ctx, chinook.KindAlbum, "list", listAlbumsQuery, []any{}, func(s sql.ColumnScanner) error {
		a, err := scanAlbum(s)
		if err != nil {
			return err
		}
		out = append(out, a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAlbum returns the album with the given id, or nil if there is none.
func (r *Repository) GetAlbum(ctx context.Context, id int) (*chinook.Album, error) {
	var out *chinook.Album
	err := r.query(ctx, chinook.KindAlbum, "get", getAlbumQuery, []any{id}, func(s sql.ColumnScanner) (err error) {
		out, err = scanAlbum(s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetTrack returns the track with the given id, or nil if there is none.
func (r *Repository) GetTrack(ctx context.Context, id int) (*chinook.Track, error) {
	var out *chinook.Track
	err := r.query(ctx, chinook.KindTrack, "get", getTrackQuery, []any{id}, func(s sql.ColumnScanner) (err error) {
		out, err = scanTrack(s)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
