package repository

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/syssam/chinook"
	"github.com/syssam/chinook/dialect/sql"
)

// Keyed pairs a record with the key of the batch entry it answers.
type Keyed[T any] struct {
	Key   int
	Value T
}

// Selected columns, in scan order.
const (
	artistColumns = "ar.ArtistId, ar.Name"
	albumColumns  = "al.AlbumId, al.Title"
	trackColumns  = "tr.TrackId, tr.Name, tr.Composer, tr.Milliseconds, tr.Bytes, tr.UnitPrice"
)

func scanArtist(s sql.ColumnScanner, prefix ...any) (*chinook.Artist, error) {
	var (
		a    chinook.Artist
		name sql.NullString
	)
	if err := s.Scan(append(prefix, &a.ID, &name)...); err != nil {
		return nil, err
	}
	if !name.Valid {
		return nil, &chinook.RowError{Entity: chinook.KindArtist, Column: "Name"}
	}
	a.Name = name.String
	return &a, nil
}

func scanAlbum(s sql.ColumnScanner, prefix ...any) (*chinook.Album, error) {
	var (
		a     chinook.Album
		title sql.NullString
	)
	if err := s.Scan(append(prefix, &a.ID, &title)...); err != nil {
		return nil, err
	}
	if !title.Valid {
		return nil, &chinook.RowError{Entity: chinook.KindAlbum, Column: "Title"}
	}
	a.Title = title.String
	return &a, nil
}

func scanTrack(s sql.ColumnScanner, prefix ...any) (*chinook.Track, error) {
	var (
		t                   chinook.Track
		name, composer      sql.NullString
		milliseconds, bytes sql.NullInt64
		price               decimal.NullDecimal
	)
	if err := s.Scan(append(prefix, &t.ID, &name, &composer, &milliseconds, &bytes, &price)...); err != nil {
		return nil, err
	}
	if !name.Valid {
		return nil, &chinook.RowError{Entity: chinook.KindTrack, Column: "Name"}
	}
	t.Name = name.String
	if composer.Valid {
		t.Composer = &composer.String
	}
	if milliseconds.Valid {
		t.Milliseconds = &milliseconds.Int64
	}
	if bytes.Valid {
		t.Bytes = &bytes.Int64
	}
	t.UnitPrice = price
	return &t, nil
}

// in returns the placeholder list and arguments for an IN clause.
func in(keys []int) (string, []any) {
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	return "(" + strings.TrimSuffix(strings.Repeat("?, ", len(keys)), ", ") + ")", args
}
