// Package chinook holds the read-only entity records of the chinook music
// catalog (artists, albums and tracks) and the error taxonomy shared by the
// repository, relation and engine packages.
//
// Records are plain values reconstructed from one storage row each. They are
// created fresh per request and never cached or shared across requests.
package chinook

import (
	"strings"

	"github.com/go-openapi/inflect"
	"github.com/shopspring/decimal"
)

// Kind names an entity kind.
type Kind string

// Entity kinds.
const (
	KindArtist Kind = "artist"
	KindAlbum  Kind = "album"
	KindTrack  Kind = "track"
)

// Table returns the storage table holding rows of the kind.
func (k Kind) Table() string {
	return inflect.Pluralize(string(k))
}

// Label returns the capitalized kind, as used in messages and GraphQL type names.
func (k Kind) Label() string {
	return inflect.Capitalize(string(k))
}

// IDColumn returns the primary key column of the kind's table, e.g. AlbumId.
func (k Kind) IDColumn() string {
	return inflect.Camelize(string(k)) + "Id"
}

// code returns the upper-case prefix used by error codes, e.g. "ALBUM".
func (k Kind) code() string {
	return strings.ToUpper(string(k))
}

// Artist is a performer. Names are not unique across artists.
type Artist struct {
	ID   int
	Name string
}

// Album is a release owned by exactly one artist.
type Album struct {
	ID    int
	Title string
}

// Track is a single recording owned by exactly one album.
type Track struct {
	ID           int
	Name         string
	Composer     *string
	Milliseconds *int64
	Bytes        *int64
	UnitPrice    decimal.NullDecimal
}

// Price returns the unit price as a float, or nil when the price is unknown.
func (t *Track) Price() *float64 {
	if !t.UnitPrice.Valid {
		return nil
	}
	f := t.UnitPrice.Decimal.InexactFloat64()
	return &f
}
