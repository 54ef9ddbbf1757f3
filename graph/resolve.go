package graph

import (
	"context"
	"fmt"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/chinook"
)

// CodeIntrospection is reported for __schema and __type fields.
const CodeIntrospection = "INTROSPECTION_DISABLED"

// codedError is a failure of the GraphQL layer itself.
type codedError struct {
	code string
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() string  { return e.code }

var errIntrospection = &codedError{code: CodeIntrospection, msg: "introspection is not served"}

func errUnknownField(typeName, name string) error {
	return fmt.Errorf("graph: no resolver for %s.%s", typeName, name)
}

// resolve returns the raw value of field f on src. Objects are returned as
// chinook records and lists as []any; complete shapes them further.
func (e *execution) resolve(ctx context.Context, typeName string, f *ast.Field, src any) (any, error) {
	switch src := src.(type) {
	case nil:
		return e.root(ctx, f)
	case *chinook.Album:
		return e.album(ctx, f, src)
	case *chinook.Artist:
		return e.artist(ctx, f, src)
	case *chinook.Track:
		return e.track(ctx, f, src)
	}
	return nil, errUnknownField(typeName, f.Name)
}

func (e *execution) root(ctx context.Context, f *ast.Field) (any, error) {
	args := f.ArgumentMap(e.vars)
	switch f.Name {
	case "album":
		return one(e.engine.Album(ctx, args["id"]))
	case "albums":
		return many(e.engine.Albums(ctx, stringArg(args, "title")))
	case "artist":
		return one(e.engine.Artist(ctx, args["id"]))
	case "artists":
		return many(e.engine.Artists(ctx, stringArg(args, "name")))
	case "track":
		return one(e.engine.Track(ctx, args["id"]))
	case "__schema", "__type":
		return nil, errIntrospection
	}
	return nil, errUnknownField("Query", f.Name)
}

func (e *execution) album(ctx context.Context, f *ast.Field, a *chinook.Album) (any, error) {
	switch f.Name {
	case "id":
		return strconv.Itoa(a.ID), nil
	case "title":
		return a.Title, nil
	case "tracks":
		return many(e.rel.AlbumTracks(ctx, a.ID))
	case "artist":
		return one(e.rel.AlbumArtist(ctx, a.ID))
	}
	return nil, errUnknownField("Album", f.Name)
}

func (e *execution) artist(ctx context.Context, f *ast.Field, a *chinook.Artist) (any, error) {
	switch f.Name {
	case "id":
		return strconv.Itoa(a.ID), nil
	case "name":
		return a.Name, nil
	case "albums":
		return many(e.rel.ArtistAlbums(ctx, a.ID))
	}
	return nil, errUnknownField("Artist", f.Name)
}

func (e *execution) track(ctx context.Context, f *ast.Field, t *chinook.Track) (any, error) {
	switch f.Name {
	case "id":
		return strconv.Itoa(t.ID), nil
	case "name":
		return t.Name, nil
	case "composer":
		return deref(t.Composer), nil
	case "milliseconds":
		return deref(t.Milliseconds), nil
	case "bytes":
		return deref(t.Bytes), nil
	case "price":
		return deref(t.Price()), nil
	case "album":
		return one(e.rel.TrackAlbum(ctx, t.ID))
	case "artist":
		return one(e.rel.TrackArtist(ctx, t.ID))
	}
	return nil, errUnknownField("Track", f.Name)
}

// one keeps a nil record from turning into a non-nil interface.
func one[T any](v *T, err error) (any, error) {
	if err != nil || v == nil {
		return nil, err
	}
	return v, nil
}

func many[T any](vs []T, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	items := make([]any, len(vs))
	for i, v := range vs {
		items[i] = v
	}
	return items, nil
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func stringArg(args map[string]any, name string) *string {
	s, ok := args[name].(string)
	if !ok {
		return nil
	}
	return &s
}
