package chinook_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/chinook"
)

func TestKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		kind   chinook.Kind
		table  string
		label  string
		column string
	}{
		{chinook.KindArtist, "artists", "Artist", "ArtistId"},
		{chinook.KindAlbum, "albums", "Album", "AlbumId"},
		{chinook.KindTrack, "tracks", "Track", "TrackId"},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.table, tt.kind.Table())
			assert.Equal(t, tt.label, tt.kind.Label())
			assert.Equal(t, tt.column, tt.kind.IDColumn())
		})
	}
}

func TestNotFoundError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := chinook.NewNotFoundError(chinook.KindAlbum, 100000)
		assert.Equal(t, "Album with ID 100000 not found", err.Error())
		assert.Equal(t, "Track not found", chinook.NewNotFoundError(chinook.KindTrack, nil).Error())
	})

	t.Run("Accessors", func(t *testing.T) {
		err := chinook.NewNotFoundError(chinook.KindArtist, 7)
		assert.Equal(t, chinook.KindArtist, err.Kind())
		assert.Equal(t, 7, err.ID())
		assert.Equal(t, "ARTIST_NOT_FOUND", err.Code())
	})

	t.Run("IsNotFound", func(t *testing.T) {
		err := chinook.NewNotFoundError(chinook.KindTrack, 1)
		assert.True(t, errors.Is(err, chinook.ErrNotFound))
		assert.True(t, chinook.IsNotFound(err))

		// Wrapped error
		wrapped := fmt.Errorf("wrapper: %w", err)
		assert.True(t, chinook.IsNotFound(wrapped))

		// Sentinel error
		assert.True(t, chinook.IsNotFound(chinook.ErrNotFound))

		// Non-matching error
		assert.False(t, chinook.IsNotFound(errors.New("other error")))
		assert.False(t, chinook.IsNotFound(nil))
	})
}

func TestMalformedInputError(t *testing.T) {
	cause := errors.New("strconv: bad")
	err := &chinook.MalformedInputError{Kind: chinook.KindAlbum, Arg: "id", Value: "asdf", Err: cause}

	assert.Equal(t, `invalid album id "asdf"`, err.Error())
	assert.Equal(t, chinook.CodeMalformedInput, err.Code())
	assert.ErrorIs(t, err, chinook.ErrMalformedInput)
	assert.ErrorIs(t, err, cause)
	assert.True(t, chinook.IsMalformedInput(fmt.Errorf("wrap: %w", err)))
	assert.False(t, chinook.IsMalformedInput(chinook.ErrNotFound))
	assert.False(t, chinook.IsMalformedInput(nil))
}

func TestQueryError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		cause := errors.New("database is locked")
		err := chinook.NewQueryError(chinook.KindAlbum, "list", cause)
		assert.Equal(t, "chinook: querying album (list): database is locked", err.Error())

		noOp := chinook.NewQueryError(chinook.KindTrack, "", cause)
		assert.Equal(t, "chinook: querying track: database is locked", noOp.Error())
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := chinook.NewQueryError(chinook.KindArtist, "get", cause)
		assert.ErrorIs(t, err, cause)
		assert.ErrorIs(t, err, chinook.ErrStorage)
		assert.Equal(t, chinook.CodeStorageFailure, err.Code())
	})

	t.Run("IsStorageFailure", func(t *testing.T) {
		err := chinook.NewQueryError(chinook.KindAlbum, "get", &chinook.RowError{Entity: chinook.KindAlbum, Column: "Title"})
		assert.True(t, chinook.IsStorageFailure(fmt.Errorf("wrap: %w", err)))
		assert.False(t, chinook.IsStorageFailure(errors.New("other")))
		assert.False(t, chinook.IsStorageFailure(nil))

		var rowErr *chinook.RowError
		require.ErrorAs(t, err, &rowErr)
		assert.Equal(t, "chinook: album row has NULL Title", rowErr.Error())
	})
}

func TestJoinError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := chinook.NewJoinError("track_album", chinook.KindTrack, 9, 0)
		assert.Equal(t, "chinook: track_album for track 9 not found", err.Error())

		multi := chinook.NewJoinError("track_artist", chinook.KindTrack, 9, 2)
		assert.Equal(t, "chinook: track_artist for track 9 not singular (got 2 results, expected 1)", multi.Error())
	})

	t.Run("IsJoinFailure", func(t *testing.T) {
		err := chinook.NewJoinError("album_artist", chinook.KindAlbum, 3, 0)
		assert.True(t, chinook.IsJoinFailure(err))
		assert.True(t, chinook.IsJoinFailure(fmt.Errorf("wrap: %w", err)))
		assert.True(t, errors.Is(err, chinook.ErrJoin))
		assert.False(t, chinook.IsNotFound(err))
		assert.False(t, chinook.IsJoinFailure(nil))
		assert.Equal(t, chinook.CodeJoinFailure, err.Code())
	})
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", chinook.NewNotFoundError(chinook.KindAlbum, 1), "ALBUM_NOT_FOUND"},
		{"wrapped storage", fmt.Errorf("x: %w", chinook.NewQueryError(chinook.KindAlbum, "get", errors.New("boom"))), chinook.CodeStorageFailure},
		{"join", chinook.NewJoinError("track_album", chinook.KindTrack, 1, 0), chinook.CodeJoinFailure},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chinook.CodeOf(tt.err))
		})
	}
}

func TestTrackPrice(t *testing.T) {
	var tr chinook.Track
	assert.Nil(t, tr.Price())

	require.NoError(t, tr.UnitPrice.Scan("0.99"))
	require.NotNil(t, tr.Price())
	assert.InDelta(t, 0.99, *tr.Price(), 1e-9)
}
