// Package chinooktest provides an on-disk SQLite chinook fixture for tests.
package chinooktest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/syssam/chinook/dialect"
	"github.com/syssam/chinook/dialect/sql"
)

// Schema is the subset of the chinook DDL read by the service.
const Schema = `
CREATE TABLE artists (
	ArtistId INTEGER NOT NULL PRIMARY KEY,
	Name NVARCHAR(120) NOT NULL
);
CREATE TABLE albums (
	AlbumId INTEGER NOT NULL PRIMARY KEY,
	Title NVARCHAR(160) NOT NULL,
	ArtistId INTEGER NOT NULL REFERENCES artists (ArtistId)
);
CREATE TABLE tracks (
	TrackId INTEGER NOT NULL PRIMARY KEY,
	Name NVARCHAR(200) NOT NULL,
	AlbumId INTEGER REFERENCES albums (AlbumId),
	Composer NVARCHAR(220),
	Milliseconds INTEGER,
	Bytes INTEGER,
	UnitPrice NUMERIC(10,2)
);
CREATE INDEX IFK_AlbumArtistId ON albums (ArtistId);
CREATE INDEX IFK_TrackAlbumId ON tracks (AlbumId);
`

// Seed inserts a small slice of the chinook catalog.
const Seed = `
INSERT INTO artists (ArtistId, Name) VALUES
	(1, 'AC/DC'),
	(2, 'Accept'),
	(3, 'Aerosmith'),
	(9, 'BackBeat'),
	(118, 'The Rolling Stones'),
	(150, 'Motörhead');
INSERT INTO albums (AlbumId, Title, ArtistId) VALUES
	(1, 'For Those About To Rock We Salute You', 1),
	(2, 'Balls to the Wall', 2),
	(3, 'Restless and Wild', 2),
	(4, 'Let There Be Rock', 1),
	(5, 'Big Ones', 3),
	(12, 'BackBeat Soundtrack', 9),
	(185, 'No Security', 118);
INSERT INTO tracks (TrackId, Name, AlbumId, Composer, Milliseconds, Bytes, UnitPrice) VALUES
	(1, 'For Those About To Rock (We Salute You)', 1, 'Angus Young, Malcolm Young, Brian Johnson', 343719, 11170334, 0.99),
	(2, 'Balls to the Wall', 2, NULL, 342562, 5510424, 0.99),
	(3, 'Fast As a Shark', 3, 'F. Baltes, S. Kaufman, U. Dirkscneider & W. Hoffman', 230619, 3990994, 0.99),
	(6, 'Put The Finger On You', 1, 'Angus Young, Malcolm Young, Brian Johnson', 205662, 6713451, 0.99),
	(15, 'Go Down', 4, 'AC/DC', 331180, 10847611, 0.99),
	(23, 'Walk On Water', 5, 'Steven Tyler, Joe Perry, Jack Blades, Tommy Shaw', 295680, 9719579, 0.99),
	(149, 'Money', 12, 'Berry Gordy, Jr./Janie Bradford', 147591, 2365897, 0.99),
	(150, 'Long Tall Sally', 12, 'Enotris Johnson/Little Richard/Robert "Bumps" Blackwell', 106396, 1707084, 0.99),
	(2316, 'Intro', 185, NULL, 49737, 1618499, 0.99),
	(2317, 'You Got Me Rocking', 185, 'Jagger/Richards', 205766, 6734385, NULL);
`

// Open creates a seeded SQLite database in a temporary directory and returns a
// driver for it. The driver is closed when the test finishes.
func Open(t testing.TB) *sql.Driver {
	t.Helper()
	drv := OpenEmpty(t)
	Exec(t, drv, Schema)
	Exec(t, drv, Seed)
	return drv
}

// OpenEmpty is like Open but creates no tables.
func OpenEmpty(t testing.TB) *sql.Driver {
	t.Helper()
	return open(t, "file:"+filepath.Join(t.TempDir(), "chinook.db"))
}

// DSN creates a seeded database like Open and returns its data source name,
// for code that opens the store itself.
func DSN(t testing.TB) string {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "chinook.db")
	drv := open(t, dsn)
	Exec(t, drv, Schema)
	Exec(t, drv, Seed)
	return dsn
}

func open(t testing.TB, dsn string) *sql.Driver {
	t.Helper()
	drv, err := sql.Open(dialect.SQLite, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = drv.Close() })
	return drv
}

// Exec runs a statement directly against the fixture, e.g. to insert rows that
// break an invariant.
func Exec(t testing.TB, drv *sql.Driver, stmt string, args ...any) {
	t.Helper()
	_, err := drv.DB().ExecContext(context.Background(), stmt, args...)
	require.NoError(t, err)
}
