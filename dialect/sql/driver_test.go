package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/syssam/chinook/dialect"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOpenDB tests the OpenDB function with different dialects.
func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
	}{
		{"Postgres", dialect.Postgres},
		{"MySQL", dialect.MySQL},
		{"SQLite", dialect.SQLite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.NotNil(t, drv)
			assert.Equal(t, tt.dialect, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

func TestOpenUnknownDialect(t *testing.T) {
	_, err := Open("oracle", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dialect")
}

// TestDriverQuery tests query operations.
func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	t.Run("simple_query", func(t *testing.T) {
		mock.ExpectQuery("SELECT ArtistId, Name FROM artists").
			WillReturnRows(sqlmock.NewRows([]string{"ArtistId", "Name"}).
				AddRow(1, "AC/DC").
				AddRow(2, "Accept"))

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT ArtistId, Name FROM artists", []any{}, rows)
		require.NoError(t, err)
		var names []string
		for rows.Next() {
			var (
				id   int
				name string
			)
			require.NoError(t, rows.Scan(&id, &name))
			names = append(names, name)
		}
		require.NoError(t, rows.Err())
		require.NoError(t, rows.Close())
		assert.Equal(t, []string{"AC/DC", "Accept"}, names)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query_with_args_rebound", func(t *testing.T) {
		mock.ExpectQuery("SELECT Title FROM albums WHERE AlbumId = $1").
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"Title"}).AddRow("For Those About To Rock We Salute You"))

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT Title FROM albums WHERE AlbumId = ?", []any{1}, rows)
		require.NoError(t, err)
		require.NoError(t, rows.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query_error", func(t *testing.T) {
		expectedErr := errors.New("database error")
		mock.ExpectQuery("SELECT").WillReturnError(expectedErr)

		rows := &Rows{}
		err := drv.Query(context.Background(), "SELECT", []any{}, rows)
		require.Error(t, err)
		assert.ErrorIs(t, err, expectedErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalid_destination", func(t *testing.T) {
		var rows []int
		err := drv.Query(context.Background(), "SELECT 1", []any{}, &rows)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expect *sql.Rows")
	})

	t.Run("invalid_args", func(t *testing.T) {
		err := drv.Query(context.Background(), "SELECT 1", 1, &Rows{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expect []any for args")
	})
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
		query   string
		want    string
	}{
		{"sqlite_untouched", dialect.SQLite, "SELECT * FROM albums WHERE AlbumId = ?", "SELECT * FROM albums WHERE AlbumId = ?"},
		{"mysql_untouched", dialect.MySQL, "SELECT * FROM albums WHERE AlbumId IN (?, ?)", "SELECT * FROM albums WHERE AlbumId IN (?, ?)"},
		{"postgres_single", dialect.Postgres, "SELECT * FROM albums WHERE AlbumId = ?", "SELECT * FROM albums WHERE AlbumId = $1"},
		{"postgres_many", dialect.Postgres, "WHERE a IN (?, ?, ?)", "WHERE a IN ($1, $2, $3)"},
		{"postgres_quoted", dialect.Postgres, `SELECT '?' AS q, "?x" FROM t WHERE id = ?`, `SELECT '?' AS q, "?x" FROM t WHERE id = $1`},
		{"postgres_none", dialect.Postgres, "SELECT 1", "SELECT 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rebind(tt.dialect, tt.query))
		})
	}
}

func TestDriverPing(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)

	mock.ExpectPing()
	require.NoError(t, drv.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("unreachable"))
	err = drv.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping")
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestContextCancellation tests that context cancellation is respected.
func TestContextCancellation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	mock.ExpectQuery("SELECT").WillReturnError(context.Canceled)
	rows := &Rows{}
	err = drv.Query(ctx, "SELECT 1", []any{}, rows)
	assert.Error(t, err)
}

// TestNullValues tests handling of NULL values.
func TestNullValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"Name", "Composer"}).
			AddRow("Balls to the Wall", nil).
			AddRow("Fast As a Shark", "F. Baltes"))

	rows := &Rows{}
	err = drv.Query(context.Background(), "SELECT Name, Composer FROM tracks", []any{}, rows)
	require.NoError(t, err)
	var composers []NullString
	for rows.Next() {
		var (
			name     string
			composer NullString
		)
		require.NoError(t, rows.Scan(&name, &composer))
		composers = append(composers, composer)
	}
	require.NoError(t, rows.Close())
	require.Len(t, composers, 2)
	assert.False(t, composers[0].Valid)
	assert.Equal(t, "F. Baltes", composers[1].String)
	require.NoError(t, mock.ExpectationsWereMet())
}

// BenchmarkDriver benchmarks driver operations.
func BenchmarkDriver(b *testing.B) {
	db, mock, err := sqlmock.New()
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()

	drv := OpenDB(dialect.Postgres, db)

	b.Run("Query_Simple", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
			rows := &Rows{}
			_ = drv.Query(context.Background(), "SELECT 1", []any{}, rows)
			rows.Close()
		}
	})

	b.Run("Rebind", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = Rebind(dialect.Postgres, "SELECT * FROM tracks WHERE AlbumId IN (?, ?, ?, ?)")
		}
	})
}
