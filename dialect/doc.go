// Package dialect defines the storage accessor contract used to read the
// chinook catalog from PostgreSQL, MySQL or SQLite.
//
// # Dialect Constants
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// # Driver Interface
//
// The accessor is read-only. It exposes parameterized queries and nothing
// that can mutate state:
//
//	type Driver interface {
//	    Query(ctx context.Context, query string, args, v any) error
//	    Ping(ctx context.Context) error
//	    Close() error
//	    Dialect() string
//	}
//
// Queries are written with '?' placeholders; the dialect/sql implementation
// rebinds them to '$n' for PostgreSQL. Arguments are always passed as
// parameters, never concatenated into the statement.
//
// # Usage
//
//	drv, err := sql.Open(dialect.SQLite, "file:chinook.db?mode=ro")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
//	repo := repository.New(drv)
//
// # Sub-packages
//
//   - dialect/sql: database/sql backed driver, statistics and debug wrappers
//   - dialect/sql/schema: inspection of the store's tables and columns
package dialect
