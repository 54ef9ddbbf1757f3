// Package sql provides a read-only database/sql backed implementation of
// dialect.Driver for PostgreSQL, MySQL and SQLite.
//
// # Placeholders
//
// Statements are written once with '?' placeholders. Before execution they
// are rebound to the connection's dialect:
//
//	sql.Rebind(dialect.Postgres, "SELECT * FROM albums WHERE AlbumId = ?")
//	// SELECT * FROM albums WHERE AlbumId = $1
//
// # Querying
//
//	drv, err := sql.Open(dialect.SQLite, "file:chinook.db?mode=ro")
//	if err != nil {
//	    return err
//	}
//	rows := &sql.Rows{}
//	if err := drv.Query(ctx, "SELECT ArtistId, Name FROM artists", []any{}, rows); err != nil {
//	    return err
//	}
//	defer rows.Close()
//
// # Instrumentation
//
// StatsDriver counts queries, errors and slow statements and reports every
// statement to an optional observer. DebugDriver logs each statement before
// running it:
//
//	drv = sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithSlowQueryLog(logger),
//	    sql.WithQueryObserver(collector.Observe),
//	)
package sql
