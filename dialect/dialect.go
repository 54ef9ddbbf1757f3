package dialect

import (
	"context"
	"fmt"
)

// Dialect names.
const (
	MySQL    = "mysql"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// DriverName returns the database/sql driver name registered for the dialect.
func DriverName(dialect string) (string, error) {
	switch dialect {
	case SQLite:
		return "sqlite", nil
	case Postgres:
		return "postgres", nil
	case MySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("dialect: unsupported dialect %q", dialect)
	}
}

// Querier is the read path of a storage accessor.
type Querier interface {
	// Query runs a parameterized read statement. args must be []any and v a
	// pointer to the driver's rows type.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is a read-only storage accessor shared by all request resolutions.
// Implementations must be safe for concurrent use.
type Driver interface {
	Querier
	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
	// Close releases the underlying connection pool.
	Close() error
	// Dialect returns the dialect name.
	Dialect() string
}
