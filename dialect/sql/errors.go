package sql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// Error classes reported by Classify.
const (
	ClassCanceled   = "canceled"
	ClassConnection = "connection"
	ClassBusy       = "busy"
	ClassSchema     = "schema"
	ClassQuery      = "query"
)

// PostgreSQL SQLSTATE codes and classes.
const (
	pgConnectionClass = "08"
	pgLockNotAvail    = "55P03"
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// MySQL error numbers.
const (
	mysqlLockWaitTimeout = 1205
	mysqlNoSuchTable     = 1146
	mysqlUnknownColumn   = 1054
)

// SQLite primary result codes.
const (
	sqliteBusy   = 5
	sqliteLocked = 6
)

// sqliteCoder is implemented by modernc.org/sqlite errors.
type sqliteCoder interface {
	Code() int
}

// Classify buckets a storage error for logs and metrics. It returns "" for nil.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ClassCanceled
	case IsConnectionError(err):
		return ClassConnection
	case IsBusyError(err):
		return ClassBusy
	case IsSchemaError(err):
		return ClassSchema
	default:
		return ClassQuery
	}
}

// IsConnectionError reports if the error resulted from the store being unreachable.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && strings.HasPrefix(string(pqErr.Code), pgConnectionClass) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Fallback to string matching for drivers that don't expose typed errors.
	return containsAny(err.Error(),
		"connection refused",
		"unable to open database file", // SQLite
		"bad connection",
	)
}

// IsBusyError reports if the error resulted from a lock held by another session.
func IsBusyError(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgLockNotAvail {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlLockWaitTimeout {
		return true
	}
	if e, ok := asError[sqliteCoder](err); ok {
		if c := e.Code() & 0xff; c == sqliteBusy || c == sqliteLocked {
			return true
		}
	}
	return containsAny(err.Error(),
		"database is locked", // SQLite
		"database table is locked",
	)
}

// IsSchemaError reports if the error resulted from a missing table or column.
func IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if c := string(pqErr.Code); c == pgUndefinedTable || c == pgUndefinedColumn {
			return true
		}
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && (myErr.Number == mysqlNoSuchTable || myErr.Number == mysqlUnknownColumn) {
		return true
	}
	return containsAny(err.Error(),
		"no such table",  // SQLite
		"no such column", // SQLite
	)
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
