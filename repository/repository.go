// Package repository reads chinook entities from the relational store.
//
// Every accessor issues exactly one parameterized query and maps the rows to
// fresh records. Nothing is cached. A lookup that matches no row is not an
// error: single-row accessors return nil, nil and multi-row accessors return
// an empty slice. Storage errors are returned as *chinook.QueryError.
package repository

import (
	"context"
	"log/slog"

	"github.com/syssam/chinook"
	"github.com/syssam/chinook/dialect"
	"github.com/syssam/chinook/dialect/sql"
)

// Repository is the entity accessor. It is safe for concurrent use; each call
// is independent of every other call.
type Repository struct {
	drv dialect.Driver
	log *slog.Logger
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used to report storage failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		r.log = l
	}
}

// New returns a Repository reading through drv.
func New(drv dialect.Driver, opts ...Option) *Repository {
	r := &Repository{drv: drv, log: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Driver returns the storage accessor.
func (r *Repository) Driver() dialect.Driver {
	return r.drv
}

// query runs a read statement and hands every row to scan.
//
// The caller's context gates the start of the read only: once issued, a
// statement runs to completion even if the caller goes away, and its result is
// simply discarded by the caller.
func (r *Repository) query(ctx context.Context, kind chinook.Kind, op, query string, args []any, scan func(sql.ColumnScanner) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			r.log.ErrorContext(ctx, "storage read failed",
				"entity", kind.Label(),
				"op", op,
				"class", sql.Classify(err),
				"error", err,
			)
			err = chinook.NewQueryError(kind, op, err)
		}
	}()
	rows := &sql.Rows{}
	if err := r.drv.Query(context.WithoutCancel(ctx), query, args, rows); err != nil {
		return err
	}
	defer func() {
		if cerr := rows.Close(); err == nil {
			err = cerr
		}
	}()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
