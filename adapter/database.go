// Package adapter is the external database handle (spec.md §5's "shared
// resource... passed in by reference"): the opaque collaborator colgroup
// issues queries and COPY streams through.
// Nothing in this package knows about Descriptors, Filters, or codecs.
package adapter

import (
	"context"
	"database/sql"
	"errors"
)

// ErrDatabase marks a failure the underlying driver/transport reported:
// a connection error, a constraint violation, a COPY stream abort.
var ErrDatabase = errors.New("adapter: database error")

// Config names the connection the caller wants opened. Socket, when set,
// takes precedence over Host/Port (a Unix socket connection).
type Config struct {
	DbName   string
	User     string
	Password string
	Host     string
	Port     int
	Socket   string
}

// Copier is one open COPY FROM STDIN stream. Write appends one row; Close
// flushes and finishes the stream. Any Write error aborts the whole stream
// internally, per spec.md §5's cancellation model. Abort discards the
// stream outright — the caller's escape hatch for a failure that happens
// between Writes (e.g. encoding the next row) rather than during one.
type Copier interface {
	Write(ctx context.Context, values ...any) error
	Close(ctx context.Context) error
	Abort(ctx context.Context) error
}

// Database is the abstraction colgroup issues all I/O through. colgroup
// never prepares statements itself, and the postgres implementation passes
// each query straight to database/sql without a prepared-statement cache.
type Database interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	CopyIn(ctx context.Context, table string, columns []string) (Copier, error)
	DB() *sql.DB
	Close() error
}
