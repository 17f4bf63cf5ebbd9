// Package postgres is the lib/pq-backed adapter.Database implementation:
// the Postgres dialect this system targets (bytea columns, timestamptz,
// ANY($n) array binding, COPY FROM STDIN ingestion).
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/k0kubun/colgroup/adapter"
	"github.com/k0kubun/colgroup/util"
	"github.com/lib/pq"
)

type database struct {
	config adapter.Config
	db     *sql.DB
}

var _ adapter.Database = (*database)(nil)

// NewDatabase opens a connection pool per config.
func NewDatabase(config adapter.Config) (adapter.Database, error) {
	util.InitSlog()
	db, err := sql.Open("postgres", buildDSN(config))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", adapter.ErrDatabase, err)
	}
	return &database{db: db, config: config}, nil
}

func (d *database) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", adapter.ErrDatabase, err)
	}
	return rows, nil
}

func (d *database) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := d.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", adapter.ErrDatabase, err)
	}
	return res, nil
}

// CopyIn opens a COPY FROM STDIN stream via pq.CopyIn, the driver-level
// protocol lib/pq exposes through the standard database/sql Stmt API. Rows
// travel in PostgreSQL's text COPY format; the binary COPY format is not
// used.
func (d *database) CopyIn(ctx context.Context, table string, columns []string) (adapter.Copier, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", adapter.ErrDatabase, err)
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn(table, columns...))
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("%w: %v", adapter.ErrDatabase, err)
	}

	return &copier{tx: tx, stmt: stmt}, nil
}

func (d *database) DB() *sql.DB {
	return d.db
}

func (d *database) Close() error {
	return d.db.Close()
}

type copier struct {
	tx   *sql.Tx
	stmt *sql.Stmt
}

func (c *copier) Write(ctx context.Context, values ...any) error {
	if _, err := c.stmt.ExecContext(ctx, values...); err != nil {
		c.tx.Rollback()
		return fmt.Errorf("%w: copy row: %v", adapter.ErrDatabase, err)
	}
	return nil
}

// Close flushes the COPY buffer (an Exec with no arguments, per lib/pq's
// protocol), closes the statement, and commits the transaction.
func (c *copier) Close(ctx context.Context) error {
	if _, err := c.stmt.ExecContext(ctx); err != nil {
		c.tx.Rollback()
		return fmt.Errorf("%w: copy flush: %v", adapter.ErrDatabase, err)
	}
	if err := c.stmt.Close(); err != nil {
		c.tx.Rollback()
		return fmt.Errorf("%w: copy stmt close: %v", adapter.ErrDatabase, err)
	}
	if err := c.tx.Commit(); err != nil {
		return fmt.Errorf("%w: copy commit: %v", adapter.ErrDatabase, err)
	}
	return nil
}

// Abort discards the stream without flushing: closes the prepared
// statement and rolls back the transaction. The caller uses this when a
// row fails to encode before ever reaching Write, so there is nothing to
// flush and no reason to commit whatever rows were already written.
func (c *copier) Abort(ctx context.Context) error {
	c.stmt.Close()
	if err := c.tx.Rollback(); err != nil {
		return fmt.Errorf("%w: copy abort: %v", adapter.ErrDatabase, err)
	}
	return nil
}

func buildDSN(config adapter.Config) string {
	user := config.User
	password := config.Password
	database := config.DbName
	host := ""
	if config.Socket == "" {
		host = fmt.Sprintf("%s:%d", config.Host, config.Port)
	} else {
		host = config.Socket
	}

	options := ""
	if sslmode, ok := os.LookupEnv("PGSSLMODE"); ok {
		options = fmt.Sprintf("?sslmode=%s", sslmode)
	}

	return fmt.Sprintf("postgres://%s:%s@%s/%s%s", user, password, host, database, options)
}
