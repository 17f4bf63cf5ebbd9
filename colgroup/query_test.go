package colgroup

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/k0kubun/colgroup/adapter"
	"github.com/k0kubun/colgroup/codec"
	"github.com/k0kubun/colgroup/fields"
	"github.com/k0kubun/colgroup/filter"
	"github.com/stretchr/testify/require"
)

// The fakes below stand in for a real Postgres connection so Group.Load and
// Group.Delete can be exercised against real *sql.Rows: neither type can be
// constructed directly outside the database/sql/driver machinery, so this
// registers a minimal driver.Driver that serves canned rows for a query,
// the same shape of fake a hand-rolled driver test for database/sql
// typically takes.

type rowScript struct {
	cols []string
	rows [][]driver.Value
}

var (
	scriptsMu sync.Mutex
	scripts   = map[string]*rowScript{}
)

func registerScript(t *testing.T, script *rowScript) string {
	t.Helper()
	name := t.Name()
	scriptsMu.Lock()
	scripts[name] = script
	scriptsMu.Unlock()
	t.Cleanup(func() {
		scriptsMu.Lock()
		delete(scripts, name)
		scriptsMu.Unlock()
	})
	return name
}

type fakeDriver struct{}

func (fakeDriver) Open(name string) (driver.Conn, error) {
	scriptsMu.Lock()
	script := scripts[name]
	scriptsMu.Unlock()
	return &fakeConn{script: script}, nil
}

var registerFakeDriverOnce sync.Once

func registerFakeDriver() {
	registerFakeDriverOnce.Do(func() {
		sql.Register("colgroup-fake", fakeDriver{})
	})
}

type fakeConn struct {
	script *rowScript
}

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) { return nil, driver.ErrSkip }
func (c *fakeConn) Close() error                              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error)                 { return nil, driver.ErrSkip }

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return &fakeRows{script: c.script}, nil
}

type fakeRows struct {
	script *rowScript
	idx    int
}

func (r *fakeRows) Columns() []string { return r.script.cols }
func (r *fakeRows) Close() error      { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.idx >= len(r.script.rows) {
		return io.EOF
	}
	copy(dest, r.script.rows[r.idx])
	r.idx++
	return nil
}

// queryOnlyDB adapts a *sql.DB opened against the fake driver to
// adapter.Database; Store's CopyIn/ExecContext path is untested here.
type queryOnlyDB struct {
	db *sql.DB
}

func (q *queryOnlyDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, query, args...)
}
func (q *queryOnlyDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	panic("not used by these tests")
}
func (q *queryOnlyDB) CopyIn(ctx context.Context, table string, columns []string) (adapter.Copier, error) {
	panic("not used by these tests")
}
func (q *queryOnlyDB) DB() *sql.DB  { return q.db }
func (q *queryOnlyDB) Close() error { return q.db.Close() }

var _ adapter.Database = (*queryOnlyDB)(nil)

func openFakeDB(t *testing.T, script *rowScript) adapter.Database {
	t.Helper()
	registerFakeDriver()
	name := registerScript(t, script)
	db, err := sql.Open("colgroup-fake", name)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &queryOnlyDB{db: db}
}

type callStatTS struct {
	DatabaseID  int64
	Calls       int64
	CollectedAt time.Time
}

func TestLoad_ScansRowsAndAppliesPostFilter(t *testing.T) {
	startAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	endAt := startAt.Add(time.Hour)

	callsBlob, err := codec.EncodeInt64([]int64{1, 2, 3}, codec.NewNoopCodec())
	require.NoError(t, err)
	tsBlob, err := codec.EncodeTimestamp([]int64{
		startAt.UnixMicro(), startAt.Add(30 * time.Minute).UnixMicro(), endAt.UnixMicro(),
	}, codec.NewNoopCodec())
	require.NoError(t, err)

	script := &rowScript{
		cols: []string{"database_i_d", "start_at", "end_at", "collected_at", "calls"},
		rows: [][]driver.Value{
			{int64(5), startAt, endAt, tsBlob, callsBlob},
		},
	}
	db := openFakeDB(t, script)

	g, err := Open[callStatTS](db, codec.NewNoopCodec(), Options{
		GroupBy:        []string{"DatabaseID"},
		TimestampField: "CollectedAt",
	})
	require.NoError(t, err)

	f := filter.New(g.desc).GroupKey("database_i_d", int64(5)).TimeRange(startAt, endAt).Set("calls", int64(2))
	groups, err := g.Load(context.Background(), f, fields.All(g.desc))
	require.NoError(t, err)
	require.Len(t, groups, 1)

	recs, err := groups[0].Decompress()
	require.NoError(t, err)
	require.Len(t, recs, 1, "the post-decompression filter keeps only the Calls==2 record")
	require.Equal(t, int64(2), recs[0].Calls)
}

func TestDelete_IgnoresPostFilterButHonorsFields(t *testing.T) {
	callsBlob, err := codec.EncodeInt64([]int64{1, 2}, codec.NewNoopCodec())
	require.NoError(t, err)

	script := &rowScript{
		cols: []string{"database_i_d", "calls"},
		rows: [][]driver.Value{
			{int64(5), callsBlob},
		},
	}
	db := openFakeDB(t, script)

	g, err := Open[callStat](db, codec.NewNoopCodec(), Options{GroupBy: []string{"DatabaseID"}})
	require.NoError(t, err)

	f := filter.New(g.desc).GroupKey("database_i_d", int64(5)).Set("calls", int64(99))
	sel, err := fields.Named(g.desc, "Calls")
	require.NoError(t, err)

	groups, err := g.Delete(context.Background(), f, sel)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	require.Nil(t, groups[0].filter, "Delete never attaches a post-decompression filter")

	recs, err := groups[0].Decompress()
	require.NoError(t, err)
	require.Len(t, recs, 2, "Delete ignores the Calls==99 constraint and returns every row")
}

func TestLoad_RejectsMissingRequiredFilter(t *testing.T) {
	db := openFakeDB(t, &rowScript{})
	g, err := Open[callStat](db, codec.NewNoopCodec(), Options{GroupBy: []string{"DatabaseID"}})
	require.NoError(t, err)

	_, err = g.Load(context.Background(), filter.New(g.desc), fields.All(g.desc))
	require.ErrorIs(t, err, ErrFilter)
}
