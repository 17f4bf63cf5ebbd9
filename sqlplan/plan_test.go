package sqlplan

import (
	"reflect"
	"testing"
	"time"

	"github.com/k0kubun/colgroup/schema"
	"github.com/stretchr/testify/require"
)

type callStat struct {
	DatabaseID  int64
	Calls       int64
	TotalTime   float64
	CollectedAt time.Time
}

func buildPlan(t *testing.T) *Plan {
	t.Helper()
	d, err := schema.Parse(reflect.TypeOf(callStat{}), schema.Options{
		GroupBy:        []string{"DatabaseID"},
		TimestampField: "CollectedAt",
	})
	require.NoError(t, err)
	return Build(d)
}

func TestBuild_WhereSQLAndParamOrder(t *testing.T) {
	p := buildPlan(t)
	require.Equal(t, "database_i_d = ANY($1) AND end_at >= $2 AND start_at <= $3", p.WhereSQL)
	require.Equal(t, []string{"database_i_d", "__ts_end__", "__ts_start__"}, p.ParamOrder)
}

func TestBuild_AllColumnsOrder(t *testing.T) {
	p := buildPlan(t)
	require.Equal(t, []string{"database_i_d", "start_at", "end_at", "collected_at", "calls", "total_time"}, p.AllColumns)
}

func TestSelectSQL(t *testing.T) {
	p := buildPlan(t)
	sql := p.SelectSQL([]string{"database_i_d", "calls"})
	require.Equal(t, "SELECT database_i_d, calls FROM call_stats WHERE database_i_d = ANY($1) AND end_at >= $2 AND start_at <= $3", sql)
}

func TestDeleteSQL(t *testing.T) {
	p := buildPlan(t)
	sql := p.DeleteSQL([]string{"database_i_d", "calls"})
	require.Contains(t, sql, "RETURNING database_i_d, calls")
	require.Contains(t, sql, "DELETE FROM call_stats")
}

func TestDeleteSQL_AllColumns(t *testing.T) {
	p := buildPlan(t)
	sql := p.DeleteSQL(p.AllColumns)
	require.Contains(t, sql, "RETURNING database_i_d, start_at, end_at, collected_at, calls, total_time")
}

func TestCopySQL(t *testing.T) {
	p := buildPlan(t)
	sql := p.CopySQL([]string{"database_i_d", "calls"})
	require.Equal(t, "COPY call_stats (database_i_d, calls) FROM STDIN BINARY", sql)
}

func TestCreateTableSQL_IncludesEveryColumn(t *testing.T) {
	p := buildPlan(t)
	ddl := p.CreateTableSQL()
	require.Contains(t, ddl, "CREATE TABLE call_stats")
	require.Contains(t, ddl, "database_i_d INT8 NOT NULL")
	require.Contains(t, ddl, "start_at timestamptz NOT NULL")
	require.Contains(t, ddl, "CREATE INDEX ON call_stats(database_i_d, end_at, start_at)")
}

func TestBuild_NoGroupKeyOrTimestamp(t *testing.T) {
	d, err := schema.Parse(reflect.TypeOf(callStat{}), schema.Options{})
	require.NoError(t, err)
	p := Build(d)
	require.Empty(t, p.WhereSQL)
	require.Empty(t, p.ParamOrder)
}
