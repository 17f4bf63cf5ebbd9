package fields

import (
	"reflect"
	"testing"
	"time"

	"github.com/k0kubun/colgroup/filter"
	"github.com/k0kubun/colgroup/schema"
	"github.com/stretchr/testify/require"
)

type callStat struct {
	DatabaseID  int64
	Calls       int64
	TotalTime   float64
	CollectedAt time.Time
}

func desc(t *testing.T) *schema.Descriptor {
	t.Helper()
	d, err := schema.Parse(reflect.TypeOf(callStat{}), schema.Options{
		GroupBy:        []string{"DatabaseID"},
		TimestampField: "CollectedAt",
	})
	require.NoError(t, err)
	return d
}

func TestAll_IncludesEveryPayloadColumn(t *testing.T) {
	d := desc(t)
	cols := All(d).Columns()
	require.Contains(t, cols, "calls")
	require.Contains(t, cols, "total_time")
}

func TestRequired_ExcludesPayload(t *testing.T) {
	d := desc(t)
	cols := Required(d).Columns()
	require.Equal(t, []string{"database_i_d", "start_at", "end_at", "collected_at"}, cols)
}

func TestNamed_IncludesOnlyRequestedPayload(t *testing.T) {
	d := desc(t)
	s, err := Named(d, "Calls")
	require.NoError(t, err)
	cols := s.Columns()
	require.Contains(t, cols, "calls")
	require.NotContains(t, cols, "total_time")
}

func TestNamed_RejectsUnknownName(t *testing.T) {
	d := desc(t)
	_, err := Named(d, "DoesNotExist")
	require.ErrorIs(t, err, ErrUnknownField)
}

func TestFromJSON_Null(t *testing.T) {
	d := desc(t)
	s, err := FromJSON(d, []byte(`null`))
	require.NoError(t, err)
	require.Equal(t, Required(d).Columns(), s.Columns())
}

func TestUnion_PullsInFilterColumns(t *testing.T) {
	d := desc(t)
	s := Required(d)
	f := filter.New(d).Set("total_time", 1.5)

	merged := s.Union(f)
	require.Contains(t, merged.Columns(), "total_time")
	require.NotContains(t, s.Columns(), "total_time")
}
