package filter

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
	Toplevel    bool
	CollectedAt time.Time
}

func descWithGroupAndTime(t *testing.T) *schema.Descriptor {
	t.Helper()
	d, err := schema.Parse(reflect.TypeOf(callStat{}), schema.Options{
		GroupBy:        []string{"DatabaseID"},
		TimestampField: "CollectedAt",
	})
	require.NoError(t, err)
	return d
}

func TestValidate_RejectsMissingGroupKey(t *testing.T) {
	d := descWithGroupAndTime(t)
	f := New(d).TimeRange(time.Unix(0, 0), time.Unix(100, 0))
	require.ErrorIs(t, f.Validate(), ErrFilter)
}

func TestValidate_RejectsMissingTimeRange(t *testing.T) {
	d := descWithGroupAndTime(t)
	f := New(d).GroupKey("database_i_d", int64(1))
	require.ErrorIs(t, f.Validate(), ErrFilter)
}

func TestValidate_OK(t *testing.T) {
	d := descWithGroupAndTime(t)
	lo, hi := time.Unix(0, 500), time.Unix(100, 0)
	f := New(d).GroupKey("database_i_d", int64(1)).TimeRange(lo, hi)
	require.NoError(t, f.Validate())
}

func TestArgs_OrderMatchesParamOrder(t *testing.T) {
	d := descWithGroupAndTime(t)
	lo, hi := time.Unix(0, 0), time.Unix(100, 0)
	f := New(d).GroupKey("database_i_d", int64(1), int64(2)).TimeRange(lo, hi)
	require.NoError(t, f.Validate())

	args := f.Args()
	require.Len(t, args, 3)
	require.Equal(t, []any{int64(1), int64(2)}, args[0])
	require.Equal(t, lo, args[1])
	require.Equal(t, hi, args[2])
}

func TestMatches(t *testing.T) {
	d := descWithGroupAndTime(t)
	f := New(d).Set("toplevel", true)

	rec := callStat{DatabaseID: 1, Toplevel: true}
	require.True(t, f.Matches(rec))

	rec.Toplevel = false
	require.False(t, f.Matches(rec))
}

func TestMatches_TimeRange(t *testing.T) {
	d := descWithGroupAndTime(t)
	lo := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	f := New(d).TimeRange(lo, hi)

	inside := callStat{CollectedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	require.True(t, f.Matches(inside))

	outside := callStat{CollectedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)}
	require.False(t, f.Matches(outside))
}

func TestRangeDuration(t *testing.T) {
	d := descWithGroupAndTime(t)
	lo := time.Unix(0, 0)
	hi := lo.Add(time.Hour)
	f := New(d).TimeRange(lo, hi)

	dur, err := f.RangeDuration()
	require.NoError(t, err)
	require.Equal(t, time.Hour, dur)
}

func TestRangeDuration_FailsWithoutRange(t *testing.T) {
	d := descWithGroupAndTime(t)
	f := New(d)
	_, err := f.RangeDuration()
	require.ErrorIs(t, err, ErrFilter)
}

func TestRangeShift(t *testing.T) {
	d := descWithGroupAndTime(t)
	lo := time.Unix(0, 0)
	hi := lo.Add(time.Hour)
	f := New(d).TimeRange(lo, hi)
	require.NoError(t, f.RangeShift(time.Hour))

	gotLo, gotHi, err := f.RangeBounds()
	require.NoError(t, err)
	require.Equal(t, lo.Add(time.Hour), gotLo)
	require.Equal(t, hi.Add(time.Hour), gotHi)
}

func TestDecode_RejectsUnknownField(t *testing.T) {
	d := descWithGroupAndTime(t)
	_, err := Decode(d, []byte(`{"nonexistent": 1}`))
	require.ErrorIs(t, err, ErrDeserialize)
}

func TestDecode_SingleValueAndSequence(t *testing.T) {
	d := descWithGroupAndTime(t)
	f, err := Decode(d, []byte(`{"database_i_d": 1, "calls": [1, 2, 3]}`))
	require.NoError(t, err)
	require.Equal(t, []any{int64(1)}, f.sets["database_i_d"])
	require.Equal(t, []any{int64(1), int64(2), int64(3)}, f.sets["calls"])
}

func TestDecode_TimeRangeShapes(t *testing.T) {
	d := descWithGroupAndTime(t)

	f, err := Decode(d, []byte(`{"collected_at": null}`))
	require.NoError(t, err)
	require.False(t, f.timeRange.set)

	f, err = Decode(d, []byte(`{"collected_at": "2024-01-01T00:00:00Z"}`))
	require.NoError(t, err)
	require.True(t, f.timeRange.set)
	require.Equal(t, f.timeRange.Lo, f.timeRange.Hi)

	f, err = Decode(d, []byte(`{"collected_at": ["2024-01-01T00:00:00Z", "2024-01-02T00:00:00Z"]}`))
	require.NoError(t, err)
	require.True(t, f.timeRange.set)
	require.True(t, f.timeRange.Hi.After(f.timeRange.Lo))
}
