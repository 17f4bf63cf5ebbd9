package colgroup

import (
	"fmt"
	"math"
	"reflect"
	"time"

	"github.com/k0kubun/colgroup/codec"
	"github.com/k0kubun/colgroup/schema"
	"github.com/k0kubun/colgroup/util"
)

// encodeBucket builds one COPY row for a single GroupKey bucket,
// in g.plan.AllColumns order: GroupKey scalars, then (if Timestamp)
// start_at/end_at/timestamp-blob, then every payload blob — mirroring
// spec.md §4.4 step 3.
func (g *Group[R]) encodeBucket(rows []R) ([]any, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	row := make([]any, 0, len(g.plan.AllColumns))
	first := reflect.ValueOf(rows[0])

	for _, gk := range g.desc.GroupFields {
		row = append(row, first.Field(gk.Index).Interface())
	}

	if g.desc.TimeField != nil {
		times := extractField[time.Time](rows, g.desc.TimeField.Index)
		micros := util.TransformSlice(times, time.Time.UnixMicro)

		startAt, endAt := times[0], times[0]
		for _, t := range times {
			if t.Before(startAt) {
				startAt = t
			}
			if t.After(endAt) {
				endAt = t
			}
		}

		blob, err := codec.EncodeTimestamp(micros, g.codec)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp: %v", ErrCodec, err)
		}
		row = append(row, startAt, endAt, blob)
	}

	for _, pc := range g.desc.PayloadCols {
		blob, err := g.encodePayloadColumn(rows, pc)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrCodec, pc.GoName, err)
		}
		row = append(row, blob)
	}

	return row, nil
}

func (g *Group[R]) encodePayloadColumn(rows []R, f schema.Field) ([]byte, error) {
	switch f.Kind {
	case schema.KindInt32:
		vals := util.TransformSlice(extractField[int32](rows, f.Index), func(v int32) int64 { return int64(v) })
		return codec.EncodeInt64(vals, g.codec)
	case schema.KindInt64:
		vals := extractField[int64](rows, f.Index)
		return codec.EncodeInt64(vals, g.codec)
	case schema.KindFloat64:
		if f.FloatRound > 0 {
			vals := extractField[float64](rows, f.Index)
			scaled := util.TransformSlice(vals, roundScaleFunc(f.FloatRound))
			return codec.EncodeInt64(scaled, g.codec)
		}
		vals := extractField[float64](rows, f.Index)
		return codec.EncodeFloat64Raw(vals, g.codec)
	case schema.KindFloat32:
		if f.FloatRound > 0 {
			vals := util.TransformSlice(extractField[float32](rows, f.Index), func(v float32) float64 { return float64(v) })
			scaled := util.TransformSlice(vals, roundScaleFunc(f.FloatRound))
			return codec.EncodeInt64(scaled, g.codec)
		}
		vals := extractField[float32](rows, f.Index)
		return codec.EncodeFloat32Raw(vals, g.codec)
	case schema.KindBool:
		vals := extractField[bool](rows, f.Index)
		return codec.EncodeUint16(codec.BoolsToUint16(vals), g.codec)
	default:
		return nil, fmt.Errorf("unsupported payload kind %s", f.Kind)
	}
}

// pow10 computes 10^d as a float64 once per call; d is always small (a
// user-declared rounding precision), so repeated computation is cheap and
// avoids a package-level lookup table.
func pow10(d int) float64 {
	return math.Pow10(d)
}

// roundScaleFunc rounds x*10^d half-away-from-zero and returns it as an
// int64, per I3 — computed in float64 throughout to avoid the ULP loss a
// float32 intermediate would introduce.
func roundScaleFunc(d int) func(float64) int64 {
	scale := pow10(d)
	return func(x float64) int64 {
		return int64(math.Round(x * scale))
	}
}

// extractField reads rows[i].Field(index) as T for every row, via
// reflection — the only way to read an arbitrary declared field generically
// since Go has no macros to generate per-record accessors.
func extractField[T any, R any](rows []R, index int) []T {
	out := make([]T, len(rows))
	for i, r := range rows {
		v := reflect.ValueOf(r)
		out[i] = v.Field(index).Interface().(T)
	}
	return out
}
