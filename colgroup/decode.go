package colgroup

import (
	"database/sql"
	"fmt"
	"log/slog"
	"reflect"
	"time"

	"github.com/k0kubun/colgroup/codec"
	"github.com/k0kubun/colgroup/filter"
	"github.com/k0kubun/colgroup/schema"
)

// LoadedGroup is one stored row, still in its compressed form: group-key
// scalars, the start_at/end_at sentinels, and one blob per Timestamp/
// Payload column. Decompress turns it back into records of type R.
type LoadedGroup[R any] struct {
	desc  *schema.Descriptor
	codec codec.Codec

	groupKeyValues map[string]int64
	startAt, endAt time.Time
	blobs          map[string][]byte

	// filter is nil for a LoadedGroup produced by Delete — decompress then
	// yields every stored record, per spec.md §4.6.
	filter *filter.Filter
}

// StartAt is the group's start_at sentinel: the minimum Timestamp value
// among its records. Zero if the Descriptor declares no Timestamp field.
func (lg *LoadedGroup[R]) StartAt() time.Time { return lg.startAt }

// EndAt is the group's end_at sentinel: the maximum Timestamp value among
// its records. Zero if the Descriptor declares no Timestamp field.
func (lg *LoadedGroup[R]) EndAt() time.Time { return lg.endAt }

// scanRow reads one result row whose columns are cols (storage order) into
// a LoadedGroup.
func (g *Group[R]) scanRow(rows *sql.Rows, cols []string) (*LoadedGroup[R], error) {
	lg := &LoadedGroup[R]{
		desc:           g.desc,
		codec:          g.codec,
		groupKeyValues: map[string]int64{},
		blobs:          map[string][]byte{},
	}

	dest := make([]any, len(cols))
	for i, col := range cols {
		switch col {
		case "start_at":
			dest[i] = &lg.startAt
		case "end_at":
			dest[i] = &lg.endAt
		default:
			if fld, ok := g.desc.ColumnByColumn(col); ok && fld.Role == schema.RoleGroupKey {
				var v int64
				dest[i] = &v
			} else {
				dest[i] = new([]byte)
			}
		}
	}

	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	for i, col := range cols {
		switch col {
		case "start_at", "end_at":
			continue
		default:
			if fld, ok := g.desc.ColumnByColumn(col); ok && fld.Role == schema.RoleGroupKey {
				lg.groupKeyValues[col] = *(dest[i].(*int64))
			} else {
				lg.blobs[col] = *(dest[i].(*[]byte))
			}
		}
	}

	return lg, nil
}

// Decompress inverts the compression pipeline (spec.md §4.4 read path
// step 3): every non-GroupKey field decodes its stored blob (an empty blob
// decodes to an empty sequence, per I1); the record count is the longest
// decoded sequence; a record missing at some index takes its field's
// default value (supporting I1's schema-evolution guarantee). If a Filter
// is attached, only records it matches are returned.
func (lg *LoadedGroup[R]) Decompress() ([]R, error) {
	var tsVals []int64
	if lg.desc.TimeField != nil {
		vals, err := codec.DecodeTimestamp(lg.blobs[lg.desc.TimeField.Column], lg.codec)
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp: %v", ErrCodec, err)
		}
		tsVals = vals
	}

	maxLen := len(tsVals)
	payloads := map[string]any{}
	for _, pc := range lg.desc.PayloadCols {
		seq, n, err := decodePayloadColumn(pc, lg.blobs[pc.Column], lg.codec)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrCodec, pc.GoName, err)
		}
		payloads[pc.Column] = seq
		if n > maxLen {
			maxLen = n
		}
	}

	var zero R
	recType := reflect.TypeOf(zero)
	var out []R
	for i := 0; i < maxLen; i++ {
		rv := reflect.New(recType).Elem()

		for _, f := range lg.desc.Fields {
			switch f.Role {
			case schema.RoleGroupKey:
				setGroupKeyField(rv.Field(f.Index), f.Kind, lg.groupKeyValues[f.Column])
			case schema.RoleTimestamp:
				if i < len(tsVals) {
					rv.Field(f.Index).Set(reflect.ValueOf(time.UnixMicro(tsVals[i]).UTC()))
				}
			default:
				setPayloadField(rv.Field(f.Index), f, payloads[f.Column], i)
			}
		}

		rec := rv.Interface().(R)
		if lg.filter == nil || lg.filter.Matches(rec) {
			out = append(out, rec)
		}
	}

	if tsVals != nil && maxLen != len(tsVals) {
		slog.Warn("colgroup: decompress column length mismatch", "table", lg.desc.Table, "maxLen", maxLen, "tsLen", len(tsVals))
	}

	return out, nil
}

func setGroupKeyField(dst reflect.Value, kind schema.Kind, v int64) {
	switch kind {
	case schema.KindInt32:
		dst.SetInt(v)
	case schema.KindInt64:
		dst.SetInt(v)
	}
}

// decodePayloadColumn decodes blob per f.Kind and returns the sequence
// (typed per-Kind, read back out in setPayloadField) plus its length.
func decodePayloadColumn(f schema.Field, blob []byte, c codec.Codec) (any, int, error) {
	switch f.Kind {
	case schema.KindInt32, schema.KindInt64:
		vals, err := codec.DecodeInt64(blob, c)
		if err != nil {
			return nil, 0, err
		}
		return vals, len(vals), nil
	case schema.KindFloat64:
		if f.FloatRound > 0 {
			vals, err := codec.DecodeInt64(blob, c)
			if err != nil {
				return nil, 0, err
			}
			return vals, len(vals), nil
		}
		vals, err := codec.DecodeFloat64Raw(blob, c)
		if err != nil {
			return nil, 0, err
		}
		return vals, len(vals), nil
	case schema.KindFloat32:
		if f.FloatRound > 0 {
			vals, err := codec.DecodeInt64(blob, c)
			if err != nil {
				return nil, 0, err
			}
			return vals, len(vals), nil
		}
		vals, err := codec.DecodeFloat32Raw(blob, c)
		if err != nil {
			return nil, 0, err
		}
		return vals, len(vals), nil
	case schema.KindBool:
		vals, err := codec.DecodeUint16(blob, c)
		if err != nil {
			return nil, 0, err
		}
		return codec.Uint16ToBools(vals), len(vals), nil
	default:
		return nil, 0, fmt.Errorf("unsupported payload kind %s", f.Kind)
	}
}

func setPayloadField(dst reflect.Value, f schema.Field, seq any, i int) {
	switch vals := seq.(type) {
	case []int64:
		if f.FloatRound > 0 {
			scale := pow10(f.FloatRound)
			var v int64
			if i < len(vals) {
				v = vals[i]
			}
			x := float64(v) / scale
			if f.Kind == schema.KindFloat32 {
				dst.SetFloat(float64(float32(x)))
			} else {
				dst.SetFloat(x)
			}
			return
		}
		var v int64
		if i < len(vals) {
			v = vals[i]
		}
		dst.SetInt(v)
	case []float64:
		var v float64
		if i < len(vals) {
			v = vals[i]
		}
		dst.SetFloat(v)
	case []float32:
		var v float32
		if i < len(vals) {
			v = vals[i]
		}
		dst.SetFloat(float64(v))
	case []bool:
		var v bool
		if i < len(vals) {
			v = vals[i]
		}
		dst.SetBool(v)
	}
}
