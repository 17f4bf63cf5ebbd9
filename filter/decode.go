package filter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/k0kubun/colgroup/schema"
)

// Decode parses data into a Filter against desc, per spec.md §4.5's
// permissive deserialization rules: unknown field names are rejected, a
// non-timestamp field accepts a single value, a sequence, null, or
// omission (all normalized to a value set), and the Timestamp field
// accepts null/""/[] (no range), a single string (a single-instant range),
// or a ["lo","hi"] pair.
func Decode(desc *schema.Descriptor, data []byte) (*Filter, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialize, err)
	}

	f := New(desc)
	for key, val := range raw {
		fld, ok := desc.ColumnByColumn(key)
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q", ErrDeserialize, key)
		}

		if fld.Role == schema.RoleTimestamp {
			lo, hi, isSet, err := decodeTimeRange(val)
			if err != nil {
				return nil, fmt.Errorf("%w: field %s: %v", ErrDeserialize, key, err)
			}
			if isSet {
				f.TimeRange(lo, hi)
			}
			continue
		}

		vals, err := decodeValueSet(val, fld.Kind)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrDeserialize, key, err)
		}
		f.Set(key, vals...)
	}
	return f, nil
}

func decodeValueSet(val json.RawMessage, kind schema.Kind) ([]any, error) {
	if string(val) == "null" {
		return nil, nil
	}

	var arr []json.RawMessage
	if err := json.Unmarshal(val, &arr); err == nil {
		out := make([]any, 0, len(arr))
		for _, elem := range arr {
			v, err := decodeScalar(elem, kind)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	}

	v, err := decodeScalar(val, kind)
	if err != nil {
		return nil, err
	}
	return []any{v}, nil
}

func decodeScalar(val json.RawMessage, kind schema.Kind) (any, error) {
	switch kind {
	case schema.KindInt32, schema.KindInt64:
		var n int64
		if err := json.Unmarshal(val, &n); err != nil {
			return nil, fmt.Errorf("expected integer, got %s", val)
		}
		return n, nil
	case schema.KindFloat32, schema.KindFloat64:
		var n float64
		if err := json.Unmarshal(val, &n); err != nil {
			return nil, fmt.Errorf("expected number, got %s", val)
		}
		return n, nil
	case schema.KindBool:
		var b bool
		if err := json.Unmarshal(val, &b); err != nil {
			return nil, fmt.Errorf("expected bool, got %s", val)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported set field kind %s", kind)
	}
}

// decodeTimeRange parses a single Timestamp field value. isSet is false for
// the "no constraint" shapes (null, "", []).
func decodeTimeRange(val json.RawMessage) (lo, hi time.Time, isSet bool, err error) {
	s := string(val)
	if s == "null" {
		return time.Time{}, time.Time{}, false, nil
	}

	var single string
	if err := json.Unmarshal(val, &single); err == nil {
		if single == "" {
			return time.Time{}, time.Time{}, false, nil
		}
		t, err := time.Parse(time.RFC3339Nano, single)
		if err != nil {
			return time.Time{}, time.Time{}, false, err
		}
		return t, t, true, nil
	}

	var arr []string
	if err := json.Unmarshal(val, &arr); err == nil {
		switch len(arr) {
		case 0:
			return time.Time{}, time.Time{}, false, nil
		case 1:
			t, err := time.Parse(time.RFC3339Nano, arr[0])
			if err != nil {
				return time.Time{}, time.Time{}, false, err
			}
			return t, t, true, nil
		case 2:
			loT, err := time.Parse(time.RFC3339Nano, arr[0])
			if err != nil {
				return time.Time{}, time.Time{}, false, err
			}
			hiT, err := time.Parse(time.RFC3339Nano, arr[1])
			if err != nil {
				return time.Time{}, time.Time{}, false, err
			}
			return loT, hiT, true, nil
		default:
			return time.Time{}, time.Time{}, false, fmt.Errorf("time range array must have 1 or 2 elements, got %d", len(arr))
		}
	}

	return time.Time{}, time.Time{}, false, fmt.Errorf("unrecognized time range shape: %s", val)
}
