package filter

import (
	"fmt"
	"reflect"
	"time"

	"github.com/k0kubun/colgroup/schema"
)

// TimeRange is an inclusive closed range over the declared Timestamp field.
type TimeRange struct {
	Lo time.Time
	Hi time.Time
	// set is false until a range has actually been assigned, distinguishing
	// "no constraint" from a zero-value range.
	set bool
}

// Filter is C5: one optional value set per non-timestamp field, one
// optional inclusive range over the Timestamp field. An empty set means
// "no constraint" (spec.md §4.5); Validate, not the zero value, enforces
// which fields are required for a given Descriptor.
type Filter struct {
	desc      *schema.Descriptor
	sets      map[string][]any // column -> permitted values
	timeRange TimeRange
}

// New returns an empty Filter over desc. Every field starts unconstrained;
// callers narrow it with GroupKey/Set/TimeRange before Validate.
func New(desc *schema.Descriptor) *Filter {
	return &Filter{desc: desc, sets: map[string][]any{}}
}

// GroupKey restricts column (a GroupKey field) to one of values. column
// must name a real GroupKey column of the Filter's Descriptor.
func (f *Filter) GroupKey(column string, values ...any) *Filter {
	return f.Set(column, values...)
}

// Set restricts any non-timestamp column to one of values.
func (f *Filter) Set(column string, values ...any) *Filter {
	f.sets[column] = append([]any(nil), values...)
	return f
}

// TimeRange restricts the declared Timestamp field to the inclusive range
// [lo, hi].
func (f *Filter) TimeRange(lo, hi time.Time) *Filter {
	f.timeRange = TimeRange{Lo: lo, Hi: hi, set: true}
	return f
}

// Validate enforces spec.md §4.5's validation-before-load rule: every
// GroupKey filter must be non-empty, and if the Descriptor declares a
// Timestamp field its range must be set. It also truncates the range to
// microsecond precision (idempotent) so time-range pushdown always uses
// truncated bounds.
func (f *Filter) Validate() error {
	for _, gk := range f.desc.GroupFields {
		if len(f.sets[gk.Column]) == 0 {
			return fmt.Errorf("%w: field %s is required", ErrFilter, gk.GoName)
		}
	}
	if f.desc.TimeField != nil {
		if !f.timeRange.set {
			return fmt.Errorf("%w: field %s is required", ErrFilter, f.desc.TimeField.GoName)
		}
		f.RangeTruncate()
	}
	return nil
}

// Args returns the $n bind values in the exact order sqlplan.Plan.ParamOrder
// expects: one []any-wrapped slice per GroupKey, then the range's Lo (bound
// against end_at), then its Hi (bound against start_at), so a stored group
// matches when its [start_at, end_at] overlaps the range.
func (f *Filter) Args() []any {
	var args []any
	for _, gk := range f.desc.GroupFields {
		args = append(args, f.sets[gk.Column])
	}
	if f.desc.TimeField != nil {
		args = append(args, f.timeRange.Lo, f.timeRange.Hi)
	}
	return args
}

// RequiredColumns returns the payload columns this Filter constrains beyond
// GroupKeys/Timestamp — used by fields.Set to auto-include any column a
// non-empty optional Filter set references (spec.md §4.7).
func (f *Filter) RequiredColumns() []string {
	var cols []string
	for col, vals := range f.sets {
		if len(vals) == 0 {
			continue
		}
		if fld, ok := f.desc.ColumnByColumn(col); ok && fld.Role == schema.RoleGroupKey {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

// Matches is the post-decompression predicate (spec.md §4.4 read path step
// 3): rec must be a value of the record type the Descriptor was parsed
// from. Every constrained field's value must lie in its range/set;
// unconstrained fields always pass.
func (f *Filter) Matches(rec any) bool {
	v := reflect.ValueOf(rec)
	for v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	for _, fld := range f.desc.Fields {
		if fld.Role == schema.RoleTimestamp {
			if !f.timeRange.set {
				continue
			}
			t := v.Field(fld.Index).Interface().(time.Time)
			if t.Before(f.timeRange.Lo) || t.After(f.timeRange.Hi) {
				return false
			}
			continue
		}

		allowed, constrained := f.sets[fld.Column]
		if !constrained || len(allowed) == 0 {
			continue
		}
		val := v.Field(fld.Index).Interface()
		if !containsValue(allowed, val) {
			return false
		}
	}
	return true
}

// containsValue reports whether val (read straight off a record's
// declared field, so its dynamic type is the field's own Go type — int32,
// int64, float32, float64, or bool) is one of allowed. allowed entries
// come either from Filter.Set's caller-supplied values or from Decode's
// JSON parse, which always produces int64/float64, so a same-kind numeric
// conversion is required before the comparison: a bare any == any would
// never match an int32 field against an int64 filter value.
func containsValue(allowed []any, val any) bool {
	for _, a := range allowed {
		if numericEqual(a, val) {
			return true
		}
	}
	return false
}

func numericEqual(a, val any) bool {
	switch v := val.(type) {
	case int32:
		return toInt64(a) == int64(v)
	case int64:
		return toInt64(a) == v
	case float32:
		return toFloat64(a) == float64(v)
	case float64:
		return toFloat64(a) == v
	default:
		return a == val
	}
}

func toInt64(a any) int64 {
	switch v := a.(type) {
	case int32:
		return int64(v)
	case int64:
		return v
	case int:
		return int64(v)
	default:
		return 0
	}
}

func toFloat64(a any) float64 {
	switch v := a.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	default:
		return 0
	}
}

// RangeBounds returns the filter's timestamp range, failing if unset.
func (f *Filter) RangeBounds() (time.Time, time.Time, error) {
	if !f.timeRange.set {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: no timestamp range set", ErrFilter)
	}
	return f.timeRange.Lo, f.timeRange.Hi, nil
}

// RangeDuration returns Hi - Lo, failing if the range is unset.
func (f *Filter) RangeDuration() (time.Duration, error) {
	lo, hi, err := f.RangeBounds()
	if err != nil {
		return 0, err
	}
	return hi.Sub(lo), nil
}

// RangeShift replaces [lo, hi] with [lo+d, hi+d].
func (f *Filter) RangeShift(d time.Duration) error {
	lo, hi, err := f.RangeBounds()
	if err != nil {
		return err
	}
	f.timeRange = TimeRange{Lo: lo.Add(d), Hi: hi.Add(d), set: true}
	return nil
}

// RangeTruncate reduces the range's bounds to microsecond precision. A
// no-op on an already-truncated range.
func (f *Filter) RangeTruncate() {
	if !f.timeRange.set {
		return
	}
	f.timeRange.Lo = f.timeRange.Lo.Truncate(time.Microsecond)
	f.timeRange.Hi = f.timeRange.Hi.Truncate(time.Microsecond)
}
