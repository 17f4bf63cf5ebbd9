// Package fields implements the field selector (C7): narrowing which
// payload columns a load/delete call fetches.
package fields

import (
	"encoding/json"
	"fmt"

	"github.com/k0kubun/colgroup/filter"
	"github.com/k0kubun/colgroup/schema"
)

// ErrUnknownField is returned by Named/FromJSON for a column name that
// does not exist on the Descriptor. It wraps filter.ErrFilter.
var ErrUnknownField = fmt.Errorf("%w: fields: unknown field", filter.ErrFilter)

// Set narrows which payload columns are fetched. The zero Set carries no
// Descriptor and cannot produce a column list; build one with All(desc)
// (the "()" shape of spec.md §4.7), Required(desc) or Named(desc, ...).
type Set struct {
	desc  *schema.Descriptor
	all   bool
	named map[string]bool
}

// All selects every payload field, the "()" shape of spec.md §4.7.
func All(desc *schema.Descriptor) Set {
	return Set{desc: desc, all: true}
}

// Required selects only the columns every row carries regardless of
// selection: GroupKeys, start_at/end_at, and the Timestamp blob — the
// empty-sequence shape of spec.md §4.7.
func Required(desc *schema.Descriptor) Set {
	return Set{desc: desc, named: map[string]bool{}}
}

// Named selects the Required columns plus the named payload fields,
// rejecting any name that is not a real payload column.
func Named(desc *schema.Descriptor, names ...string) (Set, error) {
	s := Required(desc)
	for _, name := range names {
		fld, ok := desc.ColumnByName(name)
		if !ok {
			fld, ok = desc.ColumnByColumn(name)
		}
		if !ok || fld.Role != schema.RolePayload {
			return Set{}, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		s.named[fld.Column] = true
	}
	return s, nil
}

// FromJSON deserializes a Set from a field selector payload: null selects
// Required, a list of strings selects those names via Named.
func FromJSON(desc *schema.Descriptor, data []byte) (Set, error) {
	if string(data) == "null" {
		return Required(desc), nil
	}
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return Set{}, fmt.Errorf("%w: %v", filter.ErrDeserialize, err)
	}
	return Named(desc, names...)
}

// Union merges f's non-empty optional filter columns into s, per spec.md
// §4.7: a Filter implicitly requires any column it constrains so the
// post-decompression predicate can be evaluated against it.
func (s Set) Union(f *filter.Filter) Set {
	if s.all {
		return s
	}
	if s.named == nil {
		s.named = map[string]bool{}
	}
	out := Set{desc: s.desc, named: map[string]bool{}}
	for k := range s.named {
		out.named[k] = true
	}
	for _, col := range f.RequiredColumns() {
		out.named[col] = true
	}
	return out
}

// Columns produces the SQL column list: GroupKeys and the timestamp
// sentinel/blob columns are always included; payload columns depend on
// the selection.
func (s Set) Columns() []string {
	var cols []string
	for _, gk := range s.desc.GroupFields {
		cols = append(cols, gk.Column)
	}
	if s.desc.TimeField != nil {
		cols = append(cols, "start_at", "end_at", s.desc.TimeField.Column)
	}
	for _, pc := range s.desc.PayloadCols {
		if s.all || s.named[pc.Column] {
			cols = append(cols, pc.Column)
		}
	}
	return cols
}
