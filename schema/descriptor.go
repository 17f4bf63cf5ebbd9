// Package schema parses a Go record type plus an options value into a
// Descriptor: the normalized intermediate representation every other
// package (sqlplan, codec, filter, fields, colgroup) builds on.
//
// Unlike the teacher this package was forked from, nothing here diffs or
// parses SQL text — the Descriptor is reflected once from a Go struct and
// cached per (type, Options).
package schema

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// Kind is the semantic type of a declared field.
type Kind int

const (
	KindInt32 Kind = iota
	KindInt64
	KindFloat32
	KindFloat64
	KindBool
	KindTimestamp
)

func (k Kind) String() string {
	switch k {
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindBool:
		return "bool"
	case KindTimestamp:
		return "timestamp"
	default:
		return "unknown"
	}
}

// Role is the slot a field occupies in the generated group row.
type Role int

const (
	RolePayload Role = iota
	RoleGroupKey
	RoleTimestamp
)

// Field describes one field of the declared record.
type Field struct {
	GoName     string
	Column     string
	Index      int
	Kind       Kind
	Role       Role
	FloatRound int // >0 only for Role==RolePayload && Kind is a float kind
}

// SQLType returns the persisted column type for this field, per spec.md §4.2.
func (f Field) SQLType() string {
	if f.Role == RoleGroupKey {
		switch f.Kind {
		case KindInt32:
			return "INT4"
		case KindInt64:
			return "INT8"
		case KindFloat32:
			return "FLOAT4"
		case KindFloat64:
			return "FLOAT8"
		case KindTimestamp:
			return "TIMESTAMPTZ"
		}
	}
	return "BYTEA"
}

// Descriptor is the normalized IR produced by Parse.
type Descriptor struct {
	RecordName  string
	Table       string
	Fields      []Field // every field, declared order
	GroupFields []Field // Role==RoleGroupKey, declared order
	TimeField   *Field  // nil if no timestamp field declared
	PayloadCols []Field // Role==RolePayload, declared order (excludes TimeField)
}

// ColumnByName finds a field by its Go field name.
func (d *Descriptor) ColumnByName(goName string) (Field, bool) {
	for _, f := range d.Fields {
		if f.GoName == goName {
			return f, true
		}
	}
	return Field{}, false
}

// ColumnByColumn finds a field by its derived database column name.
func (d *Descriptor) ColumnByColumn(column string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Column == column {
			return f, true
		}
	}
	return Field{}, false
}

// Options configures descriptor generation. It is the generator's sole input
// besides the record type, per spec.md §3.
type Options struct {
	TimestampField string
	GroupBy        []string
	FloatRound     int
	TableName      string
}

func (o Options) cacheKey() uint64 {
	gb := append([]string(nil), o.GroupBy...)
	sort.Strings(gb)
	return BucketKey(o.TimestampField, strings.Join(gb, ","), fmt.Sprint(o.FloatRound), o.TableName)
}

var descriptorCache sync.Map // key: reflect.Type -> *sync.Map (key: uint64 -> *Descriptor)

// Parse builds a Descriptor from recordType and opts. Results are memoized
// per (recordType, opts) so repeated calls (e.g. colgroup.Open being called
// once per process per record type) do not re-reflect.
func Parse(recordType reflect.Type, opts Options) (*Descriptor, error) {
	if recordType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("%w: record type %s must be a struct", ErrConfig, recordType)
	}

	key := opts.cacheKey()
	if cachedAny, ok := descriptorCache.Load(recordType); ok {
		cached := cachedAny.(*sync.Map)
		if dAny, ok := cached.Load(key); ok {
			return dAny.(*Descriptor), nil
		}
	}

	d, err := parseUncached(recordType, opts)
	if err != nil {
		return nil, err
	}

	cachedAny, _ := descriptorCache.LoadOrStore(recordType, &sync.Map{})
	cached := cachedAny.(*sync.Map)
	cached.Store(key, d)
	return d, nil
}

func parseUncached(recordType reflect.Type, opts Options) (*Descriptor, error) {
	groupBySet := map[string]bool{}
	for _, name := range opts.GroupBy {
		if groupBySet[name] {
			return nil, fmt.Errorf("%w: duplicate group_by field %q", ErrConfig, name)
		}
		groupBySet[name] = true
	}

	if opts.FloatRound < 0 {
		return nil, fmt.Errorf("%w: float_round must be a positive integer, got %d", ErrConfig, opts.FloatRound)
	}

	d := &Descriptor{
		RecordName: recordType.Name(),
		Table:      opts.TableName,
	}
	if d.Table == "" {
		d.Table = deriveTableName(d.RecordName)
	}

	matchedGroupBy := map[string]bool{}
	var timestampMatched bool

	for i := 0; i < recordType.NumField(); i++ {
		sf := recordType.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}

		kind, err := kindOf(sf.Type)
		if err != nil {
			return nil, fmt.Errorf("%w: field %s: %v", ErrConfig, sf.Name, err)
		}

		isGroupKey := groupBySet[sf.Name]
		isTimestamp := opts.TimestampField != "" && opts.TimestampField == sf.Name

		if isGroupKey && isTimestamp {
			return nil, fmt.Errorf("%w: field %s assigned both group_by and timestamp roles", ErrConfig, sf.Name)
		}

		field := Field{
			GoName: sf.Name,
			Column: deriveColumnName(sf.Name),
			Index:  i,
			Kind:   kind,
		}

		switch {
		case isGroupKey:
			if kind != KindInt32 && kind != KindInt64 {
				return nil, fmt.Errorf("%w: group_by field %s must be i32 or i64, got %s", ErrConfig, sf.Name, kind)
			}
			field.Role = RoleGroupKey
			matchedGroupBy[sf.Name] = true
			d.GroupFields = append(d.GroupFields, field)
		case isTimestamp:
			if kind != KindTimestamp {
				return nil, fmt.Errorf("%w: timestamp field %s must be a timestamp type, got %s", ErrConfig, sf.Name, kind)
			}
			field.Role = RoleTimestamp
			timestampMatched = true
			fCopy := field
			d.TimeField = &fCopy
		default:
			field.Role = RolePayload
			if opts.FloatRound > 0 && (kind == KindFloat32 || kind == KindFloat64) {
				field.FloatRound = opts.FloatRound
			}
			d.PayloadCols = append(d.PayloadCols, field)
		}

		d.Fields = append(d.Fields, field)
	}

	for name := range groupBySet {
		if !matchedGroupBy[name] {
			return nil, fmt.Errorf("%w: group_by field %q not found on %s", ErrConfig, name, d.RecordName)
		}
	}
	if opts.TimestampField != "" && !timestampMatched {
		return nil, fmt.Errorf("%w: timestamp field %q not found on %s", ErrConfig, opts.TimestampField, d.RecordName)
	}

	return d, nil
}

var timeType = reflect.TypeOf(time.Time{})

func kindOf(t reflect.Type) (Kind, error) {
	switch {
	case t == timeType:
		return KindTimestamp, nil
	case t.Kind() == reflect.Int32:
		return KindInt32, nil
	case t.Kind() == reflect.Int64:
		return KindInt64, nil
	case t.Kind() == reflect.Float32:
		return KindFloat32, nil
	case t.Kind() == reflect.Float64:
		return KindFloat64, nil
	case t.Kind() == reflect.Bool:
		return KindBool, nil
	default:
		return 0, fmt.Errorf("unsupported field type %s", t)
	}
}
