// Package filter implements the Filter model (C5): a builder, a permissive
// JSON decoder, the post-decompression predicate, and the timestamp-range
// helpers load/delete need before they can issue SQL.
package filter

import "errors"

// ErrFilter marks a filter that cannot be used to issue SQL: a required
// GroupKey or timestamp range left empty, or range helpers called on a
// Filter with no timestamp range set. fields.ErrUnknownField wraps it too.
var ErrFilter = errors.New("filter: invalid filter")

// ErrDeserialize marks malformed permissive input: an unknown field name,
// or a value shape Decode does not recognize for its column's type.
var ErrDeserialize = errors.New("filter: cannot deserialize")
