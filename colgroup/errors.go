package colgroup

import (
	"github.com/k0kubun/colgroup/adapter"
	"github.com/k0kubun/colgroup/codec"
	"github.com/k0kubun/colgroup/filter"
	"github.com/k0kubun/colgroup/schema"
)

// The five error kinds of spec.md §7. Each is an alias for the sentinel
// the owning leaf package defines — schema, filter, codec, and adapter
// each need their own sentinel to avoid an import cycle back to colgroup,
// so colgroup re-exports them here for a single top-level errors.Is
// surface callers can depend on without reaching into the leaf packages.
var (
	// ErrConfig: invalid generator options, raised only at Open time.
	ErrConfig = schema.ErrConfig
	// ErrFilter: a Filter missing a required field, range helpers
	// called without a timestamp range set, or a Fields selector naming an
	// unknown field.
	ErrFilter = filter.ErrFilter
	// ErrDeserialize: malformed permissive Filter/Fields JSON input.
	ErrDeserialize = filter.ErrDeserialize
	// ErrCodec: a compression pipeline failure.
	ErrCodec = codec.ErrCodec
	// ErrDatabase: the underlying driver/transport reported a failure.
	ErrDatabase = adapter.ErrDatabase
)
