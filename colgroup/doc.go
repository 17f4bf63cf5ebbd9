// Package colgroup is the runtime stand-in for a generated compressed
// group binding: given a record type R and a small Options set, it builds
// the SQL plumbing and compression pipeline spec.md's distilled
// specification describes as compile-time code generation, driven instead
// by one reflect.Type + Options pass memoized behind schema.Parse.
//
// Group[R] exposes exactly Store, StoreGrouped, Load, Delete, and
// LoadedGroup[R].Decompress — the five operations of spec.md §4.6. The
// database handle (adapter.Database) and the numeric codec (codec.Codec)
// are both opaque external collaborators supplied by the caller, never
// constructed by colgroup itself.
package colgroup
