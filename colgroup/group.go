package colgroup

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/k0kubun/colgroup/adapter"
	"github.com/k0kubun/colgroup/codec"
	"github.com/k0kubun/colgroup/fields"
	"github.com/k0kubun/colgroup/filter"
	"github.com/k0kubun/colgroup/schema"
	"github.com/k0kubun/colgroup/sqlplan"
)

// Group is the runtime binding for record type R, built once via Open and
// reused across Store/Load/Delete calls. It holds the parsed Descriptor,
// the SQL plan derived from it, the database handle, and the codec the
// caller selected — none of which differ between calls.
type Group[R any] struct {
	desc  *schema.Descriptor
	plan  *sqlplan.Plan
	db    adapter.Database
	codec codec.Codec
}

// Open parses R against opts and builds a Group ready to Store/Load/Delete.
// Parsing is memoized (schema.Parse), so calling Open repeatedly for the
// same (R, opts) pair is cheap.
func Open[R any](db adapter.Database, c codec.Codec, opts Options) (*Group[R], error) {
	var zero R
	desc, err := schema.Parse(reflect.TypeOf(zero), opts)
	if err != nil {
		return nil, err
	}
	return &Group[R]{
		desc:  desc,
		plan:  sqlplan.Build(desc),
		db:    db,
		codec: c,
	}, nil
}

// Store buckets records by their GroupKey values and writes one
// COPY row per bucket.
func (g *Group[R]) Store(ctx context.Context, records []R) error {
	return g.store(ctx, records, nil)
}

// StoreGrouped is Store with an additional user-supplied grouping key
// appended to the bucket tuple — e.g. a day truncation — to raise the
// compression ratio of cold data (spec.md §4.4 step 2).
func (g *Group[R]) StoreGrouped(ctx context.Context, records []R, keyFn func(R) any) error {
	return g.store(ctx, records, keyFn)
}

func (g *Group[R]) store(ctx context.Context, records []R, keyFn func(R) any) error {
	if len(records) == 0 {
		return nil
	}

	buckets := map[string][]R{}
	for _, rec := range records {
		key := g.bucketKey(rec, keyFn)
		buckets[key] = append(buckets[key], rec)
	}
	slog.Debug("colgroup: store", "table", g.desc.Table, "records", len(records), "buckets", len(buckets))

	copier, err := g.db.CopyIn(ctx, g.desc.Table, g.plan.AllColumns)
	if err != nil {
		return err
	}

	for key, rows := range canonicalBuckets(buckets) {
		row, err := g.encodeBucket(rows)
		if err != nil {
			copier.Abort(ctx)
			return fmt.Errorf("colgroup: encode bucket %q: %w", key, err)
		}
		if err := copier.Write(ctx, row...); err != nil {
			return err
		}
	}
	return copier.Close(ctx)
}

// bucketKey derives the grouping tuple (declared GroupKey values, plus an
// optional caller key) as a deterministic string, the way
// schema.BucketKey's sibling derivation folds Options fields for the
// Descriptor cache.
func (g *Group[R]) bucketKey(rec R, keyFn func(R) any) string {
	v := reflect.ValueOf(rec)
	var parts []string
	for _, gk := range g.desc.GroupFields {
		parts = append(parts, fmt.Sprint(v.Field(gk.Index).Interface()))
	}
	if keyFn != nil {
		parts = append(parts, fmt.Sprint(keyFn(rec)))
	}
	return fmt.Sprint(parts)
}

// Load runs f against the store and returns one LoadedGroup per matching
// row, each carrying f so Decompress can apply the post-decompression
// predicate.
func (g *Group[R]) Load(ctx context.Context, f *filter.Filter, sel fields.Set) ([]*LoadedGroup[R], error) {
	return g.query(ctx, f, sel, false)
}

// Delete runs f against the store, deletes every matching row, and returns
// one LoadedGroup per deleted row with no filter attached — Decompress on
// a Delete result always yields every stored record (spec.md §4.6).
func (g *Group[R]) Delete(ctx context.Context, f *filter.Filter, sel fields.Set) ([]*LoadedGroup[R], error) {
	return g.query(ctx, f, sel, true)
}

func (g *Group[R]) query(ctx context.Context, f *filter.Filter, sel fields.Set, isDelete bool) ([]*LoadedGroup[R], error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	cols := sel.Union(f).Columns()
	var sqlText string
	if isDelete {
		sqlText = g.plan.DeleteSQL(cols)
	} else {
		sqlText = g.plan.SelectSQL(cols)
	}
	slog.Debug("colgroup: query", "table", g.desc.Table, "sql", sqlText, "delete", isDelete)

	rows, err := g.db.QueryContext(ctx, sqlText, wrapArgs(f.Args())...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*LoadedGroup[R]
	for rows.Next() {
		lg, err := g.scanRow(rows, cols)
		if err != nil {
			return nil, err
		}
		if !isDelete {
			lg.filter = f
		}
		out = append(out, lg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	return out, nil
}
