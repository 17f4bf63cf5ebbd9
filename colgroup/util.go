package colgroup

import (
	"iter"

	"github.com/k0kubun/colgroup/util"
	"github.com/lib/pq"
)

// canonicalBuckets iterates store's per-call buckets in a deterministic,
// sorted-by-key order so the COPY stream's row order is stable across
// runs even though spec.md §5 leaves cross-bucket order unspecified.
func canonicalBuckets[R any](buckets map[string][]R) iter.Seq2[string, []R] {
	return util.CanonicalMapIter(buckets)
}

// wrapArgs wraps each GroupKey's value set ([]any, per filter.Filter.Args)
// in pq.Array so lib/pq binds it as a Postgres array for `= ANY($n)`;
// scalar args (the timestamp bounds) pass through unchanged.
func wrapArgs(args []any) []any {
	return util.TransformSlice(args, func(a any) any {
		if vals, ok := a.([]any); ok {
			return pq.Array(vals)
		}
		return a
	})
}
