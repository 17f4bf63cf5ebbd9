package schema

import "github.com/cespare/xxhash/v2"

// BucketKey hashes a sequence of string parts into a stable 64-bit key.
// Options.cacheKey uses it to fold a record type's declared option strings
// (group-by field names, table name, ...) into the descriptorCache's inner
// map key. colgroup's write path buckets by its own fmt.Sprint-built string
// key instead (it needs a plain comparable map key for map[string][]R, not
// a fixed-width hash). Grounded on arloliu-mebo's use of xxhash for
// deriving stable metric IDs from declared names.
func BucketKey(parts ...string) uint64 {
	h := xxhash.New()
	for _, p := range parts {
		_, _ = h.WriteString(p)
		_, _ = h.Write([]byte{0}) // separator: avoids "a"+"bc" colliding with "ab"+"c"
	}
	return h.Sum64()
}
