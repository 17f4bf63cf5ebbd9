package schema

import "errors"

// ErrConfig marks an invalid generator option: an unsupported group-by
// type, a duplicate role assignment, a negative float_round, or any
// other mistake in how a record type was declared. It is raised only at
// Parse time, never once a Descriptor exists — see spec.md §7.
var ErrConfig = errors.New("schema: invalid descriptor configuration")
