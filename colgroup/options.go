package colgroup

import "github.com/k0kubun/colgroup/schema"

// Options configures Open: which field is the Timestamp, which fields are
// GroupKeys, the float-rounding precision, and an explicit table name
// override. See schema.Options for field-by-field rules.
type Options = schema.Options
