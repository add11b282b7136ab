package catalog

import "errors"

// ErrNotFound is returned when a requested resource or the index itself
// does not exist under the catalog root.
var ErrNotFound = errors.New("catalog: not found")

// ErrMalformed wraps a YAML document that does not parse at all.
var ErrMalformed = errors.New("catalog: malformed document")

// ErrValidation wraps a document that parses but fails Resource/Catalog
// invariants.
var ErrValidation = errors.New("catalog: validation failed")
