package model

import "errors"

// ErrInvalidResource is wrapped by every resource validation failure so
// callers can distinguish schema problems from I/O or security failures.
var ErrInvalidResource = errors.New("invalid resource")

// ErrInvalidCatalog is wrapped by catalog-level validation failures (bad
// type keys, count mismatches, duplicate IDs).
var ErrInvalidCatalog = errors.New("invalid catalog")
