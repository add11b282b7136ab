// Package security implements the boundary checks every untrusted input
// (catalog YAML, install paths, download URLs) must pass before the rest
// of the module trusts it.
package security

import "errors"

// ErrSecurity is wrapped by every rejection this package makes: path
// traversal, SSRF, YAML bombs, and similar boundary violations.
var ErrSecurity = errors.New("security validation failed")

// ErrTimeout is wrapped when a bounded operation (YAML parsing) exceeds
// its deadline.
var ErrTimeout = errors.New("operation timed out")
