package resolver

import "errors"

// ErrDependency is wrapped by every resolution failure: a missing
// resource, a missing required dependency, an exceeded depth bound, or a
// circular dependency.
var ErrDependency = errors.New("dependency resolution failed")
