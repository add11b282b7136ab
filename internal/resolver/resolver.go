// Package resolver computes dependency-aware install order for resources,
// using hand-rolled graph algorithms rather than a general-purpose graph
// library, since this module's graphs are small (a handful of
// dependencies deep) and the algorithms are simple enough that pulling in
// a dependency would add more than it saves.
package resolver

import (
	"fmt"

	"rsmgr/internal/model"
)

// DefaultMaxDepth bounds how many dependency hops Resolve will follow
// before giving up, preventing runaway recursion on a pathological
// dependency chain.
const DefaultMaxDepth = 5

// Provider looks up a resource by ID, the way a catalog-backed loader
// would. Resolve may call it more than once for the same ID.
type Provider interface {
	GetResource(id string) (model.Resource, bool)
}

// Resolver performs depth-first dependency resolution and topological
// ordering over a resource set.
type Resolver struct {
	maxDepth int
}

// New returns a Resolver bounding dependency chains to maxDepth hops. A
// non-positive maxDepth falls back to DefaultMaxDepth.
func New(maxDepth int) *Resolver {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}
	return &Resolver{maxDepth: maxDepth}
}

// Resolve performs a depth-first traversal from resourceID, returning
// every transitive dependency plus the resource itself in the order each
// finishes (dependencies before dependents). Required dependencies that cannot be
// found are a hard error; recommended dependencies are skipped silently
// when includeRecommended is true but the dependency or its dependencies
// can't be resolved.
func (r *Resolver) Resolve(resourceID string, provider Provider, includeRecommended bool) ([]model.Resource, error) {
	if _, ok := provider.GetResource(resourceID); !ok {
		return nil, fmt.Errorf("%w: resource not found in catalog: %s", ErrDependency, resourceID)
	}

	color := make(map[string]int)
	var path []string
	var result []model.Resource

	if err := r.resolveRecursive(resourceID, provider, color, &path, &result, 0, includeRecommended); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Resolver) resolveRecursive(resourceID string, provider Provider, color map[string]int, path *[]string, result *[]model.Resource, depth int, includeRecommended bool) error {
	if depth > r.maxDepth {
		return fmt.Errorf("%w: maximum dependency depth (%d) exceeded while resolving %q", ErrDependency, r.maxDepth, resourceID)
	}

	// color is unset (white) for an id never visited, gray while it's on
	// the current DFS stack, black once fully resolved. A gray re-entry is
	// a back edge: a cycle through the current path.
	const (
		gray  = 1
		black = 2
	)

	switch color[resourceID] {
	case black:
		return nil
	case gray:
		start := 0
		for i, id := range *path {
			if id == resourceID {
				start = i
				break
			}
		}
		cycle := append([]string(nil), (*path)[start:]...)
		cycle = append(cycle, resourceID)
		return fmt.Errorf("%w: circular dependencies detected: %s", ErrDependency, joinCycle(cycle))
	}

	resource, ok := provider.GetResource(resourceID)
	if !ok {
		return fmt.Errorf("%w: dependency not found: %s", ErrDependency, resourceID)
	}

	color[resourceID] = gray
	*path = append(*path, resourceID)

	if resource.Dependencies != nil {
		for _, depID := range resource.Dependencies.Required {
			if _, ok := provider.GetResource(depID); !ok {
				return fmt.Errorf("%w: required dependency %q not found in catalog (required by %q)", ErrDependency, depID, resourceID)
			}
			if err := r.resolveRecursive(depID, provider, color, path, result, depth+1, includeRecommended); err != nil {
				return err
			}
		}

		if includeRecommended {
			for _, depID := range resource.Dependencies.Recommended {
				if _, ok := provider.GetResource(depID); !ok {
					continue
				}
				if err := r.resolveRecursive(depID, provider, color, path, result, depth+1, includeRecommended); err != nil {
					continue // recommended dependencies are best-effort
				}
			}
		}
	}

	*path = (*path)[:len(*path)-1]
	color[resourceID] = black

	for _, existing := range *result {
		if existing.ID == resource.ID {
			return nil
		}
	}
	*result = append(*result, resource)
	return nil
}
