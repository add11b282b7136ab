package resolver

import (
	"fmt"
	"sort"

	"rsmgr/internal/model"
)

// GetInstallOrder topologically sorts resources so every dependency
// appears before the resources that depend on it, using Kahn's algorithm.
// Edges run dependency -> dependent, matching install order directly.
func (r *Resolver) GetInstallOrder(resources []model.Resource) ([]model.Resource, error) {
	byID := make(map[string]model.Resource, len(resources))
	for _, res := range resources {
		byID[res.ID] = res
	}

	adjacency := make(map[string][]string, len(resources))
	indegree := make(map[string]int, len(resources))
	for id := range byID {
		indegree[id] = 0
	}
	for _, res := range resources {
		if res.Dependencies == nil {
			continue
		}
		for _, depID := range allDeps(res.Dependencies) {
			if _, ok := byID[depID]; !ok {
				continue
			}
			adjacency[depID] = append(adjacency[depID], res.ID)
			indegree[res.ID]++
		}
	}

	// Deterministic traversal: process the ready queue in ID order rather
	// than map iteration order, so GetInstallOrder is reproducible.
	ready := make([]string, 0, len(byID))
	for id, deg := range indegree {
		if deg == 0 {
			ready = append(ready, id)
		}
	}
	sort.Strings(ready)

	ordered := make([]model.Resource, 0, len(resources))
	for len(ready) > 0 {
		id := ready[0]
		ready = ready[1:]
		ordered = append(ordered, byID[id])

		next := append([]string(nil), adjacency[id]...)
		sort.Strings(next)
		for _, dependent := range next {
			indegree[dependent]--
			if indegree[dependent] == 0 {
				ready = insertSorted(ready, dependent)
			}
		}
	}

	if len(ordered) != len(byID) {
		cycle := r.DetectCycles(resources)
		return nil, fmt.Errorf("%w: circular dependencies detected: %s", ErrDependency, joinCycle(cycle))
	}
	return ordered, nil
}

func insertSorted(sorted []string, value string) []string {
	i := sort.SearchStrings(sorted, value)
	sorted = append(sorted, "")
	copy(sorted[i+1:], sorted[i:])
	sorted[i] = value
	return sorted
}

func allDeps(d *model.Dependency) []string {
	deps := make([]string, 0, len(d.Required)+len(d.Recommended))
	deps = append(deps, d.Required...)
	deps = append(deps, d.Recommended...)
	return deps
}

func joinCycle(cycle []string) string {
	out := ""
	for i, id := range cycle {
		if i > 0 {
			out += " -> "
		}
		out += id
	}
	return out
}

// DetectCycles reports the first simple cycle found in the dependency
// graph (resource -> dependency edges), as a path that starts and ends at
// the same resource ID, or nil if the graph is acyclic.
func (r *Resolver) DetectCycles(resources []model.Resource) []string {
	byID := make(map[string]model.Resource, len(resources))
	ids := make([]string, 0, len(resources))
	for _, res := range resources {
		byID[res.ID] = res
		ids = append(ids, res.ID)
	}
	sort.Strings(ids)

	adjacency := make(map[string][]string, len(resources))
	for _, res := range resources {
		if res.Dependencies == nil {
			continue
		}
		for _, depID := range allDeps(res.Dependencies) {
			if _, ok := byID[depID]; ok {
				adjacency[res.ID] = append(adjacency[res.ID], depID)
			}
		}
	}
	for _, list := range adjacency {
		sort.Strings(list)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(ids))
	var path []string

	var visit func(node string) []string
	visit = func(node string) []string {
		color[node] = gray
		path = append(path, node)

		for _, neighbor := range adjacency[node] {
			switch color[neighbor] {
			case white:
				if cyc := visit(neighbor); cyc != nil {
					return cyc
				}
			case gray:
				// Found a back edge: extract the cycle from path.
				start := 0
				for i, n := range path {
					if n == neighbor {
						start = i
						break
					}
				}
				cycle := append([]string(nil), path[start:]...)
				cycle = append(cycle, neighbor)
				return cycle
			}
		}

		path = path[:len(path)-1]
		color[node] = black
		return nil
	}

	for _, id := range ids {
		if color[id] == white {
			if cyc := visit(id); cyc != nil {
				return cyc
			}
		}
	}
	return nil
}
