package installer

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"rsmgr/internal/model"
	"rsmgr/internal/resolver"
)

// resolveDependency finds the full definition for a dependency ID, falling
// back to a minimal stand-in resource (matching the Python implementation's
// behavior) when nothing registered describes it.
func (i *Installer) resolveDependency(id string, parentType model.Type) model.Resource {
	if r, ok := i.lookupRegistered(id); ok {
		return r
	}
	t := parentType
	if t == "" {
		t = model.TypeAgent
	}
	return model.Resource{ID: id, Type: t}
}

// InstallWithDependencies installs resource's required dependencies in
// dependency order before installing resource itself, using whatever
// resources have been registered via RegisterResource to resolve each
// dependency ID to a full definition. It deliberately takes an explicit
// registry rather than inspecting the caller's stack frame.
func (i *Installer) InstallWithDependencies(ctx context.Context, resource model.Resource, force bool) []Result {
	if resource.ID != "" {
		i.RegisterResource(resource)
	}
	return i.installWithDependenciesTracked(ctx, resource, force, make(map[string]bool))
}

func (i *Installer) installWithDependenciesTracked(ctx context.Context, resource model.Resource, force bool, installedIDs map[string]bool) []Result {
	if resource.ID != "" {
		i.RegisterResource(resource)
	}

	var results []Result

	var required []string
	if resource.Dependencies != nil {
		required = resource.Dependencies.Required
	}

	for _, depID := range required {
		if installedIDs[depID] {
			continue
		}
		depResource := i.resolveDependency(depID, resource.Type)
		results = append(results, i.installWithDependenciesTracked(ctx, depResource, force, installedIDs)...)
	}

	if resource.ID == "" || !installedIDs[resource.ID] {
		result := i.Install(ctx, resource, force, nil)
		results = append(results, result)
		if resource.ID != "" && (result.Success || result.Skipped) {
			installedIDs[resource.ID] = true
		}
	}

	return results
}

// dedupeByID drops resources with a repeated ID, keeping the first
// occurrence, while preserving resources without an ID unconditionally.
func dedupeByID(resources []model.Resource) []model.Resource {
	seen := make(map[string]bool, len(resources))
	unique := make([]model.Resource, 0, len(resources))
	for _, r := range resources {
		if r.ID == "" {
			unique = append(unique, r)
			continue
		}
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		unique = append(unique, r)
	}
	return unique
}

func hasRequiredDeps(resources []model.Resource) bool {
	for _, r := range resources {
		if r.Dependencies != nil && len(r.Dependencies.Required) > 0 {
			return true
		}
	}
	return false
}

// checkCircularDependencies checks the batch (plus anything already
// registered via RegisterResource) for circular required-dependency chains,
// reusing the resolver package's cycle detector rather than reimplementing
// DFS coloring a second time.
func (i *Installer) checkCircularDependencies(resources []model.Resource) error {
	i.mu.Lock()
	combined := make(map[string]model.Resource, len(i.registry)+len(resources))
	for id, r := range i.registry {
		combined[id] = r
	}
	i.mu.Unlock()
	for _, r := range resources {
		if r.ID != "" {
			combined[r.ID] = r
		}
	}

	all := make([]model.Resource, 0, len(combined))
	for _, r := range combined {
		all = append(all, r)
	}

	if cycle := resolver.New(resolver.DefaultMaxDepth).DetectCycles(all); cycle != nil {
		return fmt.Errorf("%w: circular dependency detected: %s", ErrInstall, joinCycle(cycle))
	}
	return nil
}

func joinCycle(cycle []string) string {
	out := ""
	for idx, id := range cycle {
		if idx > 0 {
			out += " -> "
		}
		out += id
	}
	return out
}

// BatchInstall installs many resources, deduplicated by ID. When none of
// them declare required dependencies it installs them concurrently via
// errgroup; otherwise it falls back to a sequential, dependency-aware
// install so that each resource's dependencies land before it does.
func (i *Installer) BatchInstall(ctx context.Context, resources []model.Resource, force bool, progress BatchProgress) ([]Result, error) {
	unique := dedupeByID(resources)
	total := len(unique)

	if err := i.checkCircularDependencies(unique); err != nil {
		return nil, err
	}

	for _, r := range unique {
		if r.ID != "" {
			i.RegisterResource(r)
		}
	}

	if !hasRequiredDeps(unique) {
		return i.batchInstallParallel(ctx, unique, total, force, progress)
	}
	return i.batchInstallSequential(ctx, unique, total, force, progress), nil
}

func (i *Installer) batchInstallParallel(ctx context.Context, resources []model.Resource, total int, force bool, progress BatchProgress) ([]Result, error) {
	results := make([]Result, len(resources))

	g, gctx := errgroup.WithContext(ctx)
	for idx, resource := range resources {
		idx, resource := idx, resource
		g.Go(func() error {
			id := resource.ID
			if id == "" {
				id = "unknown"
			}
			if progress != nil {
				progress(id, idx+1, total, "Installing")
			}
			results[idx] = i.Install(gctx, resource, force, nil)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (i *Installer) batchInstallSequential(ctx context.Context, resources []model.Resource, total int, force bool, progress BatchProgress) []Result {
	var results []Result
	installedIDs := make(map[string]bool)

	for idx, resource := range resources {
		id := resource.ID
		if id == "" {
			id = "unknown"
		}
		if progress != nil {
			progress(id, idx+1, total, "Installing")
		}

		hasDeps := resource.Dependencies != nil && len(resource.Dependencies.Required) > 0
		if hasDeps {
			depResults := i.installWithDependenciesTracked(ctx, resource, force, installedIDs)
			results = append(results, depResults...)
			continue
		}

		if resource.ID != "" && installedIDs[resource.ID] {
			continue
		}
		result := i.Install(ctx, resource, force, nil)
		results = append(results, result)
		if resource.ID != "" && (result.Success || result.Skipped) {
			installedIDs[resource.ID] = true
		}
	}
	return results
}

// Summary aggregates a batch install's outcome.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
	Duration  time.Duration
	Results   []Result
}

// BatchInstallWithSummary runs BatchInstall and reduces its results into a
// Summary, for callers (CLI reporting, tests) that just want the tallies.
func (i *Installer) BatchInstallWithSummary(ctx context.Context, resources []model.Resource, force bool, progress BatchProgress) (Summary, error) {
	start := time.Now()
	results, err := i.BatchInstall(ctx, resources, force, progress)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Total: len(results), Duration: time.Since(start), Results: results}
	for _, r := range results {
		switch {
		case r.Skipped:
			summary.Skipped++
		case r.Success:
			summary.Succeeded++
		default:
			summary.Failed++
		}
	}
	return summary, nil
}

// RollbackBatch best-effort deletes every successfully installed file in
// results. It never returns an error: a rollback that itself fails partway
// through still removes what it can.
func (i *Installer) RollbackBatch(results []Result) {
	for _, r := range results {
		if r.Success && !r.Skipped && r.Path != "" {
			_ = os.Remove(r.Path)
		}
	}
}
