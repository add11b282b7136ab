package catalog

import (
	"context"
	"sort"
	"time"

	"golang.org/x/sync/semaphore"

	"rsmgr/internal/model"
)

// DefaultParallelism bounds how many files LoadResourcesAsync reads
// concurrently. It is fixed rather than derived from GOMAXPROCS, since the
// bottleneck is file I/O, not CPU.
const DefaultParallelism = 4

// perFileTimeout bounds how long any single resource read/parse may take,
// so one slow or hanging file can never block the rest of the batch.
const perFileTimeout = 5 * time.Second

// LoadResourcesAsync loads up to count resources using bounded concurrent
// file reads. It scans the tree (via LoadAllResources, cheap once warm) to
// discover candidate (type, id) pairs, then re-reads each one under a
// semaphore-bounded worker pool so no single file can stall the others past
// perFileTimeout.
func (l *Loader) LoadResourcesAsync(ctx context.Context, count int) ([]model.Resource, error) {
	all, err := l.LoadAllResources()
	if err != nil {
		return nil, err
	}
	if count > 0 && count < len(all) {
		all = all[:count]
	}

	sem := semaphore.NewWeighted(l.parallelism)
	results := make([]model.Resource, len(all))
	errs := make([]error, len(all))

	for i, r := range all {
		if err := sem.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		go func(i int, r model.Resource) {
			defer sem.Release(1)

			fctx, cancel := context.WithTimeout(ctx, perFileTimeout)
			defer cancel()

			done := make(chan model.Resource, 1)
			go func() {
				fresh, err := l.loadOne(r.Type, r.ID)
				if err != nil {
					errs[i] = err
					done <- r
					return
				}
				done <- fresh
			}()

			select {
			case <-fctx.Done():
				errs[i] = fctx.Err()
				results[i] = r
			case fresh := <-done:
				results[i] = fresh
			}
		}(i, r)
	}

	// Wait for every worker to release the semaphore, i.e. finish.
	if err := sem.Acquire(ctx, l.parallelism); err != nil {
		return nil, err
	}

	loaded := make([]model.Resource, 0, len(results))
	for i, r := range results {
		if errs[i] != nil {
			log.Warnw("async load failed for resource", "id", r.ID, "type", r.Type, "error", errs[i])
			continue
		}
		loaded = append(loaded, r)
	}
	sort.Slice(loaded, func(i, j int) bool {
		if loaded[i].Type != loaded[j].Type {
			return loaded[i].Type < loaded[j].Type
		}
		return loaded[i].ID < loaded[j].ID
	})
	return loaded, nil
}
