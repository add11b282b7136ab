// Package catalog loads a tree of per-type YAML resource documents plus an
// index.yaml into typed, validated records, with O(1) lookup after warm-up
// and an optional bounded LRU in front of the on-disk scan.
package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"rsmgr/internal/cachekit"
	"rsmgr/internal/logging"
	"rsmgr/internal/model"
	"rsmgr/internal/security"
)

var log = logging.Get("catalog")

// key identifies a resource the way the on-disk tree and the in-memory maps
// both do: by type and id together, since ids are only unique within a type.
type key struct {
	Type model.Type
	ID   string
}

// Loader reads resources from a directory tree rooted at root/index.yaml
// plus root/<type>s/<id>.yaml, caching what it has already read.
type Loader struct {
	root string

	mu           sync.RWMutex
	byKey        map[key]model.Resource
	scanned      bool
	lastCacheHit bool

	cache       *cachekit.LRU[key, model.Resource]
	parallelism int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache attaches a bounded LRU in front of the loader's full in-memory
// map, for callers that want hit-rate instrumentation on top of the O(1)
// map lookup the loader already provides after a warm scan.
func WithCache(maxItems int, maxMemoryMB float64) Option {
	return func(l *Loader) {
		l.cache = cachekit.NewLRU[key, model.Resource](maxItems, maxMemoryMB).WithName("catalog")
	}
}

// WithParallelism overrides how many files LoadResourcesAsync reads
// concurrently. A non-positive value keeps DefaultParallelism.
func WithParallelism(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.parallelism = int64(n)
		}
	}
}

// New returns a Loader rooted at root.
func New(root string, opts ...Option) *Loader {
	l := &Loader{root: root, byKey: make(map[key]model.Resource), parallelism: DefaultParallelism}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func typeDirName(t model.Type) string {
	s := string(t)
	if strings.HasSuffix(s, "s") {
		return s
	}
	return s + "s"
}

// LoadIndex reads and validates root/index.yaml.
func (l *Loader) LoadIndex() (*model.Catalog, error) {
	path := filepath.Join(l.root, "index.yaml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	var idx model.Catalog
	if err := security.SafeParse(path, &idx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := idx.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return &idx, nil
}

// resourcePath returns the on-disk path for a (type, id) pair.
func (l *Loader) resourcePath(t model.Type, id string) string {
	return filepath.Join(l.root, typeDirName(t), id+".yaml")
}

// loadOne reads and validates a single resource file, independent of the
// loader's cache.
func (l *Loader) loadOne(t model.Type, id string) (model.Resource, error) {
	path := l.resourcePath(t, id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return model.Resource{}, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	var r model.Resource
	if err := security.SafeParse(path, &r); err != nil {
		return model.Resource{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := r.Validate(); err != nil {
		return model.Resource{}, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return r, nil
}

// LoadResource loads a single resource by (id, type), O(1) once the loader
// has performed a full scan via LoadAllResources.
func (l *Loader) LoadResource(id string, t model.Type) (model.Resource, error) {
	k := key{Type: t, ID: id}

	l.mu.RLock()
	if r, ok := l.byKey[k]; ok {
		l.mu.RUnlock()
		return r, nil
	}
	l.mu.RUnlock()

	r, err := l.loadOne(t, id)
	if err != nil {
		return model.Resource{}, err
	}

	l.mu.Lock()
	l.byKey[k] = r
	l.mu.Unlock()
	return r, nil
}

// LoadAllResources walks every type subdirectory and returns every valid
// resource, sorted by (type, id) for a stable, restartable iteration order.
// The first call performs the on-disk scan and warms the in-memory map;
// subsequent calls only re-scan when InvalidateCache has been called.
func (l *Loader) LoadAllResources() ([]model.Resource, error) {
	l.mu.RLock()
	warm := l.scanned
	l.mu.RUnlock()
	if warm {
		return l.sortedSnapshot(), nil
	}

	var all []model.Resource
	for _, t := range model.Types {
		dir := filepath.Join(l.root, typeDirName(t))
		entries, err := os.ReadDir(dir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("%w: cannot read %s: %v", ErrMalformed, dir, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
				continue
			}
			id := strings.TrimSuffix(entry.Name(), ".yaml")
			r, err := l.loadOne(t, id)
			if err != nil {
				log.Warnw("skipping unreadable resource", "type", t, "id", id, "error", err)
				continue
			}
			all = append(all, r)
		}
	}

	l.mu.Lock()
	for _, r := range all {
		l.byKey[key{Type: r.Type, ID: r.ID}] = r
	}
	l.scanned = true
	l.mu.Unlock()

	return l.sortedSnapshot(), nil
}

func (l *Loader) sortedSnapshot() []model.Resource {
	l.mu.RLock()
	defer l.mu.RUnlock()

	all := make([]model.Resource, 0, len(l.byKey))
	for _, r := range l.byKey {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Type != all[j].Type {
			return all[i].Type < all[j].Type
		}
		return all[i].ID < all[j].ID
	})
	return all
}

// LoadResourcesByType returns every resource of the given type, sorted by id.
func (l *Loader) LoadResourcesByType(t model.Type) ([]model.Resource, error) {
	all, err := l.LoadAllResources()
	if err != nil {
		return nil, err
	}
	filtered := make([]model.Resource, 0, len(all))
	for _, r := range all {
		if r.Type == t {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// GetResource returns a resource from the warm in-memory map without
// touching disk, populating the optional LRU cache on the way. It never
// triggers a scan; call LoadAllResources first to warm the map.
func (l *Loader) GetResource(id string, t model.Type) (model.Resource, bool) {
	k := key{Type: t, ID: id}

	if l.cache != nil {
		if r, ok := l.cache.Get(k); ok {
			l.setCacheHit(true)
			return r, true
		}
	}

	l.mu.RLock()
	r, ok := l.byKey[k]
	l.mu.RUnlock()

	l.setCacheHit(ok && l.cache == nil)
	if ok && l.cache != nil {
		l.cache.Set(k, r)
	}
	return r, ok
}

// GetCachedResource is an alias for GetResource: both are pure in-memory
// lookups once the loader is warm, matching the distilled contract's
// separate-but-identical accessor names.
func (l *Loader) GetCachedResource(id string, t model.Type) (model.Resource, bool) {
	return l.GetResource(id, t)
}

func (l *Loader) setCacheHit(hit bool) {
	l.mu.Lock()
	l.lastCacheHit = hit
	l.mu.Unlock()
}

// WasCacheHit reports whether the most recent GetResource/GetCachedResource
// call was a cache hit, for instrumentation. With an LRU attached only an
// LRU hit counts; a lookup served from the loader's map then reports false.
func (l *Loader) WasCacheHit() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastCacheHit
}

// InvalidateCache atomically clears both the warm scan state and the
// optional LRU, forcing the next LoadAllResources to re-scan disk.
func (l *Loader) InvalidateCache() {
	l.mu.Lock()
	l.byKey = make(map[key]model.Resource)
	l.scanned = false
	l.mu.Unlock()

	if l.cache != nil {
		l.cache.Clear()
	}
}
