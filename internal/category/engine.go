package category

import (
	"hash/fnv"
	"sort"
	"sync"

	"rsmgr/internal/model"
)

// Engine extracts categories from resource IDs and builds hierarchical
// trees from resource lists, caching the most recently built tree.
type Engine struct {
	mu        sync.Mutex
	cachedKey uint64
	hasCache  bool
	cached    *Tree
}

// NewEngine returns a ready-to-use category engine.
func NewEngine() *Engine {
	return &Engine{}
}

// ExtractCategory is the package-level Extract function, exposed as a
// method for callers that hold an *Engine.
func (e *Engine) ExtractCategory(resourceID string) Category {
	return Extract(resourceID)
}

// cacheKey computes an identity for a resource set: the input slice's
// object identity has no Go analogue, so instead the key captures the set
// of (type, id) pairs it contains, order-independent. Two calls with a
// different slice holding the same resources hit the cache; adding,
// removing, or re-identifying a resource changes the key, while edits to
// a resource's other fields do not.
func cacheKey(resources []model.Resource) uint64 {
	pairs := make([]string, len(resources))
	for i, r := range resources {
		pairs[i] = string(r.Type) + "\x00" + r.ID
	}
	sort.Strings(pairs)

	h := fnv.New64a()
	for _, p := range pairs {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return h.Sum64()
}

// BuildTree builds a category tree from resources, returning a cached tree
// if the same resource set (by ID and type) was built most recently.
func (e *Engine) BuildTree(resources []model.Resource) *Tree {
	key := cacheKey(resources)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.hasCache && e.cachedKey == key {
		return e.cached
	}

	tree := newTree()
	for _, r := range resources {
		if r.ID == "" {
			continue
		}
		cat := Extract(r.ID)
		tree.addResource(cat, r)
	}

	e.cached = tree
	e.cachedKey = key
	e.hasCache = true
	return tree
}

// InvalidateCache forces the next BuildTree call to build a fresh tree.
func (e *Engine) InvalidateCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.hasCache = false
	e.cached = nil
}
