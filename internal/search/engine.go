// Package search implements the catalog's exact, prefix, and fuzzy
// resource lookup, combined into a single ranked search.
package search

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"rsmgr/internal/cachekit"
	"rsmgr/internal/metrics"
	"rsmgr/internal/model"
)

func observeSearchDuration(start time.Time) {
	metrics.SearchDurationSeconds.Observe(time.Since(start).Seconds())
}

// Result pairs a resource with the score it earned in a ranked search.
type Result struct {
	Resource model.Resource
	Score    float64
}

// Index is a searchable index over a resource set, combining an exact
// lookup map, a prefix trie, and a fuzzy scorer over indexed text fields.
type Index struct {
	mu             sync.RWMutex
	resources      map[string]model.Resource
	searchableText map[string]string
	trieRoot       *trieNode
	indexFields    []string

	resultCache *cachekit.LRU[string, []Result]
}

// Option configures an Index at construction time.
type Option func(*Index)

// WithCache enables an LRU cache of up to size recent Search/SearchSmart
// results.
func WithCache(size int) Option {
	return func(idx *Index) {
		idx.resultCache = cachekit.NewLRU[string, []Result](size, 0).WithName("search")
	}
}

// WithIndexFields overrides the default ["id", "name", "description"]
// fields used to build searchable text.
func WithIndexFields(fields []string) Option {
	return func(idx *Index) { idx.indexFields = fields }
}

// NewIndex returns an empty search index.
func NewIndex(opts ...Option) *Index {
	idx := &Index{
		resources:      make(map[string]model.Resource),
		searchableText: make(map[string]string),
		trieRoot:       newTrieNode(),
		indexFields:    []string{"id", "name", "description"},
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// IndexResource adds or replaces a resource in the index.
func (idx *Index) IndexResource(r model.Resource) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.resources[r.ID] = r
	text := idx.buildSearchableText(r)
	idx.searchableText[r.ID] = text
	for _, word := range strings.Fields(text) {
		idx.trieRoot.addWord(r.ID, word)
	}
	if idx.resultCache != nil {
		idx.resultCache.Clear()
	}
}

func (idx *Index) buildSearchableText(r model.Resource) string {
	fieldValue := func(field string) string {
		switch field {
		case "id":
			return r.ID
		case "name":
			return r.Name
		case "description":
			return r.Description
		case "summary":
			return r.Summary
		case "type":
			return string(r.Type)
		default:
			return ""
		}
	}
	parts := make([]string, 0, len(idx.indexFields))
	for _, field := range idx.indexFields {
		if v := fieldValue(field); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// RemoveResource deletes a resource from the index, rebuilding the trie.
func (idx *Index) RemoveResource(id string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.resources[id]; !ok {
		return
	}
	delete(idx.resources, id)
	delete(idx.searchableText, id)
	idx.rebuildTrie()
	if idx.resultCache != nil {
		idx.resultCache.Clear()
	}
}

func (idx *Index) rebuildTrie() {
	idx.trieRoot = newTrieNode()
	for id, text := range idx.searchableText {
		for _, word := range strings.Fields(text) {
			idx.trieRoot.addWord(id, word)
		}
	}
}

// SearchExact looks up a resource by exact, case-insensitive ID match.
func (idx *Index) SearchExact(query string) []model.Resource {
	if query == "" {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if r, ok := idx.resources[strings.ToLower(query)]; ok {
		return []model.Resource{r}
	}
	return nil
}

// SearchPrefix returns resources whose indexed text contains a word
// starting with prefix.
func (idx *Index) SearchPrefix(prefix string) []model.Resource {
	if prefix == "" {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	ids := idx.trieRoot.matchPrefix(strings.ToLower(prefix))
	results := make([]model.Resource, 0, len(ids))
	for id := range ids {
		if r, ok := idx.resources[id]; ok {
			results = append(results, r)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results
}

// fuzzyCutoff mirrors the original's noise-detection heuristic: long
// alphanumeric queries are likely junk and get a stricter score floor.
func fuzzyCutoff(query string) float64 {
	hasDigit, hasAlpha := false, false
	for _, r := range query {
		if unicode.IsDigit(r) {
			hasDigit = true
		}
		if unicode.IsLetter(r) {
			hasAlpha = true
		}
	}
	if len(query) > 12 && hasDigit && hasAlpha {
		return 60
	}
	return 35
}

// SearchFuzzy ranks resources by a weighted-ratio similarity to query
// against their indexed text, applying a noise-adaptive score cutoff.
func (idx *Index) SearchFuzzy(query string, limit int) []Result {
	if query == "" {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	queryLower := strings.ToLower(query)
	cutoff := fuzzyCutoff(queryLower)

	results := make([]Result, 0, len(idx.resources))
	for id, text := range idx.searchableText {
		score := weightedRatio(queryLower, text)
		if score < cutoff {
			continue
		}
		if r, ok := idx.resources[id]; ok {
			results = append(results, Result{Resource: r, Score: score})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Resource.ID < results[j].Resource.ID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Filters restrict search results to resources matching every key/value
// pair, compared against the resource's type, author, or metadata.
type Filters map[string]any

func (idx *Index) applyFilters(resources []model.Resource, filters Filters) []model.Resource {
	if len(filters) == 0 {
		return resources
	}
	filtered := make([]model.Resource, 0, len(resources))
	for _, r := range resources {
		if matchesFilters(r, filters) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func matchesFilters(r model.Resource, filters Filters) bool {
	for key, want := range filters {
		var got any
		switch key {
		case "type":
			got = string(r.Type)
		case "author":
			got = r.Author
		default:
			got = r.Metadata[key]
		}
		if got != want {
			return false
		}
	}
	return true
}

// Search combines exact, prefix, and fuzzy strategies: an exact hit short
// circuits, otherwise prefix matches are returned ahead of fuzzy matches,
// deduplicated, filtered, and capped at limit.
func (idx *Index) Search(query string, limit int, filters Filters) []model.Resource {
	if query == "" {
		return nil
	}
	defer observeSearchDuration(time.Now())
	if cached, ok := idx.cacheGet(cacheKeyFor("search", query, limit, filters)); ok {
		return resultsToResources(cached)
	}

	if exact := idx.SearchExact(query); len(exact) > 0 {
		out := idx.applyFilters(exact, filters)
		idx.cacheSet(cacheKeyFor("search", query, limit, filters), resourcesToResults(out, 100))
		return out
	}

	prefixMatches := idx.SearchPrefix(query)
	fuzzyMatches := idx.SearchFuzzy(query, limit*2)

	seen := make(map[string]struct{}, len(prefixMatches)+len(fuzzyMatches))
	combined := make([]model.Resource, 0, len(prefixMatches)+len(fuzzyMatches))
	for _, r := range prefixMatches {
		if _, ok := seen[r.ID]; !ok {
			seen[r.ID] = struct{}{}
			combined = append(combined, r)
		}
	}
	for _, res := range fuzzyMatches {
		if _, ok := seen[res.Resource.ID]; !ok {
			seen[res.Resource.ID] = struct{}{}
			combined = append(combined, res.Resource)
		}
	}

	filtered := idx.applyFilters(combined, filters)
	if limit > 0 && len(filtered) > limit {
		filtered = filtered[:limit]
	}
	idx.cacheSet(cacheKeyFor("search", query, limit, filters), resourcesToResults(filtered, 0))
	return filtered
}

// SearchSmart is Search but every hit carries a relevance Score: exact
// match scores 100, an ID/name substring match gets the fuzzy score plus a
// 20-point boost capped at 99, and a description-only match keeps its raw
// fuzzy score.
func (idx *Index) SearchSmart(query string, limit int) []Result {
	if query == "" {
		return nil
	}
	defer observeSearchDuration(time.Now())
	if cached, ok := idx.cacheGet(cacheKeyFor("smart", query, limit, nil)); ok {
		return cached
	}

	idx.mu.RLock()
	queryLower := strings.ToLower(query)
	var out []Result
	seen := make(map[string]struct{})

	if exact := idx.searchExactLocked(queryLower); len(exact) > 0 {
		out = append(out, Result{Resource: exact[0], Score: 100})
		seen[exact[0].ID] = struct{}{}
	}
	idx.mu.RUnlock()

	prefixMatches := idx.SearchPrefix(query)
	fuzzyMatches := idx.SearchFuzzy(query, limit*2)

	idx.mu.RLock()
	score := func(r model.Resource) float64 {
		text := idx.searchableText[r.ID]
		base := weightedRatio(queryLower, text)
		idLower := strings.ToLower(r.ID)
		nameLower := strings.ToLower(r.Name)
		if strings.Contains(idLower, queryLower) || strings.Contains(nameLower, queryLower) {
			boosted := base + 20
			if boosted > 99 {
				boosted = 99
			}
			return boosted
		}
		return base
	}
	for _, r := range prefixMatches {
		if _, ok := seen[r.ID]; ok {
			continue
		}
		seen[r.ID] = struct{}{}
		out = append(out, Result{Resource: r, Score: score(r)})
	}
	for _, res := range fuzzyMatches {
		if _, ok := seen[res.Resource.ID]; ok {
			continue
		}
		seen[res.Resource.ID] = struct{}{}
		out = append(out, Result{Resource: res.Resource, Score: score(res.Resource)})
	}
	idx.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	idx.cacheSet(cacheKeyFor("smart", query, limit, nil), out)
	return out
}

func (idx *Index) searchExactLocked(queryLower string) []model.Resource {
	if r, ok := idx.resources[queryLower]; ok {
		return []model.Resource{r}
	}
	return nil
}

// SearchAsync runs Search without blocking the caller's goroutine. The
// search itself is not interrupted by ctx; when it completes its results
// are sent on the channel, which is then closed. If ctx is already done
// at that point the results may be dropped and the channel closed empty.
func (idx *Index) SearchAsync(ctx context.Context, query string, limit int, filters Filters) <-chan []model.Resource {
	out := make(chan []model.Resource, 1)
	go func() {
		defer close(out)
		results := idx.Search(query, limit, filters)
		select {
		case out <- results:
		case <-ctx.Done():
		}
	}()
	return out
}

func resultsToResources(results []Result) []model.Resource {
	out := make([]model.Resource, len(results))
	for i, r := range results {
		out[i] = r.Resource
	}
	return out
}

func resourcesToResults(resources []model.Resource, score float64) []Result {
	out := make([]Result, len(resources))
	for i, r := range resources {
		out[i] = Result{Resource: r, Score: score}
	}
	return out
}

func cacheKeyFor(kind, query string, limit int, filters Filters) string {
	var b strings.Builder
	b.WriteString(kind)
	b.WriteByte('|')
	b.WriteString(strings.ToLower(query))
	b.WriteByte('|')
	b.WriteString(strconv.Itoa(limit))
	if len(filters) > 0 {
		keys := make([]string, 0, len(filters))
		for k := range filters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteByte('|')
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(toString(filters[k]))
		}
	}
	return b.String()
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

func (idx *Index) cacheGet(key string) ([]Result, bool) {
	if idx.resultCache == nil {
		return nil, false
	}
	return idx.resultCache.Get(key)
}

func (idx *Index) cacheSet(key string, results []Result) {
	if idx.resultCache == nil {
		return
	}
	idx.resultCache.Set(key, results)
}
