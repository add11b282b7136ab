package main

import (
	"fmt"

	"rsmgr/internal/catalog"
	"rsmgr/internal/model"
	"rsmgr/internal/search"
)

// loadCatalog warms a Loader rooted at cfg.CatalogRoot and returns its full
// resource set, for subcommands that need the whole catalog in memory.
func loadCatalog() (*catalog.Loader, []model.Resource, error) {
	loader := catalog.New(cfg.CatalogRoot,
		catalog.WithCache(cfg.LRUMaxItems, cfg.LRUMaxMemoryMB),
		catalog.WithParallelism(cfg.AsyncParallelism),
	)
	resources, err := loader.LoadAllResources()
	if err != nil {
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}
	return loader, resources, nil
}

// buildSearchIndex indexes every resource in resources into a fresh search
// index, ready for Search/SearchSmart.
func buildSearchIndex(resources []model.Resource) *search.Index {
	idx := search.NewIndex(search.WithCache(cfg.LRUMaxItems))
	for _, r := range resources {
		idx.IndexResource(r)
	}
	return idx
}
