package catalog

import (
	"rsmgr/internal/model"
	"rsmgr/internal/resolver"
)

// provider adapts a Loader to resolver.Provider, whose single-argument
// GetResource(id) can't be a method on Loader itself since Loader's own
// GetResource is keyed by (id, type).
type provider struct{ loader *Loader }

// AsProvider returns a view of the loader satisfying resolver.Provider,
// searching every type for id since the resolver's dependency graph is
// keyed by id alone.
func (l *Loader) AsProvider() resolver.Provider {
	return provider{loader: l}
}

func (p provider) GetResource(id string) (model.Resource, bool) {
	for _, t := range model.Types {
		if r, ok := p.loader.GetCachedResource(id, t); ok {
			return r, true
		}
	}
	return model.Resource{}, false
}
