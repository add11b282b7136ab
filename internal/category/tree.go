package category

import (
	"sort"
	"strings"

	"rsmgr/internal/model"
)

// Node is a single category or subcategory in the tree: its direct
// resources plus any child categories nested under it.
type Node struct {
	Name      string
	Parent    *Node
	Children  map[string]*Node
	Resources []model.Resource
}

func newNode(name string, parent *Node) *Node {
	return &Node{Name: name, Parent: parent, Children: make(map[string]*Node)}
}

func (n *Node) addChild(name string) *Node {
	if child, ok := n.Children[name]; ok {
		return child
	}
	child := newNode(name, n)
	n.Children[name] = child
	return child
}

// AllResources returns every resource in this node and its descendants.
func (n *Node) AllResources() []model.Resource {
	all := make([]model.Resource, len(n.Resources))
	copy(all, n.Resources)
	for _, child := range n.Children {
		all = append(all, child.AllResources()...)
	}
	return all
}

// Count returns the total resource count in this node and its descendants.
func (n *Node) Count() int {
	count := len(n.Resources)
	for _, child := range n.Children {
		count += child.Count()
	}
	return count
}

// Tree is a hierarchical index of resources keyed by extracted category
// path, built by Engine.BuildTree.
type Tree struct {
	root        *Node
	categories  []*Node
	maxDepth    int
	categoryMap map[string]*Node
}

func newTree() *Tree {
	return &Tree{
		root:        newNode("root", nil),
		categoryMap: make(map[string]*Node),
	}
}

func (t *Tree) addResource(cat Category, resource model.Resource) {
	node, ok := t.categoryMap[cat.Primary]
	if !ok {
		node = t.root.addChild(cat.Primary)
		t.categoryMap[cat.Primary] = node
		t.categories = append(t.categories, node)
	}

	depth := 1
	if cat.Secondary != "" {
		key := cat.Primary + "." + cat.Secondary
		if existing, ok := t.categoryMap[key]; ok {
			node = existing
		} else {
			node = node.addChild(cat.Secondary)
			t.categoryMap[key] = node
		}
		depth = 2
	}

	if len(cat.FullPath) > 2 {
		for i := 2; i < len(cat.FullPath); i++ {
			key := strings.Join(cat.FullPath[:i+1], ".")
			if existing, ok := t.categoryMap[key]; ok {
				node = existing
			} else {
				node = node.addChild(cat.FullPath[i])
				t.categoryMap[key] = node
			}
			depth = i + 1
		}
	}

	if depth > t.maxDepth {
		t.maxDepth = depth
	}
	node.Resources = append(node.Resources, resource)
}

// MaxDepth reports the deepest category path built into the tree.
func (t *Tree) MaxDepth() int { return t.maxDepth }

// CategoryCount returns the resource count for a named category (dotted
// path, e.g. "mcp.dev-team"), 0 if the category doesn't exist.
func (t *Tree) CategoryCount(name string) int {
	if node, ok := t.categoryMap[name]; ok {
		return node.Count()
	}
	return 0
}

// SortedCategories returns the top-level categories sorted by name.
func (t *Tree) SortedCategories() []*Node {
	sorted := make([]*Node, len(t.categories))
	copy(sorted, t.categories)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	return sorted
}

// Traverse applies fn to every node in the tree, depth first.
func (t *Tree) Traverse(fn func(*Node)) {
	var walk func(*Node)
	walk = func(n *Node) {
		fn(n)
		for _, child := range n.Children {
			walk(child)
		}
	}
	for _, cat := range t.categories {
		walk(cat)
	}
}

// FindByPath looks up a node by its dotted category path, e.g. ["mcp", "dev-team"].
func (t *Tree) FindByPath(path []string) *Node {
	return t.categoryMap[strings.Join(path, ".")]
}

// FilterByCategory returns every resource under the named top-level or
// dotted-path category.
func (t *Tree) FilterByCategory(name string) []model.Resource {
	if node, ok := t.categoryMap[name]; ok {
		return node.AllResources()
	}
	return nil
}

// FilterByPath is FilterByCategory taking a path slice instead of a
// pre-joined dotted string.
func (t *Tree) FilterByPath(path []string) []model.Resource {
	if node := t.FindByPath(path); node != nil {
		return node.AllResources()
	}
	return nil
}

// FilterByCategoryAndType intersects FilterByCategory with a resource type.
func (t *Tree) FilterByCategoryAndType(name string, resourceType model.Type) []model.Resource {
	resources := t.FilterByCategory(name)
	filtered := make([]model.Resource, 0, len(resources))
	for _, r := range resources {
		if r.Type == resourceType {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// Statistics computes per-top-level-category resource counts and
// percentages of the tree's total.
func (t *Tree) Statistics() Statistics {
	total := 0
	counts := make(map[string]int, len(t.categories))
	for _, cat := range t.categories {
		c := cat.Count()
		counts[cat.Name] = c
		total += c
	}
	percentages := make(map[string]float64, len(t.categories))
	for name, c := range counts {
		if total > 0 {
			percentages[name] = float64(c) / float64(total) * 100
		} else {
			percentages[name] = 0
		}
	}
	return Statistics{
		TotalResources:      total,
		TotalCategories:     len(t.categories),
		CategoryCounts:      counts,
		CategoryPercentages: percentages,
	}
}

// Category looks up a node by its top-level or dotted-path name.
func (t *Tree) Category(name string) *Node {
	return t.categoryMap[name]
}
