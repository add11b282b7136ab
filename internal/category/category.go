// Package category implements prefix-based automatic categorization of
// resources by parsing their hyphenated IDs into a hierarchical tree.
package category

import (
	"strings"
)

// Category is the hierarchy extracted from a single resource ID.
type Category struct {
	Primary      string
	Secondary    string
	ResourceName string
	FullPath     []string
}

// Extract parses a hyphenated resource ID into its category hierarchy.
//
// Examples:
//
//	"mcp-architect"            -> primary=mcp secondary="" name=architect
//	"mcp-dev-team-architect"   -> primary=mcp secondary=dev-team name=architect
//	"architect"                -> primary=general name=architect
//
// The 4+-token branch reproduces a specific heuristic exactly: when the
// second token has at most 6 characters, the middle tokens are treated as
// one joined secondary category; otherwise the second token alone is the
// secondary category and the remaining tokens are joined as the name. This
// is a fixed policy choice, not a guess to be re-derived.
func Extract(resourceID string) Category {
	normalized := strings.ToLower(resourceID)
	parts := strings.Split(normalized, "-")

	switch len(parts) {
	case 1:
		return Category{
			Primary:      "general",
			ResourceName: parts[0],
			FullPath:     []string{"general", parts[0]},
		}
	case 2:
		return Category{
			Primary:      parts[0],
			ResourceName: parts[1],
			FullPath:     []string{parts[0], parts[1]},
		}
	case 3:
		return Category{
			Primary:      parts[0],
			Secondary:    parts[1],
			ResourceName: parts[2],
			FullPath:     []string{parts[0], parts[1], parts[2]},
		}
	default:
		primary := parts[0]
		var secondary, name string
		if len(parts[1]) <= 6 {
			secondary = strings.Join(parts[1:len(parts)-1], "-")
			name = parts[len(parts)-1]
		} else {
			secondary = parts[1]
			name = strings.Join(parts[2:], "-")
		}
		return Category{
			Primary:      primary,
			Secondary:    secondary,
			ResourceName: name,
			FullPath:     []string{primary, secondary, name},
		}
	}
}

// Statistics summarizes resource distribution across top-level categories.
type Statistics struct {
	TotalResources     int
	TotalCategories    int
	CategoryCounts     map[string]int
	CategoryPercentages map[string]float64
}
