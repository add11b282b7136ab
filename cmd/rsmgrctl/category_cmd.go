package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rsmgr/internal/category"
)

func nodeDepth(n *category.Node) int {
	depth := 0
	for p := n.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

var categoryFilter string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Print the catalog's category tree, derived from resource ids",
	RunE:  runCategories,
}

func init() {
	categoriesCmd.Flags().StringVar(&categoryFilter, "filter", "", "only print resources under this category name")
}

func runCategories(cmd *cobra.Command, args []string) error {
	_, resources, err := loadCatalog()
	if err != nil {
		return err
	}

	engine := category.NewEngine()
	tree := engine.BuildTree(resources)

	if categoryFilter != "" {
		for _, r := range tree.FilterByCategory(categoryFilter) {
			fmt.Printf("%-24s %s\n", r.ID, r.Summary)
		}
		return nil
	}

	tree.Traverse(func(n *category.Node) {
		indent := ""
		for i := 0; i < nodeDepth(n)-1; i++ {
			indent += "  "
		}
		fmt.Printf("%s%s (%d)\n", indent, n.Name, n.Count())
	})
	return nil
}
