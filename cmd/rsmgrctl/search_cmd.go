package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rsmgr/internal/search"
)

var (
	searchType  string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Rank-search the catalog by id, name, and description",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchType, "type", "", "restrict results to one resource type (agent, command, hook, template, mcp)")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	_, resources, err := loadCatalog()
	if err != nil {
		return err
	}
	idx := buildSearchIndex(resources)

	filters := search.Filters{}
	if searchType != "" {
		filters["type"] = searchType
	}

	results := idx.Search(args[0], searchLimit, filters)
	if len(results) == 0 {
		fmt.Println("no matches")
		return nil
	}

	id := color.New(color.FgCyan)
	for _, r := range results {
		id.Printf("%-24s", r.ID)
		fmt.Printf(" %-8s %s\n", r.Type, r.Summary)
	}
	return nil
}
