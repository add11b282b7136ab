package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"rsmgr/internal/model"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Warm the catalog's in-memory index and report a summary",
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	_, resources, err := loadCatalog()
	if err != nil {
		return err
	}

	byType := make(map[model.Type]int, len(model.Types))
	for _, r := range resources {
		byType[r.Type]++
	}

	bold := color.New(color.Bold)
	bold.Printf("Indexed %d resources from %s\n", len(resources), cfg.CatalogRoot)
	for _, t := range model.Types {
		fmt.Printf("  %-10s %d\n", t, byType[t])
	}
	return nil
}
