package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rsmgr/internal/resolver"
)

var includeRecommended bool

var resolveCmd = &cobra.Command{
	Use:   "resolve [resource-id]",
	Short: "Print the dependency-ordered install plan for a resource",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	resolveCmd.Flags().BoolVar(&includeRecommended, "recommended", false, "also pull in recommended (non-required) dependencies")
}

func runResolve(cmd *cobra.Command, args []string) error {
	loader, _, err := loadCatalog()
	if err != nil {
		return err
	}

	r := resolver.New(cfg.DependencyMaxDepth)
	resources, err := r.Resolve(args[0], loader.AsProvider(), includeRecommended)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", args[0], err)
	}

	ordered, err := r.GetInstallOrder(resources)
	if err != nil {
		return fmt.Errorf("order install plan: %w", err)
	}

	for i, res := range ordered {
		fmt.Printf("%d. %s (%s)\n", i+1, res.ID, res.Type)
	}
	return nil
}
