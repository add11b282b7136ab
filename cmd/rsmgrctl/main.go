// Package main implements rsmgrctl, a command-line front end over the
// catalog, search, category, resolver, and installer packages.
//
// Command implementations are split across command-specific files:
//
//	main.go        - entry point, rootCmd, global flags
//	index_cmd.go   - indexCmd: warm the catalog and report a summary
//	search_cmd.go  - searchCmd: ranked search over the catalog
//	category_cmd.go - categoriesCmd: print the category tree
//	resolve_cmd.go - resolveCmd: print a dependency-ordered install plan
//	install_cmd.go - installCmd: resolve and install a resource
//	metrics_cmd.go - metricsCmd: dump metrics in Prometheus text format
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rsmgr/internal/config"
	"rsmgr/internal/logging"
	"rsmgr/internal/security"
)

var (
	verbose    bool
	configPath string
	catalogDir string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rsmgrctl",
	Short: "rsmgrctl manages a catalog of installable developer-assistant resources",
	Long: `rsmgrctl indexes, searches, categorizes, resolves dependencies for, and
installs agents, commands, hooks, templates, and MCP servers from a local
resource catalog.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.Init(verbose); err != nil {
			return fmt.Errorf("initialize logging: %w", err)
		}

		loaded, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
		if catalogDir != "" {
			cfg.CatalogRoot = catalogDir
		}
		if cfg.CatalogRoot == "" {
			cfg.CatalogRoot = "."
		}
		cfg.Verbose = verbose

		security.Configure(cfg.MaxYAMLSize, cfg.YAMLTimeout, cfg.MaxURLLength, cfg.AllowedDomains)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "rsmgr.yaml", "path to the config file")
	rootCmd.PersistentFlags().StringVarP(&catalogDir, "catalog", "c", "", "catalog root directory (overrides config)")

	rootCmd.AddCommand(indexCmd, searchCmd, categoriesCmd, resolveCmd, installCmd, metricsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
