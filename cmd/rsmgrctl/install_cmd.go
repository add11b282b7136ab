package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"rsmgr/internal/cachekit"
	"rsmgr/internal/installer"
	"rsmgr/internal/model"
	"rsmgr/internal/resolver"
)

var (
	installForce    bool
	installWithDeps bool
)

var installCmd = &cobra.Command{
	Use:   "install [resource-id...]",
	Short: "Resolve and install one or more catalog resources",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInstall,
}

func init() {
	installCmd.Flags().BoolVarP(&installForce, "force", "f", false, "reinstall even if already present")
	installCmd.Flags().BoolVar(&installWithDeps, "with-deps", true, "also install required dependencies")
}

func runInstall(cmd *cobra.Command, args []string) error {
	loader, all, err := loadCatalog()
	if err != nil {
		return err
	}

	byID := make(map[string]model.Resource, len(all))
	for _, r := range all {
		byID[r.ID] = r
	}

	var targets []model.Resource
	for _, id := range args {
		r, ok := byID[id]
		if !ok {
			return fmt.Errorf("resource not found in catalog: %s", id)
		}
		targets = append(targets, r)
	}

	inst := installer.New(installRoot(), cfg.MaxRetries, cfg.DownloadTimeout)
	if dlCache, err := cachekit.NewPersistent(cacheRoot(), cfg.PersistentCacheTTL); err != nil {
		fmt.Fprintf(os.Stderr, "warning: download cache unavailable: %v\n", err)
	} else {
		inst.WithDownloadCache(dlCache)
	}
	for _, r := range all {
		inst.RegisterResource(r)
	}

	ctx := context.Background()
	showBar := isatty.IsTerminal(os.Stdout.Fd())

	var bar *progressbar.ProgressBar
	if showBar {
		bar = progressbar.Default(int64(len(targets)), "installing")
	}

	ok := color.New(color.FgGreen)
	fail := color.New(color.FgRed)

	var results []installer.Result
	for _, target := range targets {
		if installWithDeps {
			r := resolver.New(cfg.DependencyMaxDepth)
			deps, err := r.Resolve(target.ID, loader.AsProvider(), false)
			if err != nil {
				fail.Printf("%s: resolve failed: %v\n", target.ID, err)
				continue
			}
			ordered, err := r.GetInstallOrder(deps)
			if err != nil {
				fail.Printf("%s: order failed: %v\n", target.ID, err)
				continue
			}
			batch, err := inst.BatchInstall(ctx, ordered, installForce, nil)
			if err != nil {
				fail.Printf("%s: batch install failed: %v\n", target.ID, err)
				continue
			}
			results = append(results, batch...)
		} else {
			results = append(results, inst.Install(ctx, target, installForce, nil))
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	for _, res := range results {
		switch {
		case res.Skipped:
			fmt.Printf("%-24s skipped (%s)\n", res.ResourceID, res.Message)
		case res.Success:
			ok.Printf("%-24s installed -> %s\n", res.ResourceID, res.Path)
		default:
			fail.Printf("%-24s failed: %s\n", res.ResourceID, res.Error)
		}
	}
	return nil
}

func installRoot() string {
	if cfg.InstallRoot != "" {
		return cfg.InstallRoot
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".claude"
	}
	return home + "/.claude"
}

func cacheRoot() string {
	if cfg.CacheRoot != "" {
		return cfg.CacheRoot
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cache/rsmgr"
	}
	return home + "/.cache/rsmgr"
}
