// Package config defines rsmgr's tunables: parse limits, URL allow-listing,
// download/retry behavior, dependency depth, and cache sizing.
package config

import (
	"fmt"
	"os"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable the core packages read at construction time.
type Config struct {
	MaxYAMLSize     int64         `yaml:"max_yaml_size"`
	YAMLTimeout     time.Duration `yaml:"yaml_timeout"`
	AllowedDomains  []string      `yaml:"allowed_domains"`
	MaxURLLength    int           `yaml:"max_url_length"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
	MaxRetries      int           `yaml:"max_retries"`

	DependencyMaxDepth int `yaml:"dependency_max_depth"`

	LRUMaxItems        int           `yaml:"lru_max_items"`
	LRUMaxMemoryMB     float64       `yaml:"lru_max_memory_mb"`
	PersistentCacheTTL time.Duration `yaml:"persistent_cache_ttl"`

	FuzzyScoreCutoffDefault float64 `yaml:"fuzzy_score_cutoff_default"`
	FuzzyScoreCutoffNoisy   float64 `yaml:"fuzzy_score_cutoff_noisy"`

	AsyncParallelism int `yaml:"async_parallelism"`

	CatalogRoot string `yaml:"catalog_root"`
	InstallRoot string `yaml:"install_root"`
	CacheRoot   string `yaml:"cache_root"`

	Verbose bool `yaml:"verbose"`
}

// Default returns rsmgr's default configuration, matching every option's
// documented default.
func Default() *Config {
	return &Config{
		MaxYAMLSize:     1 * 1024 * 1024,
		YAMLTimeout:     5 * time.Second,
		AllowedDomains:  []string{"raw.githubusercontent.com"},
		MaxURLLength:    2048,
		DownloadTimeout: 30 * time.Second,
		MaxRetries:      3,

		DependencyMaxDepth: 5,

		LRUMaxItems:        50,
		LRUMaxMemoryMB:     10,
		PersistentCacheTTL: 24 * time.Hour,

		FuzzyScoreCutoffDefault: 35,
		FuzzyScoreCutoffNoisy:   60,

		AsyncParallelism: 4,

		CatalogRoot: "",
		InstallRoot: "",
		CacheRoot:   "",

		Verbose: false,
	}
}

// Load reads a YAML config file at path and merges it onto Default(),
// overriding only the fields the file actually sets. A missing file is not
// an error: Load returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}

	var overlay Config
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return nil, fmt.Errorf("config: cannot parse %s: %w", path, err)
	}

	if err := mergo.Merge(cfg, overlay, mergo.WithOverride); err != nil {
		return nil, fmt.Errorf("config: cannot merge %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: cannot marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: cannot write %s: %w", path, err)
	}
	return nil
}
