// Package config loads the engine's runtime configuration: the knobs
// that govern how the engine behaves which the model artifact itself
// does not carry (cache sizes, the augmentation search cutoff, where to
// write telemetry). Shape and loading style follow the teacher's own
// internal/config package: a YAML document with Default/Load/Save.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds engine-level settings that sit alongside a loaded model,
// not inside it.
type Config struct {
	// ResourcesDir is the root directory containing each language's
	// metadata.json and resource files (spec §4.1), when the engine is
	// constructed separately from its model artifact.
	ResourcesDir string `yaml:"resources_dir"`

	// BuiltinCacheCapacity and CustomCacheCapacity size the LRU caches
	// in front of the builtin- and custom-entity parsers (spec §4.1).
	BuiltinCacheCapacity int `yaml:"builtin_cache_capacity"`
	CustomCacheCapacity  int `yaml:"custom_cache_capacity"`

	// MaxAugmentationPermutations is the slot-filler's exhaustive vs.
	// greedy cutoff for the builtin-entity augmentation search (spec
	// §4.5, §9 Open Question i). Zero means use the package default.
	MaxAugmentationPermutations int `yaml:"max_augmentation_permutations"`

	// CustomEntityMaxNgram bounds how many tokens a custom-entity
	// gazetteer match may span.
	CustomEntityMaxNgram int `yaml:"custom_entity_max_ngram"`

	TelemetryEnabled bool   `yaml:"telemetry_enabled"`
	TelemetryPath    string `yaml:"telemetry_path"`

	// DiskCacheEnabled turns on the sqlite-backed second-tier entity
	// parse cache (internal/resources/diskcache) in front of the
	// in-memory LRUs.
	DiskCacheEnabled bool   `yaml:"disk_cache_enabled"`
	DiskCachePath    string `yaml:"disk_cache_path"`
}

// Default returns the configuration a fresh engine starts with.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	base := filepath.Join(homeDir, ".nlucore")
	return &Config{
		ResourcesDir:                filepath.Join(base, "resources"),
		BuiltinCacheCapacity:        1000,
		CustomCacheCapacity:        1000,
		MaxAugmentationPermutations: 256,
		CustomEntityMaxNgram:        4,
		TelemetryEnabled:            false,
		TelemetryPath:               filepath.Join(base, "telemetry.jsonl"),
		DiskCacheEnabled:            false,
		DiskCachePath:               filepath.Join(base, "cache.db"),
	}
}

// Load reads configuration from path, creating it with defaults if it
// doesn't exist yet.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		if err := cfg.Save(path); err != nil {
			return nil, fmt.Errorf("creating default config: %w", err)
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path, creating parent directories as
// needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
