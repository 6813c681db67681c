// Package config loads optional YAML defaults for the CLI. Explicit flags
// always win over file values; commands only consult the file for flags the
// user did not set.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the tunable surface of the merge and guide commands.
type Config struct {
	// Shared walk/scan limits.
	Exclude      []string `yaml:"exclude"`
	MaxFileBytes int64    `yaml:"max_file_bytes"`
	UseGitignore *bool    `yaml:"use_gitignore"`

	// Merge options.
	Manifest     *bool `yaml:"manifest"`
	Diffs        *bool `yaml:"diffs"`
	DiffContext  int   `yaml:"diff_context"`
	MaxDiffBytes int   `yaml:"max_diff_bytes"`
}

// Load reads and decodes the YAML file at path. A missing path returns an
// empty config, not an error, so "-config" can point at an optional file.
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}
