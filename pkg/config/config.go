// Package config loads ooscan settings from TOML, YAML or JSON files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for ooscan.
type Config struct {
	// Analysis settings
	Analysis AnalysisConfig `koanf:"analysis" toml:"analysis"`

	// File exclusion rules
	Exclude ExcludeConfig `koanf:"exclude" toml:"exclude"`

	// Git history metrics
	Churn ChurnConfig `koanf:"churn" toml:"churn"`

	// Duplicate-line detection
	Duplicates DuplicateConfig `koanf:"duplicates" toml:"duplicates"`

	// Highlight thresholds for class metrics
	Thresholds ThresholdConfig `koanf:"thresholds" toml:"thresholds"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`
}

// AnalysisConfig controls which files are read and how.
type AnalysisConfig struct {
	Extensions   []string `koanf:"extensions" toml:"extensions"`
	Workers      int      `koanf:"workers" toml:"workers"`             // 0 = 2x NumCPU
	MaxFileSize  int64    `koanf:"max_file_size" toml:"max_file_size"` // bytes, 0 = no limit
	IncludeTests bool     `koanf:"include_tests" toml:"include_tests"` // [Test] attribute metrics
	TopN         int      `koanf:"top_n" toml:"top_n"`
}

// ExcludeConfig defines file exclusion rules.
type ExcludeConfig struct {
	Dirs      []string `koanf:"dirs" toml:"dirs"`
	Patterns  []string `koanf:"patterns" toml:"patterns"`
	Gitignore bool     `koanf:"gitignore" toml:"gitignore"`
}

// ChurnConfig controls the git history walk.
type ChurnConfig struct {
	Enabled    bool `koanf:"enabled" toml:"enabled"`
	RecentDays int  `koanf:"recent_days" toml:"recent_days"`
}

// DuplicateConfig controls duplicate-line detection.
type DuplicateConfig struct {
	Enabled       bool `koanf:"enabled" toml:"enabled"`
	MinLineLength int  `koanf:"min_line_length" toml:"min_line_length"`
	TopN          int  `koanf:"top_n" toml:"top_n"`
}

// ThresholdConfig defines the values above which a class metric is flagged.
type ThresholdConfig struct {
	WMC  int `koanf:"wmc" toml:"wmc"`
	CBO  int `koanf:"cbo" toml:"cbo"`
	RFC  int `koanf:"rfc" toml:"rfc"`
	LCOM int `koanf:"lcom" toml:"lcom"`
	DIT  int `koanf:"dit" toml:"dit"`
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format" toml:"format"` // text, markdown, json, toon
	Color   bool   `koanf:"color" toml:"color"`
	Verbose bool   `koanf:"verbose" toml:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Extensions:   []string{".cs"},
			IncludeTests: true,
			TopN:         20,
		},
		Exclude: ExcludeConfig{
			Dirs: []string{
				"Library",
				"Logs",
				"obj",
				"ProjectSettings",
				"UserSettings",
				".git",
			},
			Patterns:  []string{},
			Gitignore: false,
		},
		Churn: ChurnConfig{
			Enabled:    true,
			RecentDays: 90,
		},
		Duplicates: DuplicateConfig{
			Enabled:       true,
			MinLineLength: 5,
			TopN:          10,
		},
		Thresholds: ThresholdConfig{
			WMC:  50,
			CBO:  14,
			RFC:  100,
			LCOM: 10,
			DIT:  5,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Formats lists the accepted output formats.
var Formats = []string{"text", "markdown", "json", "toon", "html"}

// Validate reports settings that cannot be honoured.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Analysis.Extensions) == 0 {
		errs = append(errs, errors.New("analysis.extensions must not be empty"))
	}
	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("analysis.workers must be >= 0, got %d", c.Analysis.Workers))
	}
	if c.Analysis.MaxFileSize < 0 {
		errs = append(errs, fmt.Errorf("analysis.max_file_size must be >= 0, got %d", c.Analysis.MaxFileSize))
	}
	if c.Churn.RecentDays <= 0 {
		errs = append(errs, fmt.Errorf("churn.recent_days must be > 0, got %d", c.Churn.RecentDays))
	}
	if c.Duplicates.MinLineLength < 0 {
		errs = append(errs, fmt.Errorf("duplicates.min_line_length must be >= 0, got %d", c.Duplicates.MinLineLength))
	}
	valid := false
	for _, f := range Formats {
		if c.Output.Format == f {
			valid = true
		}
	}
	if !valid {
		errs = append(errs, fmt.Errorf("output.format %q is not one of %s", c.Output.Format, strings.Join(Formats, ", ")))
	}
	for _, p := range c.Exclude.Patterns {
		if !doublestar.ValidatePattern(p) {
			errs = append(errs, fmt.Errorf("exclude.patterns: invalid glob %q", p))
		}
	}
	return errors.Join(errs...)
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// configNames are searched in order in each search directory.
var configNames = []string{
	"ooscan.toml",
	"ooscan.yaml",
	"ooscan.yml",
	"ooscan.json",
	".ooscan.toml",
	".ooscan.yaml",
	".ooscan.yml",
	".ooscan.json",
}

// LoadResult is a loaded configuration and the file it came from. Source is
// empty when the defaults were used.
type LoadResult struct {
	Config *Config
	Source string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dirs []string
}

// WithPath loads exactly path instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithSearchDirs replaces the directories searched for a config file.
func WithSearchDirs(dirs ...string) LoadOption {
	return func(o *loadOptions) {
		o.dirs = dirs
	}
}

// LoadConfig loads and validates configuration. An explicit path must exist;
// otherwise the first config file found in the search directories (".",
// ".ooscan") is used, falling back to the defaults.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dirs: []string{".", ".ooscan"}}
	for _, opt := range opts {
		opt(&o)
	}

	source := o.path
	if source == "" {
		source = find(o.dirs)
	}

	cfg := DefaultConfig()
	if source != "" {
		loaded, err := Load(source)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &LoadResult{Config: cfg, Source: source}, nil
}

func find(dirs []string) string {
	for _, dir := range dirs {
		for _, name := range configNames {
			p := filepath.Join(dir, name)
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// ShouldExclude reports whether a repository-relative path is excluded by an
// excluded directory name anywhere along it or by a glob pattern. Patterns
// without a slash match the base name; the rest match the whole path.
func (c *Config) ShouldExclude(p string) bool {
	p = filepath.ToSlash(p)
	segments := strings.Split(p, "/")
	for _, seg := range segments[:len(segments)-1] {
		if c.IsExcludedDir(seg) {
			return true
		}
	}

	base := path.Base(p)
	for _, pattern := range c.Exclude.Patterns {
		target := p
		if !strings.Contains(pattern, "/") {
			target = base
		}
		if ok, _ := doublestar.Match(pattern, target); ok {
			return true
		}
	}
	return false
}

// IsExcludedDir reports whether a directory name is excluded.
func (c *Config) IsExcludedDir(name string) bool {
	for _, dir := range c.Exclude.Dirs {
		if name == dir {
			return true
		}
	}
	return false
}

// HasExtension reports whether p carries one of the analyzed extensions.
func (c *Config) HasExtension(p string) bool {
	ext := strings.ToLower(filepath.Ext(p))
	for _, e := range c.Analysis.Extensions {
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}
