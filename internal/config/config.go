// Package config loads engine configuration from .genlens/config.json with
// viper, falling back to defaults when no file exists. A .genlens.toml
// declaration at the project root can override selected analysis settings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete genlens configuration.
type Config struct {
	Version  int            `json:"version" mapstructure:"version"`
	Analysis AnalysisConfig `json:"analysis" mapstructure:"analysis"`
	Rules    RulesConfig    `json:"rules" mapstructure:"rules"`
	History  HistoryConfig  `json:"history" mapstructure:"history"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging"`
}

// AnalysisConfig tunes the analysis engine.
type AnalysisConfig struct {
	// EntropyThreshold is the decision-point threshold in bits.
	EntropyThreshold float64 `json:"entropyThreshold" mapstructure:"entropyThreshold"`
	// SnippetWidth bounds violation snippets, in runes.
	SnippetWidth int `json:"snippetWidth" mapstructure:"snippetWidth"`
	// MaxFragmentBytes is advisory for callers; oversized fragments are
	// rejected before analysis.
	MaxFragmentBytes int `json:"maxFragmentBytes" mapstructure:"maxFragmentBytes"`
}

// RulesConfig locates the rule catalog.
type RulesConfig struct {
	// CatalogPath points at a YAML/JSON/TOML catalog; empty means the
	// built-in defaults.
	CatalogPath string `json:"catalogPath" mapstructure:"catalogPath"`
}

// HistoryConfig controls the local analysis-history store.
type HistoryConfig struct {
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// MaxRuns caps retained history rows; 0 keeps everything.
	MaxRuns int `json:"maxRuns" mapstructure:"maxRuns"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"` // "json" or "human"
	Level  string `json:"level" mapstructure:"level"`
	// File, when set, sends logs to a size-rotated file instead of stderr.
	// Relative paths resolve against the project root.
	File string `json:"file,omitempty" mapstructure:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Analysis: AnalysisConfig{
			EntropyThreshold: 0.5,
			SnippetWidth:     120,
			MaxFragmentBytes: 1 << 20,
		},
		Rules: RulesConfig{},
		History: HistoryConfig{
			Enabled: true,
			MaxRuns: 1000,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// LoadConfig loads configuration from <root>/.genlens/config.json. A missing
// file yields the defaults; a malformed one is an error, since configuration
// problems are fatal at startup rather than per-request.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".genlens"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would make the engine misbehave silently.
func (c *Config) Validate() error {
	if c.Analysis.EntropyThreshold < 0 {
		return fmt.Errorf("analysis.entropyThreshold must be >= 0, got %v", c.Analysis.EntropyThreshold)
	}
	if c.Analysis.SnippetWidth < 0 {
		return fmt.Errorf("analysis.snippetWidth must be >= 0, got %d", c.Analysis.SnippetWidth)
	}
	switch c.Logging.Format {
	case "", "json", "human":
	default:
		return fmt.Errorf("logging.format must be json or human, got %q", c.Logging.Format)
	}
	return nil
}

// Save writes the configuration to <root>/.genlens/config.json.
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".genlens")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}
