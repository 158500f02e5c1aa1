package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DeclarationFile is the per-project settings file checked into a repo.
const DeclarationFile = ".genlens.toml"

// Declaration represents a project-level .genlens.toml. It carries the
// overrides a team wants versioned alongside the code, while config.json
// stays machine-local.
type Declaration struct {
	// EntropyThreshold overrides analysis.entropyThreshold when > 0.
	EntropyThreshold float64 `toml:"entropy_threshold,omitempty"`

	// Catalog points at a rule catalog relative to the declaration file.
	Catalog string `toml:"catalog,omitempty"`

	// DisabledRules lists rule ids to exclude from evaluation.
	DisabledRules []string `toml:"disabled_rules,omitempty"`
}

// LoadDeclaration reads <root>/.genlens.toml. A missing file returns
// (nil, nil): declarations are optional.
func LoadDeclaration(root string) (*Declaration, error) {
	path := filepath.Join(root, DeclarationFile)
	var decl Declaration
	if _, err := toml.DecodeFile(path, &decl); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("parse %s: %w", DeclarationFile, err)
	}
	if decl.EntropyThreshold < 0 {
		return nil, fmt.Errorf("%s: entropy_threshold must be >= 0, got %v", DeclarationFile, decl.EntropyThreshold)
	}
	return &decl, nil
}

// Apply folds the declaration's overrides into cfg. Catalog paths are
// resolved relative to root so the declaration stays portable.
func (d *Declaration) Apply(cfg *Config, root string) {
	if d == nil {
		return
	}
	if d.EntropyThreshold > 0 {
		cfg.Analysis.EntropyThreshold = d.EntropyThreshold
	}
	if d.Catalog != "" {
		cfg.Rules.CatalogPath = filepath.Join(root, d.Catalog)
	}
}
