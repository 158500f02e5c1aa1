package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"genlens/internal/config"
	"genlens/internal/logging"
	"genlens/internal/rules"
	"genlens/internal/version"
)

var (
	rootFlag      string
	logLevelFlag  string
	logFormatFlag string
	verboseFlag   int
	quietFlag     bool

	// logFile is the open rotated log file, when config routes logs there.
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "genlens",
	Short: "genlens - generated-code analysis engine",
	Long: `genlens inspects AI-generated code fragments. It scores token-probability
distributions to surface high-entropy decision points and evaluates a
configurable rule catalog against the fragment's parsed or lexical structure.`,
	Version: version.Version,
}

func init() {
	rootCmd.SetVersionTemplate("genlens version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", ".",
		"Project root (location of .genlens/ and .genlens.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: human or json (default from config)")
	rootCmd.PersistentFlags().CountVarP(&verboseFlag, "verbose", "v",
		"Increase log verbosity (-v info, -vv debug)")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false,
		"Suppress log output")
	cobra.OnFinalize(closeLogFile)
}

func closeLogFile() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

// loadConfig reads config.json and folds in the project declaration. The
// declaration is returned too so callers that need its rule disables do not
// read the file again.
func loadConfig() (*config.Config, *config.Declaration, error) {
	cfg, err := config.LoadConfig(rootFlag)
	if err != nil {
		return nil, nil, err
	}
	decl, err := config.LoadDeclaration(rootFlag)
	if err != nil {
		return nil, nil, err
	}
	decl.Apply(cfg, rootFlag)
	return cfg, decl, nil
}

// newLogger builds the CLI logger, letting flags override the config.
// Precedence for the level: --log-level, then -v/-q, then config. Logs go to
// the configured file or stderr, never stdout, so command output stays
// machine-readable.
func newLogger(cfg *config.Config) *slog.Logger {
	if quietFlag {
		return logging.NewDiscardLogger()
	}

	format := cfg.Logging.Format
	if logFormatFlag != "" {
		format = logFormatFlag
	}
	level := logging.LevelFromString(cfg.Logging.Level)
	if verboseFlag > 0 {
		level = logging.LevelFromVerbosity(verboseFlag, false)
	}
	if logLevelFlag != "" {
		level = logging.LevelFromString(logLevelFlag)
	}

	if cfg.Logging.File != "" {
		path := cfg.Logging.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootFlag, path)
		}
		logger, closer, err := logging.NewFileLogger(path, format, level)
		if err == nil {
			logFile = closer
			return logger
		}
		fmt.Fprintf(os.Stderr, "Warning: cannot open log file %s: %v\n", path, err)
	}
	return logging.NewWithLevel(format, level, os.Stderr)
}

// loadRuleSet builds the active rule set: catalog from config when set,
// built-in defaults otherwise, with declaration disables applied.
func loadRuleSet(cfg *config.Config, decl *config.Declaration) (*rules.RuleSet, error) {
	set := rules.DefaultRuleSet()
	if cfg.Rules.CatalogPath != "" {
		loaded, err := rules.LoadCatalog(cfg.Rules.CatalogPath)
		if err != nil {
			return nil, fmt.Errorf("load catalog %s: %w", cfg.Rules.CatalogPath, err)
		}
		set = loaded
	}
	if decl != nil {
		set = set.WithDisabled(decl.DisabledRules...)
	}
	return set, nil
}
