package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"genlens/internal/analyze"
	"genlens/internal/config"
	"genlens/internal/history"
	"genlens/internal/rules"
	"genlens/internal/scoring"
)

var (
	analyzeLanguage   string
	analyzeCandidates string
	analyzeFormat     string
	analyzeThreshold  float64
	analyzeNoHistory  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a code fragment",
	Long: `Analyze a code fragment for rule violations and, when token
probabilities are supplied, high-entropy decision points.

The fragment is read from the given file, or from stdin when the file is "-"
or omitted. Token probabilities come from a JSON sidecar given with
--candidates: an array of positions, each an array of {"text", "probability"}
objects.

Examples:
  genlens analyze handler.py
  genlens analyze --language=python - < snippet.py
  genlens analyze gen.js --candidates=gen.tokens.json --format=json`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeLanguage, "language", "l", "",
		"Fragment language (inferred from the file extension when omitted)")
	analyzeCmd.Flags().StringVar(&analyzeCandidates, "candidates", "",
		"Path to a JSON file of per-position token candidates")
	analyzeCmd.Flags().StringVarP(&analyzeFormat, "format", "f", "human",
		"Output format (human, json)")
	analyzeCmd.Flags().Float64Var(&analyzeThreshold, "threshold", 0,
		"Entropy threshold in bits (overrides config when > 0)")
	analyzeCmd.Flags().BoolVar(&analyzeNoHistory, "no-history", false,
		"Do not record this run in the local history")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	cfg, decl, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	fragment, err := readFragment(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading fragment: %v\n", err)
		os.Exit(1)
	}
	if cfg.Analysis.MaxFragmentBytes > 0 && len(fragment) > cfg.Analysis.MaxFragmentBytes {
		fmt.Fprintf(os.Stderr, "Error: fragment exceeds %d bytes\n", cfg.Analysis.MaxFragmentBytes)
		os.Exit(1)
	}

	language := analyzeLanguage
	if language == "" {
		language = languageFromPath(path)
	}
	if language == "" {
		fmt.Fprintln(os.Stderr, "Error: --language is required when it cannot be inferred from the file name")
		os.Exit(1)
	}

	var candidates [][]scoring.TokenCandidate
	if analyzeCandidates != "" {
		candidates, err = readCandidates(analyzeCandidates)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading candidates: %v\n", err)
			os.Exit(1)
		}
	}

	set, err := loadRuleSet(cfg, decl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	registry, err := rules.NewRegistry(set)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	threshold := cfg.Analysis.EntropyThreshold
	if analyzeThreshold > 0 {
		threshold = analyzeThreshold
	}

	engine := analyze.NewEngine(registry, analyze.Options{
		EntropyThreshold: threshold,
		SnippetWidth:     cfg.Analysis.SnippetWidth,
	}, logger)

	ctx := context.Background()
	result := engine.Analyze(ctx, analyze.Request{
		Fragment:   fragment,
		Language:   language,
		Candidates: candidates,
	})

	if cfg.History.Enabled && !analyzeNoHistory {
		recordRun(ctx, cfg, logger, result, language)
	}

	if analyzeFormat == "json" {
		printJSON(result)
		return
	}
	printHumanResult(result)
}

// recordRun appends the result to the local history store. History problems
// are logged, not fatal: the analysis already succeeded.
func recordRun(ctx context.Context, cfg *config.Config, logger *slog.Logger, result *analyze.Result, language string) {
	store, err := history.OpenStore(filepath.Join(rootFlag, ".genlens"), logger)
	if err != nil {
		logger.Warn("History store unavailable", "error", err)
		return
	}
	defer store.Close()

	if err := store.Record(ctx, result, language); err != nil {
		logger.Warn("Failed to record run", "error", err)
		return
	}
	if cfg.History.MaxRuns > 0 {
		if _, err := store.Prune(ctx, cfg.History.MaxRuns); err != nil {
			logger.Warn("Failed to prune history", "error", err)
		}
	}
}

// readFragment reads the file, or stdin for "-".
func readFragment(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

// readCandidates parses the token-candidate sidecar.
func readCandidates(path string) ([][]scoring.TokenCandidate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var candidates [][]scoring.TokenCandidate
	if err := json.Unmarshal(data, &candidates); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return candidates, nil
}

// languageFromPath infers the language identifier from a file extension.
func languageFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go":
		return "go"
	case ".py":
		return "python"
	case ".js", ".mjs", ".cjs":
		return "javascript"
	case ".ts":
		return "typescript"
	case ".tsx":
		return "tsx"
	case ".rs":
		return "rust"
	case ".java":
		return "java"
	case ".kt", ".kts":
		return "kotlin"
	default:
		return ""
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding output: %v\n", err)
		os.Exit(1)
	}
}

func printHumanResult(res *analyze.Result) {
	fmt.Printf("Status: %s", res.Summary.Status)
	if res.Partial {
		fmt.Print(" (partial)")
	}
	fmt.Println()
	fmt.Printf("Mode: %s", res.StructuralMode)
	if res.FallbackReason != "" {
		fmt.Printf(" (%s)", res.FallbackReason)
	}
	fmt.Println()

	if len(res.DecisionPoints) > 0 {
		fmt.Printf("\nDecision points (%d):\n", len(res.DecisionPoints))
		for _, dp := range res.DecisionPoints {
			top := ""
			if len(dp.Candidates) > 0 {
				top = dp.Candidates[0].Text
			}
			fmt.Printf("  position %d: entropy %.3f bits (top candidate %q)\n",
				dp.Position, dp.Entropy, top)
		}
	}

	if len(res.Violations) > 0 {
		fmt.Printf("\nViolations (%d):\n", len(res.Violations))
		for _, v := range res.Violations {
			fmt.Printf("  %s:%d:%d [%s] %s\n", v.RuleID, v.Line, v.Column, v.Severity, v.Message)
			if v.Snippet != "" {
				fmt.Printf("    %s\n", v.Snippet)
			}
		}
	} else {
		fmt.Println("\nNo violations.")
	}

	if len(res.SkippedRules) > 0 {
		fmt.Printf("\nSkipped rules (need parsed structure): %s\n", strings.Join(res.SkippedRules, ", "))
	}
	for _, fault := range res.RuleFaults {
		fmt.Printf("Rule fault: %s: %s\n", fault.RuleID, fault.Reason)
	}
	if res.FailedPositions > 0 {
		fmt.Printf("Unscorable candidate positions: %d\n", res.FailedPositions)
	}
}
