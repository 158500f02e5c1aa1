package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"genlens/internal/rules"
)

var rulesFormat string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and validate rule catalogs",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active rule set",
	Long: `List the rules the analyzer would apply, after config and project
declaration are taken into account.`,
	Run: runRulesList,
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <catalog>",
	Short: "Validate a rule catalog file",
	Long: `Parse and validate a YAML, JSON, or TOML rule catalog without
activating it. Exits non-zero when the catalog would be rejected.`,
	Args: cobra.ExactArgs(1),
	Run:  runRulesValidate,
}

func init() {
	rulesListCmd.Flags().StringVarP(&rulesFormat, "format", "f", "human",
		"Output format (human, json)")
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}

// ruleInfo is the JSON shape for rules list.
type ruleInfo struct {
	ID          string `json:"id"`
	Severity    string `json:"severity"`
	Enabled     bool   `json:"enabled"`
	Capability  string `json:"capability"`
	Description string `json:"description"`
}

func runRulesList(cmd *cobra.Command, args []string) {
	cfg, decl, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	set, err := loadRuleSet(cfg, decl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if rulesFormat == "json" {
		infos := make([]ruleInfo, 0, set.Len())
		for _, r := range set.Rules() {
			infos = append(infos, ruleInfo{
				ID:          r.ID,
				Severity:    string(r.Severity),
				Enabled:     r.Enabled,
				Capability:  capabilityName(r.Capability),
				Description: r.Description,
			})
		}
		printJSON(map[string]any{
			"version": set.Version(),
			"rules":   infos,
		})
		return
	}

	fmt.Printf("Rule set %s (%d rules)\n\n", set.Version(), set.Len())
	for _, r := range set.Rules() {
		state := "enabled"
		if !r.Enabled {
			state = "disabled"
		}
		fmt.Printf("  %-24s %-8s %-8s %s\n", r.ID, r.Severity, state, r.Description)
	}
}

func runRulesValidate(cmd *cobra.Command, args []string) {
	set, err := rules.LoadCatalog(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid catalog: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("OK: %d rules, version %s\n", set.Len(), set.Version())
}

func capabilityName(c rules.Capability) string {
	if c == rules.CapTree {
		return "tree"
	}
	return "pattern"
}
