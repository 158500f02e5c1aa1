package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"genlens/internal/history"
)

var (
	historyLimit  int
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent analysis runs",
	Long: `Show runs recorded in the local history database, newest first.

Examples:
  genlens history
  genlens history --limit=50 --format=json`,
	Run: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum runs to show")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "human",
		"Output format (human, json)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg, _, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)

	store, err := history.OpenStore(filepath.Join(rootFlag, ".genlens"), logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening history: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	runs, err := store.Recent(context.Background(), historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading history: %v\n", err)
		os.Exit(1)
	}

	if historyFormat == "json" {
		if runs == nil {
			runs = []history.Run{}
		}
		printJSON(runs)
		return
	}

	if len(runs) == 0 {
		fmt.Println("No recorded runs.")
		return
	}
	fmt.Printf("%-38s %-20s %-10s %-8s %-13s %5s %5s\n",
		"ID", "WHEN", "LANGUAGE", "MODE", "STATUS", "VIOL", "DPS")
	for _, run := range runs {
		fmt.Printf("%-38s %-20s %-10s %-8s %-13s %5d %5d\n",
			run.ID,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Language,
			run.Mode,
			run.Status,
			run.Violations,
			run.DecisionPoints)
	}
}
