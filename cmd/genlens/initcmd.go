package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"genlens/internal/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize genlens configuration",
	Long:  "Creates a .genlens/ directory with default configuration under the project root",
	RunE:  runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := filepath.Join(rootFlag, ".genlens")
	cfgPath := filepath.Join(dir, "config.json")

	if _, err := os.Stat(cfgPath); err == nil && !initForce {
		// Idempotent: already initialized counts as success.
		fmt.Println("genlens already initialized.")
		fmt.Printf("Configuration at: %s\n", cfgPath)
		fmt.Println("\nRun 'genlens init --force' to overwrite.")
		return nil
	}

	if err := config.DefaultConfig().Save(rootFlag); err != nil {
		return fmt.Errorf("write configuration: %w", err)
	}
	fmt.Printf("Initialized genlens configuration at %s\n", cfgPath)
	return nil
}
