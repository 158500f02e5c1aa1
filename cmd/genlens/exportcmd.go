package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"genlens/internal/export"
	"genlens/internal/history"
)

var (
	exportOut   string
	exportLimit int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export analysis history to a file",
	Long: `Export recorded analysis runs as JSON. An output path ending in .gz
is gzip-compressed.

Examples:
  genlens export
  genlens export --out=history.json.gz
  genlens export --limit=100`,
	Run: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "genlens-history.json",
		"Output path (.gz for compressed)")
	exportCmd.Flags().IntVar(&exportLimit, "limit", 0,
		"Export only the newest N runs (0 = all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) {
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

	exporter := export.NewExporter(store, logger)
	if err := exporter.ExportFile(context.Background(), exportOut, export.Options{Limit: exportLimit}); err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported history to %s\n", exportOut)
}
