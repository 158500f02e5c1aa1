// Package export writes recorded analysis history to portable files, either
// plain JSON or gzip-compressed JSON for archival and sharing.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"genlens/internal/history"
	"genlens/internal/version"
)

// Format selects the export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatGzipJSON Format = "json.gz"
)

// Options controls an export.
type Options struct {
	// Format defaults to FormatJSON; a .gz output path implies gzip.
	Format Format
	// Limit caps exported runs; 0 exports everything.
	Limit int
}

// Document is the export envelope.
type Document struct {
	Metadata Metadata      `json:"metadata"`
	Runs     []history.Run `json:"runs"`
}

// Metadata describes the export itself.
type Metadata struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Generated string `json:"generated"`
	RunCount  int    `json:"run_count"`
}

// Exporter reads from a history store and writes export documents.
type Exporter struct {
	store  *history.Store
	logger *slog.Logger
}

// NewExporter creates a new exporter.
func NewExporter(store *history.Store, logger *slog.Logger) *Exporter {
	return &Exporter{store: store, logger: logger}
}

// ExportFile writes the history to path, picking gzip when the path ends in
// .gz or opts.Format says so.
func (e *Exporter) ExportFile(ctx context.Context, path string, opts Options) error {
	format := opts.Format
	if format == "" {
		format = FormatJSON
	}
	if strings.HasSuffix(path, ".gz") {
		format = FormatGzipJSON
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := e.Export(ctx, f, format, opts.Limit); err != nil {
		return err
	}

	e.logger.Info("Exported analysis history", "path", path, "format", string(format))
	return f.Close()
}

// Export writes the history document to w in the given format.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format, limit int) error {
	var (
		runs []history.Run
		err  error
	)
	if limit > 0 {
		runs, err = e.store.Recent(ctx, limit)
	} else {
		runs, err = e.store.All(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if runs == nil {
		runs = []history.Run{}
	}

	doc := Document{
		Metadata: Metadata{
			Tool:      "genlens",
			Version:   version.Version,
			Generated: time.Now().UTC().Format(time.RFC3339),
			RunCount:  len(runs),
		},
		Runs: runs,
	}

	switch format {
	case FormatJSON:
		return writeJSON(w, &doc)
	case FormatGzipJSON:
		gz := gzip.NewWriter(w)
		if err := writeJSON(gz, &doc); err != nil {
			_ = gz.Close()
			return err
		}
		return gz.Close()
	default:
		return fmt.Errorf("unknown export format %q", format)
	}
}

func writeJSON(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// ReadDocument parses an export file, transparently handling gzip.
func ReadDocument(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip export: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse export: %w", err)
	}
	return &doc, nil
}
