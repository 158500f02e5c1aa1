package export

import (
	"context"
	"path/filepath"
	"testing"

	"genlens/internal/analyze"
	"genlens/internal/evaluate"
	"genlens/internal/history"
	"genlens/internal/logging"
	"genlens/internal/rules"
	"genlens/internal/structure"
)

func seededStore(t *testing.T, n int) *history.Store {
	t.Helper()
	store, err := history.OpenStore(t.TempDir(), logging.NewDiscardLogger())
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	for i := 0; i < n; i++ {
		res := &analyze.Result{
			ID:             idFor(i),
			StructuralMode: structure.ModeParsed,
			Summary: evaluate.Summary{
				BySeverity: map[rules.Severity]int{},
				Status:     evaluate.StatusCompliant,
			},
			RuleSetVersion: "v1",
		}
		if err := store.Record(context.Background(), res, "go"); err != nil {
			t.Fatal(err)
		}
	}
	return store
}

func idFor(i int) string {
	return "run-" + string(rune('a'+i))
}

func TestExportJSONRoundTrip(t *testing.T) {
	store := seededStore(t, 3)
	exp := NewExporter(store, logging.NewDiscardLogger())

	path := filepath.Join(t.TempDir(), "history.json")
	if err := exp.ExportFile(context.Background(), path, Options{}); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if doc.Metadata.Tool != "genlens" {
		t.Errorf("Tool = %q", doc.Metadata.Tool)
	}
	if doc.Metadata.RunCount != 3 || len(doc.Runs) != 3 {
		t.Errorf("RunCount = %d, runs = %d", doc.Metadata.RunCount, len(doc.Runs))
	}
}

func TestExportGzipByExtension(t *testing.T) {
	store := seededStore(t, 2)
	exp := NewExporter(store, logging.NewDiscardLogger())

	path := filepath.Join(t.TempDir(), "history.json.gz")
	if err := exp.ExportFile(context.Background(), path, Options{}); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatalf("ReadDocument: %v", err)
	}
	if len(doc.Runs) != 2 {
		t.Errorf("runs = %d, want 2", len(doc.Runs))
	}
}

func TestExportLimit(t *testing.T) {
	store := seededStore(t, 5)
	exp := NewExporter(store, logging.NewDiscardLogger())

	path := filepath.Join(t.TempDir(), "recent.json")
	if err := exp.ExportFile(context.Background(), path, Options{Limit: 2}); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Runs) != 2 {
		t.Errorf("runs = %d, want 2", len(doc.Runs))
	}
}

func TestExportEmptyStore(t *testing.T) {
	store := seededStore(t, 0)
	exp := NewExporter(store, logging.NewDiscardLogger())

	path := filepath.Join(t.TempDir(), "empty.json")
	if err := exp.ExportFile(context.Background(), path, Options{}); err != nil {
		t.Fatalf("ExportFile: %v", err)
	}

	doc, err := ReadDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Runs == nil || len(doc.Runs) != 0 {
		t.Errorf("empty export should carry an empty runs array, got %#v", doc.Runs)
	}
	if doc.Metadata.RunCount != 0 {
		t.Errorf("RunCount = %d", doc.Metadata.RunCount)
	}
}
