package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLanguageFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "go"},
		{"script.py", "python"},
		{"app.js", "javascript"},
		{"mod.mjs", "javascript"},
		{"app.ts", "typescript"},
		{"view.tsx", "tsx"},
		{"lib.rs", "rust"},
		{"Main.java", "java"},
		{"App.kt", "kotlin"},
		{"notes.txt", ""},
		{"-", ""},
	}
	for _, tt := range tests {
		if got := languageFromPath(tt.path); got != tt.want {
			t.Errorf("languageFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestReadCandidates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	data := `[
  [{"text": "if", "probability": 0.5}, {"text": "while", "probability": 0.5}],
  [{"text": "x", "probability": 1.0}]
]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	candidates, err := readCandidates(path)
	if err != nil {
		t.Fatalf("readCandidates: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("got %d positions, want 2", len(candidates))
	}
	if candidates[0][0].Text != "if" || candidates[0][0].Probability != 0.5 {
		t.Errorf("candidates[0][0] = %+v", candidates[0][0])
	}
}

func TestReadCandidatesRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := readCandidates(path); err == nil {
		t.Error("malformed candidates file should error")
	}
}
