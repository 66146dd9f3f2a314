package study

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFiles(t *testing.T) {
	c := &GeneratedContent{
		Topic:      "Go",
		Summary:    "S.",
		KeyPoints:  []string{"P."},
		Flashcards: []Flashcard{{Question: "Q?", Answer: "A."}},
	}

	t.Run("all formats", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		paths, err := WriteFiles(context.Background(), c, dir)
		if err != nil {
			t.Fatalf("WriteFiles failed: %v", err)
		}

		want := []string{"Go_flashcards.json", "Go_summary.txt", "Go_study.yaml"}
		if len(paths) != len(want) {
			t.Fatalf("Expected %d paths, got %v", len(want), paths)
		}
		for i, name := range want {
			if paths[i] != filepath.Join(dir, name) {
				t.Errorf("Expected path %s, got %s", filepath.Join(dir, name), paths[i])
			}
		}

		data, err := os.ReadFile(paths[1])
		if err != nil {
			t.Fatal(err)
		}
		if string(data) != SummaryText(c) {
			t.Errorf("Expected summary text on disk, got %q", data)
		}
	})

	t.Run("single format", func(t *testing.T) {
		dir := t.TempDir()
		paths, err := WriteFiles(context.Background(), c, dir, FormatJSON)
		if err != nil {
			t.Fatalf("WriteFiles failed: %v", err)
		}
		if len(paths) != 1 || !strings.HasSuffix(paths[0], "_flashcards.json") {
			t.Errorf("Expected only the flashcards file, got %v", paths)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := WriteFiles(context.Background(), c, t.TempDir(), "pdf"); err == nil {
			t.Error("Expected error for unknown format")
		}
	})
}
