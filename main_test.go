package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgnsrekt/explainer/narration"
	"github.com/dgnsrekt/explainer/narration/engines/mock"
	"github.com/dgnsrekt/explainer/study"
)

const testExplanation = "Photosynthesis turns light into chemical energy. " +
	"It takes place inside the chloroplasts of plant cells. " +
	"Oxygen is released as a byproduct of the reaction."

func TestTopicFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"notes.md", "notes"},
		{"/tmp/cell_biology.md", "cell biology"},
		{"dir/plate-tectonics.txt", "plate tectonics"},
		{"README", "README"},
	}

	for _, tt := range tests {
		if got := topicFromPath(tt.path); got != tt.want {
			t.Errorf("topicFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestReadExplanation(t *testing.T) {
	tests := []struct {
		name  string
		path  string
		input string
		want  string
	}{
		{
			name:  "plain text",
			path:  "notes.txt",
			input: "Line one  is\r\nhere.",
			want:  "Line one is\nhere.",
		},
		{
			name:  "markdown",
			path:  "notes.md",
			input: "# Cells\n\nCells are **small**.\n",
			want:  "Cells. Cells are small.",
		},
		{
			name:  "frontmatter",
			path:  "notes.md",
			input: "---\ntitle: x\n---\nBody text.\n",
			want:  "Body text.",
		},
		{
			name:  "stdin",
			path:  "",
			input: "# not a heading for stdin",
			want:  "# not a heading for stdin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readExplanation(strings.NewReader(tt.input), tt.path)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidateStyle(t *testing.T) {
	for _, s := range []string{"auto", "dark", "light", "notty"} {
		if err := validateStyle(s); err != nil {
			t.Errorf("Expected style %q to be valid, got %v", s, err)
		}
	}

	if err := validateStyle(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected an error for a missing style file")
	}
}

func TestStudyMarkdown(t *testing.T) {
	c, err := study.Generate(study.RawInput{
		Topic:                    "Photosynthesis",
		Explanation:              testExplanation,
		FlashcardCount:           3,
		AnimationDurationSeconds: 5,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	got := studyMarkdown(c)
	for _, want := range []string{
		"# Photosynthesis\n\n## Summary\n\n",
		"## Key Points\n\n1. Photosynthesis turns light into chemical energy.\n",
		"## Flashcards",
		"**Card 3.**",
		"## Quiz",
		"   - d) None of the above options are correct.\n",
		"*Answers: 1a, 2a, 3a*\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in:\n%s", want, got)
		}
	}
}

func TestExportStudy(t *testing.T) {
	in := study.RawInput{
		Topic:                    "Photosynthesis",
		Explanation:              testExplanation,
		FlashcardCount:           3,
		AnimationDurationSeconds: 5,
	}

	t.Run("all formats", func(t *testing.T) {
		dir := t.TempDir()
		var out bytes.Buffer
		if err := exportStudy(context.Background(), &out, in, dir, study.Formats); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		if len(lines) != len(study.Formats) {
			t.Fatalf("Expected %d paths, got %q", len(study.Formats), out.String())
		}
		for _, p := range lines {
			if _, err := os.Stat(p); err != nil {
				t.Errorf("Expected %s to exist, got %v", p, err)
			}
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		err := exportStudy(context.Background(), &bytes.Buffer{}, in, t.TempDir(), []string{"pdf"})
		if err == nil || !strings.Contains(err.Error(), "unknown format") {
			t.Errorf("Expected unknown format error, got %v", err)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		bad := in
		bad.Topic = " "
		err := exportStudy(context.Background(), &bytes.Buffer{}, bad, t.TempDir(), study.Formats)
		if !errors.Is(err, study.ErrEmptyTopic) {
			t.Errorf("Expected ErrEmptyTopic, got %v", err)
		}
	})
}

func TestNewSpeaker(t *testing.T) {
	cfg := narration.DefaultConfig()
	cfg.Piper.Binary = "explainer-test-no-such-piper"

	t.Run("none", func(t *testing.T) {
		cfg := cfg
		cfg.Engine = narration.EngineNone
		s, closer, err := newSpeaker(cfg)
		if err != nil || s != nil {
			t.Errorf("Expected no speaker, got %v %v", s, err)
		}
		closer()
	})

	t.Run("mock", func(t *testing.T) {
		cfg := cfg
		cfg.Engine = narration.EngineMock
		s, closer, err := newSpeaker(cfg)
		defer closer()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if _, ok := s.(*mock.Speaker); !ok {
			t.Errorf("Expected a mock speaker, got %T", s)
		}
	})

	t.Run("piper missing", func(t *testing.T) {
		cfg := cfg
		cfg.Engine = narration.EnginePiper
		_, closer, err := newSpeaker(cfg)
		closer()
		if !errors.Is(err, narration.ErrSpeakerUnavailable) {
			t.Errorf("Expected ErrSpeakerUnavailable, got %v", err)
		}
	})

	t.Run("auto falls back", func(t *testing.T) {
		cfg := cfg
		cfg.Engine = narration.EngineAuto
		s, closer, err := newSpeaker(cfg)
		closer()
		if err != nil || s != nil {
			t.Errorf("Expected timer-only pacing, got %v %v", s, err)
		}
	})
}

func TestNarrate(t *testing.T) {
	cfg := narration.DefaultConfig()
	cfg.Engine = narration.EngineNone
	cfg.Enabled = false
	cfg.RevealInterval = time.Millisecond
	cfg.SettleDelay = time.Millisecond
	cfg.AnimationDuration = 10 * time.Millisecond

	ctrl, closer, err := newController(cfg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer closer()

	c := &study.GeneratedContent{
		Topic:     "Cells",
		KeyPoints: []string{"Cells are small.", "Cells divide."},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	if err := narrate(ctx, &out, ctrl, c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if ctx.Err() != nil {
		t.Fatal("Expected narration to complete before the timeout")
	}

	got := out.String()
	for _, want := range []string{"1/2  Cells are small.", "2/2  Cells divide.", narration.DefaultCompletionMessage} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
	if strings.Index(got, "1/2") > strings.Index(got, "2/2") {
		t.Errorf("Expected points in order, got %q", got)
	}
}

func TestNarrateStopsOnCancel(t *testing.T) {
	cfg := narration.DefaultConfig()
	cfg.Enabled = false
	cfg.Engine = narration.EngineNone
	cfg.AnimationDuration = time.Hour

	ctrl, closer, err := newController(cfg)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	defer closer()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := &study.GeneratedContent{Topic: "Cells", KeyPoints: []string{"Cells are small."}}
	if err := narrate(ctx, &bytes.Buffer{}, ctrl, c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if st := ctrl.State(); st.Phase != narration.PhaseIdle {
		t.Errorf("Expected playback reset, got %v", st.Phase)
	}
}
