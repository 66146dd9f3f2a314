package ui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/explainer/narration"
	"github.com/dgnsrekt/explainer/study"
	"github.com/dgnsrekt/explainer/study/quiz"
)

const testExplanation = "Go is a statically typed compiled language. " +
	"It was designed at Google by Robert Griesemer. " +
	"Goroutines make concurrent programming much simpler."

func testController(t *testing.T) *narration.Controller {
	t.Helper()
	cfg := narration.DefaultConfig()
	cfg.Enabled = false
	cfg.AnimationDuration = time.Hour
	ctrl := narration.NewController(narration.NewEngine(nil, cfg), narration.ControllerConfig{
		RevealInterval: time.Millisecond,
		SettleDelay:    time.Millisecond,
	})
	t.Cleanup(ctrl.Close)
	return ctrl
}

func testModel(t *testing.T, cfg Config) model {
	t.Helper()
	m := newModel(cfg, testController(t), nil)
	return update(m, tea.WindowSizeMsg{Width: 80, Height: 24})
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(m model, msg tea.Msg) model {
	next, _ := m.Update(msg)
	return next.(model)
}

// generated drives a model through generation into the content view.
func generated(t *testing.T) model {
	t.Helper()
	m := testModel(t, Config{Topic: "Go", Explanation: testExplanation})
	in := m.input.rawInput()

	m = update(m, startGenerationMsg{input: in})
	msg := generateCmd(in, nil, 0)()
	m = update(m, msg)
	if m.state != stateShowContent {
		t.Fatalf("Expected content view, got %v", m.state)
	}
	return m
}

func TestInputRejectsMissingInformation(t *testing.T) {
	m := testModel(t, Config{})

	next, cmd := m.Update(key("ctrl+s"))
	m = next.(model)

	if cmd != nil {
		t.Error("Expected no generation command for empty input")
	}
	if !errors.Is(m.input.err, study.ErrEmptyTopic) {
		t.Errorf("Expected ErrEmptyTopic, got %v", m.input.err)
	}
	if !strings.Contains(m.View(), "Missing information") {
		t.Error("Expected the error to be shown")
	}
}

func TestInputAdjustsSettings(t *testing.T) {
	m := testModel(t, Config{})

	m = update(m, key("tab"))
	m = update(m, key("tab"))
	if m.input.focus != fieldCards {
		t.Fatalf("Expected flashcards focused, got %v", m.input.focus)
	}

	for range 10 {
		m = update(m, key("+"))
	}
	if m.input.cards != study.MaxFlashcards {
		t.Errorf("Expected cards clamped to %d, got %d", study.MaxFlashcards, m.input.cards)
	}
	for range 20 {
		m = update(m, key("-"))
	}
	if m.input.cards != study.MinFlashcards {
		t.Errorf("Expected cards clamped to %d, got %d", study.MinFlashcards, m.input.cards)
	}

	m = update(m, key("tab"))
	m = update(m, key("-"))
	if m.input.duration != study.DefaultAnimationSeconds-1 {
		t.Errorf("Expected duration %d, got %d", study.DefaultAnimationSeconds-1, m.input.duration)
	}

	m = update(m, key("shift+tab"))
	m = update(m, key("shift+tab"))
	m = update(m, key("shift+tab"))
	if m.input.focus != fieldTopic {
		t.Errorf("Expected focus back on topic, got %v", m.input.focus)
	}
}

func TestInputSubmit(t *testing.T) {
	m := testModel(t, Config{Topic: "  Go ", Explanation: testExplanation, FlashcardCount: 4})

	_, cmd := m.Update(key("ctrl+s"))
	if cmd == nil {
		t.Fatal("Expected a generation command")
	}
	msg, ok := cmd().(startGenerationMsg)
	if !ok {
		t.Fatalf("Expected startGenerationMsg, got %T", cmd())
	}
	if msg.input.Topic != "Go" || msg.input.FlashcardCount != 4 || msg.input.AnimationDurationSeconds != study.DefaultAnimationSeconds {
		t.Errorf("Unexpected input %+v", msg.input)
	}
}

func TestGenerationLoadsController(t *testing.T) {
	m := generated(t)

	st := m.common.ctrl.State()
	if st.Total != 3 || st.Phase != narration.PhaseIdle {
		t.Errorf("Expected 3 idle points, got %+v", st)
	}
	if len(m.content.content.Flashcards) != 3 || len(m.content.content.Quiz) != 3 {
		t.Errorf("Expected 3 flashcards and 3 questions, got %d and %d",
			len(m.content.content.Flashcards), len(m.content.content.Quiz))
	}
	if m.content.state != contentStateStatusMessage {
		t.Error("Expected the ready message in the status bar")
	}
}

func TestGenerationError(t *testing.T) {
	m := testModel(t, Config{})
	m = update(m, startGenerationMsg{input: study.RawInput{Topic: "Go"}})
	m = update(m, generatedMsg{err: study.ErrEmptyExplanation})

	if m.state != stateInput {
		t.Errorf("Expected input state after failure, got %v", m.state)
	}
	if !errors.Is(m.input.err, study.ErrEmptyExplanation) {
		t.Errorf("Expected error kept on the form, got %v", m.input.err)
	}
}

func TestStaleGenerationIgnored(t *testing.T) {
	m := testModel(t, Config{})
	m = update(m, generatedMsg{content: &study.GeneratedContent{Topic: "late"}})

	if m.state != stateInput {
		t.Errorf("Expected to stay on the form, got %v", m.state)
	}
}

func TestGeneratingProgress(t *testing.T) {
	g := newGeneratingModel(study.RawInput{Topic: "Go"})
	for range 20 {
		g, _ = g.update(progressTickMsg{})
	}
	if g.progress != progressCeiling {
		t.Errorf("Expected progress to stop at %d, got %d", progressCeiling, g.progress)
	}
	if !strings.Contains(g.view(), "Finalizing...") {
		t.Error("Expected final stage label")
	}
}

func TestProgressLabel(t *testing.T) {
	tests := []struct {
		progress int
		want     string
	}{
		{0, "Analyzing content..."},
		{29, "Analyzing content..."},
		{30, "Creating animations..."},
		{60, "Generating flashcards..."},
		{90, "Finalizing..."},
		{100, "Finalizing..."},
	}

	for _, tt := range tests {
		if got := progressLabel(tt.progress); got != tt.want {
			t.Errorf("progressLabel(%d) = %q, want %q", tt.progress, got, tt.want)
		}
	}
}

func TestContentTabs(t *testing.T) {
	m := generated(t)

	want := []tab{tabFlashcards, tabQuiz, tabSummary, tabAnimation}
	for _, w := range want {
		m = update(m, key("tab"))
		if m.content.tab != w {
			t.Errorf("Expected tab %v, got %v", tabNames[w], tabNames[m.content.tab])
		}
	}

	m = update(m, key("shift+tab"))
	if m.content.tab != tabSummary {
		t.Errorf("Expected shift+tab to wrap to Summary, got %v", tabNames[m.content.tab])
	}
}

func TestPlaybackKeys(t *testing.T) {
	m := generated(t)
	ctrl := m.common.ctrl

	steps := []struct {
		key   string
		check func(narration.PlaybackState) bool
		want  string
	}{
		{"s", func(st narration.PlaybackState) bool { return st.Phase == narration.PhasePlaying }, "playing"},
		{" ", func(st narration.PlaybackState) bool { return st.Phase == narration.PhasePaused }, "paused"},
		{" ", func(st narration.PlaybackState) bool { return st.Phase == narration.PhasePlaying }, "playing again"},
		{"r", func(st narration.PlaybackState) bool { return st.Phase == narration.PhaseIdle && st.RevealedText == "" }, "idle"},
		{"v", func(st narration.PlaybackState) bool { return st.VoiceEnabled }, "voice on"},
	}

	for _, step := range steps {
		m = update(m, key(step.key))
		if st := ctrl.State(); !step.check(st) {
			t.Errorf("After %q expected %s, got %+v", step.key, step.want, st)
		}
		if st := m.content.playback; !step.check(st) {
			t.Errorf("After %q expected the view state %s, got %+v", step.key, step.want, st)
		}
	}
}

func TestNewExplanationResetsPlayback(t *testing.T) {
	m := generated(t)
	m = update(m, key("s"))
	m = update(m, key("n"))

	if m.state != stateInput {
		t.Errorf("Expected input state, got %v", m.state)
	}
	if st := m.common.ctrl.State(); st.Phase != narration.PhaseIdle {
		t.Errorf("Expected playback reset, got %v", st.Phase)
	}
	if m.input.topic.Value() != "Go" {
		t.Errorf("Expected the topic to be kept, got %q", m.input.topic.Value())
	}
}

func TestStateChangedUpdatesView(t *testing.T) {
	m := generated(t)
	m = update(m, narration.StateChangedMsg{State: narration.PlaybackState{
		Phase:        narration.PhasePlaying,
		RevealedText: "Go is a",
		Total:        3,
	}})

	if !strings.Contains(m.View(), "Go is a") {
		t.Error("Expected revealed text in the view")
	}
}

func TestFlashcardDeck(t *testing.T) {
	d := deckModel{cards: []study.Flashcard{
		{Question: "Q1?", Answer: "A1."},
		{Question: "Q2?", Answer: "A2."},
	}}

	d.prev()
	if d.index != 0 {
		t.Errorf("Expected to stay on the first card, got %d", d.index)
	}

	d.flip()
	if !d.flipped || !strings.Contains(d.view(80), "A1.") {
		t.Error("Expected the answer after flipping")
	}

	d.next()
	if d.index != 1 || d.flipped {
		t.Errorf("Expected second card face up, got index %d flipped %v", d.index, d.flipped)
	}
	if !strings.Contains(d.view(80), "Card 2") {
		t.Error("Expected card number in view")
	}

	d.next()
	if d.index != 1 {
		t.Errorf("Expected to stay on the last card, got %d", d.index)
	}
}

func TestQuizModel(t *testing.T) {
	questions := study.Synthesize(testExplanation, 3).Quiz
	q := newQuizModel(questions)

	q = q.update(key("enter"))
	if !errors.Is(q.err, quiz.ErrIncomplete) {
		t.Errorf("Expected ErrIncomplete, got %v", q.err)
	}

	q = q.update(key("1"))
	q = q.update(key("2"))
	if q.cursor != 2 {
		t.Errorf("Expected cursor to advance to 2, got %d", q.cursor)
	}
	q = q.update(key("1"))
	q = q.update(key("enter"))

	if !q.attempt.Submitted() || q.attempt.Score() != 2 {
		t.Errorf("Expected submitted with score 2, got %v %d", q.attempt.Submitted(), q.attempt.Score())
	}
	if !strings.Contains(q.view(80), "Your Score: 2/3") {
		t.Error("Expected score banner")
	}

	q = q.update(key("r"))
	if q.attempt.Submitted() || q.attempt.Selection(0) != quiz.Unset {
		t.Error("Expected retry to clear the attempt")
	}
}

func TestPlaybackView(t *testing.T) {
	idle := playbackView(narration.PlaybackState{Total: 2}, 80)
	if !strings.Contains(idle, revealPlaceholder) || !strings.Contains(idle, "Ready to explain") {
		t.Errorf("Expected placeholder and ready status, got %q", idle)
	}

	speaking := playbackView(narration.PlaybackState{
		Phase:        narration.PhasePlaying,
		CurrentIndex: 1,
		Total:        2,
		RevealedText: "Second point",
		IsNarrating:  true,
	}, 80)
	if !strings.Contains(speaking, "Second point") || !strings.Contains(speaking, "Speaking point 2 of 2") {
		t.Errorf("Expected revealed text and speaking status, got %q", speaking)
	}
}

func TestProgressDots(t *testing.T) {
	tests := []struct {
		name   string
		state  narration.PlaybackState
		filled int
	}{
		{"idle", narration.PlaybackState{Total: 3}, 0},
		{"second point", narration.PlaybackState{Phase: narration.PhasePlaying, CurrentIndex: 1, Total: 3}, 2},
		{"completed", narration.PlaybackState{Phase: narration.PhaseCompleted, Total: 3}, 3},
		{"empty", narration.PlaybackState{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := strings.Count(progressDots(tt.state), "●"); got != tt.filled {
				t.Errorf("Expected %d filled dots, got %d", tt.filled, got)
			}
		})
	}
}

func TestSummaryMarkdown(t *testing.T) {
	c := &study.GeneratedContent{
		Topic:       "Go",
		Summary:     "Go is simple.",
		KeyPoints:   []string{"One.", "Two."},
		GeneratedAt: time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC),
	}

	got := summaryMarkdown(c)
	for _, want := range []string{"# Go", "*Generated Mar 1, 2024 3:04 PM*", "## Summary\n\nGo is simple.", "1. One.\n2. Two.\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected %q in %q", want, got)
		}
	}
}

func TestPlaybackKeysIgnoredOutOfPhase(t *testing.T) {
	m := generated(t)
	ctrl := m.common.ctrl

	m = update(m, key(" "))
	if st := ctrl.State(); st.Phase != narration.PhaseIdle {
		t.Errorf("Expected space to do nothing while idle, got %v", st.Phase)
	}

	m = update(m, key("s"))
	m = update(m, key("s"))
	st := ctrl.State()
	if st.Phase != narration.PhasePlaying || st.CurrentIndex != 0 {
		t.Errorf("Expected a second start to keep playing point 0, got %+v", st)
	}
	if m.content.playback.Phase != narration.PhasePlaying {
		t.Errorf("Expected the view to show playing, got %v", m.content.playback.Phase)
	}
}
