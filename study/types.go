// Package study derives study material (summary, key points, flashcards and
// a quiz) from a topic and a free-text explanation.
package study

import (
	"time"

	"github.com/google/uuid"
)

// Bounds for the user-tunable generation settings.
const (
	MinFlashcards = 3
	MaxFlashcards = 10

	MinAnimationSeconds = 3
	MaxAnimationSeconds = 10

	DefaultFlashcards       = 5
	DefaultAnimationSeconds = 5
)

// RawInput is what the user hands over to start a generation.
type RawInput struct {
	Topic                    string
	Explanation              string
	FlashcardCount           int
	AnimationDurationSeconds int
}

// AnimationDuration returns the configured per-point pacing as a duration.
func (in RawInput) AnimationDuration() time.Duration {
	return time.Duration(in.AnimationDurationSeconds) * time.Second
}

// Flashcard is a single question/answer card.
type Flashcard struct {
	Question string `json:"question" yaml:"question"`
	Answer   string `json:"answer"   yaml:"answer"`
}

// QuizQuestion is a multiple-choice question with exactly four options.
type QuizQuestion struct {
	Question     string    `json:"question"      yaml:"question"`
	Options      [4]string `json:"options"       yaml:"options"`
	CorrectIndex int       `json:"correct_index" yaml:"correct_index"`
}

// Analysis is the deterministic output of Synthesize.
type Analysis struct {
	Summary    string
	KeyPoints  []string
	Flashcards []Flashcard
	Quiz       []QuizQuestion
}

// GeneratedContent is the immutable result of one generation. A new
// generation replaces it wholesale.
type GeneratedContent struct {
	ID          uuid.UUID      `json:"id"           yaml:"id"`
	Topic       string         `json:"topic"        yaml:"topic"`
	Summary     string         `json:"summary"      yaml:"summary"`
	KeyPoints   []string       `json:"key_points"   yaml:"key_points"`
	Flashcards  []Flashcard    `json:"flashcards"   yaml:"flashcards"`
	Quiz        []QuizQuestion `json:"quiz"         yaml:"quiz"`
	Script      string         `json:"script"       yaml:"script"`
	GeneratedAt time.Time      `json:"generated_at" yaml:"generated_at"`
}
