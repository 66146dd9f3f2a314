package study

import (
	"fmt"
	"strings"
)

// Validate checks that the input can be used for a generation. Topic and
// explanation must contain something other than whitespace and both
// settings must lie within their documented bounds.
func (in RawInput) Validate() error {
	if strings.TrimSpace(in.Topic) == "" {
		return &ValidationError{Field: "topic", Err: ErrEmptyTopic}
	}
	if strings.TrimSpace(in.Explanation) == "" {
		return &ValidationError{Field: "explanation", Err: ErrEmptyExplanation}
	}
	if in.FlashcardCount < MinFlashcards || in.FlashcardCount > MaxFlashcards {
		return &ValidationError{
			Field: "flashcard count",
			Err:   fmt.Errorf("%w: must be between %d and %d, got %d", ErrOutOfRange, MinFlashcards, MaxFlashcards, in.FlashcardCount),
		}
	}
	if in.AnimationDurationSeconds < MinAnimationSeconds || in.AnimationDurationSeconds > MaxAnimationSeconds {
		return &ValidationError{
			Field: "animation duration",
			Err:   fmt.Errorf("%w: must be between %d and %d seconds, got %d", ErrOutOfRange, MinAnimationSeconds, MaxAnimationSeconds, in.AnimationDurationSeconds),
		}
	}
	return nil
}
