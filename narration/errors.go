package narration

import (
	"errors"
	"fmt"
)

// Common errors for the narration system.
var (
	// Speaker errors
	ErrSpeakerUnavailable = errors.New("speaker is not available")
	ErrSpeakFailed        = errors.New("speech synthesis failed")
	ErrCanceled           = errors.New("utterance was canceled")
	ErrNoVoices           = errors.New("no voices installed")

	// Controller errors
	ErrNothingToPlay   = errors.New("no points to narrate")
	ErrStateTransition = errors.New("invalid state transition")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// SpeakerError records a failed speaker operation.
type SpeakerError struct {
	Op  string // speak, pause, resume, cancel, voices
	Err error
}

// Error implements the error interface.
func (e *SpeakerError) Error() string {
	if e.Err == nil {
		return "speaker " + e.Op + " failed"
	}
	return fmt.Sprintf("speaker %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *SpeakerError) Unwrap() error {
	return e.Err
}

// IsCanceled reports whether err stems from a canceled utterance. Canceled
// utterances are expected whenever playback moves on or is reset.
func IsCanceled(err error) bool {
	return errors.Is(err, ErrCanceled)
}
