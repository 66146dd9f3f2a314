// Package quiz grades a user's answers to a generated multiple-choice quiz.
package quiz

import (
	"errors"
	"math"
	"sync"

	"github.com/dgnsrekt/explainer/study"
)

// Unset marks a question without a selection.
const Unset = -1

// ErrIncomplete is returned by Submit while any question is unanswered.
var ErrIncomplete = errors.New("every question needs an answer before submitting")

// Verdicts shown next to the score.
const (
	VerdictExcellent = "Excellent work! You've mastered this topic!"
	VerdictGood      = "Good effort! Keep practicing!"
	VerdictKeepGoing = "Keep learning! You'll get there!"
)

// Attempt tracks one pass through a quiz.
type Attempt struct {
	mu         sync.RWMutex
	questions  []study.QuizQuestion
	selections []int
	submitted  bool
	score      int
}

// New starts an attempt at the given questions with nothing selected.
func New(questions []study.QuizQuestion) *Attempt {
	a := &Attempt{questions: questions}
	a.selections = make([]int, len(questions))
	a.clear()
	return a
}

// Select records optionIndex as the answer to question q, replacing any
// earlier choice. It is a no-op after submission or for indexes outside the
// quiz.
func (a *Attempt) Select(q, optionIndex int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted || q < 0 || q >= len(a.selections) {
		return
	}
	if optionIndex < 0 || optionIndex >= len(a.questions[q].Options) {
		return
	}
	a.selections[q] = optionIndex
}

// Selection returns the chosen option for question q, or Unset.
func (a *Attempt) Selection(q int) int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if q < 0 || q >= len(a.selections) {
		return Unset
	}
	return a.selections[q]
}

// Complete reports whether every question has a selection.
func (a *Attempt) Complete() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.complete()
}

// Submit grades the attempt. It refuses with ErrIncomplete while any
// question is unanswered. Submitting twice returns the existing score.
func (a *Attempt) Submit() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.submitted {
		return a.score, nil
	}
	if !a.complete() {
		return 0, ErrIncomplete
	}

	score := 0
	for i, sel := range a.selections {
		if sel == a.questions[i].CorrectIndex {
			score++
		}
	}
	a.score = score
	a.submitted = true
	return score, nil
}

// Reset clears every selection along with the submitted flag and score.
func (a *Attempt) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.clear()
}

// Submitted reports whether the attempt has been graded.
func (a *Attempt) Submitted() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.submitted
}

// Score returns the graded score, zero before submission.
func (a *Attempt) Score() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.score
}

// Len returns the number of questions.
func (a *Attempt) Len() int {
	return len(a.questions)
}

// Percentage returns the score as a rounded percentage of the question count.
func (a *Attempt) Percentage() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if len(a.questions) == 0 {
		return 0
	}
	return int(math.Round(float64(a.score) / float64(len(a.questions)) * 100))
}

// Verdict returns the encouragement line for the current score.
func (a *Attempt) Verdict() string {
	return VerdictFor(a.Percentage())
}

// VerdictFor maps a percentage to its encouragement line.
func VerdictFor(percentage int) string {
	switch {
	case percentage >= 70:
		return VerdictExcellent
	case percentage >= 40:
		return VerdictGood
	default:
		return VerdictKeepGoing
	}
}

func (a *Attempt) complete() bool {
	for _, sel := range a.selections {
		if sel == Unset {
			return false
		}
	}
	return true
}

func (a *Attempt) clear() {
	for i := range a.selections {
		a.selections[i] = Unset
	}
	a.submitted = false
	a.score = 0
}
