package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/explainer/study"
	"github.com/dgnsrekt/explainer/study/quiz"
	"github.com/muesli/reflow/wordwrap"
)

// quizModel lets the user answer the quiz and grades it.
type quizModel struct {
	questions []study.QuizQuestion
	attempt   *quiz.Attempt
	cursor    int
	err       error
}

func newQuizModel(questions []study.QuizQuestion) quizModel {
	return quizModel{
		questions: questions,
		attempt:   quiz.New(questions),
	}
}

func (m quizModel) update(msg tea.KeyMsg) quizModel {
	if len(m.questions) == 0 {
		return m
	}

	switch key := msg.String(); key {
	case "up", "k":
		m.cursor = max(0, m.cursor-1)
	case "down", "j":
		m.cursor = min(len(m.questions)-1, m.cursor+1)
	case "1", "2", "3", "4":
		m.attempt.Select(m.cursor, int(key[0]-'1'))
		m.err = nil
		if m.attempt.Selection(m.cursor) != quiz.Unset && m.cursor < len(m.questions)-1 {
			m.cursor++
		}
	case "enter":
		if m.attempt.Submitted() {
			break
		}
		if _, err := m.attempt.Submit(); err != nil {
			m.err = err
		}
	case "r":
		if m.attempt.Submitted() {
			m.attempt.Reset()
			m.cursor = 0
			m.err = nil
		}
	}
	return m
}

func (m quizModel) view(width int) string {
	if len(m.questions) == 0 {
		return placeholderStyle.Render("The explanation was too short to make a quiz.")
	}

	wrap := max(20, width-8)
	var b strings.Builder

	if m.attempt.Submitted() {
		banner := fmt.Sprintf("Your Score: %d/%d", m.attempt.Score(), m.attempt.Len())
		fmt.Fprintf(&b, "%s  %s\n\n", titleStyle.Render(banner), m.attempt.Verdict())
	}

	for i, q := range m.questions {
		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		fmt.Fprintf(&b, "%s%s\n", marker, wordwrap.String(fmt.Sprintf("%d. %s", i+1, q.Question), wrap))

		selected := m.attempt.Selection(i)
		for o, opt := range q.Options {
			box := "[ ]"
			if o == selected {
				box = "[x]"
			}
			line := fmt.Sprintf("    %s %d) %s", box, o+1, opt)
			if m.attempt.Submitted() {
				switch {
				case o == q.CorrectIndex:
					line = correctStyle.Render(line + " ✓")
				case o == selected:
					line = wrongStyle.Render(line + " ✗")
				}
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	switch {
	case m.err != nil && errors.Is(m.err, quiz.ErrIncomplete):
		b.WriteString(wrongStyle.Render("Answer every question before submitting."))
	case m.attempt.Submitted():
		b.WriteString(subtleStyle.Render("r retry quiz"))
	default:
		b.WriteString(subtleStyle.Render("↑/↓ question • 1-4 choose • enter submit"))
	}
	return b.String()
}
