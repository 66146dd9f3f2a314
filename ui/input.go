package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dgnsrekt/explainer/study"
	"github.com/dgnsrekt/explainer/utils"
)

type inputField int

const (
	fieldTopic inputField = iota
	fieldExplanation
	fieldCards
	fieldDuration
	fieldGenerate
	fieldCount
)

// startGenerationMsg carries a validated input to generate from.
type startGenerationMsg struct {
	input study.RawInput
}

type inputModel struct {
	common      *commonModel
	topic       textinput.Model
	explanation textarea.Model
	cards       int
	duration    int
	focus       inputField
	err         error
}

func newInputModel(common *commonModel) inputModel {
	ti := textinput.New()
	ti.Placeholder = "e.g. Photosynthesis"
	ti.Prompt = "> "
	ti.CharLimit = 120
	ti.SetValue(common.cfg.Topic)
	ti.Focus()

	ta := textarea.New()
	ta.Placeholder = "Enter a detailed explanation of the topic..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetValue(common.cfg.Explanation)

	cards := common.cfg.FlashcardCount
	if cards == 0 {
		cards = study.DefaultFlashcards
	}
	duration := common.cfg.AnimationSeconds
	if duration == 0 {
		duration = study.DefaultAnimationSeconds
	}

	return inputModel{
		common:      common,
		topic:       ti,
		explanation: ta,
		cards:       clamp(cards, study.MinFlashcards, study.MaxFlashcards),
		duration:    clamp(duration, study.MinAnimationSeconds, study.MaxAnimationSeconds),
	}
}

func (m *inputModel) setSize(w, h int) {
	m.topic.Width = max(10, w-8)
	m.explanation.SetWidth(max(10, w-6))
	m.explanation.SetHeight(max(3, h-16))
}

func (m *inputModel) setFocus(f inputField) {
	m.focus = (f + fieldCount) % fieldCount
	m.topic.Blur()
	m.explanation.Blur()
	switch m.focus {
	case fieldTopic:
		m.topic.Focus()
	case fieldExplanation:
		m.explanation.Focus()
	}
}

// rawInput collects the form values.
func (m inputModel) rawInput() study.RawInput {
	return study.RawInput{
		Topic:                    strings.TrimSpace(utils.NormalizeText(m.topic.Value())),
		Explanation:              utils.NormalizeText(m.explanation.Value()),
		FlashcardCount:           m.cards,
		AnimationDurationSeconds: m.duration,
	}
}

func (m inputModel) submit() (inputModel, tea.Cmd) {
	in := m.rawInput()
	if err := in.Validate(); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	return m, func() tea.Msg { return startGenerationMsg{input: in} }
}

func (m inputModel) update(msg tea.Msg) (inputModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "tab":
			m.setFocus(m.focus + 1)
			return m, nil
		case "shift+tab":
			m.setFocus(m.focus - 1)
			return m, nil
		case "ctrl+s":
			return m.submit()
		case "enter":
			switch m.focus {
			case fieldGenerate:
				return m.submit()
			case fieldExplanation:
			default:
				m.setFocus(m.focus + 1)
				return m, nil
			}
		case "+", "=", "right", "l":
			if m.adjust(1) {
				return m, nil
			}
		case "-", "_", "left", "h":
			if m.adjust(-1) {
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	switch m.focus {
	case fieldTopic:
		m.topic, cmd = m.topic.Update(msg)
	case fieldExplanation:
		m.explanation, cmd = m.explanation.Update(msg)
	}
	return m, cmd
}

// adjust steps the focused numeric setting and reports whether one was
// focused.
func (m *inputModel) adjust(delta int) bool {
	switch m.focus {
	case fieldCards:
		m.cards = clamp(m.cards+delta, study.MinFlashcards, study.MaxFlashcards)
	case fieldDuration:
		m.duration = clamp(m.duration+delta, study.MinAnimationSeconds, study.MaxAnimationSeconds)
	default:
		return false
	}
	return true
}

func (m inputModel) view() string {
	var b strings.Builder

	label := func(f inputField, s string) string {
		if m.focus == f {
			return focusedLabelStyle.Render(s)
		}
		return labelStyle.Render(s)
	}
	stepper := func(f inputField, value string) string {
		if m.focus == f {
			return cursorStyle.Render("◀ ") + value + cursorStyle.Render(" ▶")
		}
		return "  " + value + "  "
	}

	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render("Create an animated explanation"))
	fmt.Fprintf(&b, "%s\n%s\n\n", label(fieldTopic, "Topic"), m.topic.View())
	fmt.Fprintf(&b, "%s\n%s\n\n", label(fieldExplanation, "Explanation"), m.explanation.View())
	fmt.Fprintf(&b, "%s %s    %s %s\n\n",
		label(fieldCards, "Flashcards"),
		stepper(fieldCards, fmt.Sprintf("%d", m.cards)),
		label(fieldDuration, "Animation duration"),
		stepper(fieldDuration, fmt.Sprintf("%ds", m.duration)),
	)

	button := buttonStyle
	if m.focus == fieldGenerate {
		button = focusedButtonStyle
	}
	b.WriteString(button.Render("Generate Explanation"))

	if m.err != nil {
		fmt.Fprintf(&b, "\n\n%s %s", errorTitleStyle.Render("Missing information"), m.err)
	}

	b.WriteString("\n\n")
	b.WriteString(subtleStyle.Render("tab next field • +/- adjust • ctrl+s generate • esc quit"))

	return indent(b.String(), 2)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
