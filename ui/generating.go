package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/explainer/study"
)

const (
	progressInterval = 300 * time.Millisecond
	progressStep     = 10
	progressCeiling  = 90
	progressBarWidth = 40
)

type (
	progressTickMsg struct{}
	generatedMsg    struct {
		content *study.GeneratedContent
		err     error
	}
)

// generatingModel shows staged progress while content is generated.
type generatingModel struct {
	spinner  spinner.Model
	input    study.RawInput
	progress int
}

func newGeneratingModel(in study.RawInput) generatingModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cursorStyle
	return generatingModel{spinner: sp, input: in}
}

func (m generatingModel) update(msg tea.Msg) (generatingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case progressTickMsg:
		m.progress = min(m.progress+progressStep, progressCeiling)
		return m, progressTick()
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m generatingModel) view() string {
	filled := progressBarWidth * m.progress / 100
	bar := progressDoneStyle.Render(strings.Repeat("█", filled)) +
		progressPendingStyle.Render(strings.Repeat("░", progressBarWidth-filled))

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", titleStyle.Render(m.input.Topic))
	fmt.Fprintf(&b, "%s %s\n\n", m.spinner.View(), progressLabel(m.progress))
	fmt.Fprintf(&b, "%s %3d%%", bar, m.progress)
	return indent(b.String(), 2)
}

// progressLabel names the generation stage for a progress percentage.
func progressLabel(p int) string {
	switch {
	case p < 30:
		return "Analyzing content..."
	case p < 60:
		return "Creating animations..."
	case p < 90:
		return "Generating flashcards..."
	default:
		return "Finalizing..."
	}
}

// COMMANDS

func progressTick() tea.Cmd {
	return tea.Tick(progressInterval, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}

func generateCmd(in study.RawInput, cache study.Cache, delay time.Duration) tea.Cmd {
	return func() tea.Msg {
		if delay > 0 {
			time.Sleep(delay)
		}
		var opts []study.GenerateOption
		if cache != nil {
			opts = append(opts, study.WithCache(cache))
		}
		c, err := study.Generate(in, opts...)
		if err != nil {
			log.Error("generation failed", "topic", in.Topic, "error", err)
		}
		return generatedMsg{content: c, err: err}
	}
}
