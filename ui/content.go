package ui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/explainer/narration"
	"github.com/dgnsrekt/explainer/study"
	"github.com/dgnsrekt/explainer/utils"
	"github.com/dustin/go-humanize"
	"github.com/muesli/termenv"
)

const (
	statusBarHeight = 1
	tabBarHeight    = 2
)

type tab int

const (
	tabAnimation tab = iota
	tabFlashcards
	tabQuiz
	tabSummary
	tabCount
)

var tabNames = [tabCount]string{"Animation", "Flashcards", "Quiz", "Summary"}

type (
	summaryRenderedMsg string
	exportedMsg        struct {
		paths []string
		err   error
	}
)

type contentState int

const (
	contentStateBrowse contentState = iota
	contentStateStatusMessage
)

type statusMessage struct {
	message string
	isError bool
}

// contentModel presents a generation: the animated explanation, the
// flashcards, the quiz and the summary.
type contentModel struct {
	common   *commonModel
	content  *study.GeneratedContent
	tab      tab
	playback narration.PlaybackState
	deck     deckModel
	quiz     quizModel
	summary  viewport.Model

	state              contentState
	status             statusMessage
	statusMessageTimer *time.Timer
}

func newContentModel(common *commonModel, c *study.GeneratedContent) contentModel {
	vp := viewport.New(0, 0)
	m := contentModel{
		common:   common,
		content:  c,
		deck:     deckModel{cards: c.Flashcards},
		quiz:     newQuizModel(c.Quiz),
		summary:  vp,
		playback: common.ctrl.State(),
	}
	m.setSize(common.width, common.height)
	return m
}

func (m *contentModel) setSize(w, h int) {
	m.summary.Width = w
	m.summary.Height = max(0, h-statusBarHeight-tabBarHeight-2)
}

func (m *contentModel) showStatusMessage(msg statusMessage) tea.Cmd {
	m.state = contentStateStatusMessage
	m.status = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)

	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

func (m *contentModel) unload() {
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.common.ctrl.Reset()
}

func (m contentModel) update(msg tea.Msg) (contentModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "tab":
			m.tab = (m.tab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.tab = (m.tab + tabCount - 1) % tabCount
			return m, nil
		case "c":
			text := study.SummaryText(m.content)
			// Copy using OSC 52
			termenv.Copy(text)
			// Copy using native system clipboard
			_ = clipboard.WriteAll(text)
			return m, m.showStatusMessage(statusMessage{message: "Copied summary"})
		case "d":
			return m, exportCmd(m.content, m.common.cfg.ExportDir)
		}

		switch m.tab {
		case tabAnimation:
			m.handlePlaybackKey(msg)
		case tabFlashcards:
			switch msg.String() {
			case "right", "l":
				m.deck.next()
			case "left", "h":
				m.deck.prev()
			case " ", "enter", "f":
				m.deck.flip()
			}
		case tabQuiz:
			m.quiz = m.quiz.update(msg)
		case tabSummary:
			var cmd tea.Cmd
			m.summary, cmd = m.summary.Update(msg)
			cmds = append(cmds, cmd)
		}

	case summaryRenderedMsg:
		m.summary.SetContent(string(msg))

	case exportedMsg:
		if msg.err != nil {
			log.Error("export failed", "error", msg.err)
			cmds = append(cmds, m.showStatusMessage(statusMessage{message: "Download failed: " + msg.err.Error(), isError: true}))
			break
		}
		dir := filepath.Dir(msg.paths[0])
		cmds = append(cmds, m.showStatusMessage(statusMessage{message: fmt.Sprintf("Saved %d files to %s", len(msg.paths), dir)}))

	case statusMessageTimeoutMsg:
		m.state = contentStateBrowse

	case tea.WindowSizeMsg:
		m.setSize(msg.Width, msg.Height)
		cmds = append(cmds, renderSummary(m.common, m.content))
	}

	return m, tea.Batch(cmds...)
}

func (m *contentModel) handlePlaybackKey(msg tea.KeyMsg) {
	ctrl := m.common.ctrl
	st := ctrl.State()
	switch msg.String() {
	case "s":
		if !st.CanStart() {
			break
		}
		if err := ctrl.Start(); err != nil {
			log.Warn("unable to start playback", "error", err)
		}
	case " ":
		if st.CanTogglePause() {
			ctrl.TogglePause()
		}
	case "r":
		ctrl.Reset()
	case "v":
		ctrl.ToggleVoice()
	}
	m.playback = ctrl.State()
}

func (m contentModel) view() string {
	var b strings.Builder
	b.WriteString(m.tabBarView())
	b.WriteString("\n\n")

	width := m.common.width
	var body string
	switch m.tab {
	case tabAnimation:
		body = indent(playbackView(m.playback, width), 2)
	case tabFlashcards:
		body = indent(m.deck.view(width), 2)
	case tabQuiz:
		body = indent(m.quiz.view(width), 2)
	case tabSummary:
		body = m.summary.View()
	}
	b.WriteString(body)

	// Push the status bar to the bottom of the screen.
	if h := m.common.height; h > 0 {
		lines := strings.Count(b.String(), "\n") + 1
		if pad := h - lines - statusBarHeight; pad > 0 {
			b.WriteString(strings.Repeat("\n", pad))
		}
	}
	b.WriteString("\n")
	m.statusBarView(&b)
	return b.String()
}

func (m contentModel) tabBarView() string {
	tabs := make([]string, 0, tabCount)
	for i, name := range tabNames {
		if tab(i) == m.tab {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m contentModel) statusBarView(b *strings.Builder) {
	showStatusMessage := m.state == contentStateStatusMessage

	note := m.content.Topic + " • Generated " + humanize.Time(m.content.GeneratedAt)
	noteStyle := statusBarNoteStyle
	if showStatusMessage {
		note = m.status.message
		noteStyle = statusBarMessageStyle
		if m.status.isError {
			noteStyle = statusBarErrorStyle
		}
	}

	help := statusBarHelpStyle(" tab switch • c copy • d download • n new • q quit ")
	b.WriteString(statusBar(m.common.width, logoView(), note, noteStyle, help))
}

// COMMANDS

func renderSummary(common *commonModel, c *study.GeneratedContent) tea.Cmd {
	width := common.width
	cfg := common.cfg
	return func() tea.Msg {
		md := summaryMarkdown(c)
		if !cfg.GlamourEnabled {
			return summaryRenderedMsg(md)
		}

		wrap := width
		if cfg.GlamourMaxWidth > 0 {
			wrap = min(wrap, int(cfg.GlamourMaxWidth)) //nolint:gosec
		}
		r, err := glamour.NewTermRenderer(
			utils.GlamourStyle(cfg.GlamourStyle),
			glamour.WithWordWrap(max(0, wrap)),
		)
		if err != nil {
			log.Error("error creating glamour renderer", "error", err)
			return summaryRenderedMsg(md)
		}
		out, err := r.Render(md)
		if err != nil {
			log.Error("error rendering with Glamour", "error", err)
			return summaryRenderedMsg(md)
		}
		return summaryRenderedMsg(out)
	}
}

// summaryMarkdown lays out the summary and key points as markdown.
func summaryMarkdown(c *study.GeneratedContent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", c.Topic)
	fmt.Fprintf(&b, "*Generated %s*\n\n", c.GeneratedAt.Format("Jan 2, 2006 3:04 PM"))
	fmt.Fprintf(&b, "## Summary\n\n%s\n\n## Key Points\n\n", c.Summary)
	for i, p := range c.KeyPoints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, p)
	}
	return b.String()
}

func exportCmd(c *study.GeneratedContent, dir string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		paths, err := study.WriteFiles(ctx, c, utils.ExpandPath(dir))
		return exportedMsg{paths: paths, err: err}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}
