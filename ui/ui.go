// Package ui provides the terminal UI for explainer.
package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/explainer/narration"
	"github.com/dgnsrekt/explainer/study"
	te "github.com/muesli/termenv"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"
	ellipsis             = "…"
)

// NewProgram returns a new Tea program. The controller narrates generated
// key points; cache may be nil.
func NewProgram(cfg Config, ctrl *narration.Controller, cache study.Cache) *tea.Program {
	log.Debug(
		"Starting explainer",
		"glamour",
		cfg.GlamourEnabled,
		"generation_delay",
		cfg.GenerationDelay,
	)

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, ctrl, cache)
	return tea.NewProgram(m, opts...)
}

type statusMessageTimeoutMsg struct{}

// state is the top-level application state.
type state int

const (
	stateInput state = iota
	stateGenerating
	stateShowContent
)

func (s state) String() string {
	return map[state]string{
		stateInput:       "editing input",
		stateGenerating:  "generating",
		stateShowContent: "showing content",
	}[s]
}

// Common stuff we'll need to access in all models.
type commonModel struct {
	cfg    Config
	ctrl   *narration.Controller
	cache  study.Cache
	width  int
	height int
}

type model struct {
	common   *commonModel
	state    state
	showHelp bool

	// Sub-models
	input      inputModel
	generating generatingModel
	content    contentModel

	// Playback snapshots from the controller
	states <-chan narration.PlaybackState
}

func newModel(cfg Config, ctrl *narration.Controller, cache study.Cache) model {
	if cfg.GlamourStyle == styles.AutoStyle {
		if te.HasDarkBackground() {
			cfg.GlamourStyle = styles.DarkStyle
		} else {
			cfg.GlamourStyle = styles.LightStyle
		}
	}

	common := &commonModel{
		cfg:   cfg,
		ctrl:  ctrl,
		cache: cache,
	}
	states, _ := ctrl.Subscribe()

	return model{
		common: common,
		state:  stateInput,
		input:  newInputModel(common),
		states: states,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		textarea.Blink,
		narration.WaitForState(m.states),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		// Ctrl+C always quits no matter where in the application you are.
		case "ctrl+c":
			return m, tea.Quit

		case "ctrl+z":
			return m, tea.Suspend

		case "esc":
			if m.state == stateShowContent {
				return m.newExplanation(), nil
			}
			return m, tea.Quit

		case "q":
			if m.state != stateInput {
				return m, tea.Quit
			}

		case "n":
			if m.state == stateShowContent {
				return m.newExplanation(), nil
			}

		case "?":
			if m.state != stateInput {
				m.showHelp = !m.showHelp
				return m, nil
			}
		}

	// Window size is received when starting up and on every resize
	case tea.WindowSizeMsg:
		m.common.width = msg.Width
		m.common.height = msg.Height
		m.input.setSize(msg.Width, msg.Height)

	case narration.StateChangedMsg:
		m.content.playback = msg.State
		return m, narration.WaitForState(m.states)

	case narration.SubscriptionClosedMsg:
		return m, nil

	case startGenerationMsg:
		log.Info("generating", "topic", msg.input.Topic, "flashcards", msg.input.FlashcardCount)
		m.state = stateGenerating
		m.generating = newGeneratingModel(msg.input)
		return m, tea.Batch(
			m.generating.spinner.Tick,
			progressTick(),
			generateCmd(msg.input, m.common.cache, m.common.cfg.GenerationDelay),
		)

	case generatedMsg:
		if m.state != stateGenerating {
			return m, nil
		}
		if msg.err != nil {
			m.state = stateInput
			m.input.err = msg.err
			return m, nil
		}
		return m.showContent(msg.content)
	}

	switch m.state {
	case stateInput:
		newInputModel, cmd := m.input.update(msg)
		m.input = newInputModel
		cmds = append(cmds, cmd)

	case stateGenerating:
		newGeneratingModel, cmd := m.generating.update(msg)
		m.generating = newGeneratingModel
		cmds = append(cmds, cmd)

	case stateShowContent:
		newContentModel, cmd := m.content.update(msg)
		m.content = newContentModel
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// showContent loads a finished generation into the controller and switches
// to the content view.
func (m model) showContent(c *study.GeneratedContent) (model, tea.Cmd) {
	ctrl := m.common.ctrl
	ctrl.Load(c.KeyPoints, c.Script)
	ctrl.SetAnimationDuration(m.generating.input.AnimationDuration())

	m.state = stateShowContent
	m.content = newContentModel(m.common, c)
	log.Info("content ready", "id", c.ID, "points", len(c.KeyPoints))

	return m, tea.Batch(
		renderSummary(m.common, c),
		m.content.showStatusMessage(statusMessage{message: "Your animated explanation is ready"}),
	)
}

// newExplanation returns to the input form, keeping what was typed.
func (m model) newExplanation() model {
	m.content.unload()
	m.state = stateInput
	m.showHelp = false
	m.input.setFocus(fieldTopic)
	return m
}

func (m model) View() string {
	var s string
	switch m.state {
	case stateGenerating:
		s = "\n" + m.generating.view()
	case stateShowContent:
		s = m.content.view()
	default:
		s = "\n" + m.input.view()
	}

	if m.showHelp {
		s += "\n" + helpView(helpLines, m.common.width)
	}
	return s
}

var helpLines = []string{
	"tab       next section          s      start explanation",
	"shift+tab previous section      space  pause/resume or flip card",
	"←/→       previous/next card    r      reset animation or retry quiz",
	"↑/↓       previous/next question v     toggle voice",
	"1-4       choose an answer      enter  submit quiz",
	"c         copy summary          d      download study files",
	"n/esc     new explanation       q      quit",
}
