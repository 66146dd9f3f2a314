package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	normalDim     = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray          = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray       = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	brightGray    = lipgloss.AdaptiveColor{Light: "#847A85", Dark: "#979797"}
	cream         = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}
	yellowGreen   = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}
	fuchsia       = lipgloss.AdaptiveColor{Light: "#EE6FF8", Dark: "#EE6FF8"}
	dimFuchsia    = lipgloss.AdaptiveColor{Light: "#F1A8FF", Dark: "#99519E"}
	coral         = lipgloss.AdaptiveColor{Light: "#FF7F6E", Dark: "#FF8A7A"}
	green         = lipgloss.Color("#04B575")
	red           = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	mintGreen     = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen     = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	statusBarNote = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg   = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true)

	errorTitleStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(red).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().
			Foreground(gray)

	titleStyle = lipgloss.NewStyle().
			Foreground(fuchsia).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(brightGray)

	focusedLabelStyle = lipgloss.NewStyle().
				Foreground(fuchsia)

	buttonStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(midGray).
			Padding(0, 2)

	focusedButtonStyle = buttonStyle.
				Background(fuchsia).
				Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(normalDim).
				Padding(0, 1)

	revealStyle = lipgloss.NewStyle().
			Foreground(yellowGreen).
			Bold(true)

	placeholderStyle = lipgloss.NewStyle().
				Foreground(gray).
				Italic(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(dimFuchsia).
			Padding(1, 2)

	flippedCardStyle = cardStyle.
				BorderForeground(green)

	correctStyle = lipgloss.NewStyle().Foreground(green)
	wrongStyle   = lipgloss.NewStyle().Foreground(red)
	cursorStyle  = lipgloss.NewStyle().Foreground(fuchsia)

	progressDoneStyle    = lipgloss.NewStyle().Foreground(green)
	progressCurrentStyle = lipgloss.NewStyle().Foreground(coral)
	progressPendingStyle = lipgloss.NewStyle().Foreground(midGray)

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNote).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNote).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNote).
			Background(lipgloss.AdaptiveColor{Light: "#f2f2f2", Dark: "#1B1B1B"}).
			Render
)

func logoView() string {
	return logoStyle.Render(" Explainer ")
}

// indent prefixes every line of s with n spaces.
func indent(s string, n int) string {
	if n <= 0 || s == "" {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = pad + l
	}
	return strings.Join(lines, "\n")
}
